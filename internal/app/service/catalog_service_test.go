package service

import (
	"testing"

	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrandService_CRUD(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	svc := NewBrandService(repository.NewBrandRepository(testDB))

	brand, err := svc.Create(BrandInput{Name: "  Cosrx  ", Country: "Korea"})
	require.NoError(t, err)
	assert.Equal(t, "Cosrx", brand.Name)
	assert.Equal(t, "cosrx", brand.Slug)

	_, err = svc.Create(BrandInput{Name: "Cosrx"})
	assert.ErrorIs(t, err, ErrDuplicateBrand)
	_, err = svc.Create(BrandInput{Name: " "})
	assert.ErrorIs(t, err, ErrNameRequired)

	updated, err := svc.Update(brand.ID, BrandInput{Name: "COSRX Inc", Country: "Korea"})
	require.NoError(t, err)
	assert.Equal(t, "cosrx-inc", updated.Slug)

	all, err := svc.GetAll()
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.Delete(brand.ID))
	_, err = svc.GetByID(brand.ID)
	assert.ErrorIs(t, err, ErrBrandNotFound)
	assert.ErrorIs(t, svc.Delete(brand.ID), ErrBrandNotFound)
}

func TestCategoryService_CRUD(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	svc := NewCategoryService(repository.NewCategoryRepository(testDB))

	category, err := svc.Create(CategoryInput{Name: "Sữa rửa mặt"})
	require.NoError(t, err)
	assert.Equal(t, "sua-rua-mat", category.Slug)

	_, err = svc.Create(CategoryInput{Name: "Sữa rửa mặt"})
	assert.ErrorIs(t, err, ErrDuplicateCategory)

	updated, err := svc.Update(category.ID, CategoryInput{Name: "Sữa rửa mặt", Description: "Cleansers"})
	require.NoError(t, err)
	assert.Equal(t, "sua-rua-mat", updated.Slug, "slug is stable when the name is unchanged")
	assert.Equal(t, "Cleansers", updated.Description)

	require.NoError(t, svc.Delete(category.ID))
	_, err = svc.GetByID(category.ID)
	assert.ErrorIs(t, err, ErrCategoryNotFound)
}

func TestSkinTypeService_Validation(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	svc := NewSkinTypeService(repository.NewSkinTypeRepository(testDB))

	_, err = svc.Create(SkinTypeInput{Name: "Broken", MinScore: 10, MaxScore: 5})
	assert.ErrorIs(t, err, ErrInvalidScoreRange)

	dry, err := svc.Create(SkinTypeInput{Name: "Dry", MinScore: 0, MaxScore: 10})
	require.NoError(t, err)
	_, err = svc.Create(SkinTypeInput{Name: "Oily", MinScore: 11, MaxScore: 20})
	require.NoError(t, err)

	all, err := svc.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, dry.ID, all[0].ID)

	updated, err := svc.Update(dry.ID, SkinTypeInput{Name: "Dry", MinScore: 0, MaxScore: 8})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.MaxScore)

	_, err = svc.GetByID(9999)
	assert.ErrorIs(t, err, ErrSkinTypeNotFound)
}
