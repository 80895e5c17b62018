package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/db"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var slugSeq int64

func setupTestDB(t *testing.T) *gorm.DB {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })
	return testDB
}

func createTestUser(t *testing.T, testDB *gorm.DB, email string) *model.User {
	user := &model.User{
		Email:        email,
		PasswordHash: "hash",
		Name:         "Test User",
		Role:         model.RoleCustomer,
		IsActive:     true,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name string, price, salePrice float64) *model.Product {
	product := &model.Product{
		Name:          name,
		Slug:          fmt.Sprintf("product-%d", atomic.AddInt64(&slugSeq, 1)),
		Price:         price,
		SalePrice:     salePrice,
		StockQuantity: 10,
		IsActive:      true,
	}
	require.NoError(t, testDB.Create(product).Error)
	return product
}
