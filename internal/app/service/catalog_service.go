package service

import (
	"errors"
	"strings"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrBrandNotFound     = errors.New("brand not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrSkinTypeNotFound  = errors.New("skin type not found")
	ErrNameRequired      = errors.New("name is required")
	ErrInvalidScoreRange = errors.New("min score must not exceed max score")
	ErrDuplicateBrand    = errors.New("brand with this name already exists")
	ErrDuplicateCategory = errors.New("category with this name already exists")
)

type BrandInput struct {
	Name        string
	Country     string
	LogoURL     string
	Description string
}

type CategoryInput struct {
	Name        string
	Description string
}

type SkinTypeInput struct {
	Name        string
	Description string
	MinScore    int
	MaxScore    int
}

type BrandService interface {
	GetAll() ([]model.Brand, error)
	GetByID(id uint) (*model.Brand, error)
	Create(input BrandInput) (*model.Brand, error)
	Update(id uint, input BrandInput) (*model.Brand, error)
	Delete(id uint) error
}

type CategoryService interface {
	GetAll() ([]model.Category, error)
	GetByID(id uint) (*model.Category, error)
	Create(input CategoryInput) (*model.Category, error)
	Update(id uint, input CategoryInput) (*model.Category, error)
	Delete(id uint) error
}

type SkinTypeService interface {
	GetAll() ([]model.SkinType, error)
	GetByID(id uint) (*model.SkinType, error)
	Create(input SkinTypeInput) (*model.SkinType, error)
	Update(id uint, input SkinTypeInput) (*model.SkinType, error)
	Delete(id uint) error
}

func notFoundAs(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

type brandService struct {
	repo repository.BrandRepository
}

func NewBrandService(repo repository.BrandRepository) BrandService {
	return &brandService{repo: repo}
}

func (s *brandService) GetAll() ([]model.Brand, error) {
	return s.repo.FindAll()
}

func (s *brandService) GetByID(id uint) (*model.Brand, error) {
	brand, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrBrandNotFound)
	}
	return brand, nil
}

func (s *brandService) Create(input BrandInput) (*model.Brand, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if existing, err := s.repo.FindByName(name); err == nil && existing != nil {
		return nil, ErrDuplicateBrand
	}

	slug, err := util.UniqueSlug(util.Slugify(name, "brand"), s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	brand := &model.Brand{
		Name:        name,
		Slug:        slug,
		Country:     input.Country,
		LogoURL:     input.LogoURL,
		Description: input.Description,
	}
	if err := s.repo.Create(brand); err != nil {
		return nil, err
	}

	logger.Info("Brand created", map[string]interface{}{
		"brand_id": brand.ID,
		"slug":     brand.Slug,
	})
	return brand, nil
}

func (s *brandService) Update(id uint, input BrandInput) (*model.Brand, error) {
	brand, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if name != brand.Name {
		slug, err := util.UniqueSlug(util.Slugify(name, "brand"), s.repo.SlugExists)
		if err != nil {
			return nil, err
		}
		brand.Name = name
		brand.Slug = slug
	}
	brand.Country = input.Country
	brand.LogoURL = input.LogoURL
	brand.Description = input.Description

	if err := s.repo.Update(brand); err != nil {
		return nil, err
	}

	logger.Info("Brand updated", map[string]interface{}{
		"brand_id": brand.ID,
	})
	return brand, nil
}

func (s *brandService) Delete(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return notFoundAs(err, ErrBrandNotFound)
	}
	logger.Info("Brand deleted", map[string]interface{}{
		"brand_id": id,
	})
	return nil
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) GetAll() ([]model.Category, error) {
	return s.repo.FindAll()
}

func (s *categoryService) GetByID(id uint) (*model.Category, error) {
	category, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrCategoryNotFound)
	}
	return category, nil
}

func (s *categoryService) Create(input CategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if existing, err := s.repo.FindByName(name); err == nil && existing != nil {
		return nil, ErrDuplicateCategory
	}

	slug, err := util.UniqueSlug(util.Slugify(name, "category"), s.repo.SlugExists)
	if err != nil {
		return nil, err
	}

	category := &model.Category{
		Name:        name,
		Slug:        slug,
		Description: input.Description,
	}
	if err := s.repo.Create(category); err != nil {
		return nil, err
	}

	logger.Info("Category created", map[string]interface{}{
		"category_id": category.ID,
		"slug":        category.Slug,
	})
	return category, nil
}

func (s *categoryService) Update(id uint, input CategoryInput) (*model.Category, error) {
	category, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if name != category.Name {
		slug, err := util.UniqueSlug(util.Slugify(name, "category"), s.repo.SlugExists)
		if err != nil {
			return nil, err
		}
		category.Name = name
		category.Slug = slug
	}
	category.Description = input.Description

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return notFoundAs(err, ErrCategoryNotFound)
	}
	logger.Info("Category deleted", map[string]interface{}{
		"category_id": id,
	})
	return nil
}

type skinTypeService struct {
	repo repository.SkinTypeRepository
}

func NewSkinTypeService(repo repository.SkinTypeRepository) SkinTypeService {
	return &skinTypeService{repo: repo}
}

func (s *skinTypeService) GetAll() ([]model.SkinType, error) {
	return s.repo.FindAll()
}

func (s *skinTypeService) GetByID(id uint) (*model.SkinType, error) {
	skinType, err := s.repo.FindByID(id)
	if err != nil {
		return nil, notFoundAs(err, ErrSkinTypeNotFound)
	}
	return skinType, nil
}

func validateSkinTypeInput(input SkinTypeInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return ErrNameRequired
	}
	if input.MinScore > input.MaxScore {
		return ErrInvalidScoreRange
	}
	return nil
}

func (s *skinTypeService) Create(input SkinTypeInput) (*model.SkinType, error) {
	if err := validateSkinTypeInput(input); err != nil {
		return nil, err
	}

	skinType := &model.SkinType{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		MinScore:    input.MinScore,
		MaxScore:    input.MaxScore,
	}
	if err := s.repo.Create(skinType); err != nil {
		return nil, err
	}

	logger.Info("Skin type created", map[string]interface{}{
		"skin_type_id": skinType.ID,
		"min_score":    skinType.MinScore,
		"max_score":    skinType.MaxScore,
	})
	return skinType, nil
}

func (s *skinTypeService) Update(id uint, input SkinTypeInput) (*model.SkinType, error) {
	if err := validateSkinTypeInput(input); err != nil {
		return nil, err
	}
	skinType, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	skinType.Name = strings.TrimSpace(input.Name)
	skinType.Description = input.Description
	skinType.MinScore = input.MinScore
	skinType.MaxScore = input.MaxScore
	if err := s.repo.Update(skinType); err != nil {
		return nil, err
	}
	return skinType, nil
}

func (s *skinTypeService) Delete(id uint) error {
	if err := s.repo.Delete(id); err != nil {
		return notFoundAs(err, ErrSkinTypeNotFound)
	}
	return nil
}
