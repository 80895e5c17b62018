package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"github.com/lumiskin/skincare-backend/pkg/util"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductInactive   = errors.New("product is not available")
	ErrVariationNotFound = errors.New("product variation not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidPrice      = errors.New("price must be positive and sale price must not exceed it")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ProductListOptions struct {
	BrandID    *uint
	CategoryID *uint
	SkinTypeID *uint
	Search     string
	MinPrice   *float64
	MaxPrice   *float64
	ActiveOnly bool
	Sort       string // price, rating, name or newest
	Ascending  bool
	Page       int
	PageSize   int
}

type ProductPage struct {
	Items    []model.Product `json:"Items"`
	Total    int64           `json:"Total"`
	Page     int             `json:"Page"`
	PageSize int             `json:"PageSize"`
}

type IngredientInput struct {
	Name        string
	Description string
	Percentage  float64
}

type ProductInput struct {
	Name              string
	Description       string
	BrandID           *uint
	CategoryID        *uint
	Price             float64
	SalePrice         float64
	StockQuantity     int
	IsActive          *bool
	PictureURLs       []string
	Usages            []string
	SkinTypeIDs       []uint
	MainIngredients   []IngredientInput
	DetailIngredients []IngredientInput
}

// ProductUpdateInput applies only the non-nil fields
type ProductUpdateInput struct {
	Name          *string
	Description   *string
	BrandID       *uint
	CategoryID    *uint
	Price         *float64
	SalePrice     *float64
	StockQuantity *int
	IsActive      *bool
}

type VariationInput struct {
	Name          string
	SKU           string
	Price         float64
	SalePrice     float64
	StockQuantity int
	IsActive      *bool
}

type ProductService interface {
	GetAllProducts(opts ProductListOptions) (*ProductPage, error)
	GetProductByID(id uint) (*model.Product, error)
	GetProductBySlug(slug string) (*model.Product, error)
	GetProductsBySkinType(skinTypeID uint) ([]model.Product, error)
	CreateProduct(input ProductInput) (*model.Product, error)
	UpdateProduct(id uint, input ProductUpdateInput) (*model.Product, error)
	DeleteProduct(id uint) error
	CheckStock(productID uint, variationID *uint, quantity int) error

	GetVariations(productID uint) ([]model.ProductVariation, error)
	AddVariation(productID uint, input VariationInput) (*model.ProductVariation, error)
	UpdateVariation(productID, variationID uint, input VariationInput) (*model.ProductVariation, error)
	DeleteVariation(productID, variationID uint) error

	ReplacePictures(productID uint, urls []string) (*model.Product, error)
	ReplaceUsages(productID uint, instructions []string) (*model.Product, error)
	ReplaceIngredients(productID uint, main, detail []IngredientInput) (*model.Product, error)
	SetSkinTypes(productID uint, skinTypeIDs []uint) (*model.Product, error)
}

type productService struct {
	productRepo  repository.ProductRepository
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
}

func NewProductService(
	productRepo repository.ProductRepository,
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
	}
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func validPrices(price, salePrice float64) bool {
	return price > 0 && salePrice >= 0 && salePrice <= price
}

func (s *productService) GetAllProducts(opts ProductListOptions) (*ProductPage, error) {
	page, pageSize := normalizePage(opts.Page, opts.PageSize)

	filter := repository.ProductFilter{
		BrandID:       opts.BrandID,
		CategoryID:    opts.CategoryID,
		SkinTypeID:    opts.SkinTypeID,
		Search:        strings.TrimSpace(opts.Search),
		MinPrice:      opts.MinPrice,
		MaxPrice:      opts.MaxPrice,
		ActiveOnly:    opts.ActiveOnly,
		SortAscending: opts.Ascending,
		Limit:         pageSize,
		Offset:        (page - 1) * pageSize,
	}
	switch opts.Sort {
	case "price":
		filter.SortBy = repository.ProductSortPrice
	case "rating":
		filter.SortBy = repository.ProductSortRating
	case "name":
		filter.SortBy = repository.ProductSortName
	default:
		filter.SortBy = repository.ProductSortCreatedAt
	}

	products, total, err := s.productRepo.FindWithFilter(filter)
	if err != nil {
		logger.Error("Failed to list products", err)
		return nil, err
	}

	logger.Debug("Products listed", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return &ProductPage{
		Items:    products,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *productService) GetProductByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Product not found", map[string]interface{}{
				"product_id": id,
			})
			return nil, ErrProductNotFound
		}
		logger.Error("Failed to fetch product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}
	return product, nil
}

func (s *productService) GetProductBySlug(slug string) (*model.Product, error) {
	product, err := s.productRepo.FindBySlug(slug)
	if err != nil {
		return nil, notFoundAs(err, ErrProductNotFound)
	}
	return product, nil
}

func (s *productService) GetProductsBySkinType(skinTypeID uint) ([]model.Product, error) {
	products, _, err := s.productRepo.FindWithFilter(repository.ProductFilter{
		SkinTypeID: &skinTypeID,
		ActiveOnly: true,
		SortBy:     repository.ProductSortRating,
	})
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (s *productService) checkReferences(brandID, categoryID *uint) error {
	if brandID != nil {
		if _, err := s.brandRepo.FindByID(*brandID); err != nil {
			return notFoundAs(err, ErrBrandNotFound)
		}
	}
	if categoryID != nil {
		if _, err := s.categoryRepo.FindByID(*categoryID); err != nil {
			return notFoundAs(err, ErrCategoryNotFound)
		}
	}
	return nil
}

func toPictures(urls []string) []model.ProductPicture {
	pictures := make([]model.ProductPicture, 0, len(urls))
	for i, u := range urls {
		pictures = append(pictures, model.ProductPicture{URL: u, SortOrder: i})
	}
	return pictures
}

func toUsages(instructions []string) []model.ProductUsage {
	usages := make([]model.ProductUsage, 0, len(instructions))
	for i, text := range instructions {
		usages = append(usages, model.ProductUsage{Instruction: text, SortOrder: i})
	}
	return usages
}

func toIngredients(main, detail []IngredientInput) ([]model.ProductMainIngredient, []model.ProductDetailIngredient) {
	mains := make([]model.ProductMainIngredient, 0, len(main))
	for _, in := range main {
		mains = append(mains, model.ProductMainIngredient{Name: in.Name, Description: in.Description})
	}
	details := make([]model.ProductDetailIngredient, 0, len(detail))
	for _, in := range detail {
		details = append(details, model.ProductDetailIngredient{Name: in.Name, Percentage: in.Percentage})
	}
	return mains, details
}

func (s *productService) CreateProduct(input ProductInput) (*model.Product, error) {
	name := strings.TrimSpace(input.Name)
	logger.Info("Creating product", map[string]interface{}{
		"name":  name,
		"price": input.Price,
	})

	if name == "" {
		return nil, ErrNameRequired
	}
	if !validPrices(input.Price, input.SalePrice) {
		return nil, ErrInvalidPrice
	}
	if input.StockQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if err := s.checkReferences(input.BrandID, input.CategoryID); err != nil {
		return nil, err
	}

	slug, err := util.UniqueSlug(util.Slugify(name, "product"), s.productRepo.SlugExists)
	if err != nil {
		return nil, err
	}

	mains, details := toIngredients(input.MainIngredients, input.DetailIngredients)
	product := &model.Product{
		Name:              name,
		Slug:              slug,
		Description:       input.Description,
		BrandID:           input.BrandID,
		CategoryID:        input.CategoryID,
		Price:             input.Price,
		SalePrice:         input.SalePrice,
		StockQuantity:     input.StockQuantity,
		IsActive:          true,
		Pictures:          toPictures(input.PictureURLs),
		Usages:            toUsages(input.Usages),
		MainIngredients:   mains,
		DetailIngredients: details,
	}
	if err := s.productRepo.Create(product); err != nil {
		logger.Error("Failed to create product", err, map[string]interface{}{
			"name": name,
		})
		return nil, err
	}

	if len(input.SkinTypeIDs) > 0 {
		if err := s.productRepo.SetSkinTypes(product.ID, input.SkinTypeIDs); err != nil {
			return nil, err
		}
	}

	// IsActive defaults to true in the schema, so an explicit false needs a second write
	if input.IsActive != nil && !*input.IsActive {
		product.IsActive = false
		if err := s.productRepo.Update(product); err != nil {
			return nil, err
		}
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
		"slug":       product.Slug,
	})
	return s.GetProductByID(product.ID)
}

func (s *productService) UpdateProduct(id uint, input ProductUpdateInput) (*model.Product, error) {
	logger.Info("Updating product", map[string]interface{}{
		"product_id": id,
	})

	product, err := s.GetProductByID(id)
	if err != nil {
		return nil, err
	}

	if err := s.checkReferences(input.BrandID, input.CategoryID); err != nil {
		return nil, err
	}

	oldName := product.Name
	if err := copier.CopyWithOption(product, &input, copier.Option{IgnoreEmpty: true}); err != nil {
		return nil, fmt.Errorf("failed to apply product changes: %w", err)
	}

	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, ErrNameRequired
	}
	if !validPrices(product.Price, product.SalePrice) {
		return nil, ErrInvalidPrice
	}
	if product.StockQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if product.Name != oldName {
		slug, err := util.UniqueSlug(util.Slugify(product.Name, "product"), s.productRepo.SlugExists)
		if err != nil {
			return nil, err
		}
		product.Slug = slug
	}

	if err := s.productRepo.Update(product); err != nil {
		logger.Error("Failed to update product", err, map[string]interface{}{
			"product_id": id,
		})
		return nil, err
	}

	return s.GetProductByID(id)
}

func (s *productService) DeleteProduct(id uint) error {
	if err := s.productRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		logger.Error("Failed to delete product", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}

	logger.Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})
	return nil
}

// CheckStock verifies that the product (or the chosen variation) is sellable in the given quantity
func (s *productService) CheckStock(productID uint, variationID *uint, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		return notFoundAs(err, ErrProductNotFound)
	}
	if !product.IsActive {
		return ErrProductInactive
	}

	available := product.StockQuantity
	if variationID != nil {
		variation, err := s.productRepo.FindVariationByID(*variationID)
		if err != nil || variation.ProductID != productID {
			return ErrVariationNotFound
		}
		if !variation.IsActive {
			return ErrProductInactive
		}
		available = variation.StockQuantity
	}

	if available < quantity {
		logger.Warn("Insufficient stock", map[string]interface{}{
			"product_id":   productID,
			"variation_id": variationID,
			"available":    available,
			"requested":    quantity,
		})
		return ErrInsufficientStock
	}
	return nil
}

func (s *productService) GetVariations(productID uint) ([]model.ProductVariation, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	return s.productRepo.FindVariations(productID)
}

func (s *productService) AddVariation(productID uint, input VariationInput) (*model.ProductVariation, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	if !validPrices(input.Price, input.SalePrice) {
		return nil, ErrInvalidPrice
	}

	variation := &model.ProductVariation{
		ProductID:     productID,
		Name:          strings.TrimSpace(input.Name),
		SKU:           input.SKU,
		Price:         input.Price,
		SalePrice:     input.SalePrice,
		StockQuantity: input.StockQuantity,
		IsActive:      true,
	}
	if err := s.productRepo.CreateVariation(variation); err != nil {
		return nil, err
	}
	if input.IsActive != nil && !*input.IsActive {
		variation.IsActive = false
		if err := s.productRepo.UpdateVariation(variation); err != nil {
			return nil, err
		}
	}

	logger.Info("Product variation added", map[string]interface{}{
		"product_id":   productID,
		"variation_id": variation.ID,
	})
	return variation, nil
}

func (s *productService) findVariation(productID, variationID uint) (*model.ProductVariation, error) {
	variation, err := s.productRepo.FindVariationByID(variationID)
	if err != nil {
		return nil, notFoundAs(err, ErrVariationNotFound)
	}
	if variation.ProductID != productID {
		return nil, ErrVariationNotFound
	}
	return variation, nil
}

func (s *productService) UpdateVariation(productID, variationID uint, input VariationInput) (*model.ProductVariation, error) {
	variation, err := s.findVariation(productID, variationID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrNameRequired
	}
	if !validPrices(input.Price, input.SalePrice) {
		return nil, ErrInvalidPrice
	}

	variation.Name = strings.TrimSpace(input.Name)
	variation.SKU = input.SKU
	variation.Price = input.Price
	variation.SalePrice = input.SalePrice
	variation.StockQuantity = input.StockQuantity
	if input.IsActive != nil {
		variation.IsActive = *input.IsActive
	}
	if err := s.productRepo.UpdateVariation(variation); err != nil {
		return nil, err
	}
	return variation, nil
}

func (s *productService) DeleteVariation(productID, variationID uint) error {
	if _, err := s.findVariation(productID, variationID); err != nil {
		return err
	}
	if err := s.productRepo.DeleteVariation(variationID); err != nil {
		return notFoundAs(err, ErrVariationNotFound)
	}
	return nil
}

func (s *productService) ReplacePictures(productID uint, urls []string) (*model.Product, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	if err := s.productRepo.ReplacePictures(productID, toPictures(urls)); err != nil {
		return nil, err
	}
	return s.GetProductByID(productID)
}

func (s *productService) ReplaceUsages(productID uint, instructions []string) (*model.Product, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	if err := s.productRepo.ReplaceUsages(productID, toUsages(instructions)); err != nil {
		return nil, err
	}
	return s.GetProductByID(productID)
}

func (s *productService) ReplaceIngredients(productID uint, main, detail []IngredientInput) (*model.Product, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	mains, details := toIngredients(main, detail)
	if err := s.productRepo.ReplaceIngredients(productID, mains, details); err != nil {
		return nil, err
	}
	return s.GetProductByID(productID)
}

func (s *productService) SetSkinTypes(productID uint, skinTypeIDs []uint) (*model.Product, error) {
	if _, err := s.GetProductByID(productID); err != nil {
		return nil, err
	}
	if err := s.productRepo.SetSkinTypes(productID, skinTypeIDs); err != nil {
		return nil, err
	}
	return s.GetProductByID(productID)
}
