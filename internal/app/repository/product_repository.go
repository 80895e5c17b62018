package repository

import (
	"fmt"

	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/pkg/logger"
	"gorm.io/gorm"
)

type ProductSort string

const (
	ProductSortPrice     ProductSort = "price"
	ProductSortCreatedAt ProductSort = "created_at"
	ProductSortRating    ProductSort = "rating"
	ProductSortName      ProductSort = "name"
)

type ProductFilter struct {
	BrandID       *uint
	CategoryID    *uint
	SkinTypeID    *uint
	Search        string
	MinPrice      *float64
	MaxPrice      *float64
	ActiveOnly    bool
	SortBy        ProductSort
	SortAscending bool
	Limit         int
	Offset        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindWithFilter(filter ProductFilter) ([]model.Product, int64, error)
	FindByID(id uint) (*model.Product, error)
	FindBySlug(slug string) (*model.Product, error)
	FindByIDs(ids []uint) ([]model.Product, error)
	SlugExists(slug string) (bool, error)
	Update(product *model.Product) error
	Delete(id uint) error
	UpdateStock(id uint, delta int) error
	UpdateRatingStats(id uint, average float64, count int) error

	CreateVariation(variation *model.ProductVariation) error
	FindVariationByID(id uint) (*model.ProductVariation, error)
	FindVariations(productID uint) ([]model.ProductVariation, error)
	UpdateVariation(variation *model.ProductVariation) error
	DeleteVariation(id uint) error

	ReplacePictures(productID uint, pictures []model.ProductPicture) error
	ReplaceUsages(productID uint, usages []model.ProductUsage) error
	ReplaceIngredients(productID uint, main []model.ProductMainIngredient, detail []model.ProductDetailIngredient) error
	SetSkinTypes(productID uint, skinTypeIDs []uint) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) preloadDetail() *gorm.DB {
	return r.db.
		Preload("Brand").
		Preload("Category").
		Preload("Variations", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variations.price ASC")
		}).
		Preload("Pictures", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_pictures.sort_order ASC")
		}).
		Preload("Usages", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_usages.sort_order ASC")
		}).
		Preload("SkinTypes.SkinType").
		Preload("MainIngredients").
		Preload("DetailIngredients")
}

func (r *productRepository) Create(product *model.Product) error {
	logger.Debug("Creating product in database", map[string]interface{}{
		"name": product.Name,
		"slug": product.Slug,
	})

	if err := r.db.Omit("Brand", "Category").Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"name": product.Name,
		})
		return err
	}

	logger.Debug("Product created in database", map[string]interface{}{
		"product_id": product.ID,
		"name":       product.Name,
	})
	return nil
}

func (r *productRepository) FindWithFilter(filter ProductFilter) ([]model.Product, int64, error) {
	logger.Debug("Finding products with filter", map[string]interface{}{
		"brand_id":     filter.BrandID,
		"category_id":  filter.CategoryID,
		"skin_type_id": filter.SkinTypeID,
		"search":       filter.Search,
		"sort_by":      filter.SortBy,
		"limit":        filter.Limit,
		"offset":       filter.Offset,
	})

	query := r.db.Model(&model.Product{})

	if filter.BrandID != nil {
		query = query.Where("products.brand_id = ?", *filter.BrandID)
	}
	if filter.CategoryID != nil {
		query = query.Where("products.category_id = ?", *filter.CategoryID)
	}
	if filter.SkinTypeID != nil {
		query = query.Where("EXISTS (SELECT 1 FROM product_for_skin_types pst WHERE pst.product_id = products.id AND pst.skin_type_id = ?)", *filter.SkinTypeID)
	}
	if filter.Search != "" {
		like := fmt.Sprintf("%%%s%%", filter.Search)
		query = query.Where("LOWER(products.name) LIKE LOWER(?) OR LOWER(products.description) LIKE LOWER(?)", like, like)
	}
	if filter.MinPrice != nil {
		query = query.Where("products.price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		query = query.Where("products.price <= ?", *filter.MaxPrice)
	}
	if filter.ActiveOnly {
		query = query.Where("products.is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count products with filter", err)
		return nil, 0, err
	}

	direction := "DESC"
	if filter.SortAscending {
		direction = "ASC"
	}
	switch filter.SortBy {
	case ProductSortPrice:
		query = query.Order("products.price " + direction)
	case ProductSortRating:
		query = query.Order("products.average_rating " + direction).Order("products.rating_count DESC")
	case ProductSortName:
		query = query.Order("products.name " + direction)
	default:
		query = query.Order("products.created_at " + direction)
	}
	query = query.Order("products.id ASC")

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var products []model.Product
	if err := query.
		Preload("Brand").
		Preload("Category").
		Preload("Pictures", func(db *gorm.DB) *gorm.DB {
			return db.Order("product_pictures.sort_order ASC")
		}).
		Find(&products).Error; err != nil {
		logger.Error("Failed to find products with filter", err)
		return nil, 0, err
	}

	logger.Debug("Products found with filter", map[string]interface{}{
		"count": len(products),
		"total": total,
	})
	return products, total, nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	logger.Debug("Finding product by ID in database", map[string]interface{}{
		"product_id": id,
	})

	var product model.Product
	if err := r.preloadDetail().First(&product, id).Error; err != nil {
		if err != gorm.ErrRecordNotFound {
			logger.Error("Failed to find product by ID in database", err, map[string]interface{}{
				"product_id": id,
			})
		}
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindBySlug(slug string) (*model.Product, error) {
	var product model.Product
	if err := r.preloadDetail().Where("slug = ?", slug).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ids []uint) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		logger.Error("Failed to find products by IDs", err, map[string]interface{}{
			"count": len(ids),
		})
		return nil, err
	}
	return products, nil
}

func (r *productRepository) SlugExists(slug string) (bool, error) {
	var count int64
	if err := r.db.Unscoped().Model(&model.Product{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *productRepository) Update(product *model.Product) error {
	logger.Debug("Updating product in database", map[string]interface{}{
		"product_id": product.ID,
	})

	if err := r.db.Omit(
		"Brand", "Category", "Variations", "Pictures", "Usages",
		"SkinTypes", "MainIngredients", "DetailIngredients",
	).Save(product).Error; err != nil {
		logger.Error("Failed to update product in database", err, map[string]interface{}{
			"product_id": product.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) Delete(id uint) error {
	logger.Debug("Deleting product from database", map[string]interface{}{
		"product_id": id,
	})

	result := r.db.Delete(&model.Product{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product from database", result.Error, map[string]interface{}{
			"product_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpdateStock adds delta (negative to decrement) to the product stock
func (r *productRepository) UpdateStock(id uint, delta int) error {
	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Update("stock_quantity", gorm.Expr("stock_quantity + ?", delta)).Error; err != nil {
		logger.Error("Failed to update product stock", err, map[string]interface{}{
			"product_id": id,
			"delta":      delta,
		})
		return err
	}
	return nil
}

func (r *productRepository) UpdateRatingStats(id uint, average float64, count int) error {
	if err := r.db.Model(&model.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"average_rating": average,
			"rating_count":   count,
		}).Error; err != nil {
		logger.Error("Failed to update product rating stats", err, map[string]interface{}{
			"product_id": id,
		})
		return err
	}
	return nil
}

func (r *productRepository) CreateVariation(variation *model.ProductVariation) error {
	if err := r.db.Create(variation).Error; err != nil {
		logger.Error("Failed to create product variation", err, map[string]interface{}{
			"product_id": variation.ProductID,
			"name":       variation.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindVariationByID(id uint) (*model.ProductVariation, error) {
	var variation model.ProductVariation
	if err := r.db.First(&variation, id).Error; err != nil {
		return nil, err
	}
	return &variation, nil
}

func (r *productRepository) FindVariations(productID uint) ([]model.ProductVariation, error) {
	var variations []model.ProductVariation
	if err := r.db.Where("product_id = ?", productID).
		Order("price ASC").
		Find(&variations).Error; err != nil {
		logger.Error("Failed to find product variations", err, map[string]interface{}{
			"product_id": productID,
		})
		return nil, err
	}
	return variations, nil
}

func (r *productRepository) UpdateVariation(variation *model.ProductVariation) error {
	if err := r.db.Save(variation).Error; err != nil {
		logger.Error("Failed to update product variation", err, map[string]interface{}{
			"variation_id": variation.ID,
		})
		return err
	}
	return nil
}

func (r *productRepository) DeleteVariation(id uint) error {
	result := r.db.Delete(&model.ProductVariation{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete product variation", result.Error, map[string]interface{}{
			"variation_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) ReplacePictures(productID uint, pictures []model.ProductPicture) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductPicture{}).Error; err != nil {
			return err
		}
		for i := range pictures {
			pictures[i].ID = 0
			pictures[i].ProductID = productID
		}
		if len(pictures) == 0 {
			return nil
		}
		return tx.Create(&pictures).Error
	})
}

func (r *productRepository) ReplaceUsages(productID uint, usages []model.ProductUsage) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductUsage{}).Error; err != nil {
			return err
		}
		for i := range usages {
			usages[i].ID = 0
			usages[i].ProductID = productID
		}
		if len(usages) == 0 {
			return nil
		}
		return tx.Create(&usages).Error
	})
}

func (r *productRepository) ReplaceIngredients(productID uint, main []model.ProductMainIngredient, detail []model.ProductDetailIngredient) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductMainIngredient{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductDetailIngredient{}).Error; err != nil {
			return err
		}
		for i := range main {
			main[i].ID = 0
			main[i].ProductID = productID
		}
		for i := range detail {
			detail[i].ID = 0
			detail[i].ProductID = productID
		}
		if len(main) > 0 {
			if err := tx.Create(&main).Error; err != nil {
				return err
			}
		}
		if len(detail) > 0 {
			if err := tx.Create(&detail).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *productRepository) SetSkinTypes(productID uint, skinTypeIDs []uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductForSkinType{}).Error; err != nil {
			return err
		}
		if len(skinTypeIDs) == 0 {
			return nil
		}
		links := make([]model.ProductForSkinType, 0, len(skinTypeIDs))
		seen := make(map[uint]bool, len(skinTypeIDs))
		for _, id := range skinTypeIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			links = append(links, model.ProductForSkinType{ProductID: productID, SkinTypeID: id})
		}
		return tx.Omit("SkinType").Create(&links).Error
	})
}
