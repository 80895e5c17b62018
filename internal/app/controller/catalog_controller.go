package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type BrandRequest struct {
	Name        string `json:"Name" binding:"required"`
	Country     string `json:"Country"`
	LogoURL     string `json:"LogoUrl"`
	Description string `json:"Description"`
}

type CategoryRequest struct {
	Name        string `json:"Name" binding:"required"`
	Description string `json:"Description"`
}

type SkinTypeRequest struct {
	Name        string `json:"Name" binding:"required"`
	Description string `json:"Description"`
	MinScore    int    `json:"MinScore"`
	MaxScore    int    `json:"MaxScore"`
}

type BrandController struct {
	brandService service.BrandService
}

func NewBrandController(brandService service.BrandService) *BrandController {
	return &BrandController{brandService: brandService}
}

// GetBrands GET /api/Brand
func (ctrl *BrandController) GetBrands(c *gin.Context) {
	brands, err := ctrl.brandService.GetAll()
	if err != nil {
		respondError(c, err, "list brands", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Brands": brands, "Count": len(brands)})
}

// GetBrand GET /api/Brand/:id
func (ctrl *BrandController) GetBrand(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	brand, err := ctrl.brandService.GetByID(id)
	if err != nil {
		respondError(c, err, "get brand", map[string]interface{}{"brand_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Brand": brand})
}

// CreateBrand POST /api/Brand
func (ctrl *BrandController) CreateBrand(c *gin.Context) {
	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	brand, err := ctrl.brandService.Create(service.BrandInput(req))
	if err != nil {
		respondError(c, err, "create brand", map[string]interface{}{"name": req.Name})
		return
	}
	middleware.GetLoggerFromContext(c).Info("Brand created", map[string]interface{}{
		"brand_id": brand.ID,
	})
	c.JSON(http.StatusCreated, gin.H{"Brand": brand})
}

// UpdateBrand PUT /api/Brand/:id
func (ctrl *BrandController) UpdateBrand(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req BrandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	brand, err := ctrl.brandService.Update(id, service.BrandInput(req))
	if err != nil {
		respondError(c, err, "update brand", map[string]interface{}{"brand_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Brand": brand})
}

// DeleteBrand DELETE /api/Brand/:id
func (ctrl *BrandController) DeleteBrand(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.brandService.Delete(id); err != nil {
		respondError(c, err, "delete brand", map[string]interface{}{"brand_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Brand deleted"})
}

type CategoryController struct {
	categoryService service.CategoryService
}

func NewCategoryController(categoryService service.CategoryService) *CategoryController {
	return &CategoryController{categoryService: categoryService}
}

// GetCategories GET /api/Category
func (ctrl *CategoryController) GetCategories(c *gin.Context) {
	categories, err := ctrl.categoryService.GetAll()
	if err != nil {
		respondError(c, err, "list categories", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"Categories": categories, "Count": len(categories)})
}

// GetCategory GET /api/Category/:id
func (ctrl *CategoryController) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	category, err := ctrl.categoryService.GetByID(id)
	if err != nil {
		respondError(c, err, "get category", map[string]interface{}{"category_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Category": category})
}

// CreateCategory POST /api/Category
func (ctrl *CategoryController) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	category, err := ctrl.categoryService.Create(service.CategoryInput(req))
	if err != nil {
		respondError(c, err, "create category", map[string]interface{}{"name": req.Name})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"Category": category})
}

// UpdateCategory PUT /api/Category/:id
func (ctrl *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	category, err := ctrl.categoryService.Update(id, service.CategoryInput(req))
	if err != nil {
		respondError(c, err, "update category", map[string]interface{}{"category_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Category": category})
}

// DeleteCategory DELETE /api/Category/:id
func (ctrl *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.categoryService.Delete(id); err != nil {
		respondError(c, err, "delete category", map[string]interface{}{"category_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Category deleted"})
}

type SkinTypeController struct {
	skinTypeService service.SkinTypeService
	productService  service.ProductService
}

func NewSkinTypeController(skinTypeService service.SkinTypeService, productService service.ProductService) *SkinTypeController {
	return &SkinTypeController{
		skinTypeService: skinTypeService,
		productService:  productService,
	}
}

// GetSkinTypes GET /api/SkinType
func (ctrl *SkinTypeController) GetSkinTypes(c *gin.Context) {
	skinTypes, err := ctrl.skinTypeService.GetAll()
	if err != nil {
		respondError(c, err, "list skin types", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"SkinTypes": skinTypes, "Count": len(skinTypes)})
}

// GetSkinType GET /api/SkinType/:id
func (ctrl *SkinTypeController) GetSkinType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	skinType, err := ctrl.skinTypeService.GetByID(id)
	if err != nil {
		respondError(c, err, "get skin type", map[string]interface{}{"skin_type_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"SkinType": skinType})
}

// GetSkinTypeProducts lists active products suited to a skin type
// GET /api/SkinType/:id/products
func (ctrl *SkinTypeController) GetSkinTypeProducts(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if _, err := ctrl.skinTypeService.GetByID(id); err != nil {
		respondError(c, err, "get skin type", map[string]interface{}{"skin_type_id": id})
		return
	}
	products, err := ctrl.productService.GetProductsBySkinType(id)
	if err != nil {
		respondError(c, err, "list products by skin type", map[string]interface{}{"skin_type_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Products": products, "Count": len(products)})
}

// CreateSkinType POST /api/SkinType
func (ctrl *SkinTypeController) CreateSkinType(c *gin.Context) {
	var req SkinTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	skinType, err := ctrl.skinTypeService.Create(service.SkinTypeInput(req))
	if err != nil {
		respondError(c, err, "create skin type", map[string]interface{}{"name": req.Name})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"SkinType": skinType})
}

// UpdateSkinType PUT /api/SkinType/:id
func (ctrl *SkinTypeController) UpdateSkinType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req SkinTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}
	skinType, err := ctrl.skinTypeService.Update(id, service.SkinTypeInput(req))
	if err != nil {
		respondError(c, err, "update skin type", map[string]interface{}{"skin_type_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"SkinType": skinType})
}

// DeleteSkinType DELETE /api/SkinType/:id
func (ctrl *SkinTypeController) DeleteSkinType(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := ctrl.skinTypeService.Delete(id); err != nil {
		respondError(c, err, "delete skin type", map[string]interface{}{"skin_type_id": id})
		return
	}
	c.JSON(http.StatusOK, gin.H{"Message": "Skin type deleted"})
}
