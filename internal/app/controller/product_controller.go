package controller

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type ProductController struct {
	productService service.ProductService
}

func NewProductController(productService service.ProductService) *ProductController {
	return &ProductController{
		productService: productService,
	}
}

type IngredientRequest struct {
	Name        string  `json:"Name" binding:"required"`
	Description string  `json:"Description"`
	Percentage  float64 `json:"Percentage"`
}

type CreateProductRequest struct {
	Name              string              `json:"Name" binding:"required"`
	Description       string              `json:"Description"`
	BrandID           *uint               `json:"BrandId"`
	CategoryID        *uint               `json:"CategoryId"`
	Price             float64             `json:"Price" binding:"required,gt=0"`
	SalePrice         float64             `json:"SalePrice" binding:"gte=0"`
	StockQuantity     int                 `json:"StockQuantity" binding:"gte=0"`
	IsActive          *bool               `json:"IsActive"`
	PictureURLs       []string            `json:"PictureUrls"`
	Usages            []string            `json:"Usages"`
	SkinTypeIDs       []uint              `json:"SkinTypeIds"`
	MainIngredients   []IngredientRequest `json:"MainIngredients"`
	DetailIngredients []IngredientRequest `json:"DetailIngredients"`
}

// UpdateProductRequest is a partial update, nil fields are left unchanged
type UpdateProductRequest struct {
	Name          *string  `json:"Name"`
	Description   *string  `json:"Description"`
	BrandID       *uint    `json:"BrandId"`
	CategoryID    *uint    `json:"CategoryId"`
	Price         *float64 `json:"Price"`
	SalePrice     *float64 `json:"SalePrice"`
	StockQuantity *int     `json:"StockQuantity"`
	IsActive      *bool    `json:"IsActive"`
}

type VariationRequest struct {
	Name          string  `json:"Name" binding:"required"`
	SKU           string  `json:"Sku"`
	Price         float64 `json:"Price" binding:"required,gt=0"`
	SalePrice     float64 `json:"SalePrice" binding:"gte=0"`
	StockQuantity int     `json:"StockQuantity" binding:"gte=0"`
	IsActive      *bool   `json:"IsActive"`
}

type PicturesRequest struct {
	URLs []string `json:"Urls"`
}

type UsagesRequest struct {
	Instructions []string `json:"Instructions"`
}

type IngredientsRequest struct {
	MainIngredients   []IngredientRequest `json:"MainIngredients"`
	DetailIngredients []IngredientRequest `json:"DetailIngredients"`
}

type SkinTypesRequest struct {
	SkinTypeIDs []uint `json:"SkinTypeIds"`
}

func toIngredientInputs(in []IngredientRequest) []service.IngredientInput {
	out := make([]service.IngredientInput, 0, len(in))
	for _, ing := range in {
		out = append(out, service.IngredientInput(ing))
	}
	return out
}

// GetProducts lists products with filters and pagination. Inactive products
// are only listed for backoffice users.
// GET /api/Product
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	opts := service.ProductListOptions{
		BrandID:    queryUint(c, "brandId"),
		CategoryID: queryUint(c, "categoryId"),
		SkinTypeID: queryUint(c, "skinTypeId"),
		Search:     c.Query("search"),
		MinPrice:   queryFloat(c, "minPrice"),
		MaxPrice:   queryFloat(c, "maxPrice"),
		ActiveOnly: !currentRole(c).IsBackoffice() || c.Query("includeInactive") != "true",
		Sort:       c.Query("sort"),
		Ascending:  strings.EqualFold(c.Query("order"), "asc"),
		Page:       queryInt(c, "page", 1),
		PageSize:   queryInt(c, "pageSize", service.DefaultPageSize),
	}

	page, err := ctrl.productService.GetAllProducts(opts)
	if err != nil {
		respondError(c, err, "list products", nil)
		return
	}

	c.JSON(http.StatusOK, page)
}

// GetProduct returns a product with all its children
// GET /api/Product/:id
func (ctrl *ProductController) GetProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetProductByID(id)
	if err != nil {
		respondError(c, err, "get product", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Product": product})
}

// GetProductBySlug GET /api/Product/slug/:slug
func (ctrl *ProductController) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	product, err := ctrl.productService.GetProductBySlug(slug)
	if err != nil {
		respondError(c, err, "get product", map[string]interface{}{"slug": slug})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Product": product})
}

// CreateProduct POST /api/Product
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	var input service.ProductInput
	if err := copier.Copy(&input, &req); err != nil {
		respondError(c, err, "create product", nil)
		return
	}
	input.MainIngredients = toIngredientInputs(req.MainIngredients)
	input.DetailIngredients = toIngredientInputs(req.DetailIngredients)

	product, err := ctrl.productService.CreateProduct(input)
	if err != nil {
		respondError(c, err, "create product", map[string]interface{}{"name": req.Name})
		return
	}

	log.Info("Product created", map[string]interface{}{
		"product_id": product.ID,
	})

	c.JSON(http.StatusCreated, gin.H{"Product": product})
}

// UpdateProduct PUT /api/Product/:id
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	product, err := ctrl.productService.UpdateProduct(id, service.ProductUpdateInput(req))
	if err != nil {
		respondError(c, err, "update product", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Product": product})
}

// DeleteProduct DELETE /api/Product/:id
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteProduct(id); err != nil {
		respondError(c, err, "delete product", map[string]interface{}{"product_id": id})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Product deleted", map[string]interface{}{
		"product_id": id,
	})

	c.JSON(http.StatusOK, gin.H{"Message": "Product deleted"})
}

// GetVariations GET /api/Product/:id/variations
func (ctrl *ProductController) GetVariations(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	variations, err := ctrl.productService.GetVariations(id)
	if err != nil {
		respondError(c, err, "list variations", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Variations": variations, "Count": len(variations)})
}

// AddVariation POST /api/Product/:id/variations
func (ctrl *ProductController) AddVariation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	variation, err := ctrl.productService.AddVariation(id, service.VariationInput(req))
	if err != nil {
		respondError(c, err, "add variation", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"Variation": variation})
}

// UpdateVariation PUT /api/Product/:id/variations/:variationId
func (ctrl *ProductController) UpdateVariation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	variationID, ok := parseIDParam(c, "variationId")
	if !ok {
		return
	}

	var req VariationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	variation, err := ctrl.productService.UpdateVariation(id, variationID, service.VariationInput(req))
	if err != nil {
		respondError(c, err, "update variation", map[string]interface{}{
			"product_id":   id,
			"variation_id": variationID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Variation": variation})
}

// DeleteVariation DELETE /api/Product/:id/variations/:variationId
func (ctrl *ProductController) DeleteVariation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	variationID, ok := parseIDParam(c, "variationId")
	if !ok {
		return
	}

	if err := ctrl.productService.DeleteVariation(id, variationID); err != nil {
		respondError(c, err, "delete variation", map[string]interface{}{
			"product_id":   id,
			"variation_id": variationID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Message": "Variation deleted"})
}

// ReplacePictures PUT /api/Product/:id/pictures
func (ctrl *ProductController) ReplacePictures(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req PicturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	product, err := ctrl.productService.ReplacePictures(id, req.URLs)
	if err != nil {
		respondError(c, err, "replace pictures", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Product": product})
}

// ReplaceUsages PUT /api/Product/:id/usages
func (ctrl *ProductController) ReplaceUsages(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UsagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	product, err := ctrl.productService.ReplaceUsages(id, req.Instructions)
	if err != nil {
		respondError(c, err, "replace usages", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Product": product})
}

// ReplaceIngredients PUT /api/Product/:id/ingredients
func (ctrl *ProductController) ReplaceIngredients(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req IngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	product, err := ctrl.productService.ReplaceIngredients(id,
		toIngredientInputs(req.MainIngredients),
		toIngredientInputs(req.DetailIngredients),
	)
	if err != nil {
		respondError(c, err, "replace ingredients", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Product": product})
}

// SetSkinTypes PUT /api/Product/:id/skin-types
func (ctrl *ProductController) SetSkinTypes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SkinTypesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	product, err := ctrl.productService.SetSkinTypes(id, req.SkinTypeIDs)
	if err != nil {
		respondError(c, err, "set skin types", map[string]interface{}{"product_id": id})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Product": product})
}
