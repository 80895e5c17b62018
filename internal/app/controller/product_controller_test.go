package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductControllerTest(t *testing.T, role model.UserRole) (*gin.Engine, *gorm.DB) {
	testDB := setupControllerTestDB(t)

	productService := service.NewProductService(
		repository.NewProductRepository(testDB),
		repository.NewBrandRepository(testDB),
		repository.NewCategoryRepository(testDB),
	)
	ctrl := NewProductController(productService)
	user := createUser(t, testDB, "product-"+string(role)+"@example.com", role)

	router := gin.New()
	products := router.Group("/api/Product", asUser(user.ID, role))
	{
		products.GET("", ctrl.GetProducts)
		products.GET("/:id", ctrl.GetProduct)
		products.GET("/slug/:slug", ctrl.GetProductBySlug)
		products.POST("", ctrl.CreateProduct)
		products.PUT("/:id", ctrl.UpdateProduct)
		products.DELETE("/:id", ctrl.DeleteProduct)
		products.GET("/:id/variations", ctrl.GetVariations)
		products.POST("/:id/variations", ctrl.AddVariation)
		products.PUT("/:id/usages", ctrl.ReplaceUsages)
	}

	return router, testDB
}

func TestProductController_GetProducts(t *testing.T) {
	router, testDB := setupProductControllerTest(t, model.RoleCustomer)
	createProduct(t, testDB, "retinol-night-cream", 500, 0, 5)
	createProduct(t, testDB, "gentle-foam-cleanser", 150, 120, 5)
	hidden := createProduct(t, testDB, "discontinued-toner", 90, 0, 5)
	require.NoError(t, testDB.Model(hidden).Update("is_active", false).Error)

	t.Run("Inactive products are hidden", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/Product", nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decodeBody(t, w)
		assert.EqualValues(t, 2, page["Total"])
		assert.Len(t, page["Items"], 2)
	})

	t.Run("Search by name", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/Product?search=RETINOL", nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decodeBody(t, w)
		require.Len(t, page["Items"], 1)
		assert.Equal(t, "retinol-night-cream", page["Items"].([]interface{})[0].(map[string]interface{})["Name"])
	})

	t.Run("Customers cannot include inactive", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/Product?includeInactive=true", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.EqualValues(t, 2, decodeBody(t, w)["Total"])
	})

	t.Run("Pagination", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/api/Product?page=2&pageSize=1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		page := decodeBody(t, w)
		assert.EqualValues(t, 2, page["Total"])
		assert.Len(t, page["Items"], 1)
		assert.EqualValues(t, 2, page["Page"])
	})
}

func TestProductController_GetProduct(t *testing.T) {
	router, testDB := setupProductControllerTest(t, model.RoleCustomer)
	product := createProduct(t, testDB, "aloe-gel", 80, 0, 5)

	w := performRequest(router, http.MethodGet, fmt.Sprintf("/api/Product/%d", product.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "aloe-gel", decodeBody(t, w)["Product"].(map[string]interface{})["Name"])

	w = performRequest(router, http.MethodGet, "/api/Product/slug/aloe-gel", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/api/Product/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodGet, "/api/Product/not-a-number", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProductController_CreateProduct(t *testing.T) {
	router, _ := setupProductControllerTest(t, model.RoleAdmin)

	t.Run("Success", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Product", CreateProductRequest{
			Name:          "Vitamin C Serum",
			Description:   "Brightening serum",
			Price:         350,
			SalePrice:     300,
			StockQuantity: 20,
			PictureURLs:   []string{"https://cdn.example.com/products/serum.jpg"},
			Usages:        []string{"Apply two drops", "Follow with moisturizer"},
			MainIngredients: []IngredientRequest{
				{Name: "Ascorbic acid", Percentage: 15},
			},
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		product := decodeBody(t, w)["Product"].(map[string]interface{})
		assert.Equal(t, "vitamin-c-serum", product["Slug"])
		assert.Len(t, product["Pictures"], 1)
		assert.Len(t, product["Usages"], 2)
		assert.Len(t, product["MainIngredients"], 1)
	})

	t.Run("Duplicate names get distinct slugs", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Product", CreateProductRequest{
			Name:  "Vitamin C Serum",
			Price: 350,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "vitamin-c-serum-2", decodeBody(t, w)["Product"].(map[string]interface{})["Slug"])
	})

	t.Run("Sale price above price", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Product", CreateProductRequest{
			Name:      "Overpriced",
			Price:     100,
			SalePrice: 150,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown brand", func(t *testing.T) {
		brandID := uint(4242)
		w := performRequest(router, http.MethodPost, "/api/Product", CreateProductRequest{
			Name:    "Orphan",
			Price:   100,
			BrandID: &brandID,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProductController_UpdateAndVariations(t *testing.T) {
	router, testDB := setupProductControllerTest(t, model.RoleAdmin)
	product := createProduct(t, testDB, "barrier-cream", 200, 0, 5)
	path := fmt.Sprintf("/api/Product/%d", product.ID)

	salePrice := 180.0
	w := performRequest(router, http.MethodPut, path, UpdateProductRequest{SalePrice: &salePrice})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decodeBody(t, w)["Product"].(map[string]interface{})
	assert.InDelta(t, 180, updated["SalePrice"], 0.001)
	assert.InDelta(t, 200, updated["Price"], 0.001)

	w = performRequest(router, http.MethodPost, path+"/variations", VariationRequest{
		Name:          "100ml",
		Price:         320,
		StockQuantity: 4,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = performRequest(router, http.MethodGet, path+"/variations", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["Count"])

	w = performRequest(router, http.MethodPut, path+"/usages", UsagesRequest{Instructions: []string{"Use nightly"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, decodeBody(t, w)["Product"].(map[string]interface{})["Usages"], 1)

	w = performRequest(router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
