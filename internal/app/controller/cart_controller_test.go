package controller

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupCartControllerTest(t *testing.T) (*gin.Engine, *gorm.DB, *model.User) {
	testDB := setupControllerTestDB(t)

	cartService := service.NewCartService(
		repository.NewCartRepository(testDB),
		repository.NewProductRepository(testDB),
		nil,
	)
	ctrl := NewCartController(cartService)

	user := createUser(t, testDB, "cart@example.com", model.RoleCustomer)

	router := gin.New()
	cart := router.Group("/api/Cart", asUser(user.ID, model.RoleCustomer))
	{
		cart.GET("", ctrl.GetCart)
		cart.POST("", ctrl.AddToCart)
		cart.PUT("/select", ctrl.SelectItems)
		cart.PUT("/:id", ctrl.UpdateCartItem)
		cart.DELETE("/:id", ctrl.RemoveFromCart)
		cart.DELETE("", ctrl.ClearCart)
	}

	return router, testDB, user
}

func addItem(t *testing.T, router *gin.Engine, productID uint, quantity int) uint {
	w := performRequest(router, http.MethodPost, "/api/Cart", AddToCartRequest{
		ProductID: productID,
		Quantity:  quantity,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	item := decodeBody(t, w)["Item"].(map[string]interface{})
	return uint(item["Id"].(float64))
}

func cartTotals(t *testing.T, response map[string]interface{}) map[string]interface{} {
	totals, ok := response["Totals"].(map[string]interface{})
	require.True(t, ok)
	return totals
}

func TestCartController_Totals(t *testing.T) {
	router, testDB, _ := setupCartControllerTest(t)
	serum := createProduct(t, testDB, "vitamin-c-serum", 100, 80, 10)
	toner := createProduct(t, testDB, "hydrating-toner", 50, 0, 10)

	addItem(t, router, serum.ID, 2)
	tonerItem := addItem(t, router, toner.ID, 1)

	w := performRequest(router, http.MethodGet, "/api/Cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	response := decodeBody(t, w)
	assert.Len(t, response["Items"], 2)

	totals := cartTotals(t, response)
	assert.InDelta(t, 250, totals["TotalPrice"], 0.001)
	assert.InDelta(t, 210, totals["TotalPriceSale"], 0.001)
	assert.InDelta(t, 40, totals["Saved"], 0.001)

	// deselected lines drop out of the totals
	deselect := false
	w = performRequest(router, http.MethodPut, "/api/Cart/select", SelectCartItemsRequest{
		ItemIDs:  []uint{tonerItem},
		Selected: &deselect,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	totals = cartTotals(t, decodeBody(t, w))
	assert.InDelta(t, 200, totals["TotalPrice"], 0.001)
	assert.InDelta(t, 160, totals["TotalPriceSale"], 0.001)
}

func TestCartController_AddToCart(t *testing.T) {
	router, testDB, _ := setupCartControllerTest(t)
	product := createProduct(t, testDB, "sunscreen", 30, 0, 3)

	t.Run("Same product merges into one line", func(t *testing.T) {
		first := addItem(t, router, product.ID, 1)
		second := addItem(t, router, product.ID, 1)
		assert.Equal(t, first, second)
	})

	t.Run("Insufficient stock", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Cart", AddToCartRequest{
			ProductID: product.ID,
			Quantity:  5,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.ProductOutOfStock, decodeBody(t, w)["Error"])
	})

	t.Run("Unknown product", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Cart", AddToCartRequest{
			ProductID: 9999,
			Quantity:  1,
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Zero quantity", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Cart", map[string]interface{}{
			"ProductId": product.ID,
			"Quantity":  0,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCartController_UpdateAndRemove(t *testing.T) {
	router, testDB, _ := setupCartControllerTest(t)
	product := createProduct(t, testDB, "cleanser", 20, 0, 10)
	itemID := addItem(t, router, product.ID, 1)

	w := performRequest(router, http.MethodPut, fmt.Sprintf("/api/Cart/%d", itemID), UpdateCartRequest{Quantity: 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	item := decodeBody(t, w)["Item"].(map[string]interface{})
	assert.EqualValues(t, 4, item["Quantity"])

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/api/Cart/%d", itemID), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodDelete, fmt.Sprintf("/api/Cart/%d", itemID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(router, http.MethodPut, "/api/Cart/abc", UpdateCartRequest{Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCartController_ClearCart(t *testing.T) {
	router, testDB, _ := setupCartControllerTest(t)
	product := createProduct(t, testDB, "mask", 15, 0, 10)
	addItem(t, router, product.ID, 2)

	w := performRequest(router, http.MethodDelete, "/api/Cart", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(router, http.MethodGet, "/api/Cart", nil)
	response := decodeBody(t, w)
	assert.Empty(t, response["Items"])
	assert.InDelta(t, 0, cartTotals(t, response)["TotalPrice"], 0.001)
}
