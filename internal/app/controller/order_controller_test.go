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

type orderControllerFixture struct {
	db      *gorm.DB
	cart    *CartController
	orders  *OrderController
	product *model.Product
}

func setupOrderControllerTest(t *testing.T) *orderControllerFixture {
	testDB := setupControllerTestDB(t)

	cartRepo := repository.NewCartRepository(testDB)
	promotionRepo := repository.NewPromotionRepository(testDB)
	promotionService := service.NewPromotionService(promotionRepo)
	orderService := service.NewOrderService(
		testDB,
		repository.NewOrderRepository(testDB),
		cartRepo,
		promotionRepo,
		promotionService,
		nil,
		nil,
		"http://localhost:3000",
	)
	cartService := service.NewCartService(cartRepo, repository.NewProductRepository(testDB), nil)

	return &orderControllerFixture{
		db:      testDB,
		cart:    NewCartController(cartService),
		orders:  NewOrderController(orderService),
		product: createProduct(t, testDB, "niacinamide-serum", 200, 150, 10),
	}
}

// routerFor builds the order routes as seen by one caller
func (f *orderControllerFixture) routerFor(user *model.User) *gin.Engine {
	router := gin.New()
	api := router.Group("/api", asUser(user.ID, user.Role))
	api.POST("/Cart", f.cart.AddToCart)
	api.POST("/Order", f.orders.CreateOrder)
	api.GET("/Order", f.orders.GetOrders)
	api.GET("/Order/:id", f.orders.GetOrder)
	api.PUT("/Order/:id/cancel", f.orders.CancelOrder)
	api.GET("/Order/admin", f.orders.GetAllOrders)
	api.PUT("/Order/:id/status", f.orders.UpdateOrderStatus)
	return router
}

func (f *orderControllerFixture) placeOrder(t *testing.T, router *gin.Engine, quantity int) map[string]interface{} {
	addItem(t, router, f.product.ID, quantity)

	w := performRequest(router, http.MethodPost, "/api/Order", CreateOrderRequest{
		ShippingAddress: "12 Le Loi, District 1",
		Phone:           "0901234567",
		PaymentMethod:   model.PaymentMethodCOD,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)["Order"].(map[string]interface{})
}

func TestOrderController_CreateOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	customer := createUser(t, f.db, "buyer@example.com", model.RoleCustomer)
	router := f.routerFor(customer)

	order := f.placeOrder(t, router, 2)

	assert.InDelta(t, 400, order["TotalPrice"], 0.001)
	assert.InDelta(t, 300, order["TotalPriceSale"], 0.001)
	assert.LessOrEqual(t, order["TotalPriceSale"].(float64), order["TotalPrice"].(float64))
	assert.Equal(t, string(model.OrderStatusPending), order["Status"])
	assert.Len(t, order["OrderProducts"], 1)

	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 8, product.StockQuantity)
}

func TestOrderController_CreateOrderValidation(t *testing.T) {
	f := setupOrderControllerTest(t)
	customer := createUser(t, f.db, "empty@example.com", model.RoleCustomer)
	router := f.routerFor(customer)

	t.Run("Empty cart", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Order", CreateOrderRequest{
			ShippingAddress: "12 Le Loi",
			Phone:           "0901234567",
			PaymentMethod:   model.PaymentMethodCOD,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, apperrors.CartEmpty, decodeBody(t, w)["Error"])
	})

	t.Run("Missing address", func(t *testing.T) {
		w := performRequest(router, http.MethodPost, "/api/Order", map[string]interface{}{
			"Phone":         "0901234567",
			"PaymentMethod": "cod",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Unknown payment method", func(t *testing.T) {
		addItem(t, router, f.product.ID, 1)
		w := performRequest(router, http.MethodPost, "/api/Order", CreateOrderRequest{
			ShippingAddress: "12 Le Loi",
			Phone:           "0901234567",
			PaymentMethod:   "bitcoin",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderController_GetOrder(t *testing.T) {
	f := setupOrderControllerTest(t)
	owner := createUser(t, f.db, "owner@example.com", model.RoleCustomer)
	other := createUser(t, f.db, "other@example.com", model.RoleCustomer)
	staff := createUser(t, f.db, "staff@example.com", model.RoleStaff)

	order := f.placeOrder(t, f.routerFor(owner), 1)
	path := fmt.Sprintf("/api/Order/%d", uint(order["Id"].(float64)))

	w := performRequest(f.routerFor(owner), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(f.routerFor(other), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = performRequest(f.routerFor(staff), http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = performRequest(f.routerFor(owner), http.MethodGet, "/api/Order/9999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(f.routerFor(owner), http.MethodGet, "/api/Order", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["Count"])
}

func TestOrderController_StatusFlow(t *testing.T) {
	f := setupOrderControllerTest(t)
	customer := createUser(t, f.db, "flow@example.com", model.RoleCustomer)
	admin := createUser(t, f.db, "admin@example.com", model.RoleAdmin)

	order := f.placeOrder(t, f.routerFor(customer), 1)
	orderID := uint(order["Id"].(float64))
	statusPath := fmt.Sprintf("/api/Order/%d/status", orderID)

	w := performRequest(f.routerFor(admin), http.MethodPut, statusPath, UpdateOrderStatusRequest{Status: model.OrderStatusDelivered})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(f.routerFor(admin), http.MethodPut, statusPath, UpdateOrderStatusRequest{Status: model.OrderStatusConfirmed})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(model.OrderStatusConfirmed), decodeBody(t, w)["Order"].(map[string]interface{})["Status"])

	// only pending orders can be cancelled by the customer
	w = performRequest(f.routerFor(customer), http.MethodPut, fmt.Sprintf("/api/Order/%d/cancel", orderID), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(f.routerFor(admin), http.MethodGet, "/api/Order/admin?status=confirmed", nil)
	require.Equal(t, http.StatusOK, w.Code)
	page := decodeBody(t, w)
	assert.EqualValues(t, 1, page["Total"])
}

func TestOrderController_CancelRestoresStock(t *testing.T) {
	f := setupOrderControllerTest(t)
	customer := createUser(t, f.db, "cancel@example.com", model.RoleCustomer)
	router := f.routerFor(customer)

	order := f.placeOrder(t, router, 3)
	w := performRequest(router, http.MethodPut, fmt.Sprintf("/api/Order/%d/cancel", uint(order["Id"].(float64))), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, string(model.OrderStatusCancelled), decodeBody(t, w)["Order"].(map[string]interface{})["Status"])

	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 10, product.StockQuantity)
}
