package controller

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/repository"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func setupDashboardControllerTest(t *testing.T) *gin.Engine {
	testDB := setupControllerTestDB(t)

	dashboardService := service.NewDashboardService(
		repository.NewOrderRepository(testDB),
		repository.NewUserRepository(testDB),
	)
	ctrl := NewDashboardController(dashboardService)

	customer := createUser(t, testDB, "dash@example.com", model.RoleCustomer)
	createUser(t, testDB, "staff@example.com", model.RoleStaff)
	require.NoError(t, testDB.Create(&model.Order{
		UserID:         customer.ID,
		TotalPrice:     500,
		TotalPriceSale: 450,
		Status:         model.OrderStatusDelivered,
		PaymentMethod:  model.PaymentMethodCOD,
		PaymentStatus:  model.PaymentStatusCompleted,
		IsPaid:         true,
	}).Error)

	router := gin.New()
	router.GET("/api/Dashboard/summary", ctrl.GetSummary)
	router.GET("/api/Dashboard/orders/export", ctrl.ExportOrders)
	return router
}

func TestDashboardController_GetSummary(t *testing.T) {
	router := setupDashboardControllerTest(t)

	w := performRequest(router, http.MethodGet, "/api/Dashboard/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	summary := decodeBody(t, w)
	assert.InDelta(t, 450, summary["Revenue"], 0.001)
	assert.EqualValues(t, 1, summary["OrderCount"])
	assert.EqualValues(t, 1, summary["CustomerCount"])
}

func TestDashboardController_DateRange(t *testing.T) {
	router := setupDashboardControllerTest(t)

	w := performRequest(router, http.MethodGet, "/api/Dashboard/summary?from=2026-02-01&to=2026-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/Dashboard/summary?from=yesterday", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(router, http.MethodGet, "/api/Dashboard/summary?from=2000-01-01&to=2000-01-31", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeBody(t, w)["OrderCount"])
}

func TestDashboardController_ExportOrders(t *testing.T) {
	router := setupDashboardControllerTest(t)

	w := performRequest(router, http.MethodGet, "/api/Dashboard/orders/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	workbook, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Orders")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
