package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{
		orderService: orderService,
	}
}

type CreateOrderRequest struct {
	ShippingAddress string              `json:"ShippingAddress" binding:"required"`
	Phone           string              `json:"Phone" binding:"required"`
	Note            string              `json:"Note"`
	PaymentMethod   model.PaymentMethod `json:"PaymentMethod" binding:"required"`
	PromotionCode   string              `json:"PromotionCode"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"Status" binding:"required"`
}

// CreateOrder checks out the selected cart lines
// POST /api/Order
func (ctrl *OrderController) CreateOrder(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	log.Debug("Creating order", map[string]interface{}{
		"user_id":        userID,
		"payment_method": req.PaymentMethod,
		"promotion_code": req.PromotionCode,
	})

	order, err := ctrl.orderService.CreateOrder(userID, service.CreateOrderInput(req))
	if err != nil {
		respondError(c, err, "create order", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	log.Info("Order created", map[string]interface{}{
		"user_id":          userID,
		"order_id":         order.ID,
		"total_price":      order.TotalPrice,
		"total_price_sale": order.TotalPriceSale,
	})

	c.JSON(http.StatusCreated, gin.H{"Order": order})
}

// GetOrders lists the caller's orders
// GET /api/Order
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		respondError(c, err, "list orders", map[string]interface{}{
			"user_id": userID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Orders": orders, "Count": len(orders)})
}

// GetOrder returns an order owned by the caller, or any order for backoffice users
// GET /api/Order/:id
func (ctrl *OrderController) GetOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(orderID, userID, currentRole(c))
	if err != nil {
		respondError(c, err, "get order", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"Order": order})
}

// CancelOrder cancels a pending order and restores stock
// PUT /api/Order/:id/cancel
func (ctrl *OrderController) CancelOrder(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.CancelOrder(userID, orderID)
	if err != nil {
		respondError(c, err, "cancel order", map[string]interface{}{
			"user_id":  userID,
			"order_id": orderID,
		})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Order cancelled by customer", map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
	})

	c.JSON(http.StatusOK, gin.H{"Order": order})
}

// GetAllOrders lists every order for the backoffice
// GET /api/Order/admin?status=&paymentMethod=&userId=&from=&to=&page=&pageSize=
func (ctrl *OrderController) GetAllOrders(c *gin.Context) {
	from, err := queryDate(c, "from")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid from date")
		return
	}
	to, err := queryDate(c, "to")
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid to date")
		return
	}

	page, err := ctrl.orderService.GetAllOrders(service.OrderListOptions{
		UserID:        queryUint(c, "userId"),
		Status:        model.OrderStatus(c.Query("status")),
		PaymentMethod: model.PaymentMethod(c.Query("paymentMethod")),
		From:          from,
		To:            to,
		Page:          queryInt(c, "page", 1),
		PageSize:      queryInt(c, "pageSize", service.DefaultPageSize),
	})
	if err != nil {
		respondError(c, err, "list all orders", nil)
		return
	}

	c.JSON(http.StatusOK, page)
}

// UpdateOrderStatus moves an order through its lifecycle
// PUT /api/Order/:id/status
func (ctrl *OrderController) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return
	}

	order, err := ctrl.orderService.UpdateOrderStatus(orderID, req.Status)
	if err != nil {
		respondError(c, err, "update order status", map[string]interface{}{
			"order_id": orderID,
			"status":   req.Status,
		})
		return
	}

	middleware.GetLoggerFromContext(c).Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"status":   order.Status,
	})

	c.JSON(http.StatusOK, gin.H{"Order": order})
}
