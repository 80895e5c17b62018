package controller

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/internal/middleware"
	"github.com/lumiskin/skincare-backend/pkg/payment/momo"
	"github.com/lumiskin/skincare-backend/pkg/payment/vnpay"
	"github.com/lumiskin/skincare-backend/pkg/payment/zalopay"
)

// PaymentController serves checkout and gateway callbacks for Momo, VNPay and ZaloPay
type PaymentController struct {
	momoService    service.MomoService
	vnpayService   service.VnpayService
	zaloPayService service.ZaloPayService
	orderService   service.OrderService
	// browser returns land here; empty answers with JSON instead
	resultURL string
}

func NewPaymentController(
	momoService service.MomoService,
	vnpayService service.VnpayService,
	zaloPayService service.ZaloPayService,
	orderService service.OrderService,
	resultURL string,
) *PaymentController {
	return &PaymentController{
		momoService:    momoService,
		vnpayService:   vnpayService,
		zaloPayService: zaloPayService,
		orderService:   orderService,
		resultURL:      resultURL,
	}
}

type CreatePaymentRequest struct {
	OrderID uint `json:"OrderId" binding:"required"`
}

// respondPaymentFailure answers a checkout that could not be started with the
// error message and the amount the order would have charged
func (ctrl *PaymentController) respondPaymentFailure(c *gin.Context, err error, userID, orderID uint) {
	log := middleware.GetLoggerFromContext(c)

	status := http.StatusInternalServerError
	message := "Failed to create payment"
	if m, ok := lookupError(err); ok {
		status = m.status
		message = m.message
	} else if errors.Is(err, momo.ErrPaymentFailed) || errors.Is(err, momo.ErrNetworkError) ||
		errors.Is(err, zalopay.ErrPaymentFailed) || errors.Is(err, zalopay.ErrNetworkError) {
		status = http.StatusBadGateway
		message = "Payment gateway rejected the request"
	}

	var amount float64
	if order, oerr := ctrl.orderService.GetOrderByID(orderID, userID, currentRole(c)); oerr == nil {
		amount = order.TotalPriceSale
	}

	fields := map[string]interface{}{
		"user_id":  userID,
		"order_id": orderID,
		"status":   status,
	}
	if status >= http.StatusInternalServerError {
		log.Error("Payment creation failed", err, fields)
	} else {
		fields["error"] = err.Error()
		log.Warn("Payment creation rejected", fields)
	}

	apperrors.RespondWithPaymentFailure(c, status, message, amount, orderID)
}

// respondResult redirects a browser return to the storefront result page, or
// answers with JSON when no result page is configured
func (ctrl *PaymentController) respondResult(c *gin.Context, result *service.PaymentResult) {
	if ctrl.resultURL == "" {
		c.JSON(http.StatusOK, gin.H{"Payment": result})
		return
	}
	q := url.Values{}
	q.Set("orderId", fmt.Sprintf("%d", result.OrderID))
	q.Set("method", string(result.Method))
	q.Set("paid", fmt.Sprintf("%t", result.IsPaid))
	sep := "?"
	if strings.Contains(ctrl.resultURL, "?") {
		sep = "&"
	}
	c.Redirect(http.StatusFound, ctrl.resultURL+sep+q.Encode())
}

func (ctrl *PaymentController) bindOrder(c *gin.Context) (userID, orderID uint, ok bool) {
	userID, ok = requireUser(c)
	if !ok {
		return 0, 0, false
	}
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidInput(c, err)
		return 0, 0, false
	}
	return userID, req.OrderID, true
}

// CreateMomoPayment starts a Momo checkout
// POST /api/Momo/create
func (ctrl *PaymentController) CreateMomoPayment(c *gin.Context) {
	userID, orderID, ok := ctrl.bindOrder(c)
	if !ok {
		return
	}

	link, err := ctrl.momoService.CreatePayment(c.Request.Context(), userID, orderID)
	if err != nil {
		ctrl.respondPaymentFailure(c, err, userID, orderID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"Payment": link})
}

// MomoIPN receives the Momo server notification. Momo expects 204 on success.
// POST /api/Momo/ipn
func (ctrl *PaymentController) MomoIPN(c *gin.Context) {
	var n momo.Notification
	if err := c.ShouldBindJSON(&n); err != nil {
		invalidInput(c, err)
		return
	}

	if _, err := ctrl.momoService.HandleIPN(&n); err != nil {
		respondError(c, err, "process momo notification", map[string]interface{}{
			"momo_order_id": n.OrderID,
		})
		return
	}

	c.Status(http.StatusNoContent)
}

// MomoReturn handles the customer returning from Momo
// GET /api/Momo/return
func (ctrl *PaymentController) MomoReturn(c *gin.Context) {
	result, err := ctrl.momoService.HandleReturn(c.Request.URL.Query())
	if err != nil {
		respondError(c, err, "process momo return", nil)
		return
	}
	ctrl.respondResult(c, result)
}

// CreateVnpayPayment returns a signed VNPay checkout URL
// POST /api/Vnpay/create
func (ctrl *PaymentController) CreateVnpayPayment(c *gin.Context) {
	userID, orderID, ok := ctrl.bindOrder(c)
	if !ok {
		return
	}

	link, err := ctrl.vnpayService.CreatePaymentURL(userID, orderID, c.ClientIP())
	if err != nil {
		ctrl.respondPaymentFailure(c, err, userID, orderID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"Payment": link})
}

// VnpayReturn handles the customer returning from VNPay
// GET /api/Vnpay/return
func (ctrl *PaymentController) VnpayReturn(c *gin.Context) {
	result, err := ctrl.vnpayService.HandleReturn(c.Request.URL.Query())
	if err != nil {
		respondError(c, err, "process vnpay return", map[string]interface{}{
			"txn_ref": c.Query("vnp_TxnRef"),
		})
		return
	}
	ctrl.respondResult(c, result)
}

// VnpayIPN always answers 200 with a VNPay RspCode
// GET /api/Vnpay/ipn
func (ctrl *PaymentController) VnpayIPN(c *gin.Context) {
	resp := ctrl.vnpayService.HandleIPN(c.Request.URL.Query())
	if resp.RspCode != vnpay.IPNConfirmed {
		middleware.GetLoggerFromContext(c).Warn("VNPay IPN not applied", map[string]interface{}{
			"txn_ref":  c.Query("vnp_TxnRef"),
			"rsp_code": resp.RspCode,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// CreateZaloPayOrder starts a ZaloPay checkout
// POST /api/ZaloPay/create
func (ctrl *PaymentController) CreateZaloPayOrder(c *gin.Context) {
	userID, orderID, ok := ctrl.bindOrder(c)
	if !ok {
		return
	}

	link, err := ctrl.zaloPayService.CreateOrder(c.Request.Context(), userID, orderID)
	if err != nil {
		ctrl.respondPaymentFailure(c, err, userID, orderID)
		return
	}

	c.JSON(http.StatusOK, gin.H{"Payment": link})
}

// ZaloPayCallback answers with return_code 1 when applied, -1 for a bad mac
// and 2 for anything ZaloPay should retry
// POST /api/ZaloPay/callback
func (ctrl *PaymentController) ZaloPayCallback(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var cb zalopay.Callback
	if err := c.ShouldBindJSON(&cb); err != nil {
		log.Warn("Invalid ZaloPay callback body", map[string]interface{}{
			"error": err.Error(),
		})
		c.JSON(http.StatusOK, zalopay.CallbackResponse{ReturnCode: -1, ReturnMessage: "invalid body"})
		return
	}

	_, err := ctrl.zaloPayService.HandleCallback(cb.Data, cb.MAC)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, zalopay.CallbackResponse{ReturnCode: zalopay.ReturnSuccess, ReturnMessage: "success"})
	case errors.Is(err, service.ErrInvalidPaymentSignature):
		c.JSON(http.StatusOK, zalopay.CallbackResponse{ReturnCode: -1, ReturnMessage: "mac not equal"})
	default:
		log.Error("Failed to process ZaloPay callback", err, nil)
		c.JSON(http.StatusOK, zalopay.CallbackResponse{ReturnCode: 2, ReturnMessage: err.Error()})
	}
}

// ZaloPayRedirect handles the customer returning from ZaloPay
// GET /api/ZaloPay/redirect
func (ctrl *PaymentController) ZaloPayRedirect(c *gin.Context) {
	result, err := ctrl.zaloPayService.HandleRedirect(c.Request.URL.Query())
	if err != nil {
		respondError(c, err, "process zalopay redirect", map[string]interface{}{
			"app_trans_id": c.Query("apptransid"),
		})
		return
	}
	ctrl.respondResult(c, result)
}
