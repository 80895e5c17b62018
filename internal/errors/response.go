package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string `json:"Error"`   // code from codes.go
	Message string `json:"Message"` // human readable
}

// PaymentFailure is returned when a gateway checkout cannot be started
type PaymentFailure struct {
	Message string  `json:"Message"`
	Amount  float64 `json:"Amount"`
	OrderID uint    `json:"OrderId"`
}

func RespondWithError(c *gin.Context, statusCode int, errorCode string, message string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   errorCode,
		Message: message,
	})
}

func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, AuthUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "You do not have permission to perform this action"
	}
	RespondWithError(c, http.StatusForbidden, AuthzForbidden, message)
}

func BadRequest(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusBadRequest, errorCode, message)
}

func NotFound(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusNotFound, errorCode, message)
}

func Conflict(c *gin.Context, errorCode string, message string) {
	RespondWithError(c, http.StatusConflict, errorCode, message)
}

func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Something went wrong, please try again later"
	}
	RespondWithError(c, http.StatusInternalServerError, InternalServerError, message)
}

// RespondWithPaymentFailure reports a checkout that could not be started
func RespondWithPaymentFailure(c *gin.Context, statusCode int, message string, amount float64, orderID uint) {
	c.JSON(statusCode, PaymentFailure{
		Message: message,
		Amount:  amount,
		OrderID: orderID,
	})
}

// ValidationError carries per-field messages from request binding
type ValidationError struct {
	Error   string            `json:"Error"`
	Message string            `json:"Message"`
	Fields  map[string]string `json:"Fields,omitempty"`
}

func RespondWithValidationError(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusBadRequest, ValidationError{
		Error:   ValidationInvalidInput,
		Message: "Invalid input",
		Fields:  fields,
	})
}
