package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lumiskin/skincare-backend/internal/app/model"
	"github.com/lumiskin/skincare-backend/internal/app/service"
	apperrors "github.com/lumiskin/skincare-backend/internal/errors"
	"github.com/lumiskin/skincare-backend/internal/middleware"
	"github.com/lumiskin/skincare-backend/internal/storage"
)

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// Business errors that map to a 4xx response. Anything else is a 500.
var errorMappings = []errorMapping{
	// auth
	{service.ErrEmailAlreadyExists, http.StatusConflict, apperrors.AuthEmailAlreadyExists, "Email is already registered"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, apperrors.AuthInvalidCredentials, "Invalid email or password"},
	{service.ErrAccountDisabled, http.StatusForbidden, apperrors.AuthAccountDisabled, "Account is disabled"},
	{service.ErrSocialLoginFailed, http.StatusUnauthorized, apperrors.AuthOAuthFailed, "Social login failed"},
	{service.ErrSocialLoginDisabled, http.StatusServiceUnavailable, apperrors.AuthOAuthFailed, "Social login is not available"},
	{service.ErrEmailNotVerified, http.StatusUnauthorized, apperrors.AuthOAuthFailed, "Provider email is not verified"},
	{service.ErrWeakPassword, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Password must be at least 8 characters"},
	{service.ErrInvalidRole, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Invalid role"},
	{service.ErrUserNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "User not found"},
	{service.ErrInvalidResetToken, http.StatusBadRequest, apperrors.AuthResetTokenInvalid, "Invalid or expired reset token"},
	{service.ErrResetTokenExpired, http.StatusBadRequest, apperrors.AuthResetTokenInvalid, "Invalid or expired reset token"},
	{service.ErrResetTokenUsed, http.StatusBadRequest, apperrors.AuthResetTokenInvalid, "Invalid or expired reset token"},

	// catalog
	{service.ErrBrandNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Brand not found"},
	{service.ErrCategoryNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Category not found"},
	{service.ErrSkinTypeNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Skin type not found"},
	{service.ErrNameRequired, http.StatusBadRequest, apperrors.ValidationRequired, "Name is required"},
	{service.ErrInvalidScoreRange, http.StatusBadRequest, apperrors.ValidationInvalidRange, "MinScore must not exceed MaxScore"},
	{service.ErrDuplicateBrand, http.StatusConflict, apperrors.ResourceAlreadyExists, "Brand already exists"},
	{service.ErrDuplicateCategory, http.StatusConflict, apperrors.ResourceAlreadyExists, "Category already exists"},
	{service.ErrProductNotFound, http.StatusNotFound, apperrors.ProductNotFound, "Product not found"},
	{service.ErrProductInactive, http.StatusBadRequest, apperrors.ProductInactive, "Product is not available"},
	{service.ErrVariationNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Product variation not found"},
	{service.ErrInsufficientStock, http.StatusBadRequest, apperrors.ProductOutOfStock, "Insufficient stock"},
	{service.ErrInvalidPrice, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Price must be positive and SalePrice must not exceed it"},
	{service.ErrInvalidQuantity, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Quantity must be positive"},

	// promotions
	{service.ErrPromotionNotFound, http.StatusNotFound, apperrors.PromotionNotFound, "Promotion not found"},
	{service.ErrPromotionNotActive, http.StatusBadRequest, apperrors.PromotionNotActive, "Promotion is not active"},
	{service.ErrPromotionUsageExhausted, http.StatusBadRequest, apperrors.PromotionUsageReached, "Promotion usage limit reached"},
	{service.ErrPromotionNotEligible, http.StatusBadRequest, apperrors.PromotionNotEligible, "Promotion does not apply to this order"},
	{service.ErrPromotionBelowMinimum, http.StatusBadRequest, apperrors.PromotionMinOrder, "Order total is below the promotion minimum"},
	{service.ErrInvalidPromotion, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Invalid promotion"},

	// cart and orders
	{service.ErrCartItemNotFound, http.StatusNotFound, apperrors.CartItemNotFound, "Cart item not found"},
	{service.ErrCartEmpty, http.StatusBadRequest, apperrors.CartEmpty, "No selected items in cart"},
	{service.ErrOrderNotFound, http.StatusNotFound, apperrors.OrderNotFound, "Order not found"},
	{service.ErrOrderAccessDenied, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You do not have access to this order"},
	{service.ErrInvalidOrderStatus, http.StatusBadRequest, apperrors.OrderInvalidStatus, "Invalid order status transition"},
	{service.ErrOrderNotCancellable, http.StatusBadRequest, apperrors.OrderInvalidStatus, "Only pending orders can be cancelled"},
	{service.ErrInvalidPaymentMethod, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Invalid payment method"},
	{service.ErrPaymentMethodMismatch, http.StatusBadRequest, apperrors.PaymentMethodMismatch, "Order uses a different payment method"},
	{service.ErrOrderNotPayable, http.StatusBadRequest, apperrors.OrderInvalidStatus, "Order can no longer be paid"},

	// quiz and routines
	{service.ErrQuizNotFound, http.StatusNotFound, apperrors.QuizNotFound, "Quiz not found"},
	{service.ErrQuizInactive, http.StatusBadRequest, apperrors.QuizNotFound, "Quiz is not active"},
	{service.ErrQuestionNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Question not found"},
	{service.ErrAnswerNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Answer not found"},
	{service.ErrInvalidAnswer, http.StatusBadRequest, apperrors.QuizInvalidAnswer, "Answer does not belong to the question"},
	{service.ErrIncompleteAttempt, http.StatusBadRequest, apperrors.QuizInvalidAnswer, "Every question must be answered exactly once"},
	{service.ErrNoMatchingSkinType, http.StatusUnprocessableEntity, apperrors.QuizNoMatchingResult, "No skin type matches this score"},
	{service.ErrAttemptNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Quiz attempt not found"},
	{service.ErrContentRequired, http.StatusBadRequest, apperrors.ValidationRequired, "Content is required"},
	{service.ErrRoutineNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Routine not found"},
	{service.ErrRoutineStepNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Routine step not found"},
	{service.ErrInvalidPeriod, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Period must be morning or evening"},

	// ratings
	{service.ErrRatingNotFound, http.StatusNotFound, apperrors.ResourceNotFound, "Rating not found"},
	{service.ErrRatingOutOfRange, http.StatusBadRequest, apperrors.RatingInvalidScore, "Rating must be between 1 and 5"},
	{service.ErrAlreadyRated, http.StatusConflict, apperrors.RatingAlreadyExists, "You have already rated this product"},
	{service.ErrNotPurchased, http.StatusForbidden, apperrors.RatingNotPurchased, "Only customers with a delivered order can rate this product"},
	{service.ErrRatingAccessDenied, http.StatusForbidden, apperrors.AuthzOwnerOnly, "You can only change your own rating"},

	// payments
	{service.ErrPaymentNotFound, http.StatusNotFound, apperrors.PaymentNotFound, "Payment not found"},
	{service.ErrInvalidPaymentSignature, http.StatusBadRequest, apperrors.PaymentInvalidSignature, "Invalid payment signature"},
	{service.ErrPaymentAmountMismatch, http.StatusBadRequest, apperrors.PaymentAmountMismatch, "Payment amount does not match the order"},
	{service.ErrOrderAlreadyPaid, http.StatusConflict, apperrors.PaymentAlreadyPaid, "Order is already paid"},
	{service.ErrInvalidPaymentAmount, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Invalid payment amount"},
	{service.ErrGatewayUnavailable, http.StatusServiceUnavailable, apperrors.PaymentGatewayError, "Payment gateway is not available"},
	{service.ErrPaymentExpired, http.StatusGone, apperrors.PaymentExpired, "Payment link has expired"},

	// uploads
	{storage.ErrFolderNotAllowed, http.StatusBadRequest, apperrors.ValidationInvalidInput, "Upload folder is not allowed"},
	{storage.ErrContentTypeNotAllowed, http.StatusBadRequest, apperrors.UploadInvalidFileType, "Only JPEG, PNG, GIF and WEBP images are allowed"},
}

func lookupError(err error) (errorMapping, bool) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m, true
		}
	}
	return errorMapping{}, false
}

// respondError writes the response for a failed service call. action names
// the operation for logs and for database error messages.
func respondError(c *gin.Context, err error, action string, fields map[string]interface{}) {
	log := middleware.GetLoggerFromContext(c)
	if m, ok := lookupError(err); ok {
		if fields == nil {
			fields = map[string]interface{}{}
		}
		fields["error"] = err.Error()
		log.Warn("Request rejected: "+action, fields)
		apperrors.RespondWithError(c, m.status, m.code, m.message)
		return
	}
	log.Error("Failed to "+action, err, fields)
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, action)
}

func invalidInput(c *gin.Context, err error) {
	middleware.GetLoggerFromContext(c).Warn("Invalid request body", map[string]interface{}{
		"error": err.Error(),
	})
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid request data")
}

// parseIDParam reads a positive numeric path parameter, answering 400 when it is malformed
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		middleware.GetLoggerFromContext(c).Warn("Invalid ID parameter", map[string]interface{}{
			"param": name,
			"value": raw,
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return 0, false
	}
	return userID, true
}

func currentRole(c *gin.Context) model.UserRole {
	role, ok := middleware.GetUserRole(c)
	if !ok {
		return model.RoleCustomer
	}
	return role
}

func queryUint(c *gin.Context, key string) *uint {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	id := uint(v)
	return &id
}

func queryFloat(c *gin.Context, key string) *float64 {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

// queryDate accepts RFC3339 or YYYY-MM-DD
func queryDate(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
