package errors

// Error codes returned in ErrorResponse.Error.
// Format: CATEGORY_SPECIFIC_DETAIL. The storefront maps these to localized text.

const (
	// Authentication
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS"
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthAccountDisabled    = "AUTH_ACCOUNT_DISABLED"
	AuthOAuthFailed        = "AUTH_OAUTH_FAILED"
	AuthResetTokenInvalid  = "AUTH_RESET_TOKEN_INVALID"

	// Authorization
	AuthzForbidden = "AUTHZ_FORBIDDEN"
	AuthzOwnerOnly = "AUTHZ_OWNER_ONLY"

	// Validation
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationInvalidRange = "VALIDATION_INVALID_RANGE"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// Resources
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// Catalog and cart
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	ProductOutOfStock   = "PRODUCT_OUT_OF_STOCK"
	ProductInactive     = "PRODUCT_INACTIVE"
	CartItemNotFound    = "CART_ITEM_NOT_FOUND"
	CartEmpty           = "CART_EMPTY"
	OrderNotFound       = "ORDER_NOT_FOUND"
	OrderInvalidStatus  = "ORDER_INVALID_STATUS"
	RatingAlreadyExists = "RATING_ALREADY_EXISTS"
	RatingNotPurchased  = "RATING_NOT_PURCHASED"
	RatingInvalidScore  = "RATING_INVALID_SCORE"

	// Promotions
	PromotionNotFound     = "PROMOTION_NOT_FOUND"
	PromotionNotActive    = "PROMOTION_NOT_ACTIVE"
	PromotionNotEligible  = "PROMOTION_NOT_ELIGIBLE"
	PromotionUsageReached = "PROMOTION_USAGE_LIMIT_REACHED"
	PromotionMinOrder     = "PROMOTION_MIN_ORDER_NOT_MET"

	// Quiz
	QuizNotFound         = "QUIZ_NOT_FOUND"
	QuizInvalidAnswer    = "QUIZ_INVALID_ANSWER"
	QuizNoMatchingResult = "QUIZ_NO_MATCHING_SKIN_TYPE"

	// Payments
	PaymentInvalidSignature = "PAYMENT_INVALID_SIGNATURE"
	PaymentAmountMismatch   = "PAYMENT_AMOUNT_MISMATCH"
	PaymentGatewayError     = "PAYMENT_GATEWAY_ERROR"
	PaymentNotFound         = "PAYMENT_NOT_FOUND"
	PaymentAlreadyPaid      = "PAYMENT_ALREADY_PAID"
	PaymentMethodMismatch   = "PAYMENT_METHOD_MISMATCH"
	PaymentExpired          = "PAYMENT_EXPIRED"

	// Uploads
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFailed          = "UPLOAD_FAILED"

	// Internal
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
