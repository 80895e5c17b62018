package zalopay

import "errors"

var (
	// ErrInvalidConfig is returned when application keys are missing
	ErrInvalidConfig = errors.New("zalopay: invalid configuration")

	// ErrInvalidRequest is returned when the order parameters are invalid
	ErrInvalidRequest = errors.New("zalopay: invalid request parameters")

	// ErrPaymentFailed is returned when ZaloPay rejects the create request
	ErrPaymentFailed = errors.New("zalopay: payment failed")

	// ErrNetworkError is returned when ZaloPay cannot be reached
	ErrNetworkError = errors.New("zalopay: network error")

	// ErrInvalidMAC is returned when a callback or redirect checksum does not match
	ErrInvalidMAC = errors.New("zalopay: invalid mac")
)
