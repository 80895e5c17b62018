package vnpay

import "errors"

var (
	// ErrInvalidConfig is returned when terminal credentials are missing
	ErrInvalidConfig = errors.New("vnpay: invalid configuration")

	// ErrInvalidRequest is returned when the payment parameters are invalid
	ErrInvalidRequest = errors.New("vnpay: invalid request parameters")

	// ErrInvalidSignature is returned when vnp_SecureHash does not match
	ErrInvalidSignature = errors.New("vnpay: invalid signature")
)
