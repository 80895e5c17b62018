package momo

import "errors"

var (
	// ErrInvalidConfig is returned when merchant credentials are missing
	ErrInvalidConfig = errors.New("momo: invalid configuration")

	// ErrInvalidRequest is returned when the request parameters are invalid
	ErrInvalidRequest = errors.New("momo: invalid request parameters")

	// ErrPaymentFailed is returned when MoMo rejects the create request
	ErrPaymentFailed = errors.New("momo: payment failed")

	// ErrNetworkError is returned when MoMo cannot be reached
	ErrNetworkError = errors.New("momo: network error")

	// ErrInvalidSignature is returned when a callback signature does not match
	ErrInvalidSignature = errors.New("momo: invalid signature")
)
