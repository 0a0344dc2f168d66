package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")
	ErrStoreTimeout   = errors.New("store call timed out")

	ErrInvalidToken = errors.New("invalid token")

	// synthesis specific errors
	ErrSynthesisFailed    = errors.New("synthesis failed")
	ErrSynthesisTimeout   = errors.New("synthesis timed out")
	ErrMalformedSynthesis = errors.New("malformed synthesis response")

	// flow specific errors
	ErrInvalidTransition = errors.New("invalid flow transition")
)
