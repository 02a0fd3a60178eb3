package models

import "errors"

var (
	ErrPolicyNotFound          = errors.New("attestation policy not found")
	ErrFunctionNotFound        = errors.New("function definition not found")
	ErrServiceNotEnabled       = errors.New("service not enabled")
	ErrUnknownAction           = errors.New("unknown action")
	ErrInvalidTransition       = errors.New("invalid state transition")
	ErrRecordNotFound          = errors.New("attestation record not found")
	ErrInvalidPropertyURI      = errors.New("invalid property uri")
	ErrPropertyPathNotFound    = errors.New("property path not found")
	ErrMalformedPropertiesUUID = errors.New("malformed propertiesUUID")
	ErrSigningFailed           = errors.New("credential signing failed")
)
