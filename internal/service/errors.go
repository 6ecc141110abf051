package service

import (
	"errors"

	"github.com/shinyyama/village-market/internal/authz"
)

var (
	ErrAuthenticationRequired = authz.ErrAuthenticationRequired
	ErrForbidden              = authz.ErrForbidden
	ErrProfileIncomplete      = errors.New("profile incomplete")
	ErrValidation             = errors.New("validation failed")
	ErrNotFound               = errors.New("not found")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrConflict               = errors.New("conflict")
	ErrStorageDisabled        = errors.New("storage disabled")

	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product unavailable")
	ErrShopMismatch       = errors.New("shop mismatch")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrDeliveryWindow     = errors.New("delivery time outside allowed window")

	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrDuplicatePaymentSlip = errors.New("payment slip already exists")
	ErrSlipNotPending       = errors.New("payment slip already processed")
)

// FieldError carries per-field validation messages alongside ErrValidation.
type FieldError struct {
	Fields map[string]string
}

func (e *FieldError) Error() string {
	return ErrValidation.Error()
}

func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func invalid(field, msg string) error {
	return &FieldError{Fields: map[string]string{field: msg}}
}
