package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/identity"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/service"
)

type errorPayload struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error errorPayload `json:"error"`
}

func NewErrorResponse(code, message string) ErrorResponse {
	return ErrorResponse{
		Error: errorPayload{
			Code:    code,
			Message: message,
		},
	}
}

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first errors.Is match wins.
var errorMappings = []errorMapping{
	{service.ErrAuthenticationRequired, http.StatusUnauthorized, "unauthorized"},
	{service.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
	{identity.ErrInvalidIdentity, http.StatusUnauthorized, "invalid_identity"},
	{service.ErrProfileIncomplete, http.StatusForbidden, "profile_incomplete"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrValidation, http.StatusBadRequest, "validation_error"},
	{service.ErrProductNotFound, http.StatusBadRequest, "product_not_found"},
	{service.ErrProductUnavailable, http.StatusBadRequest, "product_unavailable"},
	{service.ErrShopMismatch, http.StatusBadRequest, "shop_mismatch"},
	{service.ErrDeliveryWindow, http.StatusBadRequest, "invalid_delivery_time"},
	{service.ErrInsufficientStock, http.StatusBadRequest, "insufficient_stock"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrDuplicatePaymentSlip, http.StatusConflict, "duplicate_payment_slip"},
	{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
	{service.ErrSlipNotPending, http.StatusConflict, "slip_not_pending"},
	{service.ErrConflict, http.StatusConflict, "conflict"},
	{service.ErrStorageDisabled, http.StatusServiceUnavailable, "storage_disabled"},
}

// writeError renders a service error with the status of its kind. Unknown
// errors are logged and returned as internal_error.
func writeError(c echo.Context, err error) error {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		resp := NewErrorResponse(m.code, err.Error())
		var fe *service.FieldError
		if errors.As(err, &fe) {
			resp.Error.Details = fe.Fields
		}
		return c.JSON(m.status, resp)
	}
	log.Printf("[http] rid=%s method=%s path=%s err=%v",
		reqctx.RID(c.Request().Context()), c.Request().Method, c.Path(), err)
	return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", err.Error()))
}

func badRequest(c echo.Context, message string) error {
	return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", message))
}

// ErrorHandler renders errors that escape handlers, such as echo's own 404 and
// 405, in the same body shape as writeError.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if s, ok := he.Message.(string); ok {
			msg = s
		}
		code := "http_" + strconv.Itoa(he.Code)
		switch he.Code {
		case http.StatusNotFound:
			code = "not_found"
		case http.StatusMethodNotAllowed:
			code = "method_not_allowed"
		case http.StatusRequestEntityTooLarge:
			code = "payload_too_large"
		}
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, NewErrorResponse(code, msg))
		}
		if err != nil {
			log.Printf("[http] rid=%s write error response err=%v", reqctx.RID(c.Request().Context()), err)
		}
		return
	}
	if werr := writeError(c, err); werr != nil {
		log.Printf("[http] rid=%s write error response err=%v", reqctx.RID(c.Request().Context()), werr)
	}
}

func principal(c echo.Context) *authz.Principal {
	return reqctx.Principal(c.Request().Context())
}

func parseID(c echo.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func strPtrOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
