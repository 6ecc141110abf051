package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/service"
)

type PaymentSlipHandler struct {
	svc service.PaymentSlipService
}

func NewPaymentSlipHandler(svc service.PaymentSlipService) *PaymentSlipHandler {
	return &PaymentSlipHandler{svc: svc}
}

// Create accepts either a JSON body referencing an already uploaded image or a
// multipart form carrying the slip photo itself.
func (h *PaymentSlipHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		orderID, err := strconv.ParseUint(c.FormValue("orderId"), 10, 64)
		if err != nil || orderID == 0 {
			return badRequest(c, "invalid orderId")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return badRequest(c, "file is required")
		}
		data, err := readFormFile(fh)
		if err != nil {
			return badRequest(c, "failed to read file")
		}
		slip, err := h.svc.UploadImage(ctx, principal(c), orderID, data, strPtrOrNil(c.FormValue("notes")))
		if err != nil {
			return writeError(c, err)
		}
		return c.JSON(http.StatusCreated, toPaymentSlipResponse(slip))
	}

	var req struct {
		OrderID  uint64  `json:"orderId"`
		ImageURL string  `json:"imageUrl"`
		Notes    *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	if req.OrderID == 0 {
		return badRequest(c, "orderId is required")
	}
	slip, err := h.svc.Upload(ctx, principal(c), req.OrderID, req.ImageURL, req.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toPaymentSlipResponse(slip))
}

func (h *PaymentSlipHandler) Verify(c echo.Context) error {
	var req struct {
		PaymentSlipID uint64  `json:"paymentSlipId"`
		Status        string  `json:"status"`
		Notes         *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	if req.PaymentSlipID == 0 {
		return badRequest(c, "paymentSlipId is required")
	}
	slip, err := h.svc.Verify(c.Request().Context(), principal(c), req.PaymentSlipID, model.SlipStatus(req.Status), req.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentSlipResponse(slip))
}

func (h *PaymentSlipHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context(), principal(c), model.SlipStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]PaymentSlipResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toPaymentSlipResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"paymentSlips": resp})
}

func (h *PaymentSlipHandler) GetByOrder(c echo.Context) error {
	orderID, ok := parseID(c, "orderId")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	slip, err := h.svc.GetByOrder(c.Request().Context(), principal(c), orderID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentSlipResponse(slip))
}
