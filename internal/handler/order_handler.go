package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/service"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	orders      service.OrderService
	fulfillment service.FulfillmentService
}

func NewOrderHandler(orders service.OrderService, fulfillment service.FulfillmentService) *OrderHandler {
	return &OrderHandler{orders: orders, fulfillment: fulfillment}
}

type orderItemRequest struct {
	ProductID uint64          `json:"productId"`
	ShopID    uint64          `json:"shopId"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type placeOrderRequest struct {
	DeliveryTime *string            `json:"deliveryTime"`
	Notes        string             `json:"notes"`
	Items        []orderItemRequest `json:"items"`
	TotalAmount  decimal.Decimal    `json:"totalAmount"`
}

func (h *OrderHandler) Place(c echo.Context) error {
	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	in := service.PlaceOrderInput{
		Notes:       req.Notes,
		TotalAmount: req.TotalAmount,
		Items:       make([]service.OrderItemInput, 0, len(req.Items)),
	}
	if req.DeliveryTime != nil && *req.DeliveryTime != "" {
		t, err := time.Parse(time.RFC3339, *req.DeliveryTime)
		if err != nil {
			return writeError(c, &service.FieldError{Fields: map[string]string{"deliveryTime": "must be RFC3339"}})
		}
		in.DeliveryTime = &t
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.OrderItemInput{
			ProductID: it.ProductID,
			ShopID:    it.ShopID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		})
	}
	order, err := h.orders.PlaceOrder(c.Request().Context(), principal(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h *OrderHandler) List(c echo.Context) error {
	var q service.OrderQuery
	if v := c.QueryParam("customerId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return badRequest(c, "invalid customerId")
		}
		q.CustomerID = id
	}
	q.HouseNumber = c.QueryParam("houseNumber")
	list, err := h.orders.ListOrders(c.Request().Context(), principal(c), q)
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]OrderResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"orders": resp})
}

func (h *OrderHandler) Get(c echo.Context) error {
	id, ok := parseID(c, "orderId")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	order, err := h.orders.GetOrder(c.Request().Context(), principal(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h *OrderHandler) UpdateItemStatus(c echo.Context) error {
	orderID, ok := parseID(c, "orderId")
	if !ok {
		return badRequest(c, "invalid order id")
	}
	itemID, ok := parseID(c, "itemId")
	if !ok {
		return badRequest(c, "invalid item id")
	}
	var req struct {
		Status string  `json:"status"`
		Notes  *string `json:"notes"`
	}
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid json")
	}
	item, err := h.fulfillment.UpdateItemStatus(c.Request().Context(), principal(c), orderID, itemID, model.ItemStatus(req.Status), req.Notes)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderItemResponse(item))
}

func (h *OrderHandler) ListVendorItems(c echo.Context) error {
	items, err := h.orders.ListVendorItems(c.Request().Context(), principal(c), model.ItemStatus(c.QueryParam("status")))
	if err != nil {
		return writeError(c, err)
	}
	resp := make([]OrderItemResponse, 0, len(items))
	for i := range items {
		resp = append(resp, toOrderItemResponse(&items[i]))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"items": resp})
}
