package handler

import (
	"time"

	"github.com/shinyyama/village-market/internal/model"
)

type UserResponse struct {
	ID              uint64  `json:"id"`
	Name            string  `json:"name"`
	Username        *string `json:"username,omitempty"`
	Role            string  `json:"role"`
	HouseNumber     *string `json:"houseNumber"`
	Address         string  `json:"address"`
	Phone           *string `json:"phone"`
	IsActive        bool    `json:"isActive"`
	ProfileComplete bool    `json:"profileComplete"`
	CreatedAt       string  `json:"createdAt"`
}

func toUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:              u.ID,
		Name:            u.Name,
		Username:        u.Username,
		Role:            string(u.Role),
		HouseNumber:     u.HouseNumber,
		Address:         u.Address,
		Phone:           u.Phone,
		IsActive:        u.IsActive,
		ProfileComplete: u.ProfileComplete,
		CreatedAt:       u.CreatedAt.Format(time.RFC3339),
	}
}

// PartyResponse is the public view of a user embedded in other resources.
type PartyResponse struct {
	ID          uint64  `json:"id"`
	Name        string  `json:"name"`
	HouseNumber *string `json:"houseNumber,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

func toPartyResponse(u *model.User) *PartyResponse {
	if u == nil {
		return nil
	}
	return &PartyResponse{ID: u.ID, Name: u.Name, HouseNumber: u.HouseNumber, Phone: u.Phone}
}

type ShopResponse struct {
	ID          uint64            `json:"id"`
	OwnerID     uint64            `json:"ownerId"`
	Owner       *PartyResponse    `json:"owner,omitempty"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description"`
	HouseNumber string            `json:"houseNumber"`
	LogoURL     *string           `json:"logoUrl"`
	IsActive    bool              `json:"isActive"`
	Products    []ProductResponse `json:"products,omitempty"`
	CreatedAt   string            `json:"createdAt"`
	UpdatedAt   string            `json:"updatedAt"`
}

func toShopResponse(s *model.Shop) ShopResponse {
	resp := ShopResponse{
		ID:          s.ID,
		OwnerID:     s.OwnerID,
		Owner:       toPartyResponse(s.Owner),
		Name:        s.Name,
		Slug:        s.Slug,
		Description: s.Description,
		HouseNumber: s.HouseNumber,
		LogoURL:     s.LogoURL,
		IsActive:    s.IsActive,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   s.UpdatedAt.Format(time.RFC3339),
	}
	for i := range s.Products {
		resp.Products = append(resp.Products, toProductResponse(&s.Products[i]))
	}
	return resp
}

func toShopList(shops []model.Shop) []ShopResponse {
	resp := make([]ShopResponse, 0, len(shops))
	for i := range shops {
		resp = append(resp, toShopResponse(&shops[i]))
	}
	return resp
}

type ShopRef struct {
	ID          uint64 `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	HouseNumber string `json:"houseNumber"`
}

func toShopRef(s *model.Shop) *ShopRef {
	if s == nil {
		return nil
	}
	return &ShopRef{ID: s.ID, Name: s.Name, Slug: s.Slug, HouseNumber: s.HouseNumber}
}

type ProductResponse struct {
	ID          uint64   `json:"id"`
	ShopID      uint64   `json:"shopId"`
	Shop        *ShopRef `json:"shop,omitempty"`
	Name        string   `json:"name"`
	Slug        string   `json:"slug"`
	Description string   `json:"description"`
	Price       string   `json:"price"`
	Stock       int      `json:"stock"`
	Category    *string  `json:"category"`
	IsAvailable bool     `json:"isAvailable"`
	Images      []string `json:"images"`
	CreatedAt   string   `json:"createdAt"`
	UpdatedAt   string   `json:"updatedAt"`
}

func toProductResponse(p *model.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		ShopID:      p.ShopID,
		Shop:        toShopRef(p.Shop),
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price.StringFixed(2),
		Stock:       p.Stock,
		Category:    p.Category,
		IsAvailable: p.IsAvailable,
		Images:      p.ImageURLs(),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toProductList(products []model.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(products))
	for i := range products {
		resp = append(resp, toProductResponse(&products[i]))
	}
	return resp
}

type OrderItemResponse struct {
	ID          uint64        `json:"id"`
	OrderID     uint64        `json:"orderId"`
	ProductID   uint64        `json:"productId"`
	ProductName string        `json:"productName,omitempty"`
	ShopID      uint64        `json:"shopId"`
	Shop        *ShopRef      `json:"shop,omitempty"`
	Quantity    int           `json:"quantity"`
	Price       string        `json:"price"`
	Subtotal    string        `json:"subtotal"`
	Status      string        `json:"status"`
	Notes       *string       `json:"notes"`
	Order       *OrderSummary `json:"order,omitempty"`
	UpdatedAt   string        `json:"updatedAt"`
}

// OrderSummary is the order context attached to vendor item listings.
type OrderSummary struct {
	ID           uint64         `json:"id"`
	HouseNumber  string         `json:"houseNumber"`
	DeliveryTime *string        `json:"deliveryTime"`
	Status       string         `json:"status"`
	Customer     *PartyResponse `json:"customer,omitempty"`
}

func toOrderItemResponse(it *model.OrderItem) OrderItemResponse {
	resp := OrderItemResponse{
		ID:        it.ID,
		OrderID:   it.OrderID,
		ProductID: it.ProductID,
		ShopID:    it.ShopID,
		Shop:      toShopRef(it.Shop),
		Quantity:  it.Quantity,
		Price:     it.Price.StringFixed(2),
		Subtotal:  it.Subtotal().StringFixed(2),
		Status:    string(it.Status),
		Notes:     it.Notes,
		UpdatedAt: it.UpdatedAt.Format(time.RFC3339),
	}
	if it.Product != nil {
		resp.ProductName = it.Product.Name
	}
	if o := it.Order; o != nil {
		resp.Order = &OrderSummary{
			ID:           o.ID,
			HouseNumber:  o.HouseNumber,
			DeliveryTime: formatTime(o.DeliveryTime),
			Status:       string(o.Status),
			Customer:     toPartyResponse(o.Customer),
		}
	}
	return resp
}

type OrderResponse struct {
	ID           uint64               `json:"id"`
	CustomerID   uint64               `json:"customerId"`
	Customer     *PartyResponse       `json:"customer,omitempty"`
	HouseNumber  string               `json:"houseNumber"`
	DeliveryTime *string              `json:"deliveryTime"`
	TotalAmount  string               `json:"totalAmount"`
	Notes        *string              `json:"notes"`
	Status       string               `json:"status"`
	Items        []OrderItemResponse  `json:"items"`
	PaymentSlip  *PaymentSlipResponse `json:"paymentSlip"`
	CreatedAt    string               `json:"createdAt"`
	UpdatedAt    string               `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:           o.ID,
		CustomerID:   o.CustomerID,
		Customer:     toPartyResponse(o.Customer),
		HouseNumber:  o.HouseNumber,
		DeliveryTime: formatTime(o.DeliveryTime),
		TotalAmount:  o.TotalAmount.StringFixed(2),
		Notes:        o.Notes,
		Status:       string(o.Status),
		Items:        make([]OrderItemResponse, 0, len(o.Items)),
		CreatedAt:    o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    o.UpdatedAt.Format(time.RFC3339),
	}
	for i := range o.Items {
		resp.Items = append(resp.Items, toOrderItemResponse(&o.Items[i]))
	}
	if o.PaymentSlip != nil {
		slip := toPaymentSlipResponse(o.PaymentSlip)
		resp.PaymentSlip = &slip
	}
	return resp
}

type PaymentSlipResponse struct {
	ID         uint64        `json:"id"`
	OrderID    uint64        `json:"orderId"`
	Order      *OrderSummary `json:"order,omitempty"`
	ImageURL   string        `json:"imageUrl"`
	Status     string        `json:"status"`
	Notes      *string       `json:"notes"`
	VerifiedBy *uint64       `json:"verifiedBy"`
	VerifiedAt *string       `json:"verifiedAt"`
	CreatedAt  string        `json:"createdAt"`
}

func toPaymentSlipResponse(s *model.PaymentSlip) PaymentSlipResponse {
	resp := PaymentSlipResponse{
		ID:         s.ID,
		OrderID:    s.OrderID,
		ImageURL:   s.ImageURL,
		Status:     string(s.Status),
		Notes:      s.Notes,
		VerifiedBy: s.VerifiedBy,
		VerifiedAt: formatTime(s.VerifiedAt),
		CreatedAt:  s.CreatedAt.Format(time.RFC3339),
	}
	if o := s.Order; o != nil {
		resp.Order = &OrderSummary{
			ID:           o.ID,
			HouseNumber:  o.HouseNumber,
			DeliveryTime: formatTime(o.DeliveryTime),
			Status:       string(o.Status),
			Customer:     toPartyResponse(o.Customer),
		}
	}
	return resp
}

type NotificationResponse struct {
	ID          uint64  `json:"id"`
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Body        string  `json:"body"`
	OrderID     *uint64 `json:"orderId,omitempty"`
	OrderItemID *uint64 `json:"orderItemId,omitempty"`
	Read        bool    `json:"read"`
	CreatedAt   string  `json:"createdAt"`
}

func toNotificationResponse(n model.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Type:        n.Type,
		Title:       n.Title,
		Body:        n.Body,
		OrderID:     n.OrderID,
		OrderItemID: n.OrderItemID,
		Read:        n.ReadAt != nil,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
