package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	adminOrderListLimit = 50
	minDeliveryLead     = 2 * time.Hour
	businessOpenHour    = 9
	businessCloseHour   = 18
)

// BusinessZone is the fixed UTC+7 zone in which delivery hours are judged.
var BusinessZone = time.FixedZone("UTC+7", 7*60*60)

type OrderItemInput struct {
	ProductID uint64
	ShopID    uint64
	Quantity  int
	Price     decimal.Decimal
}

type PlaceOrderInput struct {
	Items        []OrderItemInput
	DeliveryTime *time.Time
	Notes        string
	TotalAmount  decimal.Decimal
}

type OrderQuery struct {
	CustomerID  uint64
	HouseNumber string
}

type OrderService interface {
	PlaceOrder(ctx context.Context, p *authz.Principal, in PlaceOrderInput) (*model.Order, error)
	ListOrders(ctx context.Context, p *authz.Principal, q OrderQuery) ([]model.Order, error)
	GetOrder(ctx context.Context, p *authz.Principal, id uint64) (*model.Order, error)
	ListVendorItems(ctx context.Context, p *authz.Principal, status model.ItemStatus) ([]model.OrderItem, error)
}

type orderService struct {
	db       *gorm.DB
	users    repository.UserRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	notify   NotificationService
	now      func() time.Time
}

func NewOrderService(db *gorm.DB, users repository.UserRepository, products repository.ProductRepository, orders repository.OrderRepository, notify NotificationService) OrderService {
	return &orderService{db: db, users: users, products: products, orders: orders, notify: notify, now: time.Now}
}

// CheckDeliveryWindow accepts t only if it is at least two hours after now and
// its UTC+7 clock time lies in [09:00, 18:00].
func CheckDeliveryWindow(now, t time.Time) error {
	if t.Before(now.Add(minDeliveryLead)) {
		return fmt.Errorf("%w: must be at least 2 hours from now", ErrDeliveryWindow)
	}
	local := t.In(BusinessZone)
	h := local.Hour()
	atClose := h == businessCloseHour && local.Minute() == 0 && local.Second() == 0 && local.Nanosecond() == 0
	if h < businessOpenHour || (h >= businessCloseHour && !atClose) {
		return fmt.Errorf("%w: must be between 09:00 and 18:00", ErrDeliveryWindow)
	}
	return nil
}

func validateOrderShape(in PlaceOrderInput) error {
	if len(in.Items) == 0 {
		return invalid("items", "must not be empty")
	}
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		switch {
		case it.ProductID == 0:
			return invalid(field+".productId", "is required")
		case it.ShopID == 0:
			return invalid(field+".shopId", "is required")
		case it.Quantity < 1:
			return invalid(field+".quantity", "must be at least 1")
		case it.Price.IsNegative():
			return invalid(field+".price", "must not be negative")
		}
	}
	if in.TotalAmount.IsNegative() {
		return invalid("totalAmount", "must not be negative")
	}
	return nil
}

// PlaceOrder checks its preconditions in a fixed order, each with its own error,
// and then writes the order, its items and the stock decrements in one transaction.
func (s *orderService) PlaceOrder(ctx context.Context, p *authz.Principal, in PlaceOrderInput) (*model.Order, error) {
	rid := reqctx.RID(ctx)
	if p == nil {
		return nil, ErrAuthenticationRequired
	}
	if !p.ProfileComplete {
		return nil, ErrProfileIncomplete
	}
	if err := authz.Authorize(p, authz.PlaceOrder); err != nil {
		return nil, err
	}
	customer, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrAuthenticationRequired
		}
		return nil, err
	}
	if !customer.IsActive {
		return nil, fmt.Errorf("%w: account disabled", ErrForbidden)
	}
	if !customer.CanOrder() {
		return nil, ErrProfileIncomplete
	}

	if err := validateOrderShape(in); err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, len(in.Items))
	for _, it := range in.Items {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	wanted := map[uint64]int{}
	computed := decimal.Zero
	for _, it := range in.Items {
		prod, ok := products[it.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %d", ErrProductNotFound, it.ProductID)
		}
		if !prod.IsAvailable || prod.Shop == nil || !prod.Shop.IsActive {
			return nil, fmt.Errorf("%w: %s", ErrProductUnavailable, prod.Name)
		}
		if it.ShopID != prod.ShopID {
			return nil, fmt.Errorf("%w: product %d belongs to shop %d", ErrShopMismatch, prod.ID, prod.ShopID)
		}
		wanted[prod.ID] += it.Quantity
		if wanted[prod.ID] > prod.Stock {
			return nil, fmt.Errorf("%w: %s has %d left", ErrInsufficientStock, prod.Name, prod.Stock)
		}
		computed = computed.Add(prod.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	if in.DeliveryTime != nil {
		if err := CheckDeliveryWindow(s.now(), *in.DeliveryTime); err != nil {
			return nil, err
		}
	}
	if !computed.Equal(in.TotalAmount) {
		log.Printf("[order] rid=%s stage=total_mismatch customer=%d supplied=%s computed=%s",
			rid, customer.ID, in.TotalAmount.StringFixed(2), computed.StringFixed(2))
	}

	order := &model.Order{
		CustomerID:  customer.ID,
		HouseNumber: *customer.HouseNumber,
		TotalAmount: in.TotalAmount.Round(2),
		Notes:       optional(in.Notes),
		Status:      model.OrderStatusPending,
	}
	if in.DeliveryTime != nil {
		dt := in.DeliveryTime.UTC()
		order.DeliveryTime = &dt
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		stock := s.products.WithTx(tx)
		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		for _, it := range in.Items {
			prod := products[it.ProductID]
			item := &model.OrderItem{
				OrderID:   order.ID,
				ProductID: prod.ID,
				ShopID:    prod.ShopID,
				Quantity:  it.Quantity,
				Price:     prod.Price,
				Status:    model.ItemStatusPending,
			}
			if err := orders.CreateItem(ctx, item); err != nil {
				return err
			}
			n, err := stock.DecrementStock(ctx, prod.ID, it.Quantity)
			if err != nil {
				return err
			}
			if n == 0 {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, prod.Name)
			}
		}
		return nil
	})
	if err != nil {
		log.Printf("[order] rid=%s stage=tx_fail customer=%d err=%v", rid, customer.ID, err)
		return nil, err
	}
	log.Printf("[order] rid=%s stage=placed order=%d customer=%d items=%d total=%s",
		rid, order.ID, customer.ID, len(in.Items), order.TotalAmount.StringFixed(2))

	notified := map[uint64]bool{}
	for _, it := range in.Items {
		owner := products[it.ProductID].Shop.OwnerID
		if notified[owner] {
			continue
		}
		notified[owner] = true
		s.notify.Notify(ctx, owner, model.NotificationOrderPlaced,
			"New order",
			fmt.Sprintf("Order #%d from house %s", order.ID, order.HouseNumber),
			u64(order.ID), nil)
	}

	created, err := s.orders.FindByID(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *orderService) ListOrders(ctx context.Context, p *authz.Principal, q OrderQuery) ([]model.Order, error) {
	q.HouseNumber = strings.TrimSpace(q.HouseNumber)
	if p.Can(authz.ViewAllOrders) {
		f := repository.OrderFilter{CustomerID: q.CustomerID, HouseNumber: q.HouseNumber}
		if f.CustomerID == 0 && f.HouseNumber == "" {
			f.Limit = adminOrderListLimit
		}
		return s.orders.List(ctx, f)
	}
	if err := authz.Authorize(p, authz.ViewOwnOrders); err != nil {
		return nil, err
	}
	if q.CustomerID != 0 && q.CustomerID != p.UserID {
		return nil, fmt.Errorf("%w: not your orders", ErrForbidden)
	}
	f := repository.OrderFilter{CustomerID: p.UserID}
	if q.HouseNumber != "" {
		u, err := s.users.FindByID(ctx, p.UserID)
		if err != nil {
			return nil, err
		}
		if u.HouseNumber == nil || *u.HouseNumber != q.HouseNumber {
			return nil, fmt.Errorf("%w: not your house", ErrForbidden)
		}
		f = repository.OrderFilter{HouseNumber: q.HouseNumber}
		if q.CustomerID != 0 {
			f.CustomerID = p.UserID
		}
	}
	return s.orders.List(ctx, f)
}

// GetOrder is visible to its customer, admins, and vendors owning any of its items.
func (s *orderService) GetOrder(ctx context.Context, p *authz.Principal, id uint64) (*model.Order, error) {
	if p == nil {
		return nil, ErrAuthenticationRequired
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if p.IsAdmin() || o.CustomerID == p.UserID {
		return o, nil
	}
	if p.Can(authz.FulfillOrders) {
		for _, it := range o.Items {
			if it.Shop != nil && it.Shop.OwnerID == p.UserID {
				return o, nil
			}
		}
	}
	return nil, ErrForbidden
}

func (s *orderService) ListVendorItems(ctx context.Context, p *authz.Principal, status model.ItemStatus) ([]model.OrderItem, error) {
	if err := authz.Authorize(p, authz.FulfillOrders); err != nil {
		return nil, err
	}
	if status != "" && !status.Valid() {
		return nil, invalid("status", "unknown status")
	}
	f := repository.VendorItemFilter{Status: status}
	if !p.IsAdmin() {
		f.OwnerID = p.UserID
	}
	return s.orders.ListVendorItems(ctx, f)
}
