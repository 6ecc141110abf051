package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/repository"
	"gorm.io/gorm"
)

var itemTransitions = map[model.ItemStatus][]model.ItemStatus{
	model.ItemStatusPending:   {model.ItemStatusConfirmed, model.ItemStatusCancelled},
	model.ItemStatusConfirmed: {model.ItemStatusPreparing},
	model.ItemStatusPreparing: {model.ItemStatusReady},
	model.ItemStatusReady:     {model.ItemStatusDelivered},
}

func CanTransition(from, to model.ItemStatus) bool {
	for _, next := range itemTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DeriveOrderStatus recomputes the order status after one item moved to
// transitioned. Once every item is DELIVERED or CANCELLED the order is
// DELIVERED, which also holds when all items were cancelled. The first
// confirmed item lifts a PENDING order to CONFIRMED. Nothing else changes it.
func DeriveOrderStatus(current model.OrderStatus, items []model.OrderItem, transitioned model.ItemStatus) model.OrderStatus {
	if len(items) > 0 {
		done := true
		for _, it := range items {
			if !it.Status.Terminal() {
				done = false
				break
			}
		}
		if done {
			return model.OrderStatusDelivered
		}
	}
	if transitioned == model.ItemStatusConfirmed && current == model.OrderStatusPending {
		return model.OrderStatusConfirmed
	}
	return current
}

type FulfillmentService interface {
	UpdateItemStatus(ctx context.Context, p *authz.Principal, orderID, itemID uint64, status model.ItemStatus, notes *string) (*model.OrderItem, error)
}

type fulfillmentService struct {
	db     *gorm.DB
	orders repository.OrderRepository
	notify NotificationService
}

func NewFulfillmentService(db *gorm.DB, orders repository.OrderRepository, notify NotificationService) FulfillmentService {
	return &fulfillmentService{db: db, orders: orders, notify: notify}
}

func (s *fulfillmentService) UpdateItemStatus(ctx context.Context, p *authz.Principal, orderID, itemID uint64, status model.ItemStatus, notes *string) (*model.OrderItem, error) {
	if err := authz.Authorize(p, authz.FulfillOrders); err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, invalid("status", "unknown status")
	}
	item, err := s.orders.FindItem(ctx, orderID, itemID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if item.Shop == nil || !p.CanActOn(item.Shop.OwnerID) {
		return nil, fmt.Errorf("%w: not your shop", ErrForbidden)
	}
	if !CanTransition(item.Status, status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, item.Status, status)
	}

	var order *model.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orders := s.orders.WithTx(tx)
		if err := orders.UpdateItemStatus(ctx, item.ID, item.Status, status, notes); err != nil {
			if errors.Is(err, repository.ErrStaleState) {
				return fmt.Errorf("%w: item changed concurrently", ErrInvalidTransition)
			}
			return err
		}
		o, err := orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		next := DeriveOrderStatus(o.Status, o.Items, status)
		if next != o.Status {
			if err := orders.UpdateStatus(ctx, o.ID, next); err != nil {
				return err
			}
			o.Status = next
		}
		order = o
		return nil
	})
	if err != nil {
		log.Printf("[fulfill] rid=%s stage=tx_fail order=%d item=%d err=%v", reqctx.RID(ctx), orderID, itemID, err)
		return nil, err
	}
	log.Printf("[fulfill] rid=%s stage=moved order=%d item=%d to=%s order_status=%s by=%d",
		reqctx.RID(ctx), orderID, itemID, status, order.Status, p.UserID)

	name := "an item"
	if item.Product != nil {
		name = item.Product.Name
	}
	s.notify.Notify(ctx, order.CustomerID, model.NotificationItemStatus,
		"Order update",
		fmt.Sprintf("%s in order #%d is now %s", name, order.ID, status),
		u64(order.ID), u64(item.ID))

	return s.orders.FindItem(ctx, orderID, itemID)
}
