package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/repository"
	"gorm.io/gorm"
)

type PaymentSlipService interface {
	Upload(ctx context.Context, p *authz.Principal, orderID uint64, imageURL string, notes *string) (*model.PaymentSlip, error)
	UploadImage(ctx context.Context, p *authz.Principal, orderID uint64, data []byte, notes *string) (*model.PaymentSlip, error)
	Verify(ctx context.Context, p *authz.Principal, slipID uint64, status model.SlipStatus, notes *string) (*model.PaymentSlip, error)
	List(ctx context.Context, p *authz.Principal, status model.SlipStatus) ([]model.PaymentSlip, error)
	GetByOrder(ctx context.Context, p *authz.Principal, orderID uint64) (*model.PaymentSlip, error)
}

type paymentSlipService struct {
	db      *gorm.DB
	slips   repository.PaymentSlipRepository
	orders  repository.OrderRepository
	uploads UploadService
	notify  NotificationService
	now     func() time.Time
}

func NewPaymentSlipService(db *gorm.DB, slips repository.PaymentSlipRepository, orders repository.OrderRepository, uploads UploadService, notify NotificationService) PaymentSlipService {
	return &paymentSlipService{db: db, slips: slips, orders: orders, uploads: uploads, notify: notify, now: time.Now}
}

// payable loads the order and ensures the caller may attach a slip to it and
// that none exists yet.
func (s *paymentSlipService) payable(ctx context.Context, p *authz.Principal, orderID uint64) (*model.Order, error) {
	if err := authz.Authorize(p, authz.UploadPaymentSlip); err != nil {
		return nil, err
	}
	if orderID == 0 {
		return nil, invalid("orderId", "is required")
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.CanActOn(o.CustomerID) {
		return nil, fmt.Errorf("%w: not your order", ErrForbidden)
	}
	if _, err := s.slips.FindByOrder(ctx, o.ID); err == nil {
		return nil, ErrDuplicatePaymentSlip
	} else if !repository.IsNotFound(err) {
		return nil, err
	}
	return o, nil
}

func (s *paymentSlipService) create(ctx context.Context, o *model.Order, imageURL string, notes *string) (*model.PaymentSlip, error) {
	slip := &model.PaymentSlip{
		OrderID:  o.ID,
		ImageURL: imageURL,
		Status:   model.SlipStatusPending,
		Notes:    notes,
	}
	if err := s.slips.Create(ctx, slip); err != nil {
		return nil, err
	}
	log.Printf("[slip] rid=%s stage=uploaded slip=%d order=%d", reqctx.RID(ctx), slip.ID, o.ID)
	return slip, nil
}

func (s *paymentSlipService) Upload(ctx context.Context, p *authz.Principal, orderID uint64, imageURL string, notes *string) (*model.PaymentSlip, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, invalid("imageUrl", "is required")
	}
	o, err := s.payable(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, o, imageURL, notes)
}

// UploadImage stores the receipt photo and attaches it. The order is checked
// before anything is stored.
func (s *paymentSlipService) UploadImage(ctx context.Context, p *authz.Principal, orderID uint64, data []byte, notes *string) (*model.PaymentSlip, error) {
	o, err := s.payable(ctx, p, orderID)
	if err != nil {
		return nil, err
	}
	url, err := s.uploads.UploadImage(ctx, p, UploadKindSlip, data)
	if err != nil {
		return nil, err
	}
	return s.create(ctx, o, url, notes)
}

// Verify resolves a PENDING slip exactly once. VERIFIED sets the order to
// CONFIRMED whatever its current status.
func (s *paymentSlipService) Verify(ctx context.Context, p *authz.Principal, slipID uint64, status model.SlipStatus, notes *string) (*model.PaymentSlip, error) {
	if err := authz.Authorize(p, authz.VerifyPayments); err != nil {
		return nil, err
	}
	if status != model.SlipStatusVerified && status != model.SlipStatusRejected {
		return nil, invalid("status", "must be VERIFIED or REJECTED")
	}
	slip, err := s.slips.FindByID(ctx, slipID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if slip.Status != model.SlipStatusPending {
		return nil, fmt.Errorf("%w: slip is %s", ErrSlipNotPending, slip.Status)
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := s.slips.WithTx(tx).ResolveIfPending(ctx, slip.ID, status, notes, p.UserID, s.now().UTC())
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrSlipNotPending
		}
		if status == model.SlipStatusVerified {
			return s.orders.WithTx(tx).UpdateStatus(ctx, slip.OrderID, model.OrderStatusConfirmed)
		}
		return nil
	})
	if err != nil {
		log.Printf("[slip] rid=%s stage=verify_fail slip=%d err=%v", reqctx.RID(ctx), slip.ID, err)
		return nil, err
	}
	log.Printf("[slip] rid=%s stage=resolved slip=%d order=%d status=%s by=%d", reqctx.RID(ctx), slip.ID, slip.OrderID, status, p.UserID)

	if o, err := s.orders.FindByID(ctx, slip.OrderID); err == nil {
		typ, title := model.NotificationPaymentVerified, "Payment confirmed"
		if status == model.SlipStatusRejected {
			typ, title = model.NotificationPaymentRejected, "Payment slip rejected"
		}
		s.notify.Notify(ctx, o.CustomerID, typ, title, fmt.Sprintf("Order #%d", o.ID), u64(o.ID), nil)
	}
	return s.slips.FindByID(ctx, slip.ID)
}

func (s *paymentSlipService) List(ctx context.Context, p *authz.Principal, status model.SlipStatus) ([]model.PaymentSlip, error) {
	if err := authz.Authorize(p, authz.VerifyPayments); err != nil {
		return nil, err
	}
	switch status {
	case "", model.SlipStatusPending, model.SlipStatusVerified, model.SlipStatusRejected:
	default:
		return nil, invalid("status", "unknown status")
	}
	return s.slips.List(ctx, status)
}

func (s *paymentSlipService) GetByOrder(ctx context.Context, p *authz.Principal, orderID uint64) (*model.PaymentSlip, error) {
	if p == nil {
		return nil, ErrAuthenticationRequired
	}
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !p.CanActOn(o.CustomerID) {
		return nil, ErrForbidden
	}
	slip, err := s.slips.FindByOrder(ctx, o.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return slip, nil
}
