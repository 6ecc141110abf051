package repository

import (
	"context"
	"time"

	"github.com/shinyyama/village-market/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentSlipRepository interface {
	Create(ctx context.Context, s *model.PaymentSlip) error
	FindByID(ctx context.Context, id uint64) (*model.PaymentSlip, error)
	FindByOrder(ctx context.Context, orderID uint64) (*model.PaymentSlip, error)
	List(ctx context.Context, status model.SlipStatus) ([]model.PaymentSlip, error)
	ResolveIfPending(ctx context.Context, id uint64, status model.SlipStatus, notes *string, verifiedBy uint64, at time.Time) (int64, error)
	WithTx(tx *gorm.DB) PaymentSlipRepository
}

type paymentSlipRepository struct {
	db *gorm.DB
}

func NewPaymentSlipRepository(db *gorm.DB) PaymentSlipRepository {
	return &paymentSlipRepository{db: db}
}

func (r *paymentSlipRepository) Create(ctx context.Context, s *model.PaymentSlip) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(s).Error
}

func (r *paymentSlipRepository) FindByID(ctx context.Context, id uint64) (*model.PaymentSlip, error) {
	var s model.PaymentSlip
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *paymentSlipRepository) FindByOrder(ctx context.Context, orderID uint64) (*model.PaymentSlip, error) {
	var s model.PaymentSlip
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("id ASC").
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *paymentSlipRepository) List(ctx context.Context, status model.SlipStatus) ([]model.PaymentSlip, error) {
	var list []model.PaymentSlip
	q := r.db.WithContext(ctx).Preload("Order").Preload("Order.Customer")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// ResolveIfPending sets the final status only while the slip is still PENDING.
func (r *paymentSlipRepository) ResolveIfPending(ctx context.Context, id uint64, status model.SlipStatus, notes *string, verifiedBy uint64, at time.Time) (int64, error) {
	fields := map[string]interface{}{
		"status":      status,
		"verified_by": verifiedBy,
		"verified_at": at,
	}
	if notes != nil {
		fields["notes"] = *notes
	}
	res := r.db.WithContext(ctx).
		Model(&model.PaymentSlip{}).
		Where("id = ? AND status = ?", id, model.SlipStatusPending).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *paymentSlipRepository) WithTx(tx *gorm.DB) PaymentSlipRepository {
	return &paymentSlipRepository{db: tx}
}
