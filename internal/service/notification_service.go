package service

import (
	"context"
	"log"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/shinyyama/village-market/internal/repository"
)

type NotificationService interface {
	Notify(ctx context.Context, userID uint64, typ, title, body string, orderID, orderItemID *uint64)
	List(ctx context.Context, p *authz.Principal, unreadOnly bool, limit int) ([]model.Notification, int64, error)
	MarkAllRead(ctx context.Context, p *authz.Principal) error
	MarkByOrder(ctx context.Context, p *authz.Principal, orderID uint64) error
}

type notificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) NotificationService {
	return &notificationService{repo: repo}
}

// Notify is best-effort; failures are logged and never reach the caller.
func (s *notificationService) Notify(ctx context.Context, userID uint64, typ, title, body string, orderID, orderItemID *uint64) {
	if userID == 0 || typ == "" {
		return
	}
	n := &model.Notification{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Body:        body,
		OrderID:     orderID,
		OrderItemID: orderItemID,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		log.Printf("[notify] rid=%s user=%d type=%s err=%v", reqctx.RID(ctx), userID, typ, err)
	}
}

func (s *notificationService) List(ctx context.Context, p *authz.Principal, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	if p == nil {
		return nil, 0, ErrAuthenticationRequired
	}
	list, err := s.repo.ListByUser(ctx, p.UserID, unreadOnly, limit)
	if err != nil {
		return nil, 0, err
	}
	cnt, err := s.repo.CountUnread(ctx, p.UserID)
	if err != nil {
		return list, 0, err
	}
	return list, cnt, nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, p *authz.Principal) error {
	if p == nil {
		return ErrAuthenticationRequired
	}
	return s.repo.MarkAllRead(ctx, p.UserID)
}

func (s *notificationService) MarkByOrder(ctx context.Context, p *authz.Principal, orderID uint64) error {
	if p == nil {
		return ErrAuthenticationRequired
	}
	if orderID == 0 {
		return nil
	}
	return s.repo.MarkByOrder(ctx, p.UserID, orderID)
}

func u64(v uint64) *uint64 {
	return &v
}
