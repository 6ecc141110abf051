package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/dbtest"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixedNow is 2025-03-10 08:00 in UTC+7.
var fixedNow = time.Date(2025, 3, 10, 1, 0, 0, 0, time.UTC)

type env struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	users    repository.UserRepository
	shops    repository.ShopRepository
	products repository.ProductRepository
	orders   repository.OrderRepository
	slips    repository.PaymentSlipRepository
	notes    repository.NotificationRepository
	notify   NotificationService
	seq      int
}

func newEnv(t *testing.T) *env {
	conn := dbtest.Open(t)
	notes := repository.NewNotificationRepository(conn)
	return &env{
		t:        t,
		ctx:      context.Background(),
		db:       conn,
		users:    repository.NewUserRepository(conn),
		shops:    repository.NewShopRepository(conn),
		products: repository.NewProductRepository(conn),
		orders:   repository.NewOrderRepository(conn),
		slips:    repository.NewPaymentSlipRepository(conn),
		notes:    notes,
		notify:   NewNotificationService(notes),
	}
}

func principalOf(u *model.User) *authz.Principal {
	return &authz.Principal{UserID: u.ID, Role: u.Role, ProfileComplete: u.ProfileComplete}
}

func (e *env) user(role model.Role, house string) *model.User {
	e.t.Helper()
	e.seq++
	u := &model.User{
		Name:     fmt.Sprintf("%s-%d", role, e.seq),
		Role:     role,
		IsActive: true,
	}
	if house != "" {
		u.HouseNumber = &house
		u.ProfileComplete = true
	}
	require.NoError(e.t, e.users.Create(e.ctx, u))
	return u
}

func (e *env) shop(owner *model.User) *model.Shop {
	e.t.Helper()
	e.seq++
	s := &model.Shop{
		OwnerID:     owner.ID,
		Name:        fmt.Sprintf("shop-%d", e.seq),
		HouseNumber: "7",
		IsActive:    true,
		Slug:        fmt.Sprintf("shop-%d", e.seq),
	}
	require.NoError(e.t, e.shops.Create(e.ctx, s))
	return s
}

func (e *env) product(shop *model.Shop, stock int, price string) *model.Product {
	e.t.Helper()
	e.seq++
	p := &model.Product{
		ShopID:      shop.ID,
		Name:        fmt.Sprintf("product-%d", e.seq),
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: true,
		Slug:        fmt.Sprintf("product-%d", e.seq),
	}
	require.NoError(e.t, e.products.Create(e.ctx, p))
	return p
}

func (e *env) stockOf(id uint64) int {
	e.t.Helper()
	p, err := e.products.FindByID(e.ctx, id)
	require.NoError(e.t, err)
	return p.Stock
}

func (e *env) count(m interface{}) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(m).Count(&n).Error)
	return n
}

func (e *env) orderService() *orderService {
	svc := NewOrderService(e.db, e.users, e.products, e.orders, e.notify).(*orderService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func (e *env) fulfillmentService() FulfillmentService {
	return NewFulfillmentService(e.db, e.orders, e.notify)
}

func (e *env) slipService(uploads UploadService) *paymentSlipService {
	svc := NewPaymentSlipService(e.db, e.slips, e.orders, uploads, e.notify).(*paymentSlipService)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// placeOrder creates a PENDING order through the real service.
func (e *env) placeOrder(customer *model.User, lines ...*model.Product) *model.Order {
	e.t.Helper()
	in := PlaceOrderInput{}
	for _, p := range lines {
		in.Items = append(in.Items, OrderItemInput{ProductID: p.ID, ShopID: p.ShopID, Quantity: 1, Price: p.Price})
		in.TotalAmount = in.TotalAmount.Add(p.Price)
	}
	o, err := e.orderService().PlaceOrder(e.ctx, principalOf(customer), in)
	require.NoError(e.t, err)
	return o
}

type fakeUploader struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (f *fakeUploader) Put(_ context.Context, objectPath, _ string, _ []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, objectPath)
	return "https://cdn.test/" + objectPath, nil
}

func pngFixture(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}
