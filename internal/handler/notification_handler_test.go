package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/shinyyama/village-market/internal/authz"
	"github.com/shinyyama/village-market/internal/model"
	"github.com/shinyyama/village-market/internal/reqctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifications struct {
	allRead int
	byOrder []uint64
}

func (f *fakeNotifications) Notify(ctx context.Context, userID uint64, typ, title, body string, orderID, orderItemID *uint64) {
}

func (f *fakeNotifications) List(ctx context.Context, p *authz.Principal, unreadOnly bool, limit int) ([]model.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, p *authz.Principal) error {
	f.allRead++
	return nil
}

func (f *fakeNotifications) MarkByOrder(ctx context.Context, p *authz.Principal, orderID uint64) error {
	f.byOrder = append(f.byOrder, orderID)
	return nil
}

func TestMarkRead(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantCode    int
		wantAllRead int
		wantByOrder []uint64
	}{
		{"empty body marks all", "", http.StatusOK, 1, nil},
		{"empty object marks all", "{}", http.StatusOK, 1, nil},
		{"one order", `{"orderId": 7}`, http.StatusOK, 0, []uint64{7}},
		{"malformed json", `{"orderId": `, http.StatusBadRequest, 0, nil},
		{"wrong type", `{"orderId": "seven"}`, http.StatusBadRequest, 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeNotifications{}
			h := NewNotificationHandler(svc)

			req := httptest.NewRequest(http.MethodPost, "/api/me/notifications/read", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			req = req.WithContext(reqctx.WithPrincipal(req.Context(), &authz.Principal{UserID: 1, Role: model.RoleCustomer}))
			rec := httptest.NewRecorder()

			require.NoError(t, h.MarkRead(echo.New().NewContext(req, rec)))
			assert.Equal(t, tt.wantCode, rec.Code, rec.Body.String())
			assert.Equal(t, tt.wantAllRead, svc.allRead)
			assert.Equal(t, tt.wantByOrder, svc.byOrder)
		})
	}
}
