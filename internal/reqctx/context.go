// Package reqctx carries request-scoped values: the correlation id used in
// logs and the authenticated principal.
package reqctx

import (
	"context"

	"github.com/shinyyama/village-market/internal/authz"
)

type ctxKey string

const (
	keyRID       ctxKey = "vm_rid"
	keyPrincipal ctxKey = "vm_principal"
)

// WithRID stores the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns the correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

func WithPrincipal(ctx context.Context, p *authz.Principal) context.Context {
	return context.WithValue(ctx, keyPrincipal, p)
}

// Principal returns the authenticated caller, or nil for anonymous requests.
func Principal(ctx context.Context) *authz.Principal {
	v, _ := ctx.Value(keyPrincipal).(*authz.Principal)
	return v
}
