package domain

import "context"

type CtxKey string

const (
	KeyAdminPrincipal CtxKey = "AdminPrincipal"
	KeyRequestID      CtxKey = "RequestID"
)

// WithAdminPrincipal marks ctx as carrying an authenticated admin
func WithAdminPrincipal(ctx context.Context, p AdminPrincipal) context.Context {
	return context.WithValue(ctx, KeyAdminPrincipal, p)
}

// AdminPrincipalFrom returns the admin stored in ctx, if any
func AdminPrincipalFrom(ctx context.Context) (AdminPrincipal, bool) {
	p, ok := ctx.Value(KeyAdminPrincipal).(AdminPrincipal)
	if !ok || p.Username == "" {
		return AdminPrincipal{}, false
	}
	return p, true
}
