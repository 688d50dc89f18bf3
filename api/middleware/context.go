package middleware

import (
	"context"

	"github.com/gymstackhq/gymstack-backend/internal/subscriptions"
)

type contextKey string

const (
	ctxAccountID    contextKey = "account_id"
	ctxEmail        contextKey = "email"
	ctxRole         contextKey = "actor_role"
	ctxClientAccess contextKey = "client_access"
)

func AccountIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccountID).(string); ok {
		return v
	}
	return ""
}

func EmailFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxEmail).(string); ok {
		return v
	}
	return ""
}

func RoleFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRole).(string); ok {
		return v
	}
	return ""
}

// ClientAccessFromContext returns the resolved tenant access seeded by
// RequireClient, or nil outside client routes.
func ClientAccessFromContext(ctx context.Context) *subscriptions.ClientAccess {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxClientAccess).(*subscriptions.ClientAccess); ok {
		return v
	}
	return nil
}

// WithAccountID injects the account identifier into the context.
func WithAccountID(ctx context.Context, accountID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccountID, accountID)
}

// WithRole injects the actor role into the context.
func WithRole(ctx context.Context, role string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRole, role)
}

// WithClientAccess injects the resolved tenant access into the context.
func WithClientAccess(ctx context.Context, access *subscriptions.ClientAccess) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClientAccess, access)
}
