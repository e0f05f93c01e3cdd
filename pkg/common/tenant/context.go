package tenant

import (
	"context"
	"strings"
)

type contextKey struct{}

// WithTenantID scopes ctx to one tenant. The scope ends with the returned
// context, so callers never need to restore a previous tenant.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, contextKey{}, strings.TrimSpace(tenantID))
}

// TenantIDFromContext returns the tenant on ctx and whether one was set.
func TenantIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
