package tenant

import "context"

type contextKey string

const tenantContextKey contextKey = "tenant"

// ContextWithTenant stores the resolved company on the request context.
func ContextWithTenant(ctx context.Context, t Tenant) context.Context {
	return context.WithValue(ctx, tenantContextKey, t)
}

// FromContext returns the company stored on the context, if any.
func FromContext(ctx context.Context) (Tenant, bool) {
	t, ok := ctx.Value(tenantContextKey).(Tenant)
	return t, ok
}
