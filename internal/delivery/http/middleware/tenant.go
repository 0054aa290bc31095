package middleware

import (
	"context"
	"net/http"
	"strings"

	h "groupregistration/internal/delivery/http/helpers"
	"groupregistration/internal/tenant"
)

// SetTenant returns a context carrying the tenant name.
func SetTenant(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, tenantKey, name)
}

// TenantFromContext returns the tenant resolved for the request.
func TenantFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(tenantKey).(string)
	return name, ok
}

// Tenant resolves the tenant from header, falling back to defaultTenant.
// Names outside [A-Za-z0-9_-] are rejected with 400.
func Tenant(header, defaultTenant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimSpace(r.Header.Get(header))
			if name == "" {
				name = defaultTenant
			}
			if !tenant.ValidName(name) {
				h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid tenant")
				return
			}
			if entry := requestLogFromContext(r.Context()); entry != nil {
				entry.tenant = name
			}
			next.ServeHTTP(w, r.WithContext(SetTenant(r.Context(), name)))
		})
	}
}
