package tenant

import (
	"log/slog"
	"net/http"
)

// HeaderCompanyID carries the company identifier on inbound requests.
const HeaderCompanyID = "X-Company-ID"

// Middleware resolves the request's company identifier and stores the
// company on the context. Fallback substitution is logged, never silent.
func Middleware(registry *Registry, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identifier := r.Header.Get(HeaderCompanyID)
			if identifier == "" {
				identifier = r.URL.Query().Get("company")
			}
			res := registry.Resolve(identifier)
			switch res.Outcome {
			case OutcomeFallback:
				logger.Warn("no company identifier, using default",
					slog.String("path", r.URL.Path),
					slog.Int64("tenant", res.Tenant.ID))
			case OutcomeUnknown:
				logger.Warn("unknown company identifier, using default",
					slog.String("identifier", identifier),
					slog.String("path", r.URL.Path),
					slog.Int64("tenant", res.Tenant.ID))
			}
			ctx := ContextWithTenant(r.Context(), res.Tenant)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
