package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"groupregistration/internal/delivery/http/controllers"
	"groupregistration/internal/delivery/http/middleware"
	"groupregistration/internal/domain"
)

// RouterOptions configures cross-cutting request handling.
type RouterOptions struct {
	Logger         *slog.Logger
	Verifier       domain.IdentityVerifier
	TokenCookie    string
	LoginURL       string
	TenantHeader   string
	DefaultTenant  string
	AllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes
func NewRouter(registration *controllers.RegistrationController, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(chimw.Recoverer)

	// Probes
	r.Get("/ready", controllers.Health)
	r.Get("/healthz", controllers.Health)

	// Swagger
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.CORS(opts.AllowedOrigins, opts.TenantHeader))
		r.Use(middleware.Tenant(opts.TenantHeader, opts.DefaultTenant))
		r.Use(middleware.OptionalAuth(opts.Verifier, opts.TokenCookie, opts.Logger))
		r.Use(middleware.LoginRedirect(opts.LoginURL, opts.Logger))

		r.Get("/register", registration.Show)
		r.Post("/register", registration.Submit)
		r.Options("/register", func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})

	return r
}
