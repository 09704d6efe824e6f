package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"lumaregistrar/internal/delivery/http/controllers"
	"lumaregistrar/internal/delivery/http/middleware"
	"lumaregistrar/internal/domain"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Registrations *controllers.RegistrationController
	Gmail         *controllers.GmailController
	Health        *controllers.HealthController
}

// NewRouter initializes the HTTP router with all application routes.
// Registration and Gmail routes require a bearer token when verifier is non-nil.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	requireAuth := middleware.RequireAuth(verifier, logger)

	// Registrations
	mux.HandleFunc("POST /registrations", requireAuth(c.Registrations.Create))
	mux.HandleFunc("POST /registrations/bulk", requireAuth(c.Registrations.Bulk))
	mux.HandleFunc("GET /registrations", requireAuth(c.Registrations.List))
	mux.HandleFunc("GET /registrations/{id}", requireAuth(c.Registrations.Get))
	mux.HandleFunc("DELETE /registrations/{id}", requireAuth(c.Registrations.Delete))

	// Gmail OAuth setup
	mux.HandleFunc("GET /gmail/auth-url", requireAuth(c.Gmail.AuthURL))
	mux.HandleFunc("POST /gmail/token", requireAuth(c.Gmail.ExchangeCode))

	mux.HandleFunc("GET /health", c.Health.Health)

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// NewHandler wraps the router with CORS and request logging.
func NewHandler(c Controllers, verifier domain.TokenVerifier, allowedOrigins []string, logger *slog.Logger) http.Handler {
	return middleware.LoggingMiddleware(logger, middleware.CORS(allowedOrigins, NewRouter(c, verifier, logger)))
}
