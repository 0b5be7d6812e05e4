package http

import (
	"log/slog"
	"net/http"

	"ourevents/internal/delivery/http/controllers"
	"ourevents/internal/delivery/http/middleware"
	"ourevents/internal/domain"
	"ourevents/internal/metrics"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Controllers groups the handlers mounted by NewRouter.
type Controllers struct {
	Events        *controllers.EventController
	Registrations *controllers.RegistrationController
	Categories    *controllers.CategoryController
	Premises      *controllers.PremiseController
	Users         *controllers.UserController
	Auth          *controllers.AuthController
	Health        *controllers.HealthController
}

// RouterOptions carries the cross-cutting dependencies of the router.
type RouterOptions struct {
	Logger         *slog.Logger
	Verifier       domain.TokenVerifier
	LoginLimiter   *middleware.RateLimiter
	AllowedOrigins []string
}

// NewRouter initializes the HTTP router with all application routes and wraps it
// with request id, request logging and CORS handling.
func NewRouter(c Controllers, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	authed := middleware.RequireAuth(opts.Verifier, opts.Logger)
	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return authed(middleware.RequireRole(domain.RoleAdmin)(next))
	}
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, metrics.Instrument(pattern, h))
	}

	// Events
	handle("GET /events", c.Events.ListEvents)
	handle("GET /events/{id}", c.Events.GetEvent)
	handle("POST /events", admin(c.Events.CreateEvent))
	handle("PUT /events/{id}", admin(c.Events.UpdateEvent))
	handle("DELETE /events/{id}", admin(c.Events.DeleteEvent))

	// Registrations
	handle("POST /events/{id}/register", authed(c.Registrations.RegisterSelf))
	handle("POST /events/{id}/unregister", authed(c.Registrations.UnregisterSelf))
	handle("POST /users/{userId}/register/{eventId}", admin(c.Registrations.RegisterUser))
	handle("POST /users/{userId}/unregister/{eventId}", admin(c.Registrations.UnregisterUser))

	// Categories and premises
	handle("GET /categories", c.Categories.ListCategories)
	handle("POST /categories", admin(c.Categories.CreateCategory))
	handle("PUT /categories/{id}", admin(c.Categories.UpdateCategory))
	handle("DELETE /categories/{id}", admin(c.Categories.DeleteCategory))
	handle("GET /premises", c.Premises.ListPremises)
	handle("POST /premises", admin(c.Premises.CreatePremise))
	handle("PUT /premises/{id}", admin(c.Premises.UpdatePremise))
	handle("DELETE /premises/{id}", admin(c.Premises.DeletePremise))

	// Auth
	login := c.Auth.Login
	if opts.LoginLimiter != nil {
		login = opts.LoginLimiter.Limit(opts.Logger)(login)
	}
	handle("POST /auth/register", c.Auth.Register)
	handle("POST /auth/login", login)
	handle("POST /auth/logout", c.Auth.Logout)

	// Users
	handle("GET /users/me", authed(c.Users.GetMe))
	handle("GET /users/me/events", authed(c.Users.ListMyEvents))
	handle("GET /users", admin(c.Users.ListUsers))
	handle("PATCH /users/{id}/toggle-admin", admin(c.Users.ToggleAdmin))

	// Operations
	handle("GET /healthz", c.Health.Health)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	var handler http.Handler = mux
	handler = middleware.CORS(opts.AllowedOrigins, handler)
	handler = middleware.LoggingMiddleware(opts.Logger, handler)
	handler = middleware.RequestID(handler)
	return handler
}
