package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fjhdream/truck-billing/internal/middleware"
)

const defaultMaxBodyBytes = 1 << 20

// RouterOptions configures the per-route middleware of the API.
type RouterOptions struct {
	// Auth verifies bearer tokens on routes that need a caller identity.
	Auth middleware.TokenParser

	// Limiter throttles mutating routes. Nil disables rate limiting.
	Limiter       middleware.Limiter
	RateLimit     int
	OnRateLimited middleware.RateLimitHook

	// MaxBodyBytes caps request bodies on routes that accept one.
	MaxBodyBytes int64
}

// Routes returns the API router. Global middleware (request id, logging,
// recovery, CORS, metrics) is applied by the caller.
func (s *Server) Routes(opts RouterOptions) chi.Router {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	limit := middleware.NewRateLimiter(opts.Limiter, opts.RateLimit, time.Minute, opts.OnRateLimited)
	body := middleware.NewMaxBodySizeHandler(opts.MaxBodyBytes)
	write := chi.Chain(limit, body)

	authed := middleware.RequireAuth(opts.Auth, s.log)

	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)

	r.Route("/users", func(r chi.Router) {
		r.With(write...).Post("/", s.CreateUser)
		r.With(authed).Get("/", s.ListUsers)
		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", s.GetUser)
			r.With(authed, limit, body).Post("/roles", s.AssignRole)
			r.Get("/roles", s.ListRoles)
			r.With(write...).Post("/teams", s.CreateTeam)
			r.Get("/teams", s.ListTeams)
		})
	})

	r.Route("/teams/{teamId}", func(r chi.Router) {
		r.With(write...).Put("/", s.RenameTeam)
		r.With(limit).Delete("/", s.DeleteTeam)

		r.With(write...).Post("/drivers", s.AddDriver)
		r.Get("/drivers", s.ListDrivers)
		r.With(limit).Delete("/drivers/{userId}", s.RemoveDriver)

		r.With(write...).Post("/cars", s.AddCar)
		r.Get("/cars", s.ListCars)
		r.With(limit).Delete("/cars/{carId}", s.RemoveCar)

		r.With(write...).Post("/items", s.CreateItem)
		r.Get("/items", s.ListItems)

		r.With(write...).Post("/billings", s.CreateBilling)
		r.Get("/billings", s.ListBillings)
	})

	r.Route("/billings/{billingId}", func(r chi.Router) {
		r.With(limit).Put("/end", s.EndBilling)
		r.With(write...).Post("/items", s.AddBillingItem)
		r.Get("/items", s.ListBillingItems)
		r.With(limit).Delete("/items/{itemId}", s.DeleteBillingItem)
		r.Get("/statement", s.GetStatement)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody("not_found", "route not found"))
	})
	return r
}
