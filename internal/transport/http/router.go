package http

import (
	"net/http"

	"github.com/ainager-onboarding/internal/config"
	"github.com/ainager-onboarding/internal/transport/http/handler"
	appmiddleware "github.com/ainager-onboarding/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Router is the application handler plus the resources it owns.
type Router struct {
	http.Handler
	limiter *appmiddleware.RateLimiter
}

// Close releases background resources held by middleware.
func (r *Router) Close() { r.limiter.Close() }

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) *Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	ticketMw := func(next http.Handler) http.Handler { return next }
	if deps.Tickets != nil {
		ticketMw = appmiddleware.Ticket(deps.Tickets)
	}

	// 5 requests/second, burst of 10, per client IP on the code endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	healthH := handler.NewHealthHandler(deps.DB)
	onboardingH := handler.NewOnboardingHandler(deps.Onboarding, deps.Tickets != nil)

	r.Get("/health/live", healthH.Live)
	r.Get("/health/db", healthH.DB)

	r.Route("/auth", func(r chi.Router) {
		r.Use(sensitiveRL.Limit)
		r.Post("/request-otp", onboardingH.RequestOTP)
		r.Post("/verify-otp", onboardingH.VerifyOTP)
	})

	r.With(ticketMw).Post("/tenant/create", onboardingH.CreateTenant)
	r.Get("/onboarding/status", onboardingH.Status)

	return &Router{
		Handler: otelhttp.NewHandler(r, "onboarding-api",
			otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path != "/health/live" })),
		limiter: sensitiveRL,
	}
}
