package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/freshfold/laundry-backend/api/controllers"
	webhookcontrollers "github.com/freshfold/laundry-backend/api/controllers/webhooks"
	"github.com/freshfold/laundry-backend/api/middleware"
	"github.com/freshfold/laundry-backend/internal/admin"
	"github.com/freshfold/laundry-backend/internal/auth"
	"github.com/freshfold/laundry-backend/internal/complaints"
	"github.com/freshfold/laundry-backend/internal/drivers"
	"github.com/freshfold/laundry-backend/internal/orders"
	"github.com/freshfold/laundry-backend/internal/payments"
	"github.com/freshfold/laundry-backend/internal/promos"
	"github.com/freshfold/laundry-backend/internal/subscriptions"
	"github.com/freshfold/laundry-backend/pkg/auth/session"
	"github.com/freshfold/laundry-backend/pkg/config"
	"github.com/freshfold/laundry-backend/pkg/logger"
	"github.com/freshfold/laundry-backend/pkg/metrics"
	pkgredis "github.com/freshfold/laundry-backend/pkg/redis"
)

// Store is the Redis surface behind idempotent writes and rate limits.
type Store interface {
	pkgredis.IdempotencyStore
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(policy, scope, value string) string
}

type signingSecretSource interface {
	SigningSecret() string
}

type webhookGuard interface {
	Claim(ctx context.Context, eventID string) (bool, error)
	Release(ctx context.Context, eventID string) error
}

// Dependencies carries everything the router hands to middleware and controllers.
// Nil services answer 500, a nil Store disables idempotency and throttling.
type Dependencies struct {
	DB              controllers.Pinger
	Redis           controllers.Pinger
	Store           Store
	Sessions        session.AccessSessionChecker
	Users           middleware.UserReader
	HTTPMetrics     *metrics.HTTPMetrics
	MetricsGatherer prometheus.Gatherer

	Auth          auth.Service
	Orders        orders.Service
	Promos        promos.Service
	Drivers       drivers.Service
	Subscriptions subscriptions.Service
	Complaints    complaints.Service
	Payments      payments.Service
	Admin         admin.Service

	StripeWebhook webhookcontrollers.StripeWebhookService
	StripeSigner  signingSecretSource
	StripeGuard   webhookGuard
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	limits := cfg.RateLimit
	loginLimit := middleware.RateLimit(middleware.RateLimitPolicy{
		Name:   "login",
		Window: limits.LoginWindow,
		Rules:  []middleware.RateLimitRule{middleware.PerClientIP(limits.LoginIPLimit), middleware.PerBodyField("email", limits.LoginEmailLimit)},
	}, deps.Store, logg)
	registerLimit := middleware.RateLimit(middleware.RateLimitPolicy{
		Name:   "register",
		Window: limits.RegisterWindow,
		Rules:  []middleware.RateLimitRule{middleware.PerClientIP(limits.RegisterIPLimit), middleware.PerBodyField("email", limits.RegisterEmailLimit)},
	}, deps.Store, logg)
	// guests can book and complain without an account
	guestWriteLimit := middleware.RateLimit(middleware.RateLimitPolicy{
		Name:   "guest-write",
		Window: limits.GuestWriteWindow,
		Rules:  []middleware.RateLimitRule{middleware.PerClientIP(limits.GuestWriteIPLimit)},
	}, deps.Store, logg)
	promoLimit := middleware.RateLimit(middleware.RateLimitPolicy{
		Name:   "promo",
		Window: limits.PromoWindow,
		Rules:  []middleware.RateLimitRule{middleware.PerClientIP(limits.PromoIPLimit)},
	}, deps.Store, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, map[string]controllers.Pinger{
			"database": deps.DB,
			"redis":    deps.Redis,
		}, logg))
	})

	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.MetricsGatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Public.
		r.Group(func(r chi.Router) {
			r.Get("/plans", controllers.CatalogPlans())
			r.Get("/addons", controllers.CatalogAddOns())
			r.Get("/suburbs", controllers.CatalogSuburbs())
			r.Get("/tracking-statuses", controllers.CatalogTrackingStatuses())

			r.Get("/track/{trackingId}", controllers.TrackOrder(deps.Orders, logg))
			r.Get("/tracking/{trackingId}", controllers.TrackOrder(deps.Orders, logg))

			r.With(promoLimit).Post("/promo/validate", controllers.PromoValidate(deps.Promos, logg))
			r.Get("/checkout/status/{sessionId}", controllers.CheckoutStatus(deps.Payments, logg))
			r.Post("/webhooks/stripe", webhookcontrollers.StripeWebhook(deps.StripeWebhook, deps.StripeSigner, deps.StripeGuard, logg))

			r.With(loginLimit).Post("/auth/login", controllers.AuthLogin(deps.Auth, logg))
			r.Post("/auth/refresh", controllers.AuthRefresh(deps.Auth, logg))
			r.Post("/auth/make-admin", controllers.AuthMakeAdmin(deps.Auth, logg))
		})

		// Guests allowed, identity attached when a valid token is sent.
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.ResolveRole(deps.Users, logg))
			r.Use(middleware.Idempotency(deps.Store, logg))

			r.With(registerLimit).Post("/auth/register", controllers.AuthRegister(deps.Auth, logg))
			r.With(guestWriteLimit).Post("/bookings", controllers.BookingCreate(deps.Orders, logg))
			r.With(guestWriteLimit).Post("/complaints", controllers.ComplaintCreate(deps.Complaints, logg))
			r.Post("/checkout/session", controllers.CheckoutSession(deps.Payments, logg))
		})

		// Signed-in customers.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.ResolveRole(deps.Users, logg))
			r.Use(middleware.Idempotency(deps.Store, logg))

			r.Get("/auth/me", controllers.AuthMe(deps.Auth, logg))
			r.Post("/auth/logout", controllers.AuthLogout(deps.Auth, logg))

			r.Get("/bookings", controllers.BookingList(deps.Orders, logg))
			r.Get("/bookings/{id}", controllers.BookingGet(deps.Orders, logg))
			r.Get("/invoices/{orderId}", controllers.BookingInvoice(deps.Orders, logg))

			r.Get("/subscriptions", controllers.SubscriptionCurrent(deps.Subscriptions, logg))
			r.Post("/subscriptions", controllers.SubscriptionCreate(deps.Subscriptions, logg))
			r.Put("/subscriptions", controllers.SubscriptionMutate(deps.Subscriptions, logg))

			r.Get("/complaints", controllers.ComplaintList(deps.Complaints, logg))
		})

		// Admins.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, deps.Sessions, logg))
			r.Use(middleware.ResolveRole(deps.Users, logg))
			r.Use(middleware.RequireAdmin(logg))
			r.Use(middleware.Idempotency(deps.Store, logg))

			r.Put("/bookings/{id}", controllers.BookingUpdate(deps.Orders, logg))
			r.Put("/bookings/status/{id}", controllers.BookingUpdate(deps.Orders, logg))
			r.Put("/complaints/{id}", controllers.ComplaintUpdate(deps.Complaints, logg))

			r.Get("/promo", controllers.PromoList(deps.Promos, logg))
			r.Post("/promo", controllers.PromoCreate(deps.Promos, logg))

			r.Get("/drivers", controllers.DriverList(deps.Drivers, logg))
			r.Post("/drivers", controllers.DriverCreate(deps.Drivers, logg))
			r.Post("/drivers/assign/{orderId}", controllers.DriverAssign(deps.Drivers, logg))

			r.Route("/admin", func(r chi.Router) {
				r.Get("/stats", controllers.AdminStats(deps.Admin, logg))
				r.Get("/orders", controllers.AdminOrders(deps.Orders, logg))
				r.Put("/orders/{id}", controllers.BookingUpdate(deps.Orders, logg))
				r.Get("/complaints", controllers.AdminComplaints(deps.Complaints, logg))
				r.Put("/complaints/{id}", controllers.ComplaintUpdate(deps.Complaints, logg))
			})
		})
	})

	return r
}
