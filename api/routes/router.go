package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vroomxtransport/vroomx-backend/api/controllers"
	ordercontrollers "github.com/vroomxtransport/vroomx-backend/api/controllers/orders"
	reportcontrollers "github.com/vroomxtransport/vroomx-backend/api/controllers/reports"
	tripcontrollers "github.com/vroomxtransport/vroomx-backend/api/controllers/trips"
	"github.com/vroomxtransport/vroomx-backend/api/middleware"
	"github.com/vroomxtransport/vroomx-backend/internal/assignment"
	"github.com/vroomxtransport/vroomx-backend/internal/expenses"
	"github.com/vroomxtransport/vroomx-backend/internal/orders"
	"github.com/vroomxtransport/vroomx-backend/internal/reports"
	"github.com/vroomxtransport/vroomx-backend/internal/trips"
	"github.com/vroomxtransport/vroomx-backend/pkg/config"
	"github.com/vroomxtransport/vroomx-backend/pkg/db"
	"github.com/vroomxtransport/vroomx-backend/pkg/logger"
	"github.com/vroomxtransport/vroomx-backend/pkg/redis"
)

// RedisConn is the slice of the redis client the router needs: readiness
// pings, idempotency storage, and the fixed-window rate limiter. A nil value
// disables the redis-backed middleware.
type RedisConn interface {
	redis.Pinger
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisConn RedisConn,
	registry *prometheus.Registry,
	ordersSvc orders.Service,
	tripsSvc trips.Service,
	assignmentSvc assignment.Service,
	expensesSvc expenses.Service,
	reportsSvc reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisConn))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	dispatchPolicy := middleware.NewRateLimitPolicy(
		"dispatch",
		cfg.RateLimit.DispatchWindow,
		cfg.RateLimit.DispatchIPLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.RateLimit(dispatchPolicy, redisConn, logg),
			middleware.Idempotency(redisConn, logg),
		)

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", ordercontrollers.Create(ordersSvc, logg))
			r.Get("/", ordercontrollers.List(ordersSvc, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(ordersSvc, logg))
			r.Post("/{orderId}/advance", ordercontrollers.Advance(ordersSvc, logg))
			r.Post("/{orderId}/rollback", ordercontrollers.Rollback(ordersSvc, logg))
			r.Post("/{orderId}/cancel", ordercontrollers.Cancel(ordersSvc, logg))
			r.Post("/{orderId}/assign", ordercontrollers.Assign(assignmentSvc, logg))
			r.Post("/{orderId}/unassign", ordercontrollers.Unassign(assignmentSvc, logg))
		})

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", tripcontrollers.Create(tripsSvc, logg))
			r.Get("/", tripcontrollers.List(tripsSvc, logg))
			r.Get("/{tripId}", tripcontrollers.Detail(tripsSvc, logg))
			r.Post("/{tripId}/advance", tripcontrollers.Advance(tripsSvc, logg))
			r.Post("/{tripId}/rollback", tripcontrollers.Rollback(tripsSvc, logg))
			r.Get("/{tripId}/route", tripcontrollers.Route(tripsSvc, logg))
			r.Put("/{tripId}/route", tripcontrollers.SaveRoute(tripsSvc, logg))
			r.Post("/{tripId}/route/default", tripcontrollers.DefaultRoute(tripsSvc, logg))
			r.Post("/{tripId}/expenses", tripcontrollers.CreateExpense(expensesSvc, logg))
			r.Put("/{tripId}/expenses/{expenseId}", tripcontrollers.UpdateExpense(expensesSvc, logg))
			r.Delete("/{tripId}/expenses/{expenseId}", tripcontrollers.DeleteExpense(expensesSvc, logg))
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/kpis", reportcontrollers.KPIs(reportsSvc, logg))
		})
	})

	return r
}
