package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	cartcontrollers "github.com/angelmondragon/gobacks-backend/api/controllers/cart"
	"github.com/angelmondragon/gobacks-backend/api/controllers/health"
	"github.com/angelmondragon/gobacks-backend/api/middleware"
	"github.com/angelmondragon/gobacks-backend/internal/cart"
	"github.com/angelmondragon/gobacks-backend/pkg/config"
	"github.com/angelmondragon/gobacks-backend/pkg/logger"
	"github.com/angelmondragon/gobacks-backend/pkg/metrics"
	"github.com/angelmondragon/gobacks-backend/pkg/redis"
)

// Dependencies groups everything the HTTP surface needs. Redis and Gatherer are
// optional: without redis the idempotency layer is skipped, and without a
// gatherer /metrics is not mounted.
type Dependencies struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          health.Pinger
	Redis       *redis.Client
	CartService cart.Service
	Metrics     *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
		middleware.Metrics(deps.Metrics),
	)

	var (
		redisPinger health.Pinger
		idemStore   redis.IdempotencyStore
	)
	if deps.Redis != nil {
		redisPinger = deps.Redis
		idemStore = deps.Redis
	}
	idempotency := middleware.Idempotency(idemStore, cfg.Idempotency.TTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", health.HealthLive(cfg))
		r.Get("/ready", health.HealthReady(cfg, logg, deps.DB, redisPinger))
	})

	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	cartRoutes := func(r chi.Router) {
		r.With(idempotency).Post("/", cartcontrollers.CartCreate(deps.CartService, logg))
		r.Get("/", cartcontrollers.CartList(deps.CartService, logg))
		r.Get("/{"+cartcontrollers.CartIDParam+"}", cartcontrollers.CartFetch(deps.CartService, logg))
		r.Delete("/{"+cartcontrollers.CartIDParam+"}", cartcontrollers.CartDelete(deps.CartService, logg))
		r.With(idempotency).Post("/{"+cartcontrollers.CartIDParam+"}", cartcontrollers.CartMutateItems(deps.CartService, logg))
	}

	r.Route("/cart", cartRoutes)
	r.Route("/api/v1/cart", cartRoutes)

	return r
}
