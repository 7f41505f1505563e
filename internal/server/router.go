package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"travelapp/internal/config"
	"travelapp/internal/domain/availability"
	"travelapp/internal/domain/booking"
	"travelapp/internal/domain/listing"
	"travelapp/internal/domain/profile"
	"travelapp/internal/domain/review"
	"travelapp/internal/middleware"
	"travelapp/internal/pkg/jwt"
	"travelapp/internal/pkg/response"
	"travelapp/internal/tasks"
)

type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client // optional
	Tasks    tasks.Dispatcher
	Services *Services
	Tokens   *jwt.Service
	Log      logrus.FieldLogger
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

func NewRouter(cfg *config.Config, d Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.Log),
		middleware.ErrorLogger(d.Log),
		middleware.CORS(cfg.App.AllowedOrigins),
	)

	r.GET("/healthz", health(d.DB, d.Redis))
	if cfg.Monitoring.PrometheusEnabled {
		g := d.Gatherer
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(g, promhttp.HandlerOpts{})))
	}

	var writes []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		store, err := middleware.NewLimiterStore(d.Redis, cfg.RateLimit.Prefix)
		if err != nil {
			return nil, err
		}
		limit, err := middleware.RateLimit(store, cfg.RateLimit.Writes)
		if err != nil {
			return nil, err
		}
		writes = append(writes, limit)
	}

	s := d.Services
	listingHandler := listing.NewHandler(s.Listings)
	availabilityHandler := availability.NewHandler(s.Availability, s.listingRepo)
	bookingHandler := booking.NewHandler(s.Bookings)
	reviewHandler := review.NewHandler(s.Reviews)

	v1 := r.Group("/api/v1")
	{
		public := v1.Group("/")
		public.Use(middleware.OptionalJWTAuth(d.Tokens, s.Profiles))
		listingHandler.RegisterRoutes(public, nil)
		availabilityHandler.RegisterRoutes(public)
		reviewHandler.RegisterRoutes(public, nil)

		protected := v1.Group("/")
		protected.Use(middleware.JWTAuth(d.Tokens, s.Profiles))
		profile.NewHandler(s.Profiles).RegisterRoutes(protected)
		listingHandler.RegisterRoutes(nil, protected)
		bookingHandler.RegisterRoutes(protected, writes...)
		reviewHandler.RegisterRoutes(nil, protected, writes...)
		tasks.NewHandler(d.Tasks).RegisterRoutes(protected)
	}

	return r, nil
}

func health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["database"] = "unavailable"
			healthy = false
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = "unavailable"
				healthy = false
			}
		}

		if !healthy {
			response.ErrorWithDetails(c, http.StatusServiceUnavailable, "UNHEALTHY", "A dependency is unavailable", checks)
			return
		}
		response.Success(c, http.StatusOK, checks)
	}
}
