package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	ginmiddleware "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"travelapp/internal/pkg/response"
)

// NewLimiterStore uses Redis when a client is available so limits hold across
// API replicas, and process memory otherwise.
func NewLimiterStore(rdb *redis.Client, prefix string) (limiter.Store, error) {
	if rdb == nil {
		return memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: time.Minute,
		}), nil
	}
	return redisstore.NewStoreWithOptions(rdb, limiter.StoreOptions{
		Prefix:   prefix,
		MaxRetry: 3,
	})
}

// RateLimit limits requests per authenticated profile, or per client IP for
// anonymous callers. rate uses the "<limit>-<period>" format, e.g. "30-M".
func RateLimit(store limiter.Store, rate string) (gin.HandlerFunc, error) {
	r, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, err
	}
	return ginmiddleware.NewMiddleware(
		limiter.New(store, r),
		ginmiddleware.WithKeyGetter(func(c *gin.Context) string {
			if p, ok := CurrentProfile(c); ok {
				return "profile:" + p.ID.String()
			}
			return "ip:" + c.ClientIP()
		}),
		ginmiddleware.WithLimitReachedHandler(func(c *gin.Context) {
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests, slow down")
		}),
	), nil
}
