package middleware

import (
	"errors"
	"strconv"

	"billstack/config"
	"billstack/internal/core"
	"billstack/internal/database/redis/repository"
	cErr "billstack/internal/pkg/error"
	"billstack/internal/pkg/response"
	"billstack/internal/telemetry"

	"github.com/gin-gonic/gin"
)

// RateLimit 以來源 IP 做固定視窗限流（Redis SETNX/DECR）
type RateLimit struct {
	trace                 *telemetry.Trace
	metric                *telemetry.Metric
	conf                  *config.Configuration
	rateLimiterRepository *repository.RateLimiterRepository
}

func NewRateLimit(
	trace *telemetry.Trace,
	metric *telemetry.Metric,
	conf *config.Configuration,
	rateLimiterRepository *repository.RateLimiterRepository,
) *RateLimit {
	return &RateLimit{
		trace:                 trace,
		metric:                metric,
		conf:                  conf,
		rateLimiterRepository: rateLimiterRepository,
	}
}

func (middleware *RateLimit) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !middleware.conf.RateLimit.Enabled {
			c.Next()
			return
		}
		ctx, span, end := middleware.trace.WithSpan(c.Request.Context(), string(core.SpanRateLimitMiddleware))

		clientIP := c.ClientIP()
		windowSeconds := middleware.conf.RateLimit.WindowSeconds
		limitCount := middleware.conf.RateLimit.MaxRequests

		remaining, ttlSec, err := middleware.rateLimiterRepository.Consume(ctx, clientIP, windowSeconds, limitCount)
		if err != nil && !errors.Is(err, repository.ErrRateLimitExceeded) {
			// 風險控制：Redis 故障不阻斷主流程
			end(nil)
			c.Next()
			return
		}

		// 寫入回應標頭，方便呼叫端與排錯
		c.Header("X-RateLimit-Limit", strconv.Itoa(limitCount))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if ttlSec > 0 {
			c.Header("X-RateLimit-Reset", strconv.FormatInt(ttlSec, 10))
		}

		middleware.trace.ApplyTraceAttributes(span, core.TraceRateLimitMiddlewareMeta{
			ClientIP:   clientIP,
			Limit:      limitCount,
			Remaining:  remaining,
			TTLSeconds: ttlSec,
			Blocked:    errors.Is(err, repository.ErrRateLimitExceeded),
		})

		if errors.Is(err, repository.ErrRateLimitExceeded) {
			if ttlSec > 0 {
				c.Header("Retry-After", strconv.FormatInt(ttlSec, 10))
			}
			if middleware.metric.RateLimitedTotal != nil {
				middleware.metric.RateLimitedTotal.WithLabelValues(c.FullPath()).Inc()
			}
			blockError := cErr.RateLimitExceeded("rate limit exceeded")
			response.AbortWithError(c, blockError)
			end(blockError)
			return
		}
		end(nil)
		c.Next()
	}
}
