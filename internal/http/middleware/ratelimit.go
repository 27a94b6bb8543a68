package middleware

import (
	"net/http"
	"strconv"
	"time"

	echo "github.com/labstack/echo/v4"

	"ordergw/internal/metrics"
	"ordergw/internal/ratelimit"
)

type rateLimitBody struct {
	Code    string           `json:"code"`
	Message string           `json:"message"`
	Details rateLimitDetails `json:"details"`
}

type rateLimitDetails struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

// GlobalRateLimit applies the per-client-address limit to every request,
// before authentication.
func GlobalRateLimit(lim ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, info := lim.Allow(c.Request().Context(), c.RealIP())
			if !allowed {
				return denyRateLimited(c, "global", info)
			}
			return next(c)
		}
	}
}

// WriteRateLimit applies the stricter limit to authenticated write
// endpoints, keyed by the presented API key with the client address as
// fallback. The fallback keying is deliberate: an unauthenticated burst must
// not share one bucket across all callers.
func WriteRateLimit(lim ratelimit.Limiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.RealIP()
			if id, ok := IdentityFromCtx(c); ok {
				key = id.Fingerprint
			}
			allowed, info := lim.Allow(c.Request().Context(), key)
			if !allowed {
				return denyRateLimited(c, "write", info)
			}
			return next(c)
		}
	}
}

func denyRateLimited(c echo.Context, scope string, info ratelimit.Info) error {
	metrics.RateLimitRejectedTotal.WithLabelValues(scope).Inc()

	h := c.Response().Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetAt.Unix(), 10))
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Round(time.Second) / time.Second)
		if secs < 1 {
			secs = 1
		}
		h.Set("Retry-After", strconv.Itoa(secs))
	}

	return c.JSON(http.StatusTooManyRequests, rateLimitBody{
		Code:    "RATE_LIMIT_EXCEEDED",
		Message: "rate limit exceeded",
		Details: rateLimitDetails{
			Limit:     info.Limit,
			Remaining: info.Remaining,
			ResetAt:   info.ResetAt,
		},
	})
}
