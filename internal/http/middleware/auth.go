package middleware

import (
	"net/http"
	"strings"

	echo "github.com/labstack/echo/v4"

	"ordergw/internal/auth"
)

// HeaderAPIKey is the authentication header clients present.
const HeaderAPIKey = "X-API-KEY"

const ctxIdentity = "identity"

// IdentityFromCtx extracts the authenticated identity set by
// APIKeyMiddleware.
func IdentityFromCtx(c echo.Context) (auth.Identity, bool) {
	id, ok := c.Get(ctxIdentity).(auth.Identity)
	return id, ok
}

type authErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIKeyMiddleware runs the auth gate on every request: block check first,
// then header presence, then constant-time key validation. On success the
// identity is stored in context for downstream authorization.
func APIKeyMiddleware(gate *auth.Gate) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			addr := c.RealIP()
			key := strings.TrimSpace(c.Request().Header.Get(HeaderAPIKey))

			res := gate.Authenticate(c.Request().Context(), addr, key)
			if res.Allowed {
				c.Set(ctxIdentity, res.Identity)
				return next(c)
			}

			switch res.Reason {
			case auth.ReasonIPBlocked:
				return c.JSON(http.StatusForbidden, authErrorBody{
					Code:    "IP_BLOCKED",
					Message: "Too many failed authentication attempts. Please try again later.",
				})
			case auth.ReasonMissingHeader:
				return c.JSON(http.StatusUnauthorized, authErrorBody{
					Code:    "MISSING_HEADER",
					Message: HeaderAPIKey + " header required",
				})
			default:
				return c.JSON(http.StatusUnauthorized, authErrorBody{
					Code:    "INVALID_KEY",
					Message: "Invalid API key",
				})
			}
		}
	}
}
