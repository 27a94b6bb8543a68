package http

import (
	"net/http"
	"net/mail"
	"strings"
	"unicode/utf8"

	echo "github.com/labstack/echo/v4"

	"ordergw/internal/apperr"
	"ordergw/internal/auth"
	"ordergw/internal/http/middleware"
	"ordergw/internal/service"
)

type createCustomerReq struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// createCustomerHandler also enforces the one-customer-per-key rule: a
// standard key binds to the customer it creates and may never create a
// second one. Admin keys create freely and never bind.
func createCustomerHandler(svc *service.Customers, registry *auth.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createCustomerReq
		if err := c.Bind(&req); err != nil {
			return respondError(c, apperr.Validation("invalid request body"))
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || utf8.RuneCountInString(req.Name) > 100 {
			return respondError(c, apperr.Validation("name must be 1-100 characters"))
		}
		req.Email = strings.TrimSpace(req.Email)
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return respondError(c, apperr.Validation("invalid email address"))
		}

		id, ok := middleware.IdentityFromCtx(c)
		if !ok {
			return respondError(c, apperr.Unauthorized(apperr.CodeInvalidKey, "unauthorized"))
		}
		// Claim the binding before the create so two concurrent requests
		// with one key cannot both persist a customer.
		if !id.Admin {
			if err := registry.Acquire(id.Key); err != nil {
				return respondError(c, err)
			}
		}

		cust, err := svc.Create(c.Request().Context(), req.Name, req.Email)
		if err != nil {
			if !id.Admin {
				registry.Release(id.Key)
			}
			return respondError(c, err)
		}

		if !id.Admin {
			if err := registry.Bind(id.Key, cust.CustID); err != nil {
				return respondError(c, err)
			}
		}

		c.Response().Header().Set("Location", "/v1/customers/"+cust.CustID)
		return c.JSON(http.StatusCreated, cust)
	}
}
