package http

import (
	"net/http"
	"strings"
	"unicode/utf8"

	echo "github.com/labstack/echo/v4"

	"ordergw/internal/apperr"
	"ordergw/internal/model"
	"ordergw/internal/service"
)

type createProductReq struct {
	Name      string `json:"name"`
	UnitPrice int64  `json:"unitPrice"`
}

func createProductHandler(svc *service.Products) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createProductReq
		if err := c.Bind(&req); err != nil {
			return respondError(c, apperr.Validation("invalid request body"))
		}

		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" || utf8.RuneCountInString(req.Name) > 120 {
			return respondError(c, apperr.Validation("name must be 1-120 characters"))
		}
		if req.UnitPrice < model.MinUnitPrice || req.UnitPrice > model.MaxUnitPrice {
			return respondError(c, apperr.Validation("unitPrice must be in [%d, %d]",
				model.MinUnitPrice, model.MaxUnitPrice))
		}

		prod, err := svc.Create(c.Request().Context(), req.Name, req.UnitPrice)
		if err != nil {
			return respondError(c, err)
		}

		c.Response().Header().Set("Location", "/v1/products/"+prod.ProdID)
		return c.JSON(http.StatusCreated, prod)
	}
}
