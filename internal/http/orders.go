package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"

	"ordergw/internal/apperr"
	"ordergw/internal/model"
	"ordergw/internal/service"
	"ordergw/internal/store"
)

type orderLineReq struct {
	ProdID string `json:"prodId"`
	Qty    int    `json:"qty"`
}

type createOrderReq struct {
	CustID string         `json:"custId"`
	Items  []orderLineReq `json:"items"`
}

func createOrderHandler(svc *service.Orders) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req createOrderReq
		if err := c.Bind(&req); err != nil {
			return respondError(c, apperr.Validation("invalid request body"))
		}

		if strings.TrimSpace(req.CustID) == "" {
			return respondError(c, apperr.Validation("custId is required"))
		}
		if len(req.Items) == 0 {
			return respondError(c, apperr.Validation("items must not be empty"))
		}
		items := make([]service.OrderLineInput, 0, len(req.Items))
		for _, it := range req.Items {
			if strings.TrimSpace(it.ProdID) == "" {
				return respondError(c, apperr.Validation("prodId is required on every line"))
			}
			if it.Qty < model.MinQty || it.Qty > model.MaxQty {
				return respondError(c, apperr.Validation("qty must be in [%d, %d]",
					model.MinQty, model.MaxQty))
			}
			items = append(items, service.OrderLineInput{ProdID: it.ProdID, Qty: it.Qty})
		}

		order, err := svc.Create(c.Request().Context(), req.CustID, items)
		if err != nil {
			return respondError(c, err)
		}

		c.Response().Header().Set("Location", "/v1/orders/"+order.OrderID)
		return c.JSON(http.StatusCreated, order)
	}
}

func getOrderHandler(svc *service.Orders) echo.HandlerFunc {
	return func(c echo.Context) error {
		order, err := svc.Get(c.Request().Context(), c.Param("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(http.StatusOK, order)
	}
}

type searchOrdersResp struct {
	Items      []model.OrderSummary `json:"items"`
	TotalCount int                  `json:"totalCount"`
	Page       int                  `json:"page"`
	Size       int                  `json:"size"`
}

const dateLayout = "2006-01-02"

func searchOrdersHandler(svc *service.Orders) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := store.SearchQuery{
			CustID: strings.TrimSpace(c.QueryParam("custId")),
			Page:   0,
			Size:   20,
		}

		if v := c.QueryParam("dateFrom"); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				return respondError(c, apperr.Validation("dateFrom must be YYYY-MM-DD"))
			}
			q.From = &t
		}
		if v := c.QueryParam("dateTo"); v != "" {
			t, err := time.Parse(dateLayout, v)
			if err != nil {
				return respondError(c, apperr.Validation("dateTo must be YYYY-MM-DD"))
			}
			q.To = &t
		}
		if v := c.QueryParam("page"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return respondError(c, apperr.Validation("page must be a non-negative integer"))
			}
			q.Page = n
		}
		if v := c.QueryParam("size"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > 100 {
				return respondError(c, apperr.Validation("size must be in [1, 100]"))
			}
			q.Size = n
		}

		items, total, err := svc.Search(c.Request().Context(), q)
		if err != nil {
			return respondError(c, err)
		}
		if items == nil {
			items = []model.OrderSummary{}
		}
		return c.JSON(http.StatusOK, searchOrdersResp{
			Items:      items,
			TotalCount: total,
			Page:       q.Page,
			Size:       q.Size,
		})
	}
}
