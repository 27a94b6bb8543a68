package http

import (
	"context"
	"net/http"

	echo "github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"ordergw/internal/auth"
	"ordergw/internal/http/middleware"
	"ordergw/internal/logger"
	"ordergw/internal/metrics"
	"ordergw/internal/ratelimit"
	"ordergw/internal/service"
)

// Deps carries everything the HTTP layer needs, assembled once at startup.
type Deps struct {
	Gate      *auth.Gate
	GlobalLim ratelimit.Limiter
	WriteLim  ratelimit.Limiter
	Customers *service.Customers
	Products  *service.Products
	Orders    *service.Orders
}

type Server struct{ e *echo.Echo }

// NewServer wires the middleware pipeline: global rate limit, then the auth
// gate, then (on write endpoints) the stricter write limit, then the
// handler.
func NewServer(d Deps) *Server {
	e := echo.New()
	e.HideBanner = true
	// Failure tracking, blocking, and rate limiting key on the client
	// address. Forwarded headers are caller-controlled, so the address must
	// come from the socket peer, never from X-Forwarded-For or X-Real-IP.
	e.IPExtractor = echo.ExtractIPDirect()
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	globalRL := middleware.GlobalRateLimit(d.GlobalLim)
	authMW := middleware.APIKeyMiddleware(d.Gate)
	writeRL := middleware.WriteRateLimit(d.WriteLim)

	v1 := e.Group("/v1", globalRL, authMW)
	v1.POST("/customers", createCustomerHandler(d.Customers, d.Gate.Registry()), writeRL)
	v1.POST("/products", createProductHandler(d.Products), writeRL)
	v1.POST("/orders", createOrderHandler(d.Orders), writeRL)
	v1.GET("/orders", searchOrdersHandler(d.Orders))
	v1.GET("/orders/:id", getOrderHandler(d.Orders))

	return &Server{e: e}
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler { return s.e }

func (s *Server) Start(addr string) error {
	logger.Log.Info("http: listening", zap.String("addr", addr))
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
