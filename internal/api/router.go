package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"storefront/internal/config"
	"storefront/internal/metrics"
	"storefront/internal/service"
)

type Services struct {
	Products *service.ProductService
	Orders   *service.OrderService
	Carts    *service.CartService
}

// NewServer wires middleware and routes onto a new echo instance.
func NewServer(svc Services, m *metrics.ServerMetrics, limiter config.Limiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = errorHandler

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(limiter.Rate),
				Burst:     limiter.Burst,
				ExpiresIn: limiter.ExpiresIn,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.RealIP(), nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return fail(context, http.StatusForbidden, "unable to identify client")
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return fail(context, http.StatusTooManyRequests, "rate limit exceeded")
		},
	}

	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := logger.Info()
			if v.Error != nil {
				event = logger.Error().Err(v.Error)
			}
			event.Str("method", v.Method).Str("uri", v.URI).Int("status", v.Status).Dur("latency", v.Latency).Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())
	if m != nil {
		e.Use(m.Middleware())
		e.GET("/metrics", m.Handler())
	}
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	placed := metricsCounter(m)
	orderHandler := NewOrderHandler(svc.Orders, placed)
	productHandler := NewProductHandler(svc.Products)
	cartHandler := NewCartHandler(svc.Carts, placed)

	g := e.Group("/api")

	g.POST("/orders", orderHandler.CreateOrder)
	g.GET("/orders", orderHandler.GetOrders)
	g.GET("/orders/customer/:email", orderHandler.GetCustomerOrders)
	g.GET("/orders/:orderId", orderHandler.GetOrder)

	g.GET("/products", productHandler.GetProducts)
	g.POST("/products", productHandler.CreateProduct)
	g.GET("/products/:id", productHandler.GetProduct)
	g.PUT("/products/:id", productHandler.UpdateProduct)
	g.DELETE("/products/:id", productHandler.DeleteProduct)

	g.GET("/carts/:cartId", cartHandler.GetCart)
	g.DELETE("/carts/:cartId", cartHandler.ClearCart)
	g.POST("/carts/:cartId/items", cartHandler.AddItem)
	g.PUT("/carts/:cartId/items/:productId", cartHandler.UpdateItem)
	g.DELETE("/carts/:cartId/items/:productId", cartHandler.RemoveItem)
	g.POST("/carts/:cartId/checkout", cartHandler.Checkout)

	g.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"service": "storefront",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	return e
}

func metricsCounter(m *metrics.ServerMetrics) prometheus.Counter {
	if m == nil {
		return nil
	}
	return m.OrdersPlaced
}
