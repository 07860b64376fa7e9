// Package http exposes the service over REST. Handlers stay thin: bind,
// delegate to a service, map errors centrally.
package http

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/emolinam31/Tickio/internal/config"
	"github.com/emolinam31/Tickio/internal/metrics"
	"github.com/emolinam31/Tickio/internal/queue"
)

// Services bundles the application services the router depends on.
type Services struct {
	Cart         CartService
	Availability AvailabilityReader
	Checkout     CheckoutRunner
	Orders       OrderReader
	Catalog      CatalogManager
}

// NewRouter builds the echo instance with all routes and middleware wired.
// Redis is optional; without it mutating endpoints are not rate limited.
func NewRouter(cfg config.Config, svcs Services, m *metrics.Metrics, publisher *queue.Publisher, redisClient *redis.Client, log *logrus.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization, sessionHeader},
	}))
	e.Use(requestLogger(log))
	e.Use(ownerResolver(cfg.JWTSecret))

	limiter := rateLimiter(redisClient, cfg.RateLimit, log)

	cart := &cartHandlers{holds: svcs.Cart, metrics: m}
	availability := &availabilityHandlers{availability: svcs.Availability}
	checkout := &checkoutHandlers{checkout: svcs.Checkout, publisher: publisher, metrics: m}
	orders := &orderHandlers{orders: svcs.Orders}
	catalog := &catalogHandlers{catalog: svcs.Catalog}

	e.GET("/health", handleHealth)
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	e.GET("/events", catalog.listEvents)
	e.GET("/events/:id/ticket-types", catalog.listTicketTypes)
	e.GET("/availability/:id", availability.get)

	e.GET("/cart", cart.list)
	e.DELETE("/cart", cart.clear, limiter)
	e.PUT("/cart/items/:id", cart.upsertItem, limiter)
	e.DELETE("/cart/items/:id", cart.removeItem, limiter)

	e.POST("/checkout", checkout.run, limiter)

	e.GET("/orders", orders.list)
	e.GET("/orders/:id", orders.get)
	e.GET("/orders/:id/tickets", orders.listTickets)
	e.POST("/orders/:id/refund", orders.refund, limiter)

	e.GET("/tickets/:code", orders.getTicket)
	e.POST("/tickets/:code/use", orders.useTicket, limiter)

	admin := e.Group("/admin")
	admin.POST("/events", catalog.createEvent)
	admin.GET("/events", catalog.listEvents)
	admin.POST("/events/:id/ticket-types", catalog.createTicketType)
	admin.GET("/events/:id/ticket-types", catalog.listTicketTypes)
	admin.PATCH("/ticket-types/:id", catalog.setTicketTypeActive)

	return e
}

func requestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			log.WithFields(logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Request().URL.Path,
				"status":  c.Response().Status,
				"elapsed": time.Since(start).String(),
			}).Info("request")
			return nil
		}
	}
}
