package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/emolinam31/Tickio/internal/app"
	"github.com/emolinam31/Tickio/internal/clock"
	"github.com/emolinam31/Tickio/internal/config"
	"github.com/emolinam31/Tickio/internal/metrics"
	"github.com/emolinam31/Tickio/internal/payment"
	"github.com/emolinam31/Tickio/internal/queue"
	"github.com/emolinam31/Tickio/internal/storage/postgres"
	transporthttp "github.com/emolinam31/Tickio/internal/transport/http"
	"github.com/emolinam31/Tickio/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg := config.Load(log)

	startupCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.WithError(err).Fatal("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.WithError(err).Fatal("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.WithError(err).Fatal("apply migrations")
	}

	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(startupCtx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable, rate limiting disabled")
			redisClient = nil
		}
	}

	var publisher *queue.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = queue.NewPublisher(cfg.AMQPURL, log)
		if err != nil {
			log.WithError(err).Warn("amqp unreachable, order events disabled")
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	clk := clock.NewSystem()
	m := metrics.New()

	holdRepo := postgres.NewHoldRepository(pool)
	checkoutRepo := postgres.NewCheckoutRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)

	holdSvc := app.NewHoldService(holdRepo, clk, app.WithHoldTTL(cfg.HoldTTL))
	availabilitySvc := app.NewAvailabilityService(holdRepo, clk)
	checkoutSvc := app.NewCheckoutService(checkoutRepo, payment.NewDummyGateway(), clk, log,
		app.WithPaymentTimeout(cfg.PaymentTimeout))
	orderSvc := app.NewOrderService(orderRepo, clk)
	catalogSvc := app.NewCatalogService(catalogRepo, clk)

	reaper := app.NewReaper(holdRepo, clk, cfg.ReapInterval, log, m)

	router := transporthttp.NewRouter(cfg, transporthttp.Services{
		Cart:         holdSvc,
		Availability: availabilitySvc,
		Checkout:     checkoutSvc,
		Orders:       orderSvc,
		Catalog:      catalogSvc,
	}, m, publisher, redisClient, log)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		log.WithField("port", cfg.Port).Info("api listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		reaper.Start(gCtx)
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.WithError(err).Error("server error")
	}
	log.Info("server stopped")
}
