package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/database"
	"github.com/iliyamo/event-ticketing/internal/handler"
	"github.com/iliyamo/event-ticketing/internal/middleware"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/router"
	"github.com/iliyamo/event-ticketing/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	level := log.INFO
	if cfg.Env == "dev" {
		level = log.DEBUG
	}
	newLogger := func(prefix string) *log.Logger {
		l := log.New(prefix)
		l.SetLevel(level)
		return l
	}

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		e.Logger.Fatalf("database: %v", err)
	}
	if err := database.Migrate(ctx, db); err != nil {
		e.Logger.Fatalf("migrate: %v", err)
	}

	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		e.Logger.Warnf("redis unavailable, cache and rate limiting disabled: %v", err)
	}

	events := repository.NewEventRepo(db)
	orders := repository.NewOrderRepo(db, events)
	users := repository.NewUserRepo(db)
	categories := repository.NewCategoryRepo(db)
	comments := repository.NewCommentRepo(db)

	var publisher service.OrderPublisher
	amqpPub, err := service.NewAMQPPublisher(cfg.AMQPURL, cfg.OrderQueue, newLogger("amqp"))
	if err != nil {
		e.Logger.Warnf("broker unavailable, order.confirmed messages disabled: %v", err)
	} else {
		publisher = amqpPub
		go func() {
			if err := queue.StartOrderConsumer(ctx, cfg.AMQPURL, cfg.OrderQueue, cfg.OrderLogDir, newLogger("order-consumer")); err != nil && !errors.Is(err, context.Canceled) {
				e.Logger.Errorf("order consumer: %v", err)
			}
		}()
	}

	var lineItems service.LineItemLookup
	if cfg.StripeSecretKey != "" {
		lineItems = payment.NewLineItemClient(cfg.StripeAPIBase, cfg.StripeSecretKey, nil)
	}

	eventSvc := service.NewEventService(events, users, categories, newLogger("events"))
	orderSvc := service.NewOrderService(orders, events, lineItems, publisher, newLogger("orders"))
	ratingSvc := service.NewRatingService(events, users, newLogger("ratings"))
	commentSvc := service.NewCommentService(comments, events, users, newLogger("comments"))

	h := router.Handlers{
		Health:     handler.Health(db),
		Events:     handler.NewEventHandler(eventSvc),
		Ratings:    handler.NewRatingHandler(ratingSvc),
		Comments:   handler.NewCommentHandler(commentSvc),
		Orders:     handler.NewOrderHandler(orderSvc),
		Categories: handler.NewCategoryHandler(categories),
		Webhook:    handler.NewWebhookHandler(payment.NewVerifier(cfg.WebhookSecret), orderSvc, newLogger("webhook")),
	}

	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			if v.Error != nil {
				c.Logger().Errorf("%s %s %d %s: %v", v.Method, v.URI, v.Status, v.Latency, v.Error)
				return nil
			}
			c.Logger().Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Metrics())

	router.RegisterRoutes(e, h, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
	router.RegisterProtected(e, h, cfg.JWTSecret, middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	addr := ":" + cfg.Port
	go func() {
		e.Logger.Infof("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	e.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Errorf("http shutdown: %v", err)
	}
	if amqpPub != nil {
		_ = amqpPub.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := db.Close(); err != nil {
		e.Logger.Errorf("database close: %v", err)
	}
}
