// Command tokoadmin runs the administration console in front of the
// storefront API.
package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog"

	"tokoadmin/internal/handlers"
	"tokoadmin/internal/notifications"
	"tokoadmin/internal/services"
	"tokoadmin/internal/state"
	"tokoadmin/pkg/apiclient"
	"tokoadmin/pkg/config"
	applog "tokoadmin/pkg/logger"
	"tokoadmin/pkg/rabbitmq"
)

// console bundles what main wires together.
type console struct {
	app      *fiber.App
	registry *state.Registry
	listener *notifications.Listener
}

// newConsole builds the console app. publisher may be nil.
func newConsole(cfg *config.Config, publisher rabbitmq.Publisher, log zerolog.Logger, accessLog bool) *console {
	api := apiclient.New(apiclient.Config{BaseURL: cfg.Upstream.BaseURL, Timeout: cfg.Upstream.Timeout}, log)
	registry := state.NewRegistry()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	app.Use(recover.New())
	if accessLog {
		app.Use(fiberlogger.New())
	}

	handlers.Router(app, handlers.Deps{
		Sellers:       services.NewSellerService(api, log),
		Products:      services.NewProductService(api, log),
		Orders:        services.NewOrderService(api, log),
		Auth:          services.NewAuthService(api, registry, cfg.Session.CookieName, cfg.Session.JWTSecret, log),
		Notifications: notifications.NewService(registry, publisher, log),
		Tables:        handlers.NewTables(cfg.Table.Rows),
		CookieName:    cfg.Session.CookieName,
		OrdersUserID:  cfg.Upstream.OrdersUserID,
		Log:           log,
	})

	return &console{
		app:      app,
		registry: registry,
		listener: notifications.NewListener(registry, log),
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal := zerolog.New(os.Stderr)
		fatal.Fatal().Err(err).Msg("invalid configuration")
	}
	log := applog.New(applog.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	var publisher rabbitmq.Publisher
	mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, live notifications disabled")
	} else {
		defer mq.Close()
		publisher = mq
	}

	c := newConsole(cfg, publisher, log, true)

	if mq != nil {
		if err := mq.Consume(cfg.RabbitMQ.Queue, c.listener.Handle); err != nil {
			log.Error().Err(err).Msg("failed to start notification consumer")
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.HTTP.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("starting console")
		if err := c.app.Listen(cfg.HTTP.Port); err != nil {
			log.Fatal().Err(err).Msg("console failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down console")
	if err := c.app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}
