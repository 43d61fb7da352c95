// Command storefront runs the storefront double for local development.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"tokoadmin/internal/models"
	"tokoadmin/internal/storefront"
	"tokoadmin/pkg/config"
	applog "tokoadmin/pkg/logger"
	"tokoadmin/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fatal := zerolog.New(os.Stderr)
		fatal.Fatal().Err(err).Msg("invalid configuration")
	}
	log := applog.New(applog.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	db, err := openDB(cfg.DB.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}

	var publisher rabbitmq.Publisher
	mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, log)
	if err != nil {
		log.Warn().Err(err).Msg("RabbitMQ unavailable, notifications disabled")
	} else {
		defer mq.Close()
		publisher = mq
	}

	srv, err := storefront.New(storefront.Options{
		DB:         db,
		Publisher:  publisher,
		JWTSecret:  cfg.Session.JWTSecret,
		TokenTTL:   cfg.Session.TTL,
		CookieName: cfg.Session.CookieName,
		AccessLog:  true,
		Log:        log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build storefront")
	}

	var users int64
	if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
		log.Fatal().Err(err).Msg("failed to count users")
	}
	if users == 0 {
		seed, err := srv.Seed("password123")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to seed storefront")
		}
		log.Info().Str("admin", seed.Admin.Email).Msg("seeded demo data, every account uses password123")
	}

	app := srv.App()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Str("addr", cfg.HTTP.StorefrontPort).Msg("starting storefront")
		if err := app.Listen(cfg.HTTP.StorefrontPort); err != nil {
			log.Fatal().Err(err).Msg("storefront failed to start")
		}
	}()

	<-quit
	log.Info().Msg("shutting down storefront")
	if err := app.Shutdown(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
	}
}

// openDB picks the Postgres driver for postgres:// or key=value DSNs and
// SQLite otherwise.
func openDB(dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return gorm.Open(postgres.Open(dsn), gcfg)
	}
	return gorm.Open(sqlite.Open(dsn), gcfg)
}
