package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mall-api/internal/config"
	"mall-api/internal/db"
	"mall-api/internal/events"
	"mall-api/internal/handlers"
	"mall-api/internal/logger"
	"mall-api/internal/mailer"
	"mall-api/internal/metrics"
	"mall-api/internal/middleware"
	"mall-api/internal/revocation"
	"mall-api/internal/router"
	"mall-api/internal/services"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("Invalid configuration")
	}

	log := logger.InitLogger(cfg.LogLevel, !cfg.IsProduction())
	log.Info().Str("env", cfg.Env).Msg("Application starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("Application stopped with error")
	}
	log.Info().Msg("Server stopped")
}

func run(ctx context.Context, cfg config.Config, log zerolog.Logger) error {
	database, err := db.InitDB(cfg.DBDriver, cfg.DBUrl)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database); err != nil {
		return err
	}
	log.Info().Str("driver", cfg.DBDriver).Msg("Database ready")

	m := metrics.New()
	auditLog := events.NewAuditLog(database)
	publishers := events.Fanout{auditLog, m}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafkaPublisher.Close()
		publishers = append(publishers, kafkaPublisher)
		log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("Publishing events to Kafka")
	}

	var mail mailer.Mailer = mailer.NewLogMailer(log)
	if cfg.MailtrapToken != "" {
		mail = mailer.NewMailtrap(cfg.MailtrapURL, cfg.MailtrapToken, cfg.MailFrom, cfg.MailFromName)
	} else {
		log.Warn().Msg("MAILTRAP_TOKEN not set, emails are only logged")
	}

	var revoked revocation.Store
	switch {
	case cfg.RedisURL != "":
		client, err := revocation.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		revoked = revocation.NewRedisStore(client)
		log.Info().Msg("Session revocation backed by Redis")
	case cfg.RevokeOnLogout:
		revoked = revocation.NewMemoryStore()
		log.Info().Msg("Session revocation kept in memory")
	}

	authService := services.NewAuthService(cfg.JWTSecret, cfg.SessionTTL, revoked, log)
	userService := services.NewUserService(database, authService, mail, publishers, services.UserServiceConfig{
		BcryptCost:      cfg.BcryptCost,
		VerificationTTL: cfg.VerificationTTL,
		ResetTTL:        cfg.ResetTTL,
		FrontendURL:     cfg.FrontendURL,
	}, log)

	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		if err := userService.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			return err
		}
	}

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow, m)

	handler := router.SetupRouter(router.Dependencies{
		DB:             database,
		Logger:         log,
		Auth:           authService,
		Users:          userService,
		Categories:     services.NewCategoryService(database, publishers, log),
		Floors:         services.NewFloorService(database, publishers, log),
		Shops:          services.NewShopService(database, publishers, log),
		Products:       services.NewProductService(database, publishers, log),
		Offers:         services.NewOfferService(database, publishers, log),
		AuditLog:       auditLog,
		Metrics:        m,
		RateLimiter:    rateLimiter,
		Cookie:         handlers.SessionCookie{Name: cfg.CookieName, Secure: cfg.CookieSecure},
		FrontendOrigin: cfg.FrontendOrigin,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("port", cfg.Port).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		return rateLimiter.Cleanup(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Graceful shutdown failed")
			return err
		}
		return nil
	})

	return g.Wait()
}
