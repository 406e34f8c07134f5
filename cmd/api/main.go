// @title           Admin API
// @version         1.0
// @description     Authentication, session tokens and user management for the admin console.
// @BasePath        /api
//
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the access token.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/99minutos/admin-api/docs"
	"github.com/99minutos/admin-api/internal/api"
	"github.com/99minutos/admin-api/internal/api/handler"
	"github.com/99minutos/admin-api/internal/core/ports"
	"github.com/99minutos/admin-api/internal/core/service"
	"github.com/99minutos/admin-api/internal/infrastructure/db/postgres"
	"github.com/99minutos/admin-api/internal/infrastructure/db/redis"
	"github.com/99minutos/admin-api/internal/infrastructure/events"
	"github.com/99minutos/admin-api/internal/infrastructure/mail"
	"github.com/99minutos/admin-api/internal/infrastructure/queue"
	"github.com/99minutos/admin-api/internal/infrastructure/tracing"
	"github.com/99minutos/admin-api/internal/pkg/config"
	"github.com/99minutos/admin-api/internal/pkg/token"
	"github.com/99minutos/admin-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: cfg.Tracing.ServiceName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("admin api stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing.Endpoint, cfg.Tracing.ServiceName)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown")
		}
	}()

	// --- Relational store ---
	db, err := postgres.Connect(ctx, postgres.Config{URL: cfg.Postgres.URL, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		return err
	}
	defer db.Close()
	if cfg.Postgres.AutoMigrate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		log.Info().Msg("schema ensured")
	}
	users := postgres.NewUserRepository(db)
	roles := postgres.NewRoleRepository(db)

	checks := map[string]handler.DependencyCheck{
		db.DriverName(): func(ctx context.Context) error { return postgres.Ping(ctx, db, 0) },
	}

	// --- Token codec ---
	codec, err := token.NewCodec(cfg.Token.Secret,
		token.WithIssuer(cfg.Token.Issuer),
		token.WithLogger(log),
	)
	if err != nil {
		return err
	}

	authService := service.NewAuthService(users, codec, service.TokenTTLs{
		Login:   cfg.Token.LoginTTL,
		Access:  cfg.Token.AccessTTL,
		Refresh: cfg.Token.RefreshTTL,
	}, log)

	// --- Optional Redis: readiness and single-use refresh tokens ---
	if cfg.Redis.Addr != "" {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb, 0) }
		if cfg.Redis.RefreshSingleUse {
			authService.WithRefreshTracker(redis.NewRefreshTracker(rdb))
			log.Info().Msg("single-use refresh tokens enabled")
		}
	} else if cfg.Redis.RefreshSingleUse {
		log.Warn().Msg("REFRESH_SINGLE_USE ignored: REDIS_ADDR is not set")
	}

	// --- Login-link mail ---
	var mailer ports.Mailer = mail.NewLogMailer(cfg.SMTP.LoginLinkURL, log)
	if cfg.SMTP.Host != "" {
		mailer = mail.NewSMTPMailer(mail.Config{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			User:     cfg.SMTP.User,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
			LinkURL:  cfg.SMTP.LoginLinkURL,
		})
	}
	dispatcher := queue.NewDispatcher(cfg.SMTP.Workers, mailer, log)
	dispatcher.Start(ctx)
	authService.WithLoginLinks(dispatcher)

	// --- User events ---
	userService := service.NewUserService(users, roles, log)
	if len(cfg.Kafka.Brokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer publisher.Close()
		userService.WithEvents(publisher)
	}

	docs.SwaggerInfo.BasePath = cfg.BasePath

	e := api.NewRouter(api.Dependencies{
		AuthService: authService,
		UserService: userService,
		RoleService: service.NewRoleService(roles),
		Codec:       codec,
		Users:       users,
		Checks:      checks,
		Logger:      log,
		BasePath:    cfg.BasePath,
		ServiceName: cfg.Tracing.ServiceName,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("base_path", cfg.BasePath).Msg("admin api listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

