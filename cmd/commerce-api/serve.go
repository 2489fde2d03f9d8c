package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/99minutos/commerce-api/internal/api"
	"github.com/99minutos/commerce-api/internal/api/handler"
	"github.com/99minutos/commerce-api/internal/core/ports"
	"github.com/99minutos/commerce-api/internal/core/service"
	mongostore "github.com/99minutos/commerce-api/internal/infrastructure/db/mongo"
	redisstore "github.com/99minutos/commerce-api/internal/infrastructure/db/redis"
	"github.com/99minutos/commerce-api/internal/infrastructure/db/sqlstore"
	"github.com/99minutos/commerce-api/internal/infrastructure/security"
	"github.com/99minutos/commerce-api/internal/pkg/config"
	"github.com/99minutos/commerce-api/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

// backend bundles whichever store STORE_DRIVER selected.
type backend struct {
	users     ports.CredentialStore
	addresses ports.AddressRepository
	checks    []handler.HealthCheck
	closers   []func(context.Context) error
}

func (b *backend) close(ctx context.Context, log zerolog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](ctx); err != nil {
			log.Error().Err(err).Msg("close dependency")
		}
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	opts := logger.Options{Level: cfg.Log.Level, Pretty: cfg.IsDevelopment()}
	if cfg.Log.File != "" {
		opts.File = &logger.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		}
	}
	log := logger.Init(opts)
	defer logger.Close()

	b, err := openBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		b.close(closeCtx, log)
	}()

	var denylist ports.TokenDenylist
	if cfg.Redis.Addr != "" {
		rdb, err := redisstore.Connect(ctx, redisstore.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		b.closers = append(b.closers, func(context.Context) error { return rdb.Close() })
		b.checks = append(b.checks, handler.HealthCheck{
			Name: "redis",
			Ping: func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		})
		denylist = redisstore.NewDenylist(rdb)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("token revocation enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set; logout will not revoke tokens")
	}

	tokens := security.NewJWTService([]byte(cfg.Auth.JWTSecret))
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)

	e := api.NewRouter(api.Dependencies{
		Logger:       log,
		Auth:         service.NewAuthService(b.users, hasher, tokens, denylist, cfg.Auth.TokenTTL, log),
		Addresses:    service.NewAddressService(b.addresses, log),
		Verifier:     tokens,
		Denylist:     denylist,
		HealthChecks: b.checks,
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("store", cfg.Store.Driver).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func openBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case config.DriverMongo:
		client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
		if err != nil {
			return nil, err
		}
		if err := mongostore.EnsureIndexes(ctx, db); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
		log.Info().Str("database", cfg.Mongo.Database).Msg("mongo store ready")
		return &backend{
			users:     mongostore.NewUserRepository(db),
			addresses: mongostore.NewAddressRepository(db),
			checks: []handler.HealthCheck{{
				Name: "mongodb",
				Ping: func(ctx context.Context) error { return client.Ping(ctx, nil) },
			}},
			closers: []func(context.Context) error{client.Disconnect},
		}, nil

	default:
		store, err := sqlstore.Open(ctx, sqlstore.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DatabaseURL}, log)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.Store.Driver).Msg("relational store ready")
		return &backend{
			users:     store.Users(),
			addresses: store.Addresses(),
			checks:    []handler.HealthCheck{{Name: cfg.Store.Driver, Ping: store.Ping}},
			closers:   []func(context.Context) error{func(context.Context) error { return store.Close() }},
		}, nil
	}
}
