// @title           Passvault API
// @version         1.0
// @description     Password manager backend: OTP registration, sessions, items and stored site accounts.
// @host            localhost:8080
// @schemes         http https
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "passvault/docs"
	"passvault/internal/api"
	"passvault/internal/auth"
	"passvault/internal/config"
	"passvault/internal/database"
	"passvault/internal/logging"
	"passvault/internal/mailer"
	"passvault/internal/storage"
	"passvault/internal/websocket"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "passvault",
		Short:        "Password manager API server",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to settings file (default configs/settings.yml)")
	root.PersistentFlags().String("addr", ":8080", "HTTP listen address")
	root.PersistentFlags().String("log-level", "info", "debug, info, warn or error")

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := logging.Setup(cfg.Log.Format, cfg.Log.Level, os.Stdout)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger := logging.Setup(cfg.Log.Format, cfg.Log.Level, os.Stdout)

			pool, err := database.Connect(cmd.Context(), cfg.DB.Source, logger)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := database.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			logger.Info("migrations applied")
			return nil
		},
	}
}

// startCleaner runs c until the returned stop is called, independent of ctx being
// cancelled, so requests still draining in http.Server.Shutdown can discard images.
// stop waits for the final drain.
func startCleaner(ctx context.Context, c *storage.Cleaner) (stop func()) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(runCtx)
	}()
	return func() {
		cancel()
		<-done
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	pool, err := database.Connect(ctx, cfg.DB.Source, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		return err
	}

	objects, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	logger.Info("storage ready", "driver", cfg.Storage.Driver)

	cleaner := storage.NewCleaner(objects, cfg.Storage.CleanupQueue, logger,
		cfg.Storage.DefaultProfilePicture, cfg.Storage.DefaultAccountImage)
	defer startCleaner(ctx, cleaner)()

	mail, err := mailer.New(cfg.Mail, logger)
	if err != nil {
		return fmt.Errorf("init mailer: %w", err)
	}

	wsHub := websocket.NewHub(logger)
	go wsHub.Run(ctx)

	store := database.NewStore(pool)
	authService := auth.NewService(store, store, mail, auth.Options{
		Secret:                    cfg.JWT.Secret,
		TokenTTL:                  cfg.JWT.TTL,
		OTPTTL:                    cfg.Auth.OTPTTL,
		ResetGrantTTL:             cfg.Auth.ResetGrantTTL,
		ResetRequiresVerification: cfg.Auth.ResetRequiresVerification,
		BcryptCost:                cfg.Auth.BcryptCost,
		DefaultProfilePicture:     cfg.Storage.DefaultProfilePicture,
	}, logger)
	authService.SetNotifier(wsHub)

	server := api.NewServer(cfg, store, objects, cleaner, authService, wsHub, logger)
	limiter := api.NewRateLimiter(cfg.RateLimit.AuthPerMinute, cfg.RateLimit.AuthBurst)

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(server, limiter),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
