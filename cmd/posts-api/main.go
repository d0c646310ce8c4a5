package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/deppfellow/posts-api/internal/config"
	"github.com/deppfellow/posts-api/internal/database"
	"github.com/deppfellow/posts-api/internal/handler"
	"github.com/deppfellow/posts-api/internal/logger"
	"github.com/deppfellow/posts-api/internal/repository"
	"github.com/deppfellow/posts-api/internal/router"
	"github.com/deppfellow/posts-api/internal/server"
	"github.com/deppfellow/posts-api/internal/service"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// DefaultContextTimeout bounds graceful shutdown.
const DefaultContextTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "posts-api",
		Short:         "HTTP API for posts",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server (default)",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and exit",
			RunE:  runMigrate,
		},
	)

	return root
}

// bootstrap loads configuration and builds the loggers shared by every command.
func bootstrap() (*config.Config, *logger.LoggerService, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		return nil, nil, zerolog.Logger{}, err
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger service:", err)
		return nil, nil, zerolog.Logger{}, err
	}

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)
	return cfg, loggerService, log, nil
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer loggerService.Shutdown()

	if err := database.Migrate(cmd.Context(), &log, cfg); err != nil {
		log.Error().Err(err).Msg("failed to migrate database")
		return err
	}
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, loggerService, log, err := bootstrap()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, &log, loggerService)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize server")
		loggerService.Shutdown()
		return err
	}

	exec := database.NewExecutor(srv.DB.Pool, &log, cfg.Observability.Logging.SlowQueryThreshold)
	repos := repository.NewRepositories(exec)
	services := service.NewServices(repos)
	handlers := handler.NewHandlers(srv, services, srv.DB.Pool)

	srv.SetupHTTPServer(router.NewRouter(srv, handlers))

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err = <-serveErr:
		if err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultContextTimeout)
	defer cancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Error().Err(shutdownErr).Msg("server forced to shutdown")
		err = errors.Join(err, shutdownErr)
	}

	log.Info().Msg("server exited properly")
	return err
}
