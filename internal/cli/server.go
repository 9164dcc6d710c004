package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	zlog "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"quiz-stats-service/internal/app"
	"quiz-stats-service/internal/config"
	"quiz-stats-service/internal/logger"
	transport "quiz-stats-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the event ingestion and statistics server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func initLogger(cfg config.Config) {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	initLogger(cfg)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	eventLog, closeLog, err := openEventLog(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	ingest := app.NewIngestService(eventLog, loc)
	stats := app.NewStatsService(eventLog, cfg.Stats.Workers)

	var rl transport.RateLimit
	if cfg.RateLimit.Enabled {
		rl = transport.RateLimit{
			Limit:  cfg.RateLimit.Limit,
			Window: config.Duration(cfg.RateLimit.Window, time.Minute),
		}
	}
	handler := transport.NewRouter(
		transport.NewEventsHandler(ingest, stats),
		transport.NewWSHandler(ingest),
		rl,
	)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		zlog.Info().
			Str("addr", server.Addr).
			Str("timezone", loc.String()).
			Msg("starting quiz stats service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Error().Err(err).Msg("failed to start server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		zlog.Info().Msg("shutting down server...")
	case <-ctx.Done():
		zlog.Info().Msg("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
