package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/slanup/server/internal/api"
	"github.com/slanup/server/internal/config"
	"github.com/slanup/server/internal/domain/events"
	"github.com/slanup/server/internal/geocoding"
	"github.com/slanup/server/internal/geocoding/nominatim"
	"github.com/slanup/server/internal/metrics"
	"github.com/slanup/server/internal/storage/memory"
	"github.com/slanup/server/internal/storage/postgres"
	"github.com/spf13/cobra"
)

var (
	// Server flags (override config/env)
	serverHost string
	serverPort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Slanup HTTP server",
	Long: `Start the Slanup HTTP server and begin accepting API requests.

The server will:
- Load configuration from environment variables
- Probe PostgreSQL once and fall back to the in-memory store if unreachable
- Serve the event directory API and geocoding proxy
- Handle graceful shutdown on SIGINT/SIGTERM

Examples:
  # Start with default configuration (from env vars)
  server serve

  # Start on a specific host and port
  server serve --host 127.0.0.1 --port 9090

  # Start with debug logging
  server serve --log-level debug`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serverHost, "host", "", "server host address (default: 0.0.0.0)")
	serveCmd.Flags().IntVar(&serverPort, "port", 0, "server port (default: 8080)")
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if serverHost != "" {
		cfg.Server.Host = serverHost
	}
	if serverPort != 0 {
		cfg.Server.Port = serverPort
	}

	logger := config.NewLogger(cfg.Logging)
	logger.Info().Str("version", Version).Msg("starting slanup server")

	repo, cleanup := selectEventStore(cfg, logger)
	defer cleanup()

	metrics.Init(Version, GitCommit, repo.Backend())

	geocoderClient := nominatim.NewClient(
		cfg.Geocoder.BaseURL,
		cfg.Geocoder.Email,
		nominatim.WithRateLimit(cfg.Geocoder.RatePerSecond),
	)
	geocoder := geocoding.NewService(geocoderClient, logger)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(cfg, logger, repo, geocoder, Version),
		ReadTimeout:       10 * time.Second, // Total time to read request
		WriteTimeout:      30 * time.Second, // Total time to write response
		ReadHeaderTimeout: 5 * time.Second,  // Time to read headers
		MaxHeaderBytes:    1 << 20,          // 1 MB max header size
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
		}
	}()

	return gracefulShutdown(server, logger)
}

// selectEventStore runs the single startup reachability probe that picks the
// backend for the life of the process. No failback afterwards: an instance
// that starts on the in-memory store stays on it until restart.
func selectEventStore(cfg config.Config, logger zerolog.Logger) (events.Repository, func()) {
	if cfg.Database.URL == "" {
		logger.Warn().Msg("DATABASE_URL not set; using in-memory event store (data is lost on restart)")
		return memory.NewEventRepository(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Database.ProbeTimeout)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
	if err != nil {
		logger.Warn().Err(err).Msg("database unreachable; using in-memory event store (data is lost on restart)")
		return memory.NewEventRepository(), func() {}
	}

	logger.Info().Msg("connected to postgres event store")
	return postgres.NewEventRepository(pool), pool.Close
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}

	return cfg, nil
}

func gracefulShutdown(server *http.Server, logger zerolog.Logger) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
		return err
	}
	return nil
}
