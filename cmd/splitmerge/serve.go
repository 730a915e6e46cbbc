package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/helixml/splitmerge/infrastructure/api"
	apimiddleware "github.com/helixml/splitmerge/infrastructure/api/middleware"
	"github.com/helixml/splitmerge/internal/config"
)

func serveCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is loaded in the following order (later sources override earlier):
  1. Default values
  2. .env file (if --env-file specified or .env exists in current directory)
  3. Environment variables
  4. Command line flags

Environment variables:
  HOST                Server host to bind to (default: 0.0.0.0)
  PORT                Server port to listen on (default: 8080)
  DATA_DIR            Data directory (default: ~/.splitmerge)
  DB_URL              Catalog database URL (default: sqlite:///{data_dir}/splitmerge.db)
  DISABLE_CATALOG     Do not record splits (default: false)
  LOG_LEVEL           Log level: DEBUG, INFO, WARN, ERROR (default: INFO)
  LOG_FORMAT          Log format: pretty, json (default: pretty)
  CHUNK_SIZE          Default fragment size in bytes (default: 1048576)
  WRITE_MANIFEST      Write a manifest next to fragments (default: false)
  CREATE_TARGET_DIR   Create missing split target directories (default: true)
  WORKER_COUNT        Sources split at once by multi-source splits (default: 1)
  API_KEYS            Comma-separated keys required for mutating requests`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), applyServeOverrides(cfg, host, port))
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Server host to bind to (default: 0.0.0.0)")
	cmd.Flags().IntVar(&port, "port", 0, "Server port to listen on (default: 8080)")

	return cmd
}

func runServe(ctx context.Context, cfg config.AppConfig) error {
	addr := cfg.Addr()

	client, slogger, err := openClient(cfg)
	if err != nil {
		return fmt.Errorf("create splitmerge client: %w", err)
	}
	defer closeClient(client, slogger)

	attrs := append([]slog.Attr{slog.String("version", version)}, cfg.LogAttrs()...)
	slogger.LogAttrs(ctx, slog.LevelInfo, "starting splitmerge", attrs...)
	if client.Catalog == nil {
		slogger.Warn("catalog disabled, split listing and merge by id are unavailable")
	}

	apiServer := api.NewAPIServer(client, client.APIKeys()).WithVersion(version)
	router := apiServer.Router()

	// Custom middleware must be registered before MountRoutes.
	router.Use(apimiddleware.CorrelationID)
	router.Use(apimiddleware.Logging(slogger))

	apiServer.MountRoutes()

	router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{
			"name":    "splitmerge",
			"version": version,
			"docs":    "/docs",
		})
	})

	docsRouter := apiServer.DocsRouter("/docs/openapi.json")
	router.Mount("/docs", docsRouter.Routes())

	server := api.NewServer(addr, slogger)
	server.Router().Mount("/", router)

	go func() {
		<-ctx.Done()
		slogger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slogger.Error("shutdown error", slog.Any("error", err))
		}
	}()

	if err := server.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// applyServeOverrides applies command line flag overrides to the config.
func applyServeOverrides(cfg config.AppConfig, host string, port int) config.AppConfig {
	var opts []config.AppConfigOption

	if host != "" {
		opts = append(opts, config.WithHost(host))
	}
	if port != 0 {
		opts = append(opts, config.WithPort(port))
	}

	return cfg.Apply(opts...)
}
