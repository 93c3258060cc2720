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

	"comuna-reader/internal/auth"
	"comuna-reader/internal/backend"
	"comuna-reader/internal/config"
	"comuna-reader/internal/engine"
	"comuna-reader/internal/server"
	"comuna-reader/internal/settings"
	"comuna-reader/internal/storage"
	"comuna-reader/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "reader",
		Usage: "feed reader gateway for the content backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "enable debug logging",
				EnvVars: []string{"DEBUG"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the gateway HTTP server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "addr",
						Usage:   "listen address",
						Value:   ":3000",
						EnvVars: []string{"READER_ADDR"},
					},
					&cli.StringFlag{
						Name:    "db",
						Usage:   "path to the local state database (empty for in-memory)",
						EnvVars: []string{"READER_DB"},
					},
				},
				Action: runServe,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}

func runServe(c *cli.Context) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(c.Bool("debug") || cfg.Debug)
	slog.SetDefault(logger)

	var store storage.KeyValue
	if dbPath := c.String("db"); dbPath != "" {
		sqliteStore, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return fmt.Errorf("failed to open state database: %w", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		logger.Info("using sqlite state store", "path", dbPath)
	} else {
		store = storage.NewMemory()
		logger.Info("using in-memory state store")
	}

	metrics := utils.NewMetricsCollector()
	resolver := backend.NewResolver(cfg.Backend)
	endpoints := backend.ResolveEndpoints(resolver, backend.ContextServer)
	logger.Info("resolved backend origin", "base", endpoints.Base())

	content := backend.NewClient(endpoints, logger, metrics)
	authClient := auth.NewClient(endpoints, logger)

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, settings.Defaults(cfg.Frontend), store, authClient, logger)
	if err := eng.Start(); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer eng.Stop()

	srv := &http.Server{
		Addr:              c.String("addr"),
		Handler:           server.NewServer(content, eng, logger, metrics).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
