package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"fire-alert-service/internal/app/routes"
	"fire-alert-service/internal/domain/services/container"
	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/internal/infrastructure/database"
	"fire-alert-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, websocket hub and MQTT bridge",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.ServerPort = port
		}
		if mode, _ := cmd.Flags().GetString("migration-mode"); mode != "" {
			cfg.DBMigrationMode = mode
		}
		if cfg.EnvType == "SERVER" {
			gin.SetMode(gin.ReleaseMode)
		}

		return serve(cfg)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the database schema and ensure the default admin exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.GetConfig()
		mode, _ := cmd.Flags().GetString("mode")
		if mode == "" {
			mode = cfg.DBMigrationMode
		}

		pool, err := database.NewConnectionPool(cfg)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer pool.Close()

		return prepareDatabase(pool, cfg, mode)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "HTTP port, overrides SERVER_PORT")
	serveCmd.Flags().String("migration-mode", "", "auto or drop, overrides DB_MIGRATION_MODE")
	migrateCmd.Flags().String("mode", "", "auto or drop, defaults to DB_MIGRATION_MODE")
}

func prepareDatabase(pool *database.ConnectionPool, cfg *config.Config, mode string) error {
	if mode == database.MigrationDrop {
		logger.Warning("running in drop mode, every table is dropped and recreated")
	}
	if err := database.Migrate(pool.GetDB(), mode); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	created, err := database.EnsureAdminExists(pool.GetDB(), cfg)
	if err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	if created {
		logger.Info("default admin created: %s (%s)", cfg.DefaultAdminUsername, cfg.DefaultAdminEmail)
	}
	return nil
}

func serve(cfg *config.Config) error {
	runtime.GOMAXPROCS(runtime.NumCPU())

	pool, err := database.NewConnectionPool(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	if err := prepareDatabase(pool, cfg, cfg.DBMigrationMode); err != nil {
		return err
	}

	services := container.NewServiceContainer(pool.GetDB(), cfg, nil)
	services.Start()
	defer services.Shutdown()

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.ServerPort,
		Handler:           routes.SetupRouter(services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSystemInfo(pool)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening on http://0.0.0.0:%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received %s, shutting down", sig)
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed: %v", err)
	}
	logger.Info("shutdown complete")
	return nil
}

func printSystemInfo(pool *database.ConnectionPool) {
	if stats, err := pool.Stats(); err == nil {
		logger.Info("database pool: %+v", stats)
	}

	logger.Info("CPU cores: %d, goroutines: %d", runtime.NumCPU(), runtime.NumGoroutine())

	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	logger.Info("memory: Alloc=%v MiB, TotalAlloc=%v MiB, Sys=%v MiB",
		m.Alloc/1024/1024, m.TotalAlloc/1024/1024, m.Sys/1024/1024)
}
