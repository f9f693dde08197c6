// @title           Fire Alert Service API
// @version         1.0
// @description     Fire sensor ingress, fire event history and realtime alert broadcast

// @BasePath  /api

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Enter the token with the `Bearer ` prefix
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"fire-alert-service/internal/infrastructure/config"
	"fire-alert-service/pkg/logger"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "fire-alert",
	Short: "Fire alert service",
	Long: `Fire alert service receives FIRE/SAFE status from sensors over HTTP or MQTT,
stores fire events, and pushes alerts and reported fire locations to
connected browsers over a websocket.`,
	Version:           Version,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"fire-alert version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("env-file", ".env", "Environment file to load")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

// setup loads the environment file and configures logging before any command runs
func setup(cmd *cobra.Command, _ []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	envErr := godotenv.Load(envFile)

	cfg := config.GetConfig()
	if err := logger.SetupLogger(logger.Options{
		Level:      cfg.LogLevel,
		Dir:        cfg.LogDir,
		JSONOutput: cfg.LogJSON,
	}); err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}

	if envErr != nil {
		// variables may still come from the process environment
		logger.Warning("could not load %s: %v", envFile, envErr)
	} else {
		logger.Info("loaded %s", envFile)
	}
	return nil
}
