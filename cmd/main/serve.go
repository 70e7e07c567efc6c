package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"docflow/internal/api"
	"docflow/internal/config"
	"docflow/internal/db"
	"docflow/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the approval engine API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("api-port", 8080, "API server port")
	serveCmd.Flags().String("database", "docflow.db", "Database file path")
	serveCmd.Flags().Bool("debug", false, "Enable debug logging")

	_ = viper.BindPFlag("api_port", serveCmd.Flags().Lookup("api-port"))
	_ = viper.BindPFlag("database_url", serveCmd.Flags().Lookup("database"))
	_ = viper.BindPFlag("debug", serveCmd.Flags().Lookup("debug"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port := viper.GetInt("api_port"); port != 0 {
		cfg.APIPort = port
	}
	if url := viper.GetString("database_url"); url != "" {
		cfg.DatabaseURL = url
	}

	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.Info("Starting API server on port %d", cfg.APIPort)
	return api.New(cfg, database).Start(ctx)
}
