package main

import (
	"fmt"
	"net"
	"os"

	"github.com/de-tools/changeguard/pkg/handlers/report"
	"github.com/de-tools/changeguard/pkg/runtime/terminal"
	"github.com/de-tools/changeguard/pkg/server"
	"github.com/de-tools/changeguard/pkg/services/config"
	"github.com/de-tools/changeguard/pkg/services/enrichment"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgPath string
	debug   bool
)

func main() {
	var rootCmd = &cobra.Command{
		Use:          "web",
		Short:        "Start the change analysis report API",
		SilenceUsage: true,
		RunE:         runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the configuration file")
	rootCmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	cfg, err := config.Load(cfgPath, nil)
	if err != nil {
		return err
	}

	logger := terminal.NewLogger(os.Stdout, cfg.LogLevel, debug)
	ctx := logger.WithContext(cmd.Context())

	if err := cfg.ResolveCredentials(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := enrichment.NewClient(cfg.EnrichmentConfig())
	if err != nil {
		return err
	}
	if err := client.Ping(ctx); err != nil {
		return err
	}
	logger.Info().Str("endpoint", cfg.Enrichment.Endpoint).Msg("enrichment service reachable")

	host := os.Getenv("SERVER_HOST")
	port := os.Getenv("SERVER_PORT")

	if host == "" || port == "" {
		return fmt.Errorf("SERVER_HOST and SERVER_PORT must be set")
	}

	api := server.NewWebAPI(server.Config{
		Addr: net.JoinHostPort(host, port),
		Settings: report.Settings{
			Region:        cfg.Region,
			EditorBaseURL: cfg.EditorURL,
			Concurrency:   cfg.Enrichment.Concurrency,
		},
		Dependencies: server.Dependencies{
			Decorator: client,
			Pinger:    client,
			Logger:    logger,
		},
	})

	return api.Start()
}
