package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"n8n-mcp/internal/config"
	"n8n-mcp/internal/logging"
	"n8n-mcp/internal/n8n"
	"n8n-mcp/internal/server"
	"n8n-mcp/internal/tools"
)

// version is set at build time with -ldflags="-X main.version=1.0.0".
var version = "1.0.0"

var envFile string

var rootCmd = &cobra.Command{
	Use:           "n8n-mcp",
	Short:         "n8n-mcp exposes an n8n instance as MCP tools.",
	Long:          `An MCP server that lets AI agents list, inspect, edit and run n8n workflows over stdio.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), func(ctx context.Context, s *server.Server, _ config.Config, logger *zap.Logger) error {
			logger.Info("n8n MCP server running on stdio")
			return s.ServeStdio(ctx, os.Stdin, os.Stdout)
		})
	},
}

var httpCmd = &cobra.Command{
	Use:   "http",
	Short: "Serve the tools over HTTP instead of stdio.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context(), serveHTTP)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path of an optional .env file to load")
	rootCmd.AddCommand(httpCmd)
}

type serveFunc func(ctx context.Context, s *server.Server, cfg config.Config, logger *zap.Logger) error

// run loads configuration, wires the dispatcher and hands the server to serve.
func run(ctx context.Context, serve serveFunc) error {
	if err := config.LoadDotEnv(envFile); err != nil {
		return err
	}
	v := config.New()
	logger, err := logging.New(v.GetString(config.KeyLogLevel))
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := loadConfig(v, logger)
	if err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	api := n8n.New(cfg.HostURL, cfg.APIKey, httpClient)
	hooks := n8n.NewWebhookCaller(&http.Client{Timeout: cfg.Timeout})
	dispatcher := tools.NewDispatcher(tools.NewCatalog(api, hooks, cfg.HostURL), logger)

	s, err := server.New(server.Config{Token: cfg.Token, Version: version}, dispatcher, logger)
	if err != nil {
		return err
	}
	return serve(ctx, s, cfg, logger)
}

func loadConfig(v *viper.Viper, logger *zap.Logger) (config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return config.Config{}, err
	}
	logger.Debug("Configuration loaded",
		zap.String("host", cfg.HostURL),
		zap.Duration("timeout", cfg.Timeout))
	return cfg, nil
}
