package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"n8n-mcp/internal/config"
	"n8n-mcp/internal/server"
)

func serveHTTP(ctx context.Context, s *server.Server, cfg config.Config, logger *zap.Logger) error {
	if cfg.Token == "" {
		logger.Warn("MCP_TOKEN not set; endpoints will be open. Set MCP_TOKEN to secure.")
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		if cfg.TLSEnabled() {
			logger.Info("Starting MCP HTTPS server", zap.String("addr", cfg.Addr), zap.String("cert", cfg.TLSCertFile))
			errc <- srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
			return
		}
		logger.Warn("TLS_CERT_FILE and TLS_KEY_FILE not set; serving plain HTTP. Run behind a TLS-terminating proxy.")
		logger.Info("Starting MCP HTTP server", zap.String("addr", cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
