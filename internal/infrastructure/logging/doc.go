// Package logging provides structured logging for the gateway.
//
// It wraps log/slog so every component logs with the same default fields
// (service, version) and the level and format chosen in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Usage:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("starting gateway", "port", cfg.API.Port)
//	logger.Error("insert failed", "error", err)
//
// Never log passwords or broker credentials.
package logging
