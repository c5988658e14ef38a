// Package log builds the application's slog loggers.
//
// Loggers write text or JSON records at Warn level by default and at Debug
// level in verbose mode. Every logger wraps its handler in a
// RedactingHandler, because users may configure request headers that carry
// credentials (for example a session cookie for private workshop items).
// Attributes named like such headers, and values that look like bearer
// tokens or cookies, are masked before they reach the output.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//	logger.Debug("client ready", log.HeaderAttrs(cfg.Headers))
package log
