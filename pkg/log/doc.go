// Package log provides pollbus's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by the standard library
// slog through a bridge handler that routes records into our own
// formatter/output pipeline, so output stays consistent across the broker,
// the HTTP gateway and the CLI.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("broker"))
//	l.Info("event pushed", log.Str("key", "orders"))
//
// # Configuration
//
// ApplyConfig builds a logger from a declarative Config (level, text or json
// format, stderr/stdout/null output). RedirectStdLog routes the standard
// library logger (used by net/http and grpc internals) through a Logger.
package log
