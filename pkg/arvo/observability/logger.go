// Package observability provides production-grade observability features
// for arvo: structured logging, metrics, and distributed tracing.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import "log/slog"

// EnrichLogger adds event context to a logger.
// Returns a new logger with event_id, event_type, and subject fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, evt.ID, evt.Type, evt.Subject)
//	enriched.Info("dispatching") // includes event_id, event_type, subject
func EnrichLogger(logger *slog.Logger, eventID, eventType, subject string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("subject", subject),
	)
}

// LogEventCreated logs a successfully built event.
func LogEventCreated(logger *slog.Logger, eventID, eventType, dataschema string) {
	if logger == nil {
		return
	}
	logger.Debug("event created",
		slog.String("event_id", eventID),
		slog.String("event_type", eventType),
		slog.String("dataschema", dataschema),
	)
}

// LogEventValidationFailure logs a payload that failed contract validation.
func LogEventValidationFailure(logger *slog.Logger, eventType string, err error) {
	if logger == nil {
		return
	}
	logger.Error("event payload rejected",
		slog.String("event_type", eventType),
		slog.String("error", err.Error()),
	)
}

// LogContractRegistered logs a contract added to a registry.
func LogContractRegistered(logger *slog.Logger, uri string, versions int) {
	if logger == nil {
		return
	}
	logger.Info("contract registered",
		slog.String("uri", uri),
		slog.Int("versions", versions),
	)
}

// LogContractResolved logs a successful version resolution.
func LogContractResolved(logger *slog.Logger, uri, requested, resolved string) {
	if logger == nil {
		return
	}
	logger.Debug("contract version resolved",
		slog.String("uri", uri),
		slog.String("requested", requested),
		slog.String("resolved", resolved),
	)
}

// LogSubjectMinted logs a freshly encoded subject token.
func LogSubjectMinted(logger *slog.Logger, orchestrator string, tokenBytes int) {
	if logger == nil {
		return
	}
	logger.Debug("subject minted",
		slog.String("orchestrator", orchestrator),
		slog.Int("token_bytes", tokenBytes),
	)
}

// LogDecodeFailure logs a subject token that failed to parse (non-fatal at
// this layer; the caller decides whether to drop or dead-letter).
func LogDecodeFailure(logger *slog.Logger, err error) {
	if logger == nil {
		return
	}
	logger.Warn("subject decode failed",
		slog.String("error", err.Error()),
	)
}
