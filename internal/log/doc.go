// Package log provides structured logging with automatic redaction of ICE
// endpoint credentials, built on top of the standard slog package.
//
// Discovery-server endpoints may embed TURN credentials directly in the URI
// ("turn:user:secret@host:3478") and configuration carries separate
// username/credential fields. The RedactHandler masks both before records
// reach the underlying text or JSON handler, so server lists can be logged
// without leaking secrets.
//
// The package also bridges pion's logging.LoggerFactory onto slog so that the
// WebRTC stack's internal logs flow through the same redacting handler.
package log
