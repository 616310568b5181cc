package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// sensitiveKeys contains attribute keys whose values are always masked.
// TURN long-term credentials are the main concern; generic secret-bearing
// keys are covered as well since config structs log through here.
var sensitiveKeys = map[string]bool{
	"credential":    true,
	"credentials":   true,
	"password":      true,
	"secret":        true,
	"token":         true,
	"auth":          true,
	"authorization": true,
}

// uriCredentialPattern matches userinfo embedded in stun/stuns/turn/turns
// URIs, e.g. "turn:alice:s3cret@turn.example.com:3478". The username is kept
// for diagnostics; only the credential part is masked.
var uriCredentialPattern = regexp.MustCompile(`(?i)\b(stuns?|turns?):(//)?([^@\s:/]+):([^@\s/]+)@`)

// MaskValue replaces masked credentials in log output.
const MaskValue = "***REDACTED***"

// RedactEndpoint masks any credential embedded in an endpoint URI. It is safe
// to call on URIs without userinfo; those pass through unchanged.
func RedactEndpoint(uri string) string {
	return uriCredentialPattern.ReplaceAllString(uri, "${1}:${2}${3}:"+MaskValue+"@")
}

// RedactHandler wraps an slog.Handler and sanitizes attributes before
// delegating. It masks values under credential-bearing keys and rewrites any
// string value containing URI-embedded credentials.
type RedactHandler struct {
	handler slog.Handler
}

// NewRedactHandler creates a RedactHandler wrapping the given handler.
// A nil handler falls back to slog.Default().Handler().
func NewRedactHandler(handler slog.Handler) *RedactHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	return &RedactHandler{handler: handler}
}

// Enabled delegates to the underlying handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle sanitizes the record's attributes and passes it on.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	sanitized := slog.NewRecord(r.Time, r.Level, RedactEndpoint(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		sanitized.AddAttrs(h.sanitizeAttr(a))
		return true
	})
	return h.handler.Handle(ctx, sanitized)
}

// WithAttrs returns a handler with the given (sanitized) attributes added.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	sanitized := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		sanitized[i] = h.sanitizeAttr(a)
	}
	return &RedactHandler{handler: h.handler.WithAttrs(sanitized)}
}

// WithGroup returns a handler with the given group name.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{handler: h.handler.WithGroup(name)}
}

func (h *RedactHandler) sanitizeAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		sanitized := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			sanitized[i] = h.sanitizeAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(sanitized...)}
	}

	if sensitiveKeys[strings.ToLower(a.Key)] {
		return slog.String(a.Key, MaskValue)
	}
	if a.Value.Kind() == slog.KindString {
		return slog.String(a.Key, RedactEndpoint(a.Value.String()))
	}
	return a
}

// NewLogger creates an slog.Logger with credential redaction writing
// human-readable text to w. Verbose selects Debug level, otherwise Warn.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(handler))
}

// NewJSONLogger creates an slog.Logger with credential redaction writing JSON
// records to w, for structured log aggregation.
func NewJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewRedactHandler(handler))
}
