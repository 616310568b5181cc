package log

import (
	"fmt"
	"log/slog"

	"github.com/pion/logging"
)

// PionLoggerFactory adapts pion's logging.LoggerFactory to slog so the WebRTC
// stack's internal logs share the application's redacting handler.
type PionLoggerFactory struct {
	logger *slog.Logger
}

// NewPionLoggerFactory creates a factory that scopes each pion subsystem
// logger under the given slog.Logger. A nil logger uses slog.Default().
func NewPionLoggerFactory(logger *slog.Logger) *PionLoggerFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &PionLoggerFactory{logger: logger}
}

// NewLogger returns a leveled logger for a pion subsystem scope.
func (f *PionLoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return &pionLogger{logger: f.logger.With("scope", scope)}
}

// pionLogger maps pion's leveled calls onto slog. Trace collapses into Debug
// since slog has no trace level.
type pionLogger struct {
	logger *slog.Logger
}

func (l *pionLogger) Trace(msg string) { l.logger.Debug(msg) }
func (l *pionLogger) Tracef(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *pionLogger) Debug(msg string) { l.logger.Debug(msg) }
func (l *pionLogger) Debugf(format string, args ...any) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *pionLogger) Info(msg string) { l.logger.Info(msg) }
func (l *pionLogger) Infof(format string, args ...any) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *pionLogger) Warn(msg string) { l.logger.Warn(msg) }
func (l *pionLogger) Warnf(format string, args ...any) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *pionLogger) Error(msg string) { l.logger.Error(msg) }
func (l *pionLogger) Errorf(format string, args ...any) {
	l.logger.Error(fmt.Sprintf(format, args...))
}
