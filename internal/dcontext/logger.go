// Package dcontext carries a structured logger on a context.Context, the
// way a request ID or deadline is carried: attach once near the top of a
// call chain, retrieve anywhere below it.
package dcontext

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	defaultLogger   = logrus.NewEntry(logrus.StandardLogger())
	defaultLoggerMu sync.RWMutex
)

// Logger is the leveled-logging interface carried on a context.
type Logger interface {
	Print(args ...interface{})
	Printf(format string, args ...interface{})

	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})

	Debug(args ...interface{})
	Debugf(format string, args ...interface{})

	Error(args ...interface{})
	Errorf(format string, args ...interface{})

	Info(args ...interface{})
	Infof(format string, args ...interface{})

	Warn(args ...interface{})
	Warnf(format string, args ...interface{})

	WithError(err error) *logrus.Entry
	WithField(key string, value interface{}) *logrus.Entry
	WithFields(fields logrus.Fields) *logrus.Entry
}

type loggerKey struct{}

// WithLogger returns a context carrying logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithFields returns a context whose logger (default logger if none is set
// yet) has the given fields attached.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return WithLogger(ctx, GetLogger(ctx).WithFields(fields))
}

// GetLogger returns the logger carried on ctx, or the package default.
func GetLogger(ctx context.Context) Logger {
	if v := ctx.Value(loggerKey{}); v != nil {
		if logger, ok := v.(Logger); ok {
			return logger
		}
	}

	defaultLoggerMu.RLock()
	defer defaultLoggerMu.RUnlock()
	return defaultLogger
}

// SetDefaultLogger replaces the package default logger, used when no
// context logger has been attached yet (e.g. before flag parsing runs).
func SetDefaultLogger(logger *logrus.Entry) {
	defaultLoggerMu.Lock()
	defer defaultLoggerMu.Unlock()
	defaultLogger = logger
}

// Field renders a context value as a logging field key, matching the
// teacher's convention of stringifying arbitrary context keys.
func Field(key interface{}) string {
	return fmt.Sprint(key)
}
