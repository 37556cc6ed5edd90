// Package log defines the logging contract of the runcap SDK.
//
// By default the SDK logs nothing, [lib.Config] uses [Noop] when no logger
// is set. To get logs out of the SDK, provide any implementation of
// [Logger], for example an adapter over your application's slog or logrus
// logger:
//
//	type slogAdapter struct{ l *slog.Logger }
//
//	func (a slogAdapter) Debugf(format string, args ...any) { a.l.Debug(fmt.Sprintf(format, args...)) }
//	func (a slogAdapter) Infof(format string, args ...any)  { a.l.Info(fmt.Sprintf(format, args...)) }
//	// ... remaining Logger methods.
//
// The format methods carry almost all SDK output, [Logger.WithValues] and
// [Logger.WithCtxValues] may return the receiver unchanged if structured
// fields are not needed.
package log

import "github.com/slok/runcap/internal/log"

// Logger is the interface the SDK logs through.
type Logger = log.Logger

// Kv holds structured logging key-value pairs.
type Kv = log.Kv

// Noop discards everything logged to it.
var Noop = log.Noop
