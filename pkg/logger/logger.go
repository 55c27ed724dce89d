package logger

import (
	"context"
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/golang/glog"
)

type LoggerKeys string

const (
	// IntegrationKey carries the name of the integration a log line belongs to
	IntegrationKey LoggerKeys = "Integration"
	// EnvironmentKey carries the OCM environment a log line refers to
	EnvironmentKey LoggerKeys = "Environment"
	// DryRunKey marks log lines emitted during a dry run
	DryRunKey LoggerKeys = "DryRun"
)

type UHCLogger interface {
	V(level int32) UHCLogger
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Error(err error)
	Fatalf(format string, args ...interface{})
}

// Logger is a logger with a background context
var Logger = NewUHCLogger(context.Background())

var _ UHCLogger = &logger{}

type logger struct {
	context   context.Context
	level     int32
	sentryHub *sentry.Hub
}

// NewUHCLogger creates a new logger instance with a default verbosity of 1
func NewUHCLogger(ctx context.Context) UHCLogger {
	return &logger{
		context:   ctx,
		level:     1,
		sentryHub: sentry.GetHubFromContext(ctx),
	}
}

func (l *logger) V(level int32) UHCLogger {
	return &logger{
		context:   l.context,
		level:     level,
		sentryHub: l.sentryHub,
	}
}

func (l *logger) prepareLogPrefix(format string, args ...interface{}) string {
	orig := fmt.Sprintf(format, args...)
	prefix := ""

	if integration, ok := l.context.Value(IntegrationKey).(string); ok {
		prefix = strings.Join([]string{prefix, "integration='", integration, "' "}, "")
	}

	if env, ok := l.context.Value(EnvironmentKey).(string); ok {
		prefix = strings.Join([]string{prefix, "ocm_env='", env, "' "}, "")
	}

	if dryRun, ok := l.context.Value(DryRunKey).(bool); ok && dryRun {
		prefix = strings.Join([]string{prefix, "dry_run='true' "}, "")
	}

	return prefix + orig
}

func (l *logger) Infof(format string, args ...interface{}) {
	prefixed := l.prepareLogPrefix(format, args...)
	glog.V(glog.Level(l.level)).Infoln(prefixed)
}

func (l *logger) Warningf(format string, args ...interface{}) {
	prefixed := l.prepareLogPrefix(format, args...)
	glog.Warningln(prefixed)
	l.captureSentryEvent(sentry.LevelWarning, format, args...)
}

func (l *logger) Errorf(format string, args ...interface{}) {
	prefixed := l.prepareLogPrefix(format, args...)
	glog.Errorln(prefixed)
	l.captureSentryEvent(sentry.LevelError, format, args...)
}

func (l *logger) Error(err error) {
	glog.Error(err)
	if l.sentryHub == nil {
		sentry.CaptureException(err)
		return
	}
	l.sentryHub.CaptureException(err)
}

func (l *logger) Fatalf(format string, args ...interface{}) {
	prefixed := l.prepareLogPrefix(format, args...)
	glog.Fatalln(prefixed)
	l.captureSentryEvent(sentry.LevelFatal, format, args...)
}

func (l *logger) captureSentryEvent(level sentry.Level, format string, args ...interface{}) {
	event := sentry.NewEvent()
	event.Level = level
	event.Message = fmt.Sprintf(format, args...)
	if l.sentryHub == nil {
		sentry.CaptureEvent(event)
		return
	}
	l.sentryHub.CaptureEvent(event)
}
