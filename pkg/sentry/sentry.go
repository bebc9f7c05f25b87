package sentry

import (
	"os"
	"time"

	sentrygo "github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

// FlushTime bounds how long Fatal waits for buffered events.
var FlushTime = 2 * time.Second

type Sentry struct {
	context echo.Context
	error   error
	level   sentrygo.Level
}

func WithContext(c echo.Context) *Sentry {
	return new(Sentry).WithContext(c)
}

func Fatal(err error) { new(Sentry).Fatal(err) }

func (s *Sentry) WithContext(c echo.Context) *Sentry {
	s.context = c
	return s
}

func (s *Sentry) Error(err error) {
	s.send(err, sentrygo.LevelError)
}

// Fatal reports err and waits up to FlushTime for delivery. It does not exit;
// callers decide what happens to the process.
func (s *Sentry) Fatal(err error) {
	s.send(err, sentrygo.LevelFatal)
	sentrygo.Flush(FlushTime)
}

func (s *Sentry) send(err error, level sentrygo.Level) {
	if !enabled() || err == nil {
		return
	}
	s.error = err
	s.level = level

	hub := s.getHub()
	hub.WithScope(func(scope *sentrygo.Scope) {
		s.configScope(scope)
		hub.CaptureException(s.error)
	})
}

func (s *Sentry) getHub() *sentrygo.Hub {
	if s.context != nil {
		if hub := sentryecho.GetHubFromContext(s.context); hub != nil {
			return hub
		}
	}
	return sentrygo.CurrentHub()
}

func (s *Sentry) configScope(scope *sentrygo.Scope) {
	scope.SetLevel(s.level)
	if s.context != nil && s.context.Request() != nil {
		scope.SetRequest(s.context.Request())
		if id := s.context.Response().Header().Get(echo.HeaderXRequestID); id != "" {
			scope.SetTag("request_id", id)
		}
	}
}

func enabled() bool {
	return os.Getenv("APP_ENV") != "local" && os.Getenv("SENTRY_DSN") != ""
}
