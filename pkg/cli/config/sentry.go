package config

import (
	"log/slog"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const sentryFlushTimeout = 2 * time.Second

// Sentry holds CLI flags for error reporting. Reporting is disabled when no
// DSN is given.
type Sentry struct {
	dsn string
	env string
}

func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN for error reporting",
			Category:    "Sentry",
			Sources:     cli.EnvVars("ZENMEMORY_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Category:    "Sentry",
			Sources:     cli.EnvVars("ZENMEMORY_SENTRY_ENV"),
			Destination: &s.env,
		},
	}
}

func (s *Sentry) Enabled() bool {
	return s.dsn != ""
}

// LogValue never prints the DSN itself
func (s *Sentry) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", s.Enabled()),
		slog.String("env", s.env),
	)
}

// Configure initializes the global Sentry client and returns a function that
// flushes buffered events.
func (s *Sentry) Configure(release string) (func(), error) {
	if !s.Enabled() {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         s.dsn,
		Environment: s.env,
		Release:     release,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry")
	}

	return func() {
		sentry.Flush(sentryFlushTimeout)
	}, nil
}
