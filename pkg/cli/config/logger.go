package config

import (
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/zenmemory/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Logger holds CLI flags for the process-wide logger
type Logger struct {
	level  string
	format string
	output string
}

func (l *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Category:    "Logging",
			Sources:     cli.EnvVars("ZENMEMORY_LOG_LEVEL"),
			Destination: &l.level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console or json)",
			Value:       logging.FormatConsole,
			Category:    "Logging",
			Sources:     cli.EnvVars("ZENMEMORY_LOG_FORMAT"),
			Destination: &l.format,
		},
		&cli.StringFlag{
			Name:        "log-output",
			Usage:       "Log output (stdout, stderr or a file path)",
			Value:       "stdout",
			Category:    "Logging",
			Sources:     cli.EnvVars("ZENMEMORY_LOG_OUTPUT"),
			Destination: &l.output,
		},
	}
}

func (l *Logger) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("level", l.level),
		slog.String("format", l.format),
		slog.String("output", l.output),
	)
}

// Configure replaces the default logger. The returned closer releases the
// log file when output is a path.
func (l *Logger) Configure() (func(), error) {
	closer := func() {}

	w := os.Stdout
	switch l.output {
	case "", "stdout", "-":
	case "stderr":
		w = os.Stderr
	default:
		// #nosec G304 - path is provided by CLI argument
		f, err := os.OpenFile(l.output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open log output", goerr.V(ConfigPathKey, l.output))
		}
		w = f
		closer = func() {
			if err := f.Close(); err != nil {
				logging.Default().Warn("failed to close log output", "error", err)
			}
		}
	}

	logger, err := logging.NewWithFormat(l.level, l.format, w)
	if err != nil {
		closer()
		return nil, goerr.Wrap(ErrInvalidConfig, "invalid log format",
			goerr.V(FieldKey, "log-format"), goerr.V("format", l.format))
	}
	logging.SetDefault(logger)

	return closer, nil
}
