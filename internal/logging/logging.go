package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/alexanderjulianmartinez/peopledb/internal/config"
)

// New builds a logger from the log section of the config. debug forces
// the debug level regardless of the configured one.
func New(cfg config.LogConfig, out io.Writer, debug bool) (*logrus.Logger, error) {
	logger := logrus.New()
	if out != nil {
		logger.SetOutput(out)
	}

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	if debug {
		lvl = logrus.DebugLevel
	}
	logger.SetLevel(lvl)

	switch cfg.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log.format: unsupported %q", cfg.Format)
	}
	return logger, nil
}
