// Package logging builds the process logger from the logging config section.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"fpna_dashboard/pkg/core/config"
)

// New returns a logger writing to stderr. An unparseable level falls back to
// info; format "json" selects the JSON formatter, anything else text.
func New(cfg config.LoggingConfig) *logrus.Logger {
	return NewWithOutput(cfg, os.Stderr)
}

// NewWithOutput is New with an explicit destination.
func NewWithOutput(cfg config.LoggingConfig, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}
