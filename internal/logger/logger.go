package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var defaultLogger = logrus.New()

// Initialize sets up the global logger with the specified level and format.
func Initialize(level, format string) {
	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}

	defaultLogger.SetOutput(os.Stdout)
	defaultLogger.SetLevel(lvl)

	if strings.ToLower(format) == "json" {
		defaultLogger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		defaultLogger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
}

// WithService returns an entry tagged with the component name.
func WithService(name string) *logrus.Entry {
	return defaultLogger.WithField("service", name)
}
