package log

import (
	"io"
	"os"
	"path/filepath"

	"github.com/david-geiger/knowthelist/internal/config"
	"github.com/sirupsen/logrus"
)

// NewLogger returns a new logger. Debug runs log JSON to development.log in
// the config dir; otherwise warnings and errors go to stderr.
func NewLogger(config *config.AppConfig, stderr io.Writer) *logrus.Entry {
	var log *logrus.Logger
	if config.Debug {
		log = newDevelopmentLogger(config, stderr)
	} else {
		log = newProductionLogger(stderr)
	}

	return log.WithFields(logrus.Fields{
		"debug":   config.Debug,
		"version": config.Version,
	})
}

func getLogLevel(fallback logrus.Level) logrus.Level {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return fallback
	}
	return level
}

func newDevelopmentLogger(config *config.AppConfig, stderr io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(getLogLevel(logrus.DebugLevel))
	// tail -f development.log | humanlog
	log.Formatter = &logrus.JSONFormatter{}
	file, err := os.OpenFile(filepath.Join(config.ConfigDir, "development.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.SetOutput(stderr)
		log.WithError(err).Warn("unable to log to file")
		return log
	}
	log.SetOutput(file)
	return log
}

func newProductionLogger(stderr io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = stderr
	log.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	log.SetLevel(getLogLevel(logrus.WarnLevel))
	return log
}
