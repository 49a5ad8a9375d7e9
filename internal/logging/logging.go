// Package logging configures the process-wide logrus logger and provides
// the request logging middleware.
package logging

import (
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/bookstore/internal/config"
)

// Setup applies level and format from cfg to the standard logrus logger.
// Unknown levels fall back to info.
func Setup(cfg config.Log) {
	Configure(log.StandardLogger(), cfg, os.Stderr)
}

// Configure applies cfg to logger and directs its output to out.
func Configure(logger *log.Logger, cfg config.Log, out io.Writer) {
	logger.SetOutput(out)

	level, err := log.ParseLevel(strings.TrimSpace(cfg.Level))
	if err != nil {
		level = log.InfoLevel
	}
	logger.SetLevel(level)

	if strings.EqualFold(cfg.Format, "json") {
		logger.SetFormatter(&log.JSONFormatter{})
		return
	}
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}
