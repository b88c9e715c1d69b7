package logger

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// New builds the structured logger used across the service. JSON output
// outside development so log aggregation stays sane.
func New(logLevel string, isDevelopment bool) *logrus.Logger {
	log := logrus.New()

	if logLevel == "" {
		logLevel = os.Getenv("LOG_LEVEL")
		if logLevel == "" {
			if isDevelopment {
				logLevel = "debug"
			} else {
				logLevel = "info"
			}
		}
	}

	if level, err := logrus.ParseLevel(strings.ToLower(logLevel)); err == nil {
		log.SetLevel(level)
	} else {
		log.SetLevel(logrus.InfoLevel)
		log.WithField("invalid_level", logLevel).Warn("Invalid LOG_LEVEL, using INFO")
	}

	if !isDevelopment || strings.ToLower(os.Getenv("LOG_FORMAT")) == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceColors:     true,
		})
	}

	log.SetOutput(os.Stdout)

	return log
}

// WithRoom creates a logger entry scoped to a draft room.
func WithRoom(log *logrus.Logger, roomID string) *logrus.Entry {
	return log.WithField("room_id", roomID)
}

// WithPick creates a logger entry scoped to a specific pick evaluation.
func WithPick(log *logrus.Logger, roomID string, round, pick int) *logrus.Entry {
	return log.WithFields(logrus.Fields{
		"room_id": roomID,
		"round":   round,
		"pick":    pick,
	})
}
