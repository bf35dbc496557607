package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

func getLevel(level string) (logrus.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel, nil
	case "", "info":
		return logrus.InfoLevel, nil
	case "warn":
		return logrus.WarnLevel, nil
	case "error":
		return logrus.ErrorLevel, nil
	default:
		return logrus.DebugLevel, fmt.Errorf("invalid log level: %v", level)
	}
}

func getFormatter(format string) logrus.Formatter {
	switch format {
	case "text":
		return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
	case "json-pretty":
		return &logrus.JSONFormatter{PrettyPrint: true, TimestampFormat: time.RFC3339Nano}
	default:
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano}
	}
}

func newLogger(level, format string) (*logrus.Logger, error) {
	lvl, err := getLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetLevel(lvl)
	logger.SetFormatter(getFormatter(format))
	return logger, nil
}
