package main

import (
	"fmt"
	"time"

	logstash "github.com/bshuster-repo/logrus-logstash-hook"
	"github.com/sirupsen/logrus"
)

const defaultLogFormatter = "text"

// configureLogging sets logrus's global formatter and level, matching the
// teacher's configureLogging (spec §2.1): text (default), json, or
// logstash, selected by --log-formatter.
func configureLogging(formatter, level string) error {
	if formatter == "" {
		formatter = defaultLogFormatter
	}

	switch formatter {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:   time.RFC3339Nano,
			DisableHTMLEscape: true,
		})
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339Nano,
		})
	case "logstash":
		logrus.SetFormatter(&logstash.LogstashFormatter{
			Formatter: &logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano},
		})
	default:
		return fmt.Errorf("unsupported logging formatter: %q", formatter)
	}

	if level == "" {
		level = "info"
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("unsupported logging level: %q", level)
	}
	logrus.SetLevel(lvl)

	return nil
}
