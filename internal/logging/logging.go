// Package logging holds the process-wide logger used for diagnostics.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Log is the shared logger. Command output goes to stdout; Log writes to stderr.
var Log = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// SetLevel parses a level name (debug, info, warn, error) and applies it to Log.
func SetLevel(level string) error {
	switch strings.ToLower(level) {
	case "debug":
		Log.SetLevel(logrus.DebugLevel)
	case "info", "":
		Log.SetLevel(logrus.InfoLevel)
	case "warning", "warn":
		Log.SetLevel(logrus.WarnLevel)
	case "error":
		Log.SetLevel(logrus.ErrorLevel)
	default:
		return fmt.Errorf("unknown log level %q (want debug, info, warn or error)", level)
	}
	return nil
}

// Leveled adapts a logrus logger to the key/value style used by
// retryablehttp. Odd trailing keys are logged under "extra".
type Leveled struct {
	Logger *logrus.Logger
}

func (l Leveled) entry(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 == len(keysAndValues) {
			fields["extra"] = keysAndValues[i]
			break
		}
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.Logger.WithFields(fields)
}

func (l Leveled) Error(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Error(msg)
}

func (l Leveled) Warn(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Warn(msg)
}

func (l Leveled) Info(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Info(msg)
}

func (l Leveled) Debug(msg string, keysAndValues ...interface{}) {
	l.entry(keysAndValues).Debug(msg)
}
