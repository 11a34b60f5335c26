package logging

import (
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Output formats accepted by NewLogrusAdapter.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// LogrusAdapter implements Logger on top of a logrus entry. Derived loggers
// share the underlying logrus.Logger and only extend the entry's fields.
type LogrusAdapter struct {
	entry *logrus.Entry
}

// NewLogrusAdapter builds a logger writing to stderr. level is one of
// debug, info, warn or error; format is "json" or "text".
func NewLogrusAdapter(level, format string) Logger {
	return NewLogrusAdapterWithOutput(level, format, nil)
}

// NewLogrusAdapterWithOutput is NewLogrusAdapter writing to out. A nil
// writer keeps stderr.
func NewLogrusAdapterWithOutput(level, format string, out io.Writer) Logger {
	base := logrus.New()
	if out != nil {
		base.SetOutput(out)
	}
	base.SetFormatter(newFormatter(format))

	lvl, ok := parseLevel(level)
	base.SetLevel(lvl)
	if !ok {
		base.WithField("requested_level", level).Warn("Unknown log level, falling back to info")
	}
	return &LogrusAdapter{entry: logrus.NewEntry(base)}
}

// NewLogrusAdapterFromLogger wraps an existing logrus.Logger; nil gets a
// fresh one.
func NewLogrusAdapterFromLogger(base *logrus.Logger) Logger {
	if base == nil {
		base = logrus.New()
	}
	return &LogrusAdapter{entry: logrus.NewEntry(base)}
}

func parseLevel(level string) (logrus.Level, bool) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return logrus.InfoLevel, false
	}
	return lvl, true
}

func newFormatter(format string) logrus.Formatter {
	if strings.EqualFold(strings.TrimSpace(format), FormatJSON) {
		return &logrus.JSONFormatter{TimestampFormat: time.RFC3339}
	}
	return &logrus.TextFormatter{FullTimestamp: true, TimestampFormat: time.RFC3339}
}

func (l *LogrusAdapter) log(level logrus.Level, msg string, fields []Field) {
	if !l.entry.Logger.IsLevelEnabled(level) {
		return
	}
	e := l.entry
	if len(fields) > 0 {
		e = e.WithFields(convertFields(fields))
	}
	e.Log(level, msg)
}

func (l *LogrusAdapter) Debug(msg string, fields ...Field) { l.log(logrus.DebugLevel, msg, fields) }
func (l *LogrusAdapter) Info(msg string, fields ...Field) { l.log(logrus.InfoLevel, msg, fields) }
func (l *LogrusAdapter) Warn(msg string, fields ...Field) { l.log(logrus.WarnLevel, msg, fields) }
func (l *LogrusAdapter) Error(msg string, fields ...Field) { l.log(logrus.ErrorLevel, msg, fields) }

// WithError returns a logger carrying err under the "error" key.
func (l *LogrusAdapter) WithError(err error) Logger {
	return &LogrusAdapter{entry: l.entry.WithError(err)}
}

func (l *LogrusAdapter) WithField(key string, value interface{}) Logger {
	return l.WithFields(Field{Key: key, Value: value})
}

func (l *LogrusAdapter) WithFields(fields ...Field) Logger {
	return &LogrusAdapter{entry: l.entry.WithFields(convertFields(fields))}
}

// convertFields maps fields to logrus.Fields, skipping empty keys. A
// repeated key keeps its last value.
func convertFields(fields []Field) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for _, f := range fields {
		if f.Key == "" {
			continue
		}
		out[f.Key] = f.Value
	}
	return out
}
