package logging

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name        string
		level       string
		format      string
		expectLevel logrus.Level
	}{
		{name: "debug level with text format", level: "debug", format: "text", expectLevel: logrus.DebugLevel},
		{name: "info level with json format", level: "info", format: "json", expectLevel: logrus.InfoLevel},
		{name: "warn level with text format", level: "warn", format: "text", expectLevel: logrus.WarnLevel},
		{name: "invalid level defaults to info", level: "invalid", format: "text", expectLevel: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLogrusAdapterWithOutput(tt.level, tt.format, &buf)
			require.NotNil(t, logger)

			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok, "logger should be a LogrusAdapter")
			assert.Equal(t, tt.expectLevel, adapter.entry.Logger.Level)

			if tt.format == "json" {
				_, ok := adapter.entry.Logger.Formatter.(*logrus.JSONFormatter)
				assert.True(t, ok, "formatter should be JSONFormatter")
			} else {
				_, ok := adapter.entry.Logger.Formatter.(*logrus.TextFormatter)
				assert.True(t, ok, "formatter should be TextFormatter")
			}
		})
	}
}

func TestLogrusAdapter_JSONOutputCarriesFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("debug", "json", &buf)

	logger.WithField(FieldOrganization, "org-1").
		WithError(errors.New("boom")).
		Warn("history unavailable", Field{Key: FieldCount, Value: 3})

	out := buf.String()
	assert.Contains(t, out, `"msg":"history unavailable"`)
	assert.Contains(t, out, `"organization_id":"org-1"`)
	assert.Contains(t, out, `"count":3`)
	assert.Contains(t, out, `"error":"boom"`)
}

func TestLogrusAdapter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("warn", "text", &buf)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	logger.Error("visible error")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible error")
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	adapter, ok := logger.(*LogrusAdapter)
	require.True(t, ok)
	assert.NotNil(t, adapter.entry.Logger)
}

func TestConvertFields(t *testing.T) {
	logrusFields := convertFields([]Field{
		{Key: "key1", Value: "value1"},
		{Key: "key2", Value: 42},
	})

	assert.Len(t, logrusFields, 2)
	assert.Equal(t, "value1", logrusFields["key1"])
	assert.Equal(t, 42, logrusFields["key2"])
	assert.Len(t, convertFields(nil), 0)

	skipped := convertFields([]Field{{Key: "", Value: "x"}, {Key: "k", Value: 1}, {Key: "k", Value: 2}})
	assert.Equal(t, logrus.Fields{"k": 2}, skipped)
}

func TestNewLogrusAdapter_UnknownLevelWarns(t *testing.T) {
	var buf bytes.Buffer
	NewLogrusAdapterWithOutput("verbose", "json", &buf)

	assert.Contains(t, buf.String(), "Unknown log level")
	assert.Contains(t, buf.String(), `"level":"warning"`)
}

func TestLogrusAdapter_DerivedLoggersDoNotLeakFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogrusAdapterWithOutput("info", FormatJSON, &buf)

	logger.WithField(FieldFile, "a.csv").Info("first")
	logger.Info("second")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	assert.Contains(t, string(lines[0]), `"file_path":"a.csv"`)
	assert.NotContains(t, string(lines[1]), "a.csv")
}

func TestOrDefault(t *testing.T) {
	assert.NotNil(t, OrDefault(nil))

	mock := NewMockLogger()
	assert.Same(t, mock, OrDefault(mock))
}
