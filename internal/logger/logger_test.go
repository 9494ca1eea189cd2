package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		level string
		want  logrus.Level
	}{
		{level: "debug", want: logrus.DebugLevel},
		{level: "info", want: logrus.InfoLevel},
		{level: "warn", want: logrus.WarnLevel},
		{level: "error", want: logrus.ErrorLevel},
		{level: "nonsense", want: logrus.InfoLevel},
		{level: "", want: logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := NewLogger(tt.level)
			assert.Equal(t, tt.want, log.GetLevel())
		})
	}
}

func TestNewLoggerProductionFormat(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	log := NewLogger("info")
	assert.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	t.Setenv("ENVIRONMENT", "development")
	log = NewLogger("info")
	assert.IsType(t, &logrus.TextFormatter{}, log.Formatter)
}

func TestWithComponent(t *testing.T) {
	log := logrus.New()
	buf := &bytes.Buffer{}
	log.SetOutput(buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	WithComponent(log, "calibrate").Info("grid search finished")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "calibrate", entry["component"])
	assert.Equal(t, "grid search finished", entry["msg"])
}
