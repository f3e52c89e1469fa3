package helpers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestNewLogger_Levels(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, NewLogger("a", "development").GetLevel())
	assert.Equal(t, logrus.WarnLevel, NewLogger("a", "test").GetLevel())

	prod := NewLogger("a", "production")
	assert.Equal(t, logrus.InfoLevel, prod.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, prod.Formatter)
}

func TestLogError_AddsErrorField(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	LogError(l, "redis unreachable", errors.New("dial tcp: refused"), logrus.Fields{"addr": "x:6379"})
	assert.Contains(t, buf.String(), `"error":"dial tcp: refused"`)
	assert.Contains(t, buf.String(), `"addr":"x:6379"`)

	buf.Reset()
	LogInfo(l, "started", nil)
	assert.Contains(t, buf.String(), `"msg":"started"`)
}
