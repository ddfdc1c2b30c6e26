package hwprobe

import (
	"bytes"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestPlainFormatter(t *testing.T) {
	logger := logrus.New()
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	logger.SetFormatter(&plainFormatter{})

	logger.WithField("package", "gpu").Infof("Kernel's return-code: %d %d", 0, 0)
	assert.Equal(t, "INFO: Kernel's return-code: 0 0\n", buf.String())

	buf.Reset()
	logger.WithError(errors.New("boom")).WithField("class", "IOAccelerator").Warn("iteration aborted")
	assert.Equal(t, "WARN: iteration aborted class=IOAccelerator error=boom\n", buf.String())

	buf.Reset()
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestLogLevel(t *testing.T) {
	assert.True(t, LogLevelDebug.IsValid())
	assert.True(t, LogLevelInfo.IsValid())
	assert.True(t, LogLevelError.IsValid())
	assert.False(t, LogLevel("trace").IsValid())

	assert.Equal(t, logrus.DebugLevel, LogLevelDebug.LogrusLevel())
	assert.Equal(t, logrus.ErrorLevel, LogLevelError.LogrusLevel())
	assert.Equal(t, logrus.InfoLevel, LogLevel("").LogrusLevel())
}
