package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/assembly/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func newTestLogger(t *testing.T) (*logger.Logger, *bytes.Buffer) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")

	buf := &bytes.Buffer{}
	lg := logger.New().(*logger.Logger)
	lg.SetOutput(buf)
	return lg, buf
}

func TestLogger_Info(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Info("building simple")
	assert.Equal(t, "building simple\n", buf.String())
}

func TestLogger_Warn(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Warn("flags ignored")
	assert.Equal(t, "! flags ignored\n", buf.String())
}

func TestLogger_DebugRequiresVerbose(t *testing.T) {
	lg, buf := newTestLogger(t)

	lg.Debug("exec: make simple")
	assert.Empty(t, buf.String())

	lg.SetVerbose(true)
	lg.Debug("exec: make simple")
	assert.Equal(t, "exec: make simple\n", buf.String())
}

func TestLogger_ErrorChain(t *testing.T) {
	lg, buf := newTestLogger(t)

	err := zerr.Wrap(zerr.New("exit status 2"), "build failed")
	lg.Error(err)

	out := buf.String()
	assert.Contains(t, out, "Error: build failed")
	assert.Contains(t, out, "Caused by:")
	assert.Contains(t, out, "-> exit status 2")
}

func TestLogger_ErrorStdlib(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(errors.New("plain"))
	assert.Equal(t, "✗ Error: plain\n", buf.String())
}

func TestLogger_ErrorNil(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.Error(nil)
	assert.Empty(t, buf.String())
}

func TestLogger_JSON(t *testing.T) {
	lg, buf := newTestLogger(t)
	lg.SetJSON(true)
	lg.Info("hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "hello", record["msg"])
	assert.Equal(t, "INFO", record["level"])
}
