package logging_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"launchhook/internal/logging"
)

func TestLoggerVerbosity(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("[test]", false)
	logger.SetOutput(&buf)

	logger.Debug("hidden debug line")
	logger.Info("visible info line")
	assert.NotContains(t, buf.String(), "hidden debug line")
	assert.Contains(t, buf.String(), "visible info line")
	assert.Contains(t, buf.String(), "test")

	logger.SetVerbose(true)
	assert.True(t, logger.Verbose())
	logger.Debugf("debug %d", 42)
	assert.Contains(t, buf.String(), "debug 42")
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewLogger("", true)
	logger.SetOutput(&buf)

	child := logger.With("component", "watch")
	child.Warnf("lost %s", "entry")

	out := buf.String()
	assert.Contains(t, out, "lost entry")
	assert.Contains(t, out, "component")
	assert.Contains(t, out, "watch")

	// the child follows the parent's level
	logger.SetVerbose(false)
	child.Debug("suppressed")
	assert.NotContains(t, buf.String(), "suppressed")
}

func TestInitLoggerOnce(t *testing.T) {
	logging.InitLogger("first", true)
	first := logging.DefaultLogger
	assert.NotNil(t, first)
	assert.True(t, first.Verbose())

	logging.InitLogger("second", false)
	assert.Same(t, first, logging.DefaultLogger)
}
