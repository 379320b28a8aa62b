package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	logger := New()
	assert.NotNil(t, logger)
	assert.NotNil(t, logger.info)
	assert.NotNil(t, logger.error)
	assert.NotNil(t, logger.warn)
}

func TestInfo(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithWriter(&out, &errOut)

	logger.Info("Listing %s published", "listing-1")

	assert.Contains(t, out.String(), "INFO: ")
	assert.Contains(t, out.String(), "Listing listing-1 published")
	assert.Empty(t, errOut.String())
}

func TestError(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithWriter(&out, &errOut)

	logger.Error("Failed to upload image %d: %s", 2, "timeout")

	assert.Contains(t, errOut.String(), "ERROR: ")
	assert.Contains(t, errOut.String(), "Failed to upload image 2: timeout")
	assert.Empty(t, out.String())
}

func TestWarn(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithWriter(&out, &errOut)

	logger.Warn("Warning: %s count is %d", "images", 5)

	assert.Contains(t, out.String(), "WARN: Warning: images count is 5")
}

func TestLogger_ReportsCallerFile(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := NewWithWriter(&out, &errOut)

	logger.Info("caller check")

	assert.Contains(t, out.String(), "logger_test.go")
}
