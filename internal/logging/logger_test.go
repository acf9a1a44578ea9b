package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, "debug", "json")
	require.NoError(t, err)

	logger.WithField("transfer_id", "t-1").Info("transfer completed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "transfer completed", entry["msg"])
	assert.Equal(t, "t-1", entry["transfer_id"])
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
}

func TestNewWithOutput_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewWithOutput(&buf, "warn", "text")
	require.NoError(t, err)

	logger.Info("hidden")
	assert.Empty(t, buf.String())

	logger.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestNewWithOutput_Invalid(t *testing.T) {
	_, err := NewWithOutput(&bytes.Buffer{}, "loud", "json")
	assert.Error(t, err)

	_, err = NewWithOutput(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}
