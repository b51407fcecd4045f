package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_ProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Info("post created", "post_id", "abc")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "post created", entry["msg"])
	assert.Equal(t, "abc", entry["post_id"])
	assert.Equal(t, "snapgram-api", entry["service"])
}

func TestNewWithWriter_DevelopmentWritesText(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("development", &buf)

	log.Debug("debug enabled")

	assert.True(t, strings.Contains(buf.String(), "msg=\"debug enabled\""))
}

func TestNewWithWriter_ProductionDropsDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter("production", &buf)

	log.Debug("hidden")

	assert.Empty(t, buf.String())
}

func TestDiscard(t *testing.T) {
	assert.NotNil(t, Discard())
	Discard().Error("nothing happens")
}
