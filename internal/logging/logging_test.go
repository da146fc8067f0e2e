package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", true)

	log.Info().Msg("hidden")
	log.Warn().Str("subject", "Acme").Msg("slow provider")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Acme", entry["subject"])
	assert.Equal(t, "dii", entry["app"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWithWriter_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "chatty", false)

	log.Debug().Msg("debug")
	log.Info().Msg("started")
	assert.NotContains(t, buf.String(), "debug")
	assert.Contains(t, buf.String(), "started")
}
