package utils

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_StopWithContext(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	d := NewTimer("pivot", log).StopWithContext(map[string]interface{}{
		"mode":      "Revenue",
		"fragments": 42,
	})
	assert.GreaterOrEqual(t, int64(d), int64(0))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "pivot", entry["operation"])
	assert.Equal(t, "Revenue", entry["mode"])
	assert.Equal(t, float64(42), entry["fragments"])
	assert.Equal(t, "Performance measurement", entry["message"])
}

func TestTimer_SilentAboveDebug(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	NewTimer("quick", log).Stop()
	assert.Empty(t, strings.TrimSpace(buf.String()))
}

func TestMeasureDBQuery(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	MeasureDBQuery("list_bookings", log)(7)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "list_bookings", entry["query"])
	assert.Equal(t, float64(7), entry["rows"])
}
