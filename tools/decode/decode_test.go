package decode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	UserID string `json:"userId"`
	Count  int    `json:"count"`
	Live   bool   `json:"live"`
}

func TestMapUsesJSONTags(t *testing.T) {
	out, err := Map[sample](map[string]any{
		"userId": "u1",
		"count":  float64(3), // numbers arrive as float64 from encoding/json
		"live":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "u1", out.UserID)
	assert.Equal(t, 3, out.Count)
	assert.True(t, out.Live)
}

func TestMapWeakTyping(t *testing.T) {
	out, err := Map[sample](map[string]any{"count": "7"})
	require.NoError(t, err)
	assert.Equal(t, 7, out.Count)
}

func TestValueNonMap(t *testing.T) {
	out, err := Value[sample](map[string]any{"userId": "u2"})
	require.NoError(t, err)
	assert.Equal(t, "u2", out.UserID)
}
