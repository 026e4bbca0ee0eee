package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_SetKeepsPosition(t *testing.T) {
	m := NewMetadata()
	m.Set("bore_mm", 68.0)
	m.Set("displacement_cc", 196)
	m.Set("bore_mm", 70.0)

	assert.Equal(t, []string{"bore_mm", "displacement_cc"}, m.Keys())
	v, ok := m.Get("bore_mm")
	require.True(t, ok)
	assert.Equal(t, 70.0, v)
}

func TestMetadata_JSONRoundTrip(t *testing.T) {
	var m Metadata
	require.NoError(t, json.Unmarshal([]byte(`{"teeth":60,"pitch_in":0.5,"variant":"hemi","sizes":[1,2.5]}`), &m))

	assert.Equal(t, []string{"teeth", "pitch_in", "variant", "sizes"}, m.Keys())
	teeth, _ := m.Get("teeth")
	assert.Equal(t, 60, teeth)
	pitch, _ := m.Get("pitch_in")
	assert.Equal(t, 0.5, pitch)
	sizes, _ := m.Get("sizes")
	assert.Equal(t, []interface{}{1, 2.5}, sizes)

	data, err := json.Marshal(&m)
	require.NoError(t, err)
	assert.Equal(t, `{"teeth":60,"pitch_in":0.5,"variant":"hemi","sizes":[1,2.5]}`, string(data))
}

func TestMetadata_NilSafe(t *testing.T) {
	var m *Metadata
	assert.Equal(t, 0, m.Len())
	assert.False(t, m.Has("x"))

	data, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var decoded Metadata
	assert.Error(t, json.Unmarshal([]byte(`[1]`), &decoded))
}
