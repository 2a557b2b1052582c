package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestNewManifest(t *testing.T) {
	m, err := NewManifest("hero.js", "id-1", nil)
	require.NoError(t, err)
	assert.Equal(t, []Slot{}, m.Slots)
	assert.NotEmpty(t, m.Hash)

	empty, err := ManifestHash([]Slot{})
	require.NoError(t, err)
	assert.Equal(t, empty, m.Hash)
}

func TestManifestCounts(t *testing.T) {
	m, err := NewManifest("hero.js", "id-1", []Slot{
		NewColorSlot(1, 5),
		NewColorSlot(1, 3),
		NewToggleSlot("glasses", 1),
	})
	require.NoError(t, err)

	counts := m.Counts()
	assert.Equal(t, 2, counts[SlotColor])
	assert.Equal(t, 1, counts[SlotToggle])
	assert.Equal(t, 0, counts[SlotFeature])
}

func TestDecodeManifest_JSONAndYAML(t *testing.T) {
	m, err := NewManifest("hero.js", "id-1", []Slot{NewFeatureSlot("Face", 1, 3), NewNumberedSlot("bg", 0, 2)})
	require.NoError(t, err)

	jsonData, err := json.MarshalIndent(m, "", "  ")
	require.NoError(t, err)
	fromJSON, err := DecodeManifest(jsonData)
	require.NoError(t, err)
	assert.Equal(t, m, *fromJSON)

	yamlData, err := yaml.Marshal(m)
	require.NoError(t, err)
	fromYAML, err := DecodeManifest(yamlData)
	require.NoError(t, err)
	assert.Equal(t, m, *fromYAML)
}

func TestDecodeManifest_Errors(t *testing.T) {
	_, err := DecodeManifest([]byte("   "))
	require.Error(t, err)

	_, err = DecodeManifest([]byte(`{"slots": [{"type": "weird"}]}`))
	require.Error(t, err)

	_, err = DecodeManifest([]byte("file: a.js\nslotz: []\n"))
	require.Error(t, err)
}
