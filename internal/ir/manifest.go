package ir

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest describes the customization slots of one published asset.
type Manifest struct {
	File          string `json:"file" yaml:"file"`
	CompositionID string `json:"composition_id" yaml:"composition_id"`
	Slots         []Slot `json:"slots" yaml:"slots"`
	Hash          string `json:"hash" yaml:"hash"`
}

// NewManifest builds a manifest and computes its hash.
// A nil slot list is stored as an empty list.
func NewManifest(file, compositionID string, slots []Slot) (Manifest, error) {
	if slots == nil {
		slots = []Slot{}
	}
	hash, err := ManifestHash(slots)
	if err != nil {
		return Manifest{}, err
	}
	return Manifest{
		File:          file,
		CompositionID: compositionID,
		Slots:         slots,
		Hash:          hash,
	}, nil
}

// Counts returns the number of slots per type.
func (m Manifest) Counts() map[SlotType]int {
	counts := make(map[SlotType]int, len(SlotTypes))
	for _, s := range m.Slots {
		counts[s.Type]++
	}
	return counts
}

// DecodeManifest parses a manifest written as JSON or YAML.
// JSON is detected by a leading '{'.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty manifest")
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
		}
	} else {
		decoder := yaml.NewDecoder(bytes.NewReader(trimmed))
		decoder.KnownFields(true)
		if err := decoder.Decode(&m); err != nil {
			return nil, fmt.Errorf("failed to parse manifest YAML: %w", err)
		}
	}
	if m.Slots == nil {
		m.Slots = []Slot{}
	}
	return &m, nil
}
