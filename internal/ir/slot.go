package ir

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// SlotType tags the variant of a customization slot.
type SlotType string

const (
	// SlotColor is a single swappable color reference.
	SlotColor SlotType = "color"

	// SlotFeature is a discrete feature selector with values 0..Range-1.
	SlotFeature SlotType = "feature"

	// SlotToggle is a custom layer switched on when its name is listed.
	SlotToggle SlotType = "toggle"

	// SlotNumbered is a custom layer selected by an integer 0..Range-1.
	SlotNumbered SlotType = "numbered"
)

// SlotTypes lists the variants in manifest order.
var SlotTypes = []SlotType{SlotColor, SlotFeature, SlotToggle, SlotNumbered}

// Valid reports whether t is one of the known variants.
func (t SlotType) Valid() bool {
	switch t {
	case SlotColor, SlotFeature, SlotToggle, SlotNumbered:
		return true
	}
	return false
}

// colorDefaults names the palette color indices the authoring template uses.
var colorDefaults = []string{"Eye", "", "", "Hair", "Outfit", "Skin"}

// ColorName returns the display name for a palette color index,
// e.g. "Color 5 (Skin)". Indices without a default name render as "Color 1".
func ColorName(color int) string {
	if color >= 0 && color < len(colorDefaults) && colorDefaults[color] != "" {
		return fmt.Sprintf("Color %d (%s)", color, colorDefaults[color])
	}
	return fmt.Sprintf("Color %d", color)
}

// Slot is one customizable unit surfaced by the schema miner.
//
// Which of Color, Layer and Range are meaningful depends on Type:
//   - color:    Color
//   - feature:  Range
//   - toggle:   Layer
//   - numbered: Layer, Range
//
// Within a Type, (Slot, Name) identifies a logical slot.
type Slot struct {
	Type  SlotType
	Name  string
	Slot  int
	Color int
	Layer string
	Range int
}

// NewColorSlot builds a color slot for palette index slot and color index color.
func NewColorSlot(slot, color int) Slot {
	return Slot{Type: SlotColor, Name: ColorName(color), Slot: slot, Color: color}
}

// NewFeatureSlot builds a feature slot with legal values 0..rng-1.
func NewFeatureSlot(name string, slot, rng int) Slot {
	return Slot{Type: SlotFeature, Name: name, Slot: slot, Range: rng}
}

// NewToggleSlot builds a toggle slot for the named layer.
func NewToggleSlot(layer string, slot int) Slot {
	return Slot{Type: SlotToggle, Name: layer, Slot: slot, Layer: layer}
}

// NewNumberedSlot builds a numbered slot for the named layer with values 0..rng-1.
func NewNumberedSlot(layer string, slot, rng int) Slot {
	return Slot{Type: SlotNumbered, Name: layer, Slot: slot, Layer: layer, Range: rng}
}

// Wire shapes keep the field order stable: name, slot, type, variant fields.
type colorWire struct {
	Name  string   `json:"name" yaml:"name"`
	Slot  int      `json:"slot" yaml:"slot"`
	Type  SlotType `json:"type" yaml:"type"`
	Color int      `json:"color" yaml:"color"`
}

type featureWire struct {
	Name  string   `json:"name" yaml:"name"`
	Slot  int      `json:"slot" yaml:"slot"`
	Type  SlotType `json:"type" yaml:"type"`
	Range int      `json:"range" yaml:"range"`
}

type toggleWire struct {
	Name  string   `json:"name" yaml:"name"`
	Slot  int      `json:"slot" yaml:"slot"`
	Type  SlotType `json:"type" yaml:"type"`
	Layer string   `json:"layer" yaml:"layer"`
}

type numberedWire struct {
	Name  string   `json:"name" yaml:"name"`
	Slot  int      `json:"slot" yaml:"slot"`
	Type  SlotType `json:"type" yaml:"type"`
	Layer string   `json:"layer" yaml:"layer"`
	Range int      `json:"range" yaml:"range"`
}

// slotInput is the permissive decode shape shared by JSON and YAML.
type slotInput struct {
	Name  string   `json:"name" yaml:"name"`
	Slot  int      `json:"slot" yaml:"slot"`
	Type  SlotType `json:"type" yaml:"type"`
	Color *int     `json:"color" yaml:"color"`
	Layer string   `json:"layer" yaml:"layer"`
	Range int      `json:"range" yaml:"range"`
}

func (s Slot) wire() (any, error) {
	switch s.Type {
	case SlotColor:
		return colorWire{Name: s.Name, Slot: s.Slot, Type: s.Type, Color: s.Color}, nil
	case SlotFeature:
		return featureWire{Name: s.Name, Slot: s.Slot, Type: s.Type, Range: s.Range}, nil
	case SlotToggle:
		return toggleWire{Name: s.Name, Slot: s.Slot, Type: s.Type, Layer: s.Layer}, nil
	case SlotNumbered:
		return numberedWire{Name: s.Name, Slot: s.Slot, Type: s.Type, Layer: s.Layer, Range: s.Range}, nil
	default:
		return nil, fmt.Errorf("unknown slot type %q", s.Type)
	}
}

func (s *Slot) fromInput(in slotInput) error {
	if !in.Type.Valid() {
		return fmt.Errorf("unknown slot type %q", in.Type)
	}
	*s = Slot{Type: in.Type, Name: in.Name, Slot: in.Slot, Layer: in.Layer, Range: in.Range}
	if in.Type == SlotColor {
		if in.Color == nil {
			return fmt.Errorf("color slot %q: missing color index", in.Name)
		}
		s.Color = *in.Color
	}
	if (in.Type == SlotFeature || in.Type == SlotNumbered) && in.Range < 1 {
		return fmt.Errorf("%s slot %q: range must be at least 1", in.Type, in.Name)
	}
	return nil
}

// MarshalJSON encodes only the fields of the slot's variant.
func (s Slot) MarshalJSON() ([]byte, error) {
	w, err := s.wire()
	if err != nil {
		return nil, err
	}
	return json.Marshal(w)
}

// UnmarshalJSON decodes a slot and checks its variant fields.
func (s *Slot) UnmarshalJSON(data []byte) error {
	var in slotInput
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	return s.fromInput(in)
}

// MarshalYAML implements yaml.Marshaler.
func (s Slot) MarshalYAML() (interface{}, error) {
	return s.wire()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Slot) UnmarshalYAML(node *yaml.Node) error {
	var in slotInput
	if err := node.Decode(&in); err != nil {
		return err
	}
	return s.fromInput(in)
}

// canonical returns the slot as a plain map for canonical JSON hashing.
func (s Slot) canonical() map[string]any {
	m := map[string]any{
		"name": s.Name,
		"slot": s.Slot,
		"type": string(s.Type),
	}
	switch s.Type {
	case SlotColor:
		m["color"] = s.Color
	case SlotFeature:
		m["range"] = s.Range
	case SlotToggle:
		m["layer"] = s.Layer
	case SlotNumbered:
		m["layer"] = s.Layer
		m["range"] = s.Range
	}
	return m
}

func (s Slot) String() string {
	switch s.Type {
	case SlotColor:
		return fmt.Sprintf("color    slot=%d color=%d %q", s.Slot, s.Color, s.Name)
	case SlotFeature:
		return fmt.Sprintf("feature  slot=%d %s range=%d", s.Slot, s.Name, s.Range)
	case SlotToggle:
		return fmt.Sprintf("toggle   slot=%d %s", s.Slot, s.Layer)
	case SlotNumbered:
		return fmt.Sprintf("numbered slot=%d %s range=%d", s.Slot, s.Layer, s.Range)
	}
	return fmt.Sprintf("%s slot=%d %s", s.Type, s.Slot, s.Name)
}

// FilterSlots returns the slots of type t, preserving order.
func FilterSlots(slots []Slot, t SlotType) []Slot {
	out := []Slot{}
	for _, s := range slots {
		if s.Type == t {
			out = append(out, s)
		}
	}
	return out
}
