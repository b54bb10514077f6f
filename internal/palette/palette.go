// SPDX-License-Identifier: MIT
package palette

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NamedColor is a color token as it appears in the markup plus a display name
type NamedColor struct {
	Value string
	Name  string
}

// Entry is either a solid color or a gradient made of ordered stops
type Entry struct {
	Color NamedColor
	Stops []NamedColor
}

// Solid creates a solid entry
func Solid(value, name string) Entry {
	return Entry{Color: NamedColor{Value: value, Name: name}}
}

// Gradient creates a gradient entry from its stop colors. Each stop is named
// after its own value.
func Gradient(values ...string) Entry {
	stops := make([]NamedColor, 0, len(values))
	for _, v := range values {
		stops = append(stops, NamedColor{Value: v, Name: v})
	}
	return Entry{Stops: stops}
}

// IsGradient reports whether the entry holds gradient stops
func (e Entry) IsGradient() bool {
	return e.Stops != nil
}

// Values returns the color values of the entry, one per stop for gradients
func (e Entry) Values() []string {
	if !e.IsGradient() {
		return []string{e.Color.Value}
	}
	values := make([]string, 0, len(e.Stops))
	for _, s := range e.Stops {
		values = append(values, s.Value)
	}
	return values
}

// MarshalJSON encodes a solid entry as ["value","name"] and a gradient as a
// list of such pairs, matching the manipulation service wire format.
func (e Entry) MarshalJSON() ([]byte, error) {
	if !e.IsGradient() {
		return json.Marshal([2]string{e.Color.Value, e.Color.Name})
	}
	stops := make([][2]string, 0, len(e.Stops))
	for _, s := range e.Stops {
		stops = append(stops, [2]string{s.Value, s.Name})
	}
	return json.Marshal(stops)
}

// UnmarshalJSON decodes either wire form of an entry
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("palette entry must be an array: %w", err)
	}

	// A gradient's first element is itself an array
	if len(raw) > 0 && bytes.HasPrefix(bytes.TrimSpace(raw[0]), []byte("[")) {
		stops := make([]NamedColor, 0, len(raw))
		for _, r := range raw {
			nc, err := decodeNamedColor(r)
			if err != nil {
				return err
			}
			stops = append(stops, nc)
		}
		*e = Entry{Stops: stops}
		return nil
	}

	if len(raw) == 0 {
		*e = Entry{Stops: []NamedColor{}}
		return nil
	}

	nc, err := decodeNamedColor(data)
	if err != nil {
		return err
	}
	*e = Entry{Color: nc}
	return nil
}

func decodeNamedColor(data []byte) (NamedColor, error) {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return NamedColor{}, fmt.Errorf("invalid named color %s: %w", string(data), err)
	}
	switch len(pair) {
	case 1:
		return NamedColor{Value: pair[0], Name: pair[0]}, nil
	case 2:
		return NamedColor{Value: pair[0], Name: pair[1]}, nil
	default:
		return NamedColor{}, fmt.Errorf("invalid named color %s: expected [value, name]", string(data))
	}
}

// Palette is an ordered list of entries; order is first appearance in the
// source markup and drives positional matching between variants.
type Palette []Entry

// Colors enumerates every color value in order, expanding gradient stops.
// Duplicates are kept.
func (p Palette) Colors() []string {
	var result []string
	for _, e := range p {
		result = append(result, e.Values()...)
	}
	return result
}

// Clone returns a deep copy of the palette
func (p Palette) Clone() Palette {
	if p == nil {
		return nil
	}
	out := make(Palette, len(p))
	for i, e := range p {
		out[i] = e
		if e.Stops != nil {
			out[i].Stops = append([]NamedColor{}, e.Stops...)
		}
	}
	return out
}
