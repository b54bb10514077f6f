// SPDX-License-Identifier: MIT
package themes

// Mode is a dark theme transform offered to the user
type Mode string

// Dark theme transforms understood by the invert manipulator
const (
	InvertColor      Mode = "invertColor"
	InvertLuminosity Mode = "invertLuminosity"
	NoInversion      Mode = "none"
)

// Suggestion describes a dark theme transform
type Suggestion struct {
	Mode        Mode   `json:"mode"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// GetSuggestion returns a suggestion by mode, or nil if unknown
func GetSuggestion(mode Mode) *Suggestion {
	suggestions := map[Mode]*Suggestion{
		InvertColor: {
			Mode:        InvertColor,
			Label:       "Color Inversion",
			Description: "Your uploaded graphic, but with opposite colors.",
		},
		InvertLuminosity: {
			Mode:        InvertLuminosity,
			Label:       "Brightness Inversion",
			Description: "Your uploaded graphic, but the colors have reversed brightness while preserving the hue.",
		},
		NoInversion: {
			Mode:        NoInversion,
			Label:       "No Inversion",
			Description: "Your uploaded graphic with no changes.",
		},
	}

	return suggestions[mode]
}

// ListSuggestions returns all dark theme suggestions in display order
func ListSuggestions() []*Suggestion {
	modes := []Mode{InvertColor, InvertLuminosity, NoInversion}
	var out []*Suggestion
	for _, m := range modes {
		if s := GetSuggestion(m); s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return GetSuggestion(m) != nil
}
