// SPDX-License-Identifier: MIT
package manipulation

import (
	"context"

	"github.com/thatcatcamp/smartsvg/internal/palette"
)

// Manipulator targets
const (
	TargetAll  = "all"
	TargetPre  = "pre"
	TargetPost = "post"
)

// Manipulator names understood by the service
const (
	NameInvert      = "invert"
	NameTitle       = "title"
	NameDecorative  = "decorative"
	NameDescription = "description"
	NameLock        = "lock"
	NameEditColor   = "editColor"
)

// Manipulator is one instruction in a manipulation request
type Manipulator struct {
	Target     string   `json:"target"`
	Name       string   `json:"name"`
	Parameters []string `json:"parameters"`
}

// Request asks the service to transform an SVG element
type Request struct {
	Type         string        `json:"type"`
	Element      string        `json:"element"`
	Manipulation []Manipulator `json:"manipulation"`
}

// Response carries the light and dark renditions with their palettes
type Response struct {
	LightSvg    string          `json:"lightSvg"`
	DarkSvg     string          `json:"darkSvg"`
	LightColors palette.Palette `json:"lightColors"`
	DarkColors  palette.Palette `json:"darkColors"`
	ID          int             `json:"id"`
}

// Renditions holds the desktop and optional mobile text of one theme
type Renditions struct {
	Desktop string `json:"desktop"`
	Mobile  string `json:"mobile,omitempty"`
}

// SmartRequest asks the service to compose the final smart SVG
type SmartRequest struct {
	LightSvg   Renditions  `json:"lightSvg"`
	DarkSvg    *Renditions `json:"darkSvg,omitempty"`
	Breakpoint *int        `json:"breakpoint,omitempty"`
}

// SmartResponse is the composed artifact
type SmartResponse struct {
	SmartSvg string `json:"smartSvg"`
}

// Service performs manipulations and composes smart SVGs
type Service interface {
	Perform(ctx context.Context, req Request) (*Response, error)
	MakeSmart(ctx context.Context, req SmartRequest) (*SmartResponse, error)
}

// Invert builds the dark theme transform
func Invert(mode string) Manipulator {
	return Manipulator{Target: TargetAll, Name: NameInvert, Parameters: []string{mode}}
}

// Title builds the accessible title instruction
func Title(text string) Manipulator {
	return Manipulator{Target: TargetPre, Name: NameTitle, Parameters: []string{text}}
}

// Description builds the long description instruction
func Description(text string) Manipulator {
	return Manipulator{Target: TargetPre, Name: NameDescription, Parameters: []string{text}}
}

// Decorative marks the graphic as decorative
func Decorative() Manipulator {
	return Manipulator{Target: TargetPre, Name: NameDecorative, Parameters: []string{"true"}}
}

// Lock keeps the given colors out of the dark theme transform
func Lock(colors []string) Manipulator {
	if colors == nil {
		colors = []string{}
	}
	return Manipulator{Target: TargetPre, Name: NameLock, Parameters: colors}
}

// EditColor replaces oldColor by newColor after the transform
func EditColor(oldColor, newColor string) Manipulator {
	return Manipulator{Target: TargetPost, Name: NameEditColor, Parameters: []string{"hsl", oldColor, newColor}}
}
