// SPDX-License-Identifier: MIT
package manipulation

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/thatcatcamp/smartsvg/internal/palette"
	"github.com/thatcatcamp/smartsvg/internal/rewrite"
	"github.com/thatcatcamp/smartsvg/internal/themes"
)

// Local performs manipulations in process. It understands the same
// manipulators as the remote service but cannot compose smart SVGs.
type Local struct {
	ids atomic.Int64
}

// NewLocal creates an in-process manipulation engine
func NewLocal() *Local {
	return &Local{}
}

// Perform applies the pre manipulators to the light text, derives the dark
// text with the invert manipulator and then applies the post manipulators
// to the dark text.
func (l *Local) Perform(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Type != "svg" {
		return nil, badRequest("type", fmt.Sprintf("unsupported element type %q", req.Type))
	}
	if _, err := palette.Extract(req.Element); err != nil {
		return nil, badRequest("element", err.Error())
	}

	light := req.Element
	locked := map[string]bool{}
	mode := themes.NoInversion
	var edits []rewrite.Pair

	for _, m := range req.Manipulation {
		switch m.Name {
		case NameLock:
			for _, c := range m.Parameters {
				locked[c] = true
			}
		case NameTitle, NameDescription:
			if len(m.Parameters) != 1 {
				return nil, badRequest(m.Name, "expected one parameter")
			}
			tag := "title"
			if m.Name == NameDescription {
				tag = "desc"
			}
			var err error
			if light, err = insertMetadata(light, tag, m.Parameters[0]); err != nil {
				return nil, badRequest("element", err.Error())
			}
		case NameDecorative:
			var err error
			if light, err = markDecorative(light); err != nil {
				return nil, badRequest("element", err.Error())
			}
		case NameInvert:
			if len(m.Parameters) != 1 || !themes.Mode(m.Parameters[0]).Valid() {
				return nil, badRequest(NameInvert, "unknown dark theme")
			}
			mode = themes.Mode(m.Parameters[0])
		case NameEditColor:
			if len(m.Parameters) != 3 || m.Parameters[0] != "hsl" {
				return nil, badRequest(NameEditColor, "expected [\"hsl\", old, new]")
			}
			edits = append(edits, rewrite.Pair{Old: m.Parameters[1], New: m.Parameters[2]})
		default:
			return nil, badRequest("manipulation", fmt.Sprintf("unknown manipulator %q", m.Name))
		}
	}

	lightColors, err := palette.Extract(light)
	if err != nil {
		return nil, badRequest("element", err.Error())
	}

	dark := invertColors(light, palette.Flatten(lightColors), locked, mode)
	dark = rewrite.ReplaceColors(dark, edits)

	darkColors, err := palette.Extract(dark)
	if err != nil {
		return nil, badRequest("element", err.Error())
	}

	return &Response{
		LightSvg:    light,
		DarkSvg:     dark,
		LightColors: lightColors,
		DarkColors:  darkColors,
		ID:          int(l.ids.Add(1)),
	}, nil
}

// MakeSmart is not available offline
func (l *Local) MakeSmart(ctx context.Context, req SmartRequest) (*SmartResponse, error) {
	return nil, ErrNotSupported
}

// invertColors swaps every unlocked color for its inverse in one pass, so an
// inverted value is never inverted again.
func invertColors(svg string, colors []string, locked map[string]bool, mode themes.Mode) string {
	if mode == themes.NoInversion {
		return svg
	}

	var swaps []rewrite.Pair
	for _, c := range colors {
		if locked[c] {
			continue
		}
		swaps = append(swaps, rewrite.Pair{Old: c, New: themes.Invert(c, mode)})
	}
	return rewrite.ReplaceColorsOnce(svg, swaps)
}

func rootTagEnd(svg string) (int, error) {
	start := strings.Index(svg, "<svg")
	if start < 0 {
		return 0, fmt.Errorf("no svg root element")
	}
	end := strings.Index(svg[start:], ">")
	if end < 0 {
		return 0, fmt.Errorf("unterminated svg root element")
	}
	return start + end, nil
}

func insertMetadata(svg, tag, text string) (string, error) {
	end, err := rootTagEnd(svg)
	if err != nil {
		return "", err
	}
	var escaped bytes.Buffer
	if err := xml.EscapeText(&escaped, []byte(text)); err != nil {
		return "", err
	}
	element := "<" + tag + ">" + escaped.String() + "</" + tag + ">"
	return svg[:end+1] + element + svg[end+1:], nil
}

func markDecorative(svg string) (string, error) {
	end, err := rootTagEnd(svg)
	if err != nil {
		return "", err
	}
	if strings.Contains(svg[:end], "aria-hidden") {
		return svg, nil
	}
	insertAt := end
	if end > 0 && svg[end-1] == '/' {
		insertAt = end - 1
	}
	return svg[:insertAt] + ` aria-hidden="true"` + svg[insertAt:], nil
}

func badRequest(field, message string) *ServiceError {
	return &ServiceError{
		Message:   "Validation failed.",
		Status:    http.StatusBadRequest,
		ErrorCode: "app_errors.validation_failed",
		Errors:    []FieldValidationError{{Field: field, Message: message}},
	}
}
