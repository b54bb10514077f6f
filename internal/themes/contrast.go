// SPDX-License-Identifier: MIT
package themes

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/thatcatcamp/smartsvg/internal/palette"
)

// Colors on a dark background are mostly large shapes, not body text, so the
// AA large-text threshold applies.
const MinContrastRatio = 3.0

// DarkBackground is the background a dark theme rendition is checked against
const DarkBackground = "#121212"

// Warning flags a palette color with too little contrast
type Warning struct {
	Color string  `json:"color"`
	Ratio float64 `json:"ratio"`
}

// ContrastRatio computes the WCAG contrast ratio between two colors
func ContrastRatio(a, b colorful.Color) float64 {
	la := luminance(a)
	lb := luminance(b)
	if la < lb {
		la, lb = lb, la
	}
	return (la + 0.05) / (lb + 0.05)
}

func luminance(c colorful.Color) float64 {
	r, g, b := c.LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// CheckContrast lists the colors of p whose contrast against background is
// under MinContrastRatio. Unparsable colors are skipped.
func CheckContrast(p palette.Palette, background string) []Warning {
	bg, ok := Parse(background)
	if !ok {
		return nil
	}

	var warnings []Warning
	for _, value := range palette.Flatten(p) {
		c, ok := Parse(value)
		if !ok {
			continue
		}
		ratio := ContrastRatio(c, bg)
		if ratio < MinContrastRatio {
			warnings = append(warnings, Warning{Color: value, Ratio: math.Round(ratio*100) / 100})
		}
	}
	return warnings
}
