// SPDX-License-Identifier: MIT
package themes

import (
	"math"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Parse reads a hex, rgb(), rgba(), hsl(), hsla() or named CSS color token.
// Alpha is ignored.
func Parse(token string) (colorful.Color, bool) {
	token = strings.TrimSpace(token)
	if strings.HasSuffix(token, ")") {
		return parseFunctional(token)
	}
	if strings.HasPrefix(token, "#") {
		c, err := colorful.Hex(token)
		if err != nil {
			return colorful.Color{}, false
		}
		return c, true
	}

	named, ok := colornames.Map[strings.ToLower(token)]
	if !ok {
		return colorful.Color{}, false
	}
	c, ok := colorful.MakeColor(named)
	return c, ok
}

func parseFunctional(token string) (colorful.Color, bool) {
	open := strings.IndexByte(token, '(')
	if open < 0 {
		return colorful.Color{}, false
	}
	args := strings.FieldsFunc(token[open+1:len(token)-1], func(r rune) bool {
		return r == ',' || r == '/' || r == ' '
	})
	if len(args) != 3 && len(args) != 4 {
		return colorful.Color{}, false
	}

	switch strings.ToLower(strings.TrimSpace(token[:open])) {
	case "rgb", "rgba":
		var ch [3]float64
		for i := range ch {
			v, ok := channel(args[i])
			if !ok {
				return colorful.Color{}, false
			}
			ch[i] = v
		}
		return colorful.Color{R: ch[0], G: ch[1], B: ch[2]}, true
	case "hsl", "hsla":
		h, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "deg"), 64)
		if err != nil {
			return colorful.Color{}, false
		}
		s, okS := percent(args[1])
		l, okL := percent(args[2])
		if !okS || !okL {
			return colorful.Color{}, false
		}
		h = math.Mod(h, 360)
		if h < 0 {
			h += 360
		}
		return colorful.Hsl(h, s, l).Clamped(), true
	default:
		return colorful.Color{}, false
	}
}

// channel reads an rgb component, 0-255 or a percentage, as 0-1
func channel(s string) (float64, bool) {
	if _, ok := strings.CutSuffix(s, "%"); ok {
		return percent(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(v / 255), true
}

func percent(s string) (float64, bool) {
	p, ok := strings.CutSuffix(s, "%")
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseFloat(p, 64)
	if err != nil {
		return 0, false
	}
	return clamp01(v / 100), true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Invert applies a dark theme transform to a single color token. Tokens
// that cannot be parsed are returned unchanged.
func Invert(token string, mode Mode) string {
	c, ok := Parse(token)
	if !ok {
		return token
	}

	switch mode {
	case InvertColor:
		return colorful.Color{R: 1 - c.R, G: 1 - c.G, B: 1 - c.B}.Clamped().Hex()
	case InvertLuminosity:
		h, s, l := c.Hsl()
		return colorful.Hsl(h, s, 1-l).Clamped().Hex()
	default:
		return token
	}
}
