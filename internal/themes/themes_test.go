// SPDX-License-Identifier: MIT
package themes

import (
	"strings"
	"testing"

	"github.com/thatcatcamp/smartsvg/internal/palette"
)

func TestSuggestionExists(t *testing.T) {
	if GetSuggestion(InvertLuminosity) == nil {
		t.Fatal("invertLuminosity suggestion not found")
	}
	if GetSuggestion("sepia") != nil {
		t.Error("unknown mode should not have a suggestion")
	}
}

func TestListSuggestionsOrder(t *testing.T) {
	suggestions := ListSuggestions()
	if len(suggestions) != 3 {
		t.Fatalf("expected 3 suggestions, got %d", len(suggestions))
	}
	if suggestions[0].Mode != InvertColor || suggestions[2].Mode != NoInversion {
		t.Errorf("unexpected order: %v, %v", suggestions[0].Mode, suggestions[2].Mode)
	}
}

func TestParseColors(t *testing.T) {
	tests := []struct {
		token string
		hex   string
	}{
		{"#fff", "#ffffff"},
		{"#112233", "#112233"},
		{"red", "#ff0000"},
		{" Navy ", "#000080"},
		{"rgb(255,0,0)", "#ff0000"},
		{"rgb(10, 20, 30)", "#0a141e"},
		{"RGBA(10,20,30,0.5)", "#0a141e"},
		{"rgb(100% 0% 0% / 50%)", "#ff0000"},
		{"hsl(120,100%,50%)", "#00ff00"},
		{"hsla(240deg, 100%, 50%, 0.3)", "#0000ff"},
		{"hsl(-120,100%,50%)", "#0000ff"},
	}
	for _, tt := range tests {
		c, ok := Parse(tt.token)
		if !ok {
			t.Errorf("expected %q to parse", tt.token)
			continue
		}
		if got := c.Hex(); got != tt.hex {
			t.Errorf("Parse(%q) = %s, want %s", tt.token, got, tt.hex)
		}
	}
	for _, token := range []string{"#12", "url(#a)", "rgb(1,2)", "rgb(a,b,c)", "hsl(120,100,50)", "cmyk(1,2,3)", ""} {
		if _, ok := Parse(token); ok {
			t.Errorf("expected %q not to parse", token)
		}
	}
}

func TestInvertFunctionalColors(t *testing.T) {
	if got := Invert("rgb(255,0,0)", InvertColor); got != "#00ffff" {
		t.Errorf("expected #00ffff, got %s", got)
	}
	if got := Invert("hsl(0,0%,100%)", InvertColor); got != "#000000" {
		t.Errorf("expected #000000, got %s", got)
	}
}

func TestInvertColor(t *testing.T) {
	if got := Invert("#ffffff", InvertColor); got != "#000000" {
		t.Errorf("expected #000000, got %s", got)
	}
	if got := Invert("#112233", InvertColor); got != "#eeddcc" {
		t.Errorf("expected #eeddcc, got %s", got)
	}
}

func TestInvertLuminosityKeepsHue(t *testing.T) {
	got := Invert("#000080", InvertLuminosity)
	c, ok := Parse(got)
	if !ok {
		t.Fatalf("inverted color %s does not parse", got)
	}
	h, _, l := c.Hsl()
	if h < 235 || h > 245 {
		t.Errorf("expected hue near 240, got %f", h)
	}
	if l < 0.7 {
		t.Errorf("expected light color, got lightness %f", l)
	}
}

func TestInvertLeavesUnknownTokens(t *testing.T) {
	if got := Invert("url(#a)", InvertColor); got != "url(#a)" {
		t.Errorf("expected token unchanged, got %s", got)
	}
	if got := Invert("#abcdef", NoInversion); got != "#abcdef" {
		t.Errorf("expected token unchanged, got %s", got)
	}
}

func TestCheckContrast(t *testing.T) {
	p := palette.Palette{
		palette.Solid("#ffffff", "cls-1"),
		palette.Solid("#1a1a1a", "cls-2"),
		palette.Gradient("#fafafa", "#202020"),
	}

	warnings := CheckContrast(p, DarkBackground)
	var flagged []string
	for _, w := range warnings {
		flagged = append(flagged, w.Color)
		if w.Ratio >= MinContrastRatio {
			t.Errorf("%s flagged with ratio %f", w.Color, w.Ratio)
		}
	}
	if strings.Join(flagged, ",") != "#1a1a1a,#202020" {
		t.Errorf("unexpected warnings: %v", flagged)
	}
}
