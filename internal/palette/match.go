// SPDX-License-Identifier: MIT
package palette

// Flatten expands gradient stops and returns every distinct color value in
// order of first appearance.
func Flatten(p Palette) []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range p.Colors() {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// Intersect returns the colors present in both palettes, ordered as they
// appear in Flatten(a).
func Intersect(a, b Palette) []string {
	inB := make(map[string]bool)
	for _, c := range Flatten(b) {
		inB[c] = true
	}

	out := []string{}
	for _, c := range Flatten(a) {
		if inB[c] {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether the palette uses the given color value anywhere
func Contains(p Palette, value string) bool {
	for _, c := range p.Colors() {
		if c == value {
			return true
		}
	}
	return false
}
