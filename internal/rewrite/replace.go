// SPDX-License-Identifier: MIT
package rewrite

import (
	"strconv"
	"strings"
)

// Pair is a single color substitution
type Pair struct {
	Old string
	New string
}

// ReplaceColor replaces every delimited occurrence of oldColor with newColor.
// An occurrence only counts when it is not glued to a longer color token, so
// replacing "#fff" leaves "#ffff00" alone.
func ReplaceColor(svg, oldColor, newColor string) string {
	if oldColor == "" || oldColor == newColor {
		return svg
	}

	var b strings.Builder
	last, found := 0, false
	for i := 0; i <= len(svg); {
		idx := strings.Index(svg[i:], oldColor)
		if idx < 0 {
			break
		}
		start := i + idx
		end := start + len(oldColor)

		if glued(svg, start, end) {
			i = start + 1
			continue
		}

		b.WriteString(svg[last:start])
		b.WriteString(newColor)
		last, i, found = end, end, true
	}

	if !found {
		return svg
	}
	b.WriteString(svg[last:])
	return b.String()
}

// ReplaceColors applies the pairs in order
func ReplaceColors(svg string, pairs []Pair) string {
	for _, p := range pairs {
		svg = ReplaceColor(svg, p.Old, p.New)
	}
	return svg
}

// ReplaceColorsOnce applies the pairs simultaneously: a color written by
// one pair is never replaced by a later one, so swaps like a->b, b->a hold.
// When a color appears as Old more than once the first pair wins.
func ReplaceColorsOnce(svg string, pairs []Pair) string {
	var swaps []string
	for i, p := range pairs {
		if p.Old == "" || p.Old == p.New {
			continue
		}
		placeholder := "\x00" + strconv.Itoa(i) + "\x00"
		replaced := ReplaceColor(svg, p.Old, placeholder)
		if replaced == svg {
			continue
		}
		svg = replaced
		swaps = append(swaps, placeholder, p.New)
	}
	if len(swaps) == 0 {
		return svg
	}
	return strings.NewReplacer(swaps...).Replace(svg)
}

// glued reports whether svg[start:end] runs into a neighbouring token
func glued(svg string, start, end int) bool {
	if start > 0 && tokenByte(svg[start-1]) && tokenByte(svg[start]) {
		return true
	}
	if end < len(svg) && tokenByte(svg[end]) && tokenByte(svg[end-1]) {
		return true
	}
	return false
}

// tokenByte reports whether c can be part of a color token: hex digits,
// letters of named colors, '-' and '#'.
func tokenByte(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c == '-' || c == '#':
		return true
	}
	return false
}
