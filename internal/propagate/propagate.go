// SPDX-License-Identifier: MIT
package propagate

import (
	"fmt"

	"github.com/thatcatcamp/smartsvg/internal/palette"
	"github.com/thatcatcamp/smartsvg/internal/rewrite"
)

// ShapeMismatchError means two color lists that should come from the same
// palette ordering do not line up.
type ShapeMismatchError struct {
	Position int
	Reason   string
}

func (e *ShapeMismatchError) Error() string {
	if e.Position < 0 {
		return fmt.Sprintf("color lists do not match: %s", e.Reason)
	}
	return fmt.Sprintf("color lists do not match at position %d: %s", e.Position, e.Reason)
}

// Pair is an old color and what it became
type Pair struct {
	Old string
	New string
}

// String renders the pair as "new old"
func (p Pair) String() string {
	return p.New + " " + p.Old
}

// Group holds the pairs of one palette position: one for a solid color, one
// per stop for a gradient.
type Group []Pair

// PairOldNew zips two palettes position by position
func PairOldNew(oldList, newList palette.Palette) ([]Group, error) {
	if len(oldList) != len(newList) {
		return nil, &ShapeMismatchError{
			Position: -1,
			Reason:   fmt.Sprintf("%d entries before, %d after", len(oldList), len(newList)),
		}
	}

	groups := make([]Group, 0, len(oldList))
	for i, oldEntry := range oldList {
		newEntry := newList[i]
		if oldEntry.IsGradient() != newEntry.IsGradient() {
			return nil, &ShapeMismatchError{Position: i, Reason: "gradient paired with a solid color"}
		}

		if !oldEntry.IsGradient() {
			groups = append(groups, Group{{Old: oldEntry.Color.Value, New: newEntry.Color.Value}})
			continue
		}

		if len(oldEntry.Stops) != len(newEntry.Stops) {
			return nil, &ShapeMismatchError{
				Position: i,
				Reason:   fmt.Sprintf("%d gradient stops before, %d after", len(oldEntry.Stops), len(newEntry.Stops)),
			}
		}
		g := make(Group, 0, len(oldEntry.Stops))
		for j, stop := range oldEntry.Stops {
			g = append(g, Pair{Old: stop.Value, New: newEntry.Stops[j].Value})
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// Flat concatenates the groups in order
func Flat(groups []Group) []Pair {
	var out []Pair
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// Input describes one propagation from a source variant onto a target
type Input struct {
	SourceOld palette.Palette
	SourceNew palette.Palette
	// Matched holds the colors both variants share
	Matched        []string
	TargetOriginal string
	TargetCurrent  string
}

// Apply replays the source's edits of shared colors on the target's original
// text and then restores every target-only color from its current text. Shared
// edits win; edits unique to the target survive.
func Apply(in Input) (string, error) {
	groups, err := PairOldNew(in.SourceOld, in.SourceNew)
	if err != nil {
		return "", err
	}
	pairs := Flat(groups)

	matched := make(map[string]bool, len(in.Matched))
	for _, c := range in.Matched {
		matched[c] = true
	}

	text := in.TargetOriginal
	shared := make(map[string]bool)
	covered := true
	for _, p := range pairs {
		if !matched[p.Old] {
			covered = false
			continue
		}
		text = rewrite.ReplaceColor(text, p.Old, p.New)
		shared[p.New] = true
	}

	if covered {
		return text, nil
	}

	return restoreTargetColors(text, in.TargetCurrent, shared)
}

// restoreTargetColors lines up the current target text with the rewritten
// one and re-applies every color that differs, unless it was just set by a
// shared edit.
func restoreTargetColors(rewritten, current string, shared map[string]bool) (string, error) {
	currentColors, err := palette.ExtractAll(current)
	if err != nil {
		return "", fmt.Errorf("read current target colors: %w", err)
	}
	rewrittenColors, err := palette.ExtractAll(rewritten)
	if err != nil {
		return "", fmt.Errorf("read rewritten target colors: %w", err)
	}

	groups, err := PairOldNew(rewrittenColors, currentColors)
	if err != nil {
		return "", err
	}

	var restore []rewrite.Pair
	for _, p := range Flat(groups) {
		if p.Old == p.New || shared[p.Old] || shared[p.New] {
			continue
		}
		restore = append(restore, rewrite.Pair{Old: p.Old, New: p.New})
	}
	return rewrite.ReplaceColorsOnce(rewritten, restore), nil
}
