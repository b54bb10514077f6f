// SPDX-License-Identifier: MIT
package coordinator

import (
	"encoding/json"
	"fmt"

	"github.com/thatcatcamp/smartsvg/internal/rewrite"
)

// EditSet maps original colors to their replacements, keeping the order in
// which colors were first edited
type EditSet struct {
	keys   []string
	values map[string]string
}

// Set records that oldColor should become newColor
func (e *EditSet) Set(oldColor, newColor string) {
	if e.values == nil {
		e.values = map[string]string{}
	}
	if _, ok := e.values[oldColor]; !ok {
		e.keys = append(e.keys, oldColor)
	}
	e.values[oldColor] = newColor
}

// Get returns the replacement for oldColor
func (e EditSet) Get(oldColor string) (string, bool) {
	v, ok := e.values[oldColor]
	return v, ok
}

// Len returns the number of edited colors
func (e EditSet) Len() int {
	return len(e.keys)
}

// Pairs returns the edits in insertion order
func (e EditSet) Pairs() []rewrite.Pair {
	pairs := make([]rewrite.Pair, 0, len(e.keys))
	for _, k := range e.keys {
		pairs = append(pairs, rewrite.Pair{Old: k, New: e.values[k]})
	}
	return pairs
}

// Clone returns an independent copy
func (e EditSet) Clone() EditSet {
	var c EditSet
	for _, p := range e.Pairs() {
		c.Set(p.Old, p.New)
	}
	return c
}

// MarshalJSON writes the edits as ordered [old, new] pairs
func (e EditSet) MarshalJSON() ([]byte, error) {
	pairs := make([][2]string, 0, len(e.keys))
	for _, p := range e.Pairs() {
		pairs = append(pairs, [2]string{p.Old, p.New})
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON reads pairs written by MarshalJSON
func (e *EditSet) UnmarshalJSON(data []byte) error {
	var pairs [][2]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return fmt.Errorf("edit set: %w", err)
	}
	*e = EditSet{}
	for _, p := range pairs {
		e.Set(p[0], p[1])
	}
	return nil
}

// LockSet marks colors that keep their value in the dark theme
type LockSet struct {
	keys   []string
	values map[string]bool
}

// Toggle flips the lock on color and returns the new state
func (l *LockSet) Toggle(color string) bool {
	if l.values == nil {
		l.values = map[string]bool{}
	}
	if _, ok := l.values[color]; !ok {
		l.keys = append(l.keys, color)
	}
	l.values[color] = !l.values[color]
	return l.values[color]
}

// IsLocked reports whether color is locked
func (l LockSet) IsLocked(color string) bool {
	return l.values[color]
}

// Locked returns the locked colors in the order they were first toggled
func (l LockSet) Locked() []string {
	locked := []string{}
	for _, k := range l.keys {
		if l.values[k] {
			locked = append(locked, k)
		}
	}
	return locked
}

// Clone returns an independent copy
func (l LockSet) Clone() LockSet {
	c := LockSet{keys: append([]string(nil), l.keys...), values: make(map[string]bool, len(l.values))}
	for k, v := range l.values {
		c.values[k] = v
	}
	return c
}

// MarshalJSON writes the locked colors
func (l LockSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.Locked())
}

// UnmarshalJSON reads colors written by MarshalJSON
func (l *LockSet) UnmarshalJSON(data []byte) error {
	var colors []string
	if err := json.Unmarshal(data, &colors); err != nil {
		return fmt.Errorf("lock set: %w", err)
	}
	*l = LockSet{}
	for _, c := range colors {
		if !l.IsLocked(c) {
			l.Toggle(c)
		}
	}
	return nil
}
