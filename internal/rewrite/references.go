// SPDX-License-Identifier: MIT
package rewrite

import (
	"math/rand/v2"
	"regexp"
	"strconv"
	"strings"
	"sync/atomic"
)

// Discriminator hands out the number used to prefix internal references
type Discriminator interface {
	Next() int
}

// Counter is a monotonic discriminator; two documents rewritten through the
// same counter never share a prefix.
type Counter struct {
	n atomic.Int64
}

// NewCounter creates a counter whose first value is start
func NewCounter(start int) *Counter {
	c := &Counter{}
	c.n.Store(int64(start) - 1)
	return c
}

// Next returns the next value
func (c *Counter) Next() int {
	return int(c.n.Add(1))
}

// Reserve makes sure later values are greater than n
func (c *Counter) Reserve(n int) {
	for {
		cur := c.n.Load()
		if cur >= int64(n) || c.n.CompareAndSwap(cur, int64(n)) {
			return
		}
	}
}

// Reserver is implemented by discriminators that can skip values already
// present in stored documents
type Reserver interface {
	Reserve(n int)
}

// Random draws a number between 1 and 100 for every document
type Random struct{}

// NewRandom creates a random discriminator
func NewRandom() Random {
	return Random{}
}

// Next returns a random value in [1, 100]
func (Random) Next() int {
	return rand.IntN(100) + 1
}

// Deduplicator renames class names, gradient ids and the references to them
// so two independently generated SVGs can be shown on the same page.
type Deduplicator struct {
	disc Discriminator
}

// NewDeduplicator creates a deduplicator using the given discriminator
func NewDeduplicator(disc Discriminator) *Deduplicator {
	return &Deduplicator{disc: disc}
}

var prefixPattern = regexp.MustCompile(`cls-(\d+)-|(\d+)-(?:linear|radial)-gradient|(?:id="|url\(#|href="#)(\d+)-`)

// HighestPrefix returns the largest discriminator used in the texts, or 0
func HighestPrefix(texts ...string) int {
	highest := 0
	for _, text := range texts {
		for _, m := range prefixPattern.FindAllStringSubmatch(text, -1) {
			for _, group := range m[1:] {
				if n, err := strconv.Atoi(group); err == nil && n > highest {
					highest = n
				}
			}
		}
	}
	return highest
}

// Reserve skips every discriminator already used in the texts so documents
// rewritten later never share a prefix with them. Discriminators that do
// not implement Reserver are left alone.
func (d *Deduplicator) Reserve(texts ...string) {
	if r, ok := d.disc.(Reserver); ok {
		r.Reserve(HighestPrefix(texts...))
	}
}

// Rewrite prefixes every internal reference of the document with a fresh
// discriminator. Each call uses a new value, so a text must be rewritten
// once per composition.
func (d *Deduplicator) Rewrite(svg string) string {
	n := strconv.Itoa(d.disc.Next())

	out := svg
	if strings.Contains(out, "cls-") {
		out = strings.ReplaceAll(out, "cls-", "cls-"+n+"-")
	}
	if strings.Contains(svg, "linear-gradient") {
		out = strings.ReplaceAll(out, "linear-gradient", n+"-linear-gradient")
	}
	if strings.Contains(svg, "radial-gradient") {
		out = strings.ReplaceAll(out, "radial-gradient", n+"-radial-gradient")
	}
	if strings.Contains(out, `id="`) {
		out = strings.NewReplacer(
			`id="`, `id="`+n+"-",
			"url(#", "url(#"+n+"-",
			`href="#`, `href="#`+n+"-",
		).Replace(out)
	}
	return out
}
