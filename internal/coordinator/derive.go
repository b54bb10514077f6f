// SPDX-License-Identifier: MIT
package coordinator

import (
	"context"
	"fmt"

	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"github.com/thatcatcamp/smartsvg/internal/palette"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/rewrite"
)

// BuildRequest turns the project settings, locks and edits of one device
// into a manipulation request against its light source
func BuildRequest(p project.Project, d project.Device, source string, edits EditSet, locks LockSet) manipulation.Request {
	ms := p.Manipulators(d)
	ms = append(ms, manipulation.Lock(locks.Locked()))
	for _, e := range edits.Pairs() {
		ms = append(ms, manipulation.EditColor(e.Old, e.New))
	}
	return manipulation.Request{Type: "svg", Element: source, Manipulation: ms}
}

// DeriveInput is everything needed to recompute one device
type DeriveInput struct {
	Project project.Project
	Device  project.Device
	Source  string
	Edits   EditSet
	Locks   LockSet
}

// Derived is the outcome of one round trip to the manipulation service
type Derived struct {
	Light       string
	Dark        string
	LightColors palette.Palette
	DarkColors  palette.Palette
	ID          int
}

// Derive replays the full manipulation pipeline for one device. Dark texts,
// and the mobile light text, have their references renamed once on receipt
// so renditions can be composed together.
func Derive(ctx context.Context, svc manipulation.Service, dedup *rewrite.Deduplicator, in DeriveInput) (Derived, error) {
	req := BuildRequest(in.Project, in.Device, in.Source, in.Edits, in.Locks)
	resp, err := svc.Perform(ctx, req)
	if err != nil {
		return Derived{}, fmt.Errorf("derive %s: %w", in.Device, err)
	}

	light := resp.LightSvg
	if in.Device == project.Mobile {
		light = dedup.Rewrite(light)
	}
	return Derived{
		Light:       light,
		Dark:        dedup.Rewrite(resp.DarkSvg),
		LightColors: resp.LightColors,
		DarkColors:  resp.DarkColors,
		ID:          resp.ID,
	}, nil
}
