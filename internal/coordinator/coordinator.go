// SPDX-License-Identifier: MIT
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"github.com/thatcatcamp/smartsvg/internal/palette"
	"github.com/thatcatcamp/smartsvg/internal/project"
	"github.com/thatcatcamp/smartsvg/internal/propagate"
	"github.com/thatcatcamp/smartsvg/internal/rewrite"
	"github.com/thatcatcamp/smartsvg/internal/themes"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrNotLoaded is returned when a device has no upload yet
	ErrNotLoaded = errors.New("no svg loaded for device")
	// ErrUnknownColor is returned for edits and locks of colors that were never extracted
	ErrUnknownColor = errors.New("color not present in the uploaded palette")
	// ErrInvalidColor is returned for replacement colors that cannot be parsed
	ErrInvalidColor = errors.New("invalid color")
	// ErrUnknownDevice is returned for devices other than desktop and mobile
	ErrUnknownDevice = errors.New("unknown device")
	// ErrUnknownTheme is returned for dark theme modes that do not exist
	ErrUnknownTheme = errors.New("unknown dark theme")
	// ErrStale is returned when a newer request for the same device superseded this one
	ErrStale = errors.New("superseded by a newer request")
)

// Phase is the lifecycle stage of a coordinator
type Phase int

// Phases
const (
	PhaseEmpty Phase = iota
	PhaseLoaded
	PhaseEdited
	PhaseReset
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoaded:
		return "loaded"
	case PhaseEdited:
		return "edited"
	case PhaseReset:
		return "reset"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// ParsePhase is the inverse of Phase.String
func ParsePhase(s string) Phase {
	for p := PhaseEmpty; p <= PhaseReset; p++ {
		if p.String() == s {
			return p
		}
	}
	return PhaseEmpty
}

// Sources are the uploaded light texts. Mobile is optional.
type Sources struct {
	Desktop string
	Mobile  string
}

// DeviceState is the state of one device: its light source, the texts
// derived from it and the edits and locks applied on top
type DeviceState struct {
	// Source is the light text as uploaded
	Source string `json:"source"`
	Light  string `json:"light"`
	Dark   string `json:"dark"`
	// OriginalDark is the dark text as last derived, before propagation
	OriginalDark string          `json:"originalDark"`
	LightColors  palette.Palette `json:"lightColors"`
	DarkColors   palette.Palette `json:"darkColors"`
	// Loaded palettes are the ones returned for the upload and bound the
	// colors that may be edited or locked
	LoadedLightColors palette.Palette `json:"loadedLightColors"`
	LoadedDarkColors  palette.Palette `json:"loadedDarkColors"`
	Edits             EditSet         `json:"edits"`
	Locks             LockSet         `json:"locks"`
	ResponseID        int             `json:"responseId"`
}

func (s *DeviceState) clone() *DeviceState {
	c := *s
	c.Edits = s.Edits.Clone()
	c.Locks = s.Locks.Clone()
	return &c
}

func (s *DeviceState) knows(color string) bool {
	return palette.Contains(s.LoadedLightColors, color) || palette.Contains(s.LoadedDarkColors, color)
}

func (s *DeviceState) apply(d Derived) {
	s.Light = d.Light
	s.Dark = d.Dark
	s.OriginalDark = d.Dark
	s.LightColors = d.LightColors
	s.DarkColors = d.DarkColors
	s.ResponseID = d.ID
}

// Snapshot is a copy of the coordinator state
type Snapshot struct {
	Project project.Project
	Phase   Phase
	Devices map[project.Device]DeviceState
	Matched []string
}

// draft is the edit state of a request in flight
type draft struct {
	edits EditSet
	locks LockSet
	mode  *themes.Mode
}

// Options configures a Coordinator
type Options struct {
	Service  manipulation.Service
	Dedup    *rewrite.Deduplicator
	Notifier Notifier
	Logger   zerolog.Logger
}

// Coordinator owns the per device state of one project and keeps it in
// step with the manipulation service
type Coordinator struct {
	svc      manipulation.Service
	dedup    *rewrite.Deduplicator
	notifier Notifier
	log      zerolog.Logger

	mu      sync.Mutex
	project project.Project
	phase   Phase
	devices map[project.Device]*DeviceState
	drafts  map[project.Device]*draft
	seq     map[project.Device]uint64
	matched []string
}

// New creates a coordinator for p
func New(p project.Project, opts Options) *Coordinator {
	dedup := opts.Dedup
	if dedup == nil {
		dedup = rewrite.NewDeduplicator(rewrite.NewCounter(1))
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{Logger: opts.Logger}
	}
	return &Coordinator{
		svc:      opts.Service,
		dedup:    dedup,
		notifier: notifier,
		log:      opts.Logger,
		project:  p,
		devices:  map[project.Device]*DeviceState{},
		drafts:   map[project.Device]*draft{},
		seq:      map[project.Device]uint64{},
	}
}

func (c *Coordinator) fail(err error) error {
	if !errors.Is(err, ErrStale) {
		c.notifier.Notify(NotificationFor(err))
	}
	return err
}

// Load replaces all state with freshly uploaded sources. Both texts are
// parsed first; nothing changes when either is rejected.
func (c *Coordinator) Load(ctx context.Context, src Sources) error {
	if src.Desktop == "" {
		return c.fail(fmt.Errorf("desktop upload: %w", ErrNotLoaded))
	}
	if _, err := palette.Extract(src.Desktop); err != nil {
		return c.fail(fmt.Errorf("desktop upload: %w", err))
	}
	if src.Mobile != "" {
		if _, err := palette.Extract(src.Mobile); err != nil {
			return c.fail(fmt.Errorf("mobile upload: %w", err))
		}
	}

	c.mu.Lock()
	p := c.project
	seqs := map[project.Device]uint64{}
	for _, d := range []project.Device{project.Desktop, project.Mobile} {
		c.seq[d]++
		seqs[d] = c.seq[d]
		delete(c.drafts, d)
	}
	c.mu.Unlock()

	sources := map[project.Device]string{project.Desktop: src.Desktop, project.Mobile: src.Mobile}
	results := map[project.Device]Derived{}
	var resultsMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for d, source := range sources {
		if source == "" {
			continue
		}
		g.Go(func() error {
			derived, err := Derive(gctx, c.svc, c.dedup, DeriveInput{Project: p, Device: d, Source: source})
			if err != nil {
				return err
			}
			resultsMu.Lock()
			results[d] = derived
			resultsMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return c.fail(err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for d, s := range seqs {
		if c.seq[d] != s {
			c.log.Debug().Str("device", string(d)).Msg("dropping stale upload")
			return ErrStale
		}
	}

	c.devices = map[project.Device]*DeviceState{}
	for d, derived := range results {
		st := &DeviceState{
			Source:            sources[d],
			LoadedLightColors: derived.LightColors,
			LoadedDarkColors:  derived.DarkColors,
		}
		st.apply(derived)
		c.devices[d] = st
	}
	c.phase = PhaseLoaded
	c.updateMatched()
	c.log.Info().Int("devices", len(c.devices)).Strs("matched", c.matched).Msg("svg loaded")
	return nil
}

// updateMatched recomputes the colors shared by the desktop and mobile dark
// palettes. Caller holds mu.
func (c *Coordinator) updateMatched() {
	desktop, mobile := c.devices[project.Desktop], c.devices[project.Mobile]
	if desktop == nil || mobile == nil {
		c.matched = nil
		return
	}
	c.matched = palette.Intersect(desktop.LoadedDarkColors, mobile.LoadedDarkColors)
}

// EditColor replaces oldColor with newColor on one device
func (c *Coordinator) EditColor(ctx context.Context, d project.Device, oldColor, newColor string) error {
	if _, ok := themes.Parse(newColor); !ok {
		return c.fail(fmt.Errorf("%q: %w", newColor, ErrInvalidColor))
	}
	return c.mutate(ctx, d, oldColor, func(dr *draft) {
		dr.edits.Set(oldColor, newColor)
	})
}

// ToggleLock flips whether color keeps its value in the dark theme
func (c *Coordinator) ToggleLock(ctx context.Context, d project.Device, color string) error {
	return c.mutate(ctx, d, color, func(dr *draft) {
		dr.locks.Toggle(color)
	})
}

// SetDarkTheme selects the dark theme transform of one device
func (c *Coordinator) SetDarkTheme(ctx context.Context, d project.Device, mode themes.Mode) error {
	if !mode.Valid() {
		return c.fail(fmt.Errorf("%q: %w", mode, ErrUnknownTheme))
	}
	return c.mutate(ctx, d, "", func(dr *draft) {
		dr.mode = &mode
	})
}

// Reset discards the edits and locks of the given devices, or of every
// loaded device when none are given
func (c *Coordinator) Reset(ctx context.Context, devices ...project.Device) error {
	if len(devices) == 0 {
		c.mu.Lock()
		for _, d := range []project.Device{project.Desktop, project.Mobile} {
			if c.devices[d] != nil {
				devices = append(devices, d)
			}
		}
		c.mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range devices {
		g.Go(func() error {
			return c.mutate(gctx, d, "", func(dr *draft) {
				dr.edits = EditSet{}
				dr.locks = LockSet{}
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.phase = PhaseReset
	c.mu.Unlock()
	return nil
}

// mutate applies change to the latest edit state of d, re-derives the
// device and commits the result if no newer request started meanwhile.
// When color is set it must belong to the uploaded palettes.
func (c *Coordinator) mutate(ctx context.Context, d project.Device, color string, change func(*draft)) error {
	if !d.Valid() {
		return c.fail(fmt.Errorf("%q: %w", d, ErrUnknownDevice))
	}

	c.mu.Lock()
	st := c.devices[d]
	if st == nil {
		c.mu.Unlock()
		return c.fail(fmt.Errorf("%s: %w", d, ErrNotLoaded))
	}
	if color != "" && !st.knows(color) {
		c.mu.Unlock()
		return c.fail(fmt.Errorf("%s %q: %w", d, color, ErrUnknownColor))
	}

	next := &draft{edits: st.Edits.Clone(), locks: st.Locks.Clone()}
	if pending := c.drafts[d]; pending != nil {
		next = &draft{edits: pending.edits.Clone(), locks: pending.locks.Clone(), mode: pending.mode}
	}
	change(next)
	c.drafts[d] = next
	c.seq[d]++
	seq := c.seq[d]

	p := c.project
	if next.mode != nil {
		p = p.WithDarkTheme(d, *next.mode)
	}
	in := DeriveInput{Project: p, Device: d, Source: st.Source, Edits: next.edits, Locks: next.locks}
	c.mu.Unlock()

	derived, err := Derive(ctx, c.svc, c.dedup, in)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.seq[d] != seq {
		c.log.Debug().Str("device", string(d)).Uint64("seq", seq).Msg("dropping stale response")
		return ErrStale
	}
	delete(c.drafts, d)
	if err != nil {
		c.log.Warn().Err(err).Str("device", string(d)).Msg("manipulation failed")
		return c.fail(err)
	}

	current := c.devices[d]
	if current == nil {
		return ErrStale
	}
	updated := current.clone()
	updated.Edits = next.edits
	updated.Locks = next.locks
	updated.apply(derived)
	c.devices[d] = updated
	if next.mode != nil {
		c.project = c.project.WithDarkTheme(d, *next.mode)
	}
	c.phase = PhaseEdited
	return nil
}

// ApplyChangesToMobile carries the edits between two desktop dark palettes
// over to the mobile dark text. Colors unique to mobile keep their current
// values. No service call is made.
func (c *Coordinator) ApplyChangesToMobile(original, changed palette.Palette) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mobile := c.devices[project.Mobile]
	if c.devices[project.Desktop] == nil || mobile == nil {
		return "", c.fail(fmt.Errorf("propagate: %w", ErrNotLoaded))
	}

	merged, err := propagate.Apply(propagate.Input{
		SourceOld:      original,
		SourceNew:      changed,
		Matched:        c.matched,
		TargetOriginal: mobile.OriginalDark,
		TargetCurrent:  mobile.Dark,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("propagation aborted")
		return "", c.fail(err)
	}

	colors, err := palette.Extract(merged)
	if err != nil {
		return "", c.fail(err)
	}
	updated := mobile.clone()
	updated.Dark = merged
	updated.DarkColors = colors
	c.devices[project.Mobile] = updated
	c.phase = PhaseEdited
	return merged, nil
}

// MakeSmart composes the final smart SVG from the current renditions
func (c *Coordinator) MakeSmart(ctx context.Context) (string, error) {
	c.mu.Lock()
	desktop := c.devices[project.Desktop]
	if desktop == nil {
		c.mu.Unlock()
		return "", c.fail(fmt.Errorf("make smart: %w", ErrNotLoaded))
	}
	r := project.Renditions{LightDesktop: desktop.Light, DarkDesktop: desktop.Dark}
	if mobile := c.devices[project.Mobile]; mobile != nil {
		r.LightMobile = mobile.Light
		r.DarkMobile = mobile.Dark
	}
	req := project.SmartRequest(c.project, r)
	c.mu.Unlock()

	resp, err := c.svc.MakeSmart(ctx, req)
	if err != nil {
		return "", c.fail(fmt.Errorf("make smart: %w", err))
	}
	return resp.SmartSvg, nil
}

// Matched returns the colors shared by the desktop and mobile uploads
func (c *Coordinator) Matched() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string{}, c.matched...)
}

// Project returns the current project settings
func (c *Coordinator) Project() project.Project {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.project
}

// Snapshot copies the current state
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Project: c.project,
		Phase:   c.phase,
		Devices: make(map[project.Device]DeviceState, len(c.devices)),
		Matched: append([]string{}, c.matched...),
	}
	for d, st := range c.devices {
		s.Devices[d] = *st.clone()
	}
	return s
}

// Restore replaces the state with a snapshot, dropping requests in flight
func (c *Coordinator) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s.Project != nil {
		c.project = s.Project
	}
	c.phase = s.Phase
	c.devices = map[project.Device]*DeviceState{}
	var texts []string
	for d, st := range s.Devices {
		c.devices[d] = st.clone()
		c.seq[d]++
		texts = append(texts, st.Light, st.Dark, st.OriginalDark)
	}
	// the counter is not persisted; continue above the stored prefixes
	c.dedup.Reserve(texts...)
	c.drafts = map[project.Device]*draft{}
	c.updateMatched()
}
