// SPDX-License-Identifier: MIT
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/thatcatcamp/smartsvg/internal/manipulation"
	"github.com/thatcatcamp/smartsvg/internal/themes"
)

// Kind names a project variant
type Kind string

// Project kinds
const (
	KindLogo         Kind = "logo"
	KindIcon         Kind = "icon"
	KindFavicon      Kind = "favicon"
	KindIllustration Kind = "illustration"
)

// Device is the screen size a rendition targets
type Device string

// Devices
const (
	Desktop Device = "desktop"
	Mobile  Device = "mobile"
)

// Valid reports whether d is a known device
func (d Device) Valid() bool {
	return d == Desktop || d == Mobile
}

// Feature labels shown for a finished smart SVG
const (
	FeatureDarkMode        = "Dark Mode"
	FeatureAltText         = "Alt Text"
	FeatureLongDescription = "Long Description"
	FeatureResponsive      = "Responsive Resizing"
	FeatureContrastTheme   = "Contrast Theme Overlay"
)

// Project is one of Logo, Icon, Favicon or Illustration
type Project interface {
	Kind() Kind
	// Manipulators lists the instructions derived from the project for one device
	Manipulators(d Device) []manipulation.Manipulator
	Features() []string
	Validate() error
	WithDarkTheme(d Device, mode themes.Mode) Project
	sealed()
}

// Logo is a brand mark, optionally with a separate mobile rendition
type Logo struct {
	DarkTheme       themes.Mode `json:"darkTheme"`
	DarkThemeMobile themes.Mode `json:"darkThemeMobile"`
	IsResponsive    bool        `json:"isResponsive"`
	HasAltText      bool        `json:"hasAltText"`
	Alt             string      `json:"alt"`
	Breakpoint      string      `json:"breakpoint"`
}

// Icon is a small single rendition graphic
type Icon struct {
	DarkTheme    themes.Mode `json:"darkTheme"`
	IsDecorative bool        `json:"isDecorative"`
	Alt          string      `json:"alt"`
}

// Favicon is a browser tab icon
type Favicon struct {
	DarkTheme themes.Mode `json:"darkTheme"`
	Favicon   bool        `json:"favicon"`
}

// Illustration is a larger graphic that may carry a long description
type Illustration struct {
	IsResponsive    bool        `json:"isResponsive"`
	DarkTheme       themes.Mode `json:"darkTheme"`
	DarkThemeMobile themes.Mode `json:"darkThemeMobile"`
	IsDecorative    bool        `json:"isDecorative"`
	Alt             string      `json:"alt"`
	Description     string      `json:"description"`
	Breakpoint      string      `json:"breakpoint"`
}

func (Logo) sealed()         {}
func (Icon) sealed()         {}
func (Favicon) sealed()      {}
func (Illustration) sealed() {}

func (Logo) Kind() Kind         { return KindLogo }
func (Icon) Kind() Kind         { return KindIcon }
func (Favicon) Kind() Kind      { return KindFavicon }
func (Illustration) Kind() Kind { return KindIllustration }

// ValidationError reports an invalid project field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var textPolicy = bluemonday.StrictPolicy()

// plainText strips markup from user supplied text
func plainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(textPolicy.Sanitize(s)))
}

func darkThemeFor(d Device, desktop, mobile themes.Mode) themes.Mode {
	if d == Mobile {
		return mobile
	}
	return desktop
}

func appendInvert(ms []manipulation.Manipulator, mode themes.Mode) []manipulation.Manipulator {
	if mode == "" {
		return ms
	}
	return append(ms, manipulation.Invert(string(mode)))
}

func appendText(ms []manipulation.Manipulator, build func(string) manipulation.Manipulator, text string) []manipulation.Manipulator {
	if text = plainText(text); text == "" {
		return ms
	}
	return append(ms, build(text))
}

func (p Logo) Manipulators(d Device) []manipulation.Manipulator {
	var ms []manipulation.Manipulator
	ms = appendInvert(ms, darkThemeFor(d, p.DarkTheme, p.DarkThemeMobile))
	if p.HasAltText {
		ms = appendText(ms, manipulation.Title, p.Alt)
	}
	return ms
}

func (p Icon) Manipulators(d Device) []manipulation.Manipulator {
	var ms []manipulation.Manipulator
	ms = appendInvert(ms, p.DarkTheme)
	if p.IsDecorative {
		ms = append(ms, manipulation.Decorative())
	}
	return appendText(ms, manipulation.Title, p.Alt)
}

func (p Favicon) Manipulators(d Device) []manipulation.Manipulator {
	return appendInvert(nil, p.DarkTheme)
}

func (p Illustration) Manipulators(d Device) []manipulation.Manipulator {
	var ms []manipulation.Manipulator
	ms = appendInvert(ms, darkThemeFor(d, p.DarkTheme, p.DarkThemeMobile))
	if p.IsDecorative {
		ms = append(ms, manipulation.Decorative())
	}
	ms = appendText(ms, manipulation.Title, p.Alt)
	return appendText(ms, manipulation.Description, p.Description)
}

func (p Logo) Features() []string {
	features := []string{FeatureDarkMode, FeatureAltText}
	if p.IsResponsive {
		features = append(features, FeatureResponsive)
	}
	return append(features, FeatureContrastTheme)
}

func (p Icon) Features() []string {
	features := []string{FeatureDarkMode}
	if !p.IsDecorative {
		features = append(features, FeatureAltText)
	}
	return append(features, FeatureContrastTheme)
}

func (p Favicon) Features() []string {
	return []string{FeatureDarkMode, FeatureContrastTheme}
}

func (p Illustration) Features() []string {
	features := []string{FeatureDarkMode}
	if !p.IsDecorative {
		features = append(features, FeatureAltText)
	}
	if p.Description != "" {
		features = append(features, FeatureLongDescription)
	}
	if p.IsResponsive {
		features = append(features, FeatureResponsive)
	}
	return append(features, FeatureContrastTheme)
}

func validateMode(field string, mode themes.Mode) error {
	if mode != "" && !mode.Valid() {
		return &ValidationError{Field: field, Message: fmt.Sprintf("unknown dark theme %q", mode)}
	}
	return nil
}

func validateBreakpoint(responsive bool, breakpoint string) error {
	if !responsive {
		return nil
	}
	if n, err := strconv.Atoi(strings.TrimSpace(breakpoint)); err != nil || n <= 0 {
		return &ValidationError{Field: "breakpoint", Message: "must be a positive number of pixels"}
	}
	return nil
}

func (p Logo) Validate() error {
	err := errors.Join(
		validateMode("darkTheme", p.DarkTheme),
		validateMode("darkThemeMobile", p.DarkThemeMobile),
		validateBreakpoint(p.IsResponsive, p.Breakpoint),
	)
	if p.HasAltText && plainText(p.Alt) == "" {
		err = errors.Join(err, &ValidationError{Field: "alt", Message: "required"})
	}
	return err
}

func (p Icon) Validate() error {
	return validateMode("darkTheme", p.DarkTheme)
}

func (p Favicon) Validate() error {
	return validateMode("darkTheme", p.DarkTheme)
}

func (p Illustration) Validate() error {
	return errors.Join(
		validateMode("darkTheme", p.DarkTheme),
		validateMode("darkThemeMobile", p.DarkThemeMobile),
		validateBreakpoint(p.IsResponsive, p.Breakpoint),
	)
}

func (p Logo) WithDarkTheme(d Device, mode themes.Mode) Project {
	if d == Mobile {
		p.DarkThemeMobile = mode
	} else {
		p.DarkTheme = mode
	}
	return p
}

func (p Icon) WithDarkTheme(d Device, mode themes.Mode) Project {
	p.DarkTheme = mode
	return p
}

func (p Favicon) WithDarkTheme(d Device, mode themes.Mode) Project {
	p.DarkTheme = mode
	return p
}

func (p Illustration) WithDarkTheme(d Device, mode themes.Mode) Project {
	if d == Mobile {
		p.DarkThemeMobile = mode
	} else {
		p.DarkTheme = mode
	}
	return p
}

// Responsive reports whether the project has a mobile rendition and at
// which width it switches
func Responsive(p Project) (bool, string) {
	switch p := p.(type) {
	case Logo:
		return p.IsResponsive, p.Breakpoint
	case Illustration:
		return p.IsResponsive, p.Breakpoint
	case Icon, Favicon:
		return false, ""
	default:
		panic(fmt.Sprintf("project: unknown kind %T", p))
	}
}

// Encode writes the project wrapped in an object keyed by its kind
func Encode(p Project) ([]byte, error) {
	if p == nil {
		return nil, errors.New("project: nil project")
	}
	return json.Marshal(map[Kind]Project{p.Kind(): p})
}

// Decode reads a project written by Encode
func Decode(data []byte) (Project, error) {
	var envelope map[Kind]json.RawMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	if len(envelope) != 1 {
		return nil, fmt.Errorf("project: expected exactly one kind, got %d", len(envelope))
	}

	for kind, raw := range envelope {
		switch kind {
		case KindLogo:
			return decodeAs[Logo](raw)
		case KindIcon:
			return decodeAs[Icon](raw)
		case KindFavicon:
			return decodeAs[Favicon](raw)
		case KindIllustration:
			return decodeAs[Illustration](raw)
		default:
			return nil, fmt.Errorf("project: unknown kind %q", kind)
		}
	}
	return nil, nil
}

func decodeAs[T Project](raw json.RawMessage) (Project, error) {
	var p T
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("project: %w", err)
	}
	return p, nil
}

// New creates an empty project of the given kind
func New(kind Kind) (Project, error) {
	switch kind {
	case KindLogo:
		return Logo{}, nil
	case KindIcon:
		return Icon{}, nil
	case KindFavicon:
		return Favicon{}, nil
	case KindIllustration:
		return Illustration{}, nil
	default:
		return nil, fmt.Errorf("project: unknown kind %q", kind)
	}
}
