// SPDX-License-Identifier: MIT
package palette

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ParseError is returned when the SVG markup cannot be read as XML
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid svg markup at line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("invalid svg markup: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// fill values that never name a replaceable color
var skippedFills = map[string]bool{
	"none":         true,
	"inherit":      true,
	"currentcolor": true,
	"transparent":  true,
}

// Extract recovers the ordered palette of an SVG document. A linearGradient
// wins over an inline style block; solid colors are de-duplicated keeping
// their first appearance.
func Extract(svg string) (Palette, error) {
	doc, err := scan(svg)
	if err != nil {
		return nil, err
	}
	if doc.hasGradient {
		return Palette{gradientEntry(doc.stops)}, nil
	}
	if doc.hasStyle {
		return dedupe(styleEntries(doc.styleText, doc.styleClass)), nil
	}
	return Palette{}, nil
}

// ExtractAll is Extract without de-duplication. Entries line up one to one
// with the style rules of the document, which makes two renditions of the
// same source comparable position by position.
func ExtractAll(svg string) (Palette, error) {
	doc, err := scan(svg)
	if err != nil {
		return nil, err
	}
	if doc.hasGradient {
		return Palette{gradientEntry(doc.stops)}, nil
	}
	if doc.hasStyle {
		return styleEntries(doc.styleText, doc.styleClass), nil
	}
	return Palette{}, nil
}

type scanned struct {
	hasGradient bool
	stops       []string
	hasStyle    bool
	styleText   string
	styleClass  string
}

// scan walks the whole document so malformed markup is always reported,
// collecting the first linearGradient's stops and the first style block.
func scan(svg string) (*scanned, error) {
	d := xml.NewDecoder(strings.NewReader(svg))
	d.CharsetReader = charset.NewReaderLabel
	d.Entity = xml.HTMLEntity

	doc := &scanned{}
	var (
		sawRoot       bool
		gradientDepth int
		styleDepth    int
		styleDone     bool
		styleText     strings.Builder
	)

	for {
		tok, err := d.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			line, _ := d.InputPos()
			return nil, &ParseError{Line: line, Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			sawRoot = true
			if gradientDepth > 0 {
				gradientDepth++
			}
			if styleDepth > 0 {
				styleDepth++
			}

			switch t.Name.Local {
			case "linearGradient":
				if !doc.hasGradient {
					doc.hasGradient = true
					gradientDepth = 1
				}
			case "stop":
				if gradientDepth > 0 {
					if c := attr(t, "stop-color"); c != "" {
						doc.stops = append(doc.stops, c)
					}
				}
			case "style":
				if !doc.hasStyle {
					doc.hasStyle = true
					doc.styleClass = attr(t, "class")
					styleDepth = 1
				}
			}
		case xml.EndElement:
			if gradientDepth > 0 {
				gradientDepth--
			}
			if styleDepth > 0 {
				styleDepth--
				if styleDepth == 0 {
					styleDone = true
				}
			}
		case xml.CharData:
			if styleDepth > 0 && !styleDone {
				styleText.Write(t)
			}
		}
	}

	if !sawRoot {
		return nil, &ParseError{Err: errors.New("document has no root element")}
	}

	doc.styleText = styleText.String()
	return doc, nil
}

func attr(el xml.StartElement, name string) string {
	for _, a := range el.Attr {
		if a.Name.Local == name {
			return strings.TrimSpace(a.Value)
		}
	}
	return ""
}

func gradientEntry(stops []string) Entry {
	e := Gradient(stops...)
	if e.Stops == nil {
		e.Stops = []NamedColor{}
	}
	return e
}

// styleEntries splits the style text on the class-selector delimiter and
// reads each rule's fill declaration.
func styleEntries(text, styleClass string) Palette {
	var entries Palette
	for _, rule := range strings.Split(text, ".") {
		rule = strings.NewReplacer("\n", "", "\r", "").Replace(rule)

		idx := strings.Index(rule, "fill:")
		if idx < 0 {
			continue
		}

		value := rule[idx+len("fill:"):]
		if end := strings.IndexAny(value, ";}"); end >= 0 {
			value = value[:end]
		}
		value = strings.Join(strings.Fields(value), "")
		if value == "" || skippedFills[strings.ToLower(value)] || strings.HasPrefix(value, "url(") {
			continue
		}

		name := ""
		if brace := strings.Index(rule, "{"); brace >= 0 && brace < idx {
			name = strings.TrimSpace(rule[:brace])
		}
		if name == "" {
			name = styleClass
		}
		if name == "" {
			name = value
		}

		entries = append(entries, Solid(value, name))
	}
	if entries == nil {
		return Palette{}
	}
	return entries
}

func dedupe(p Palette) Palette {
	seen := make(map[string]bool, len(p))
	out := make(Palette, 0, len(p))
	for _, e := range p {
		if !e.IsGradient() {
			if seen[e.Color.Value] {
				continue
			}
			seen[e.Color.Value] = true
		}
		out = append(out, e)
	}
	return out
}
