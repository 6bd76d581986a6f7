// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Point is a single stylus sample in slide coordinates. Pressure is
// recorded by the whiteboard but ignored by the renderer.
type Point struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Pressure float64 `json:"pressure,omitempty" yaml:"pressure,omitempty"`
}

// Stroke is one continuous ink stroke on a slide.
type Stroke struct {
	// Color is the foreground color as stored in the slide XML
	// (e.g. "#FFFFFF"). Monochrome rendering overrides it.
	Color string `json:"color" yaml:"color"`

	// Width is the stroke thickness in slide units, before the
	// stroke-width ratio is applied.
	Width float64 `json:"width" yaml:"width"`

	// Points lists the stylus samples in draw order.
	Points []Point `json:"points" yaml:"points"`
}

// Slide holds the parsed ink content of one Slides/*.xml document.
type Slide struct {
	// Name is the slide filename stem (e.g. "Slide1").
	Name string `json:"name" yaml:"name"`

	// Strokes lists the ink strokes in document order.
	Strokes []Stroke `json:"strokes" yaml:"strokes"`
}

// Field is one metadata entry from Document.xml. Document order is
// preserved, so fields are a slice rather than a map.
type Field struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// DocumentInfo is the ordered metadata of a whiteboard archive.
type DocumentInfo []Field

// Get returns the value of the first field with the given name, or "".
func (d DocumentInfo) Get(name string) string {
	for _, f := range d {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// SlideOutput records the SVG files produced from a single slide.
type SlideOutput struct {
	// Name is the slide filename stem.
	Name string `json:"name" yaml:"name"`

	// SVGPaths lists the written SVG files. One entry for an unpaged
	// slide, several "<stem>-<i>.svg" entries for a paged one.
	SVGPaths []string `json:"svg_paths" yaml:"svg_paths"`

	// Pages is the number of page splits; zero means a single unpaged file.
	Pages int `json:"pages" yaml:"pages"`

	// Strokes is the stroke count of the slide.
	Strokes int `json:"strokes" yaml:"strokes"`
}

// ConversionRecord is the YAML record written next to the SVG output of a
// converted whiteboard.
type ConversionRecord struct {
	// ID is a slug derived from the archive filename (e.g. "meeting-0412").
	ID string `json:"id" yaml:"id"`

	// Source is the local archive path or the share URL the archive was
	// fetched from.
	Source string `json:"source" yaml:"source"`

	// Metadata holds the Document.xml fields in document order.
	Metadata DocumentInfo `json:"metadata" yaml:"metadata"`

	// Slides lists the per-slide outputs.
	Slides []SlideOutput `json:"slides" yaml:"slides"`

	// Color reports whether color rendering was enabled.
	Color bool `json:"color" yaml:"color"`

	// ConvertedAt is the conversion timestamp (UTC).
	ConvertedAt time.Time `json:"converted_at" yaml:"converted_at"`
}

// TotalPages returns the total number of SVG files produced.
func (r ConversionRecord) TotalPages() int {
	n := 0
	for _, s := range r.Slides {
		n += len(s.SVGPaths)
	}
	return n
}
