// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mhb

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/akarpov/mhb2svg/pkg/types"
)

// SlidesDir is the archive subdirectory holding slide documents.
const SlidesDir = "Slides"

// ErrNoSlidesDir reports that an extracted archive has no Slides directory.
var ErrNoSlidesDir = errors.New("archive has no Slides directory")

// ListSlides returns the sorted slide XML paths of an extracted archive.
// A present but empty Slides directory yields an empty, non-nil slice.
func ListSlides(dir string) ([]string, error) {
	slidesDir := filepath.Join(dir, SlidesDir)
	if _, err := os.Stat(slidesDir); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSlidesDir
		}
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(slidesDir, "*.xml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	if matches == nil {
		matches = []string{}
	}
	return matches, nil
}

// inkXML mirrors one <Ink> element of a slide document.
type inkXML struct {
	Thickness       string     `xml:"Thickness"`
	ForegroundColor string     `xml:"ForegroundColor"`
	Points          *inkPoints `xml:"Points"`
}

type inkPoints struct {
	StylusPoints []string `xml:"StylusPoint"`
}

// ParseSlide reads a Slides/*.xml document and returns its ink strokes.
// <Ink> elements may appear at any depth, so the decoder walks tokens
// rather than relying on a fixed document shape.
//
// An ink without a <Points> element is skipped. A missing or empty
// <Thickness> defaults to 1.0. Foreground colors are kept verbatim.
func ParseSlide(path string) (types.Slide, error) {
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	slide := types.Slide{Name: name}

	f, err := os.Open(path)
	if err != nil {
		return slide, fmt.Errorf("opening slide: %w", err)
	}
	defer f.Close()

	dec := xml.NewDecoder(f)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return slide, fmt.Errorf("parsing slide %s: %w", name, err)
		}

		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Ink" {
			continue
		}

		var ink inkXML
		if err := dec.DecodeElement(&ink, &se); err != nil {
			return slide, fmt.Errorf("parsing slide %s: %w", name, err)
		}

		stroke, ok, err := strokeFromInk(ink)
		if err != nil {
			return slide, fmt.Errorf("slide %s: %w", name, err)
		}
		if ok {
			slide.Strokes = append(slide.Strokes, stroke)
		}
	}

	return slide, nil
}

func strokeFromInk(ink inkXML) (types.Stroke, bool, error) {
	if ink.Points == nil {
		return types.Stroke{}, false, nil
	}

	width := 1.0
	if s := strings.TrimSpace(ink.Thickness); s != "" {
		w, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return types.Stroke{}, false, fmt.Errorf("bad thickness %q: %w", s, err)
		}
		width = w
	}

	stroke := types.Stroke{
		Color: strings.TrimSpace(ink.ForegroundColor),
		Width: width,
	}
	for _, text := range ink.Points.StylusPoints {
		pt, err := parseStylusPoint(text)
		if err != nil {
			return types.Stroke{}, false, err
		}
		stroke.Points = append(stroke.Points, pt)
	}
	return stroke, true, nil
}

// parseStylusPoint parses a StylusPoint text of the form "x,y,pressure".
// The pressure component is optional.
func parseStylusPoint(text string) (types.Point, error) {
	parts := strings.Split(strings.TrimSpace(text), ",")
	if len(parts) < 2 {
		return types.Point{}, fmt.Errorf("bad stylus point %q", text)
	}

	x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("bad stylus point %q: %w", text, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return types.Point{}, fmt.Errorf("bad stylus point %q: %w", text, err)
	}

	pt := types.Point{X: x, Y: y}
	if len(parts) >= 3 {
		if p, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64); err == nil {
			pt.Pressure = p
		}
	}
	return pt, nil
}
