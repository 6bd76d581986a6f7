// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render turns parsed ink strokes into SVG documents.
package render

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/akarpov/mhb2svg/pkg/types"
)

// Defaults applied when the config leaves a value unset.
const (
	DefaultStrokeRatio = 1.0
	DefaultBackground  = "#363b41"
	DefaultAspectRatio = 1.414 // sqrt(2), ISO A series
	monochromeStroke   = "#000000"
)

// ErrEmptySlide reports a slide without any stylus points.
var ErrEmptySlide = errors.New("slide has no ink points")

// Bounds is the axis-aligned bounding box of a slide's ink.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the horizontal extent of the bounds.
func (b Bounds) Width() float64 { return b.MaxX - b.MinX }

// Height returns the vertical extent of the bounds.
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// StrokeBounds computes the bounding box over every point of every stroke.
func StrokeBounds(strokes []types.Stroke) (Bounds, error) {
	b := Bounds{
		MinX: math.Inf(1), MinY: math.Inf(1),
		MaxX: math.Inf(-1), MaxY: math.Inf(-1),
	}
	found := false
	for _, s := range strokes {
		for _, p := range s.Points {
			found = true
			b.MinX = math.Min(b.MinX, p.X)
			b.MinY = math.Min(b.MinY, p.Y)
			b.MaxX = math.Max(b.MaxX, p.X)
			b.MaxY = math.Max(b.MaxY, p.Y)
		}
	}
	if !found {
		return Bounds{}, ErrEmptySlide
	}
	return b, nil
}

// Window is one vertical slice of a slide: the full bounds for an unpaged
// render, or a page-sized view for a paged one.
type Window struct {
	MinX, MinY    float64
	Width, Height float64
}

// normalize fills unset config values with defaults.
func normalize(cfg types.RenderConfig) types.RenderConfig {
	if cfg.StrokeRatio == 0 {
		cfg.StrokeRatio = DefaultStrokeRatio
	}
	if cfg.Background == "" {
		cfg.Background = DefaultBackground
	}
	if cfg.AspectRatio <= 0 {
		cfg.AspectRatio = DefaultAspectRatio
	}
	return cfg
}

// RenderSlide renders a slide to one or more SVG files named after
// outPrefix. Unpaged slides produce "<outPrefix>.svg". When paging is
// enabled and the ink is taller than one AspectRatio page, the slide is
// split into overlapping windows written as "<outPrefix>-<i>.svg".
//
// The returned pages count is zero for an unpaged render and the number
// of splits otherwise, matching the window arithmetic: a slide with
// pages splits yields pages+1 files.
func RenderSlide(slide types.Slide, outPrefix string, cfg types.RenderConfig) (paths []string, pages int, err error) {
	cfg = normalize(cfg)

	b, err := StrokeBounds(slide.Strokes)
	if err != nil {
		return nil, 0, err
	}

	width, height := b.Width(), b.Height()
	if cfg.Paging && width > 0 {
		pages = int(height / width / cfg.AspectRatio)
	}

	if pages == 0 {
		path := outPrefix + ".svg"
		w := Window{MinX: b.MinX, MinY: b.MinY, Width: width, Height: height}
		if err := writeSVGFile(path, w, slide.Strokes, cfg); err != nil {
			return nil, 0, err
		}
		return []string{path}, 0, nil
	}

	// Distribute the leftover height across the splits so the last page
	// ends exactly at the ink bottom.
	pageHeight := cfg.AspectRatio * width
	dh := (height - pageHeight) / float64(pages)
	for i := 0; i <= pages; i++ {
		path := fmt.Sprintf("%s-%d.svg", outPrefix, i)
		w := Window{
			MinX:   b.MinX,
			MinY:   b.MinY + float64(i)*dh,
			Width:  width,
			Height: pageHeight,
		}
		if err := writeSVGFile(path, w, slide.Strokes, cfg); err != nil {
			return nil, 0, err
		}
		paths = append(paths, path)
	}
	return paths, pages, nil
}

func writeSVGFile(path string, w Window, strokes []types.Stroke, cfg types.RenderConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	writeErr := WriteSVG(f, w, strokes, cfg)
	closeErr := f.Close()
	if writeErr != nil {
		return fmt.Errorf("writing %s: %w", path, writeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("writing %s: %w", path, closeErr)
	}
	return nil
}

// WriteSVG emits one SVG document for the given window. Strokes are
// translated so the window's top-left corner maps to (padding, padding).
// A stroke is included when its first point falls inside the window
// vertically; pages overlap, so a seam stroke may appear on both sides.
func WriteSVG(out io.Writer, w Window, strokes []types.Stroke, cfg types.RenderConfig) error {
	cfg = normalize(cfg)
	p := cfg.Padding
	viewW := w.Width + 2*p
	viewH := w.Height + 2*p

	if _, err := fmt.Fprintf(out,
		"<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" viewBox=\"0 0 %s %s\">\n",
		num(viewW), num(viewH)); err != nil {
		return err
	}

	if cfg.Color {
		if _, err := fmt.Fprintf(out,
			"<rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n",
			num(viewW), num(viewH), cfg.Background); err != nil {
			return err
		}
	}

	for _, s := range strokes {
		if len(s.Points) == 0 {
			continue
		}
		y0 := s.Points[0].Y
		if y0 < w.MinY || y0 > w.MinY+w.Height {
			continue
		}

		var pts strings.Builder
		for i, pt := range s.Points {
			if i > 0 {
				pts.WriteByte(' ')
			}
			pts.WriteString(num(pt.X - w.MinX + p))
			pts.WriteByte(',')
			pts.WriteString(num(pt.Y - w.MinY + p))
		}

		color := monochromeStroke
		if cfg.Color && s.Color != "" {
			color = s.Color
		}

		if _, err := fmt.Fprintf(out,
			"<polyline points=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\"/>\n",
			pts.String(), color, num(s.Width*cfg.StrokeRatio)); err != nil {
			return err
		}
	}

	_, err := io.WriteString(out, "</svg>\n")
	return err
}

// num formats a coordinate with the shortest exact representation.
func num(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
