package types

import "time"

// HTTPConfig holds shared HTTP settings used when fetching whiteboards
// from a share link.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	// The share API rejects requests without one.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetchConfig holds settings for share-link resolution and archive download.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxRetries is the number of retry attempts on rate-limited API
	// calls (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// RenderConfig holds settings for SVG rendering.
type RenderConfig struct {
	// Padding is the margin added around the ink bounds, in slide units
	// (default 10).
	Padding float64 `json:"padding" yaml:"padding"`

	// StrokeRatio multiplies every stroke width (default 1.0).
	StrokeRatio float64 `json:"stroke_ratio" yaml:"stroke_ratio"`

	// Color enables color output. When false all strokes render black
	// and no background is painted.
	Color bool `json:"color" yaml:"color"`

	// Background is the canvas fill used in color mode (default "#363b41",
	// the slide background of the whiteboard UI).
	Background string `json:"background" yaml:"background"`

	// AspectRatio is the page height/width ratio used when paging
	// (default 1.414, ISO A series).
	AspectRatio float64 `json:"aspect_ratio" yaml:"aspect_ratio"`

	// Paging splits tall slides into pages of AspectRatio proportions.
	Paging bool `json:"paging" yaml:"paging"`
}

// ConvertConfig holds settings for the conversion pipeline.
type ConvertConfig struct {
	Render RenderConfig `json:"render" yaml:"render"`

	// OutDir is the directory SVG files and the conversion record are
	// written to (default ".").
	OutDir string `json:"out_dir" yaml:"out_dir"`
}

// CatalogConfig holds settings for the conversion catalog.
type CatalogConfig struct {
	// CatalogDir is the directory holding the catalog database
	// (default "<out-dir>/.mhb2svg").
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir"`

	// MaxResults is the default maximum number of list results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}
