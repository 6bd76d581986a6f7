// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert orchestrates whiteboard conversion: it extracts an .mhb
// archive, parses its metadata and slides, renders SVG output, and writes
// a conversion record.
package convert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/akarpov/mhb2svg/internal/mhb"
	"github.com/akarpov/mhb2svg/internal/render"
	"github.com/akarpov/mhb2svg/pkg/types"
)

// Result holds the outcome of converting one whiteboard archive.
type Result struct {
	Converted int
	Failed    int
	Record    types.ConversionRecord
}

// Total returns the number of slides processed.
func (r Result) Total() int {
	return r.Converted + r.Failed
}

// HasFailures reports whether any slide failed to convert.
func (r Result) HasFailures() bool {
	return r.Failed > 0
}

// ConvertArchive converts the .mhb archive at archivePath, writing SVG
// files and a YAML conversion record into cfg.OutDir. source names where
// the archive came from (local path or share URL) for the record.
// Individual slide failures are reported on w and counted, not fatal.
func ConvertArchive(archivePath, source string, cfg types.ConvertConfig, w io.Writer) (Result, error) {
	var result Result

	workDir, err := os.MkdirTemp("", "mhb2svg-*")
	if err != nil {
		return result, fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := mhb.ExtractArchive(archivePath, workDir); err != nil {
		return result, err
	}

	outDir := cfg.OutDir
	if outDir == "" {
		outDir = "."
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}

	record := types.ConversionRecord{
		ID:          archiveSlug(archivePath),
		Source:      source,
		Color:       cfg.Render.Color,
		ConvertedAt: time.Now().UTC(),
	}

	meta, err := mhb.ParseDocument(workDir)
	if err != nil {
		fmt.Fprintf(w, "warning: %v\n", err)
	} else {
		record.Metadata = meta
		fmt.Fprintf(w, "metadata of %s:\n", filepath.Base(archivePath))
		for _, f := range meta {
			fmt.Fprintf(w, "  %s: %s\n", f.Name, f.Value)
		}
	}

	slidePaths, err := mhb.ListSlides(workDir)
	if err != nil {
		if errors.Is(err, mhb.ErrNoSlidesDir) {
			fmt.Fprintf(w, "warning: %v, nothing to convert\n", err)
			result.Record = record
			return result, writeRecord(record, outDir)
		}
		return result, err
	}
	if len(slidePaths) == 0 {
		fmt.Fprintln(w, "no slide documents found")
	}

	for _, path := range slidePaths {
		output, err := convertSlide(path, outDir, cfg.Render)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", slideStem(path), err)
			result.Failed++
			continue
		}
		if output.Pages > 0 {
			fmt.Fprintf(w, "converted: %s (%d pages)\n", output.Name, len(output.SVGPaths))
		} else {
			fmt.Fprintf(w, "converted: %s\n", output.Name)
		}
		record.Slides = append(record.Slides, output)
		result.Converted++
	}

	result.Record = record
	fmt.Fprintf(w, "\nConversion summary: %d converted, %d failed, %d SVG file(s)\n",
		result.Converted, result.Failed, record.TotalPages())

	if err := writeRecord(record, outDir); err != nil {
		return result, err
	}
	return result, nil
}

// convertSlide parses and renders one slide document.
func convertSlide(path, outDir string, cfg types.RenderConfig) (types.SlideOutput, error) {
	slide, err := mhb.ParseSlide(path)
	if err != nil {
		return types.SlideOutput{}, err
	}

	svgPaths, pages, err := render.RenderSlide(slide, filepath.Join(outDir, slide.Name), cfg)
	if err != nil {
		return types.SlideOutput{}, err
	}

	return types.SlideOutput{
		Name:     slide.Name,
		SVGPaths: svgPaths,
		Pages:    pages,
		Strokes:  len(slide.Strokes),
	}, nil
}

// archiveSlug derives the record ID from the archive filename.
func archiveSlug(archivePath string) string {
	stem := strings.TrimSuffix(filepath.Base(archivePath), filepath.Ext(archivePath))
	return strings.NewReplacer(" ", "-", "/", "-", ":", "-").Replace(stem)
}

func slideStem(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// writeRecord writes the conversion record as "<id>.yaml" in outDir.
func writeRecord(record types.ConversionRecord, outDir string) error {
	data, err := yaml.Marshal(&record)
	if err != nil {
		return fmt.Errorf("marshaling conversion record: %w", err)
	}
	path := filepath.Join(outDir, record.ID+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing conversion record: %w", err)
	}
	return nil
}

// ReadRecord loads a conversion record written by ConvertArchive.
func ReadRecord(path string) (types.ConversionRecord, error) {
	var record types.ConversionRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return record, err
	}
	if err := yaml.Unmarshal(data, &record); err != nil {
		return record, fmt.Errorf("parsing conversion record %s: %w", path, err)
	}
	return record, nil
}
