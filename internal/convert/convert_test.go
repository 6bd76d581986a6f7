// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akarpov/mhb2svg/pkg/types"
)

const documentXML = `<?xml version="1.0"?>
<Document>
  <Version>2.3.1</Version>
  <DeviceName>MAXHUB V6</DeviceName>
</Document>`

const slideXML = `<?xml version="1.0"?>
<Slide>
  <Ink>
    <Thickness>2</Thickness>
    <ForegroundColor>#FFFFFF</ForegroundColor>
    <Points>
      <StylusPoint>0,0,0.5</StylusPoint>
      <StylusPoint>100,80,0.5</StylusPoint>
    </Points>
  </Ink>
</Slide>`

// emptySlideXML has ink without points; rendering it fails.
const emptySlideXML = `<?xml version="1.0"?>
<Slide>
  <Ink>
    <Thickness>2</Thickness>
  </Ink>
</Slide>`

// buildArchive zips the given name/content pairs into path.
func buildArchive(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestConvertArchive(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "meeting 0412.mhb")
	buildArchive(t, archive, map[string]string{
		"Document.xml":      documentXML,
		"Slides/Slide1.xml": slideXML,
		"Slides/Slide2.xml": slideXML,
	})

	outDir := filepath.Join(tmpDir, "out")
	cfg := types.ConvertConfig{OutDir: outDir}

	var log bytes.Buffer
	result, err := ConvertArchive(archive, archive, cfg, &log)
	if err != nil {
		t.Fatalf("ConvertArchive: %v", err)
	}

	if result.Converted != 2 || result.Failed != 0 {
		t.Errorf("result = %+v, want 2 converted", result)
	}
	if result.HasFailures() {
		t.Error("HasFailures() = true")
	}

	for _, name := range []string{"Slide1.svg", "Slide2.svg"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	out := log.String()
	if !strings.Contains(out, "metadata of meeting 0412.mhb:") {
		t.Errorf("missing metadata header: %s", out)
	}
	if !strings.Contains(out, "DeviceName: MAXHUB V6") {
		t.Errorf("missing metadata field: %s", out)
	}
	if !strings.Contains(out, "Conversion summary: 2 converted, 0 failed, 2 SVG file(s)") {
		t.Errorf("missing summary: %s", out)
	}

	// The record uses a sanitized archive stem and survives a round trip.
	recordPath := filepath.Join(outDir, "meeting-0412.yaml")
	record, err := ReadRecord(recordPath)
	if err != nil {
		t.Fatalf("ReadRecord: %v", err)
	}
	if record.ID != "meeting-0412" {
		t.Errorf("record ID = %q", record.ID)
	}
	if got := record.Metadata.Get("Version"); got != "2.3.1" {
		t.Errorf("record metadata Version = %q", got)
	}
	if len(record.Slides) != 2 || record.TotalPages() != 2 {
		t.Errorf("record slides = %+v", record.Slides)
	}
	if record.ConvertedAt.IsZero() {
		t.Error("record ConvertedAt is zero")
	}
}

func TestConvertArchive_SlideFailureContinues(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "board.mhb")
	buildArchive(t, archive, map[string]string{
		"Document.xml":      documentXML,
		"Slides/Slide1.xml": emptySlideXML,
		"Slides/Slide2.xml": slideXML,
	})

	outDir := filepath.Join(tmpDir, "out")
	var log bytes.Buffer
	result, err := ConvertArchive(archive, archive, types.ConvertConfig{OutDir: outDir}, &log)
	if err != nil {
		t.Fatalf("ConvertArchive: %v", err)
	}

	if result.Converted != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 converted and 1 failed", result)
	}
	if !result.HasFailures() {
		t.Error("HasFailures() = false")
	}
	if !strings.Contains(log.String(), "failed:  Slide1") {
		t.Errorf("missing failure line: %s", log.String())
	}
	if _, err := os.Stat(filepath.Join(outDir, "Slide2.svg")); err != nil {
		t.Errorf("surviving slide not converted: %v", err)
	}
}

func TestConvertArchive_NoSlidesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "board.mhb")
	buildArchive(t, archive, map[string]string{
		"Document.xml": documentXML,
	})

	outDir := filepath.Join(tmpDir, "out")
	var log bytes.Buffer
	result, err := ConvertArchive(archive, archive, types.ConvertConfig{OutDir: outDir}, &log)
	if err != nil {
		t.Fatalf("ConvertArchive: %v", err)
	}
	if result.Total() != 0 {
		t.Errorf("result = %+v, want no slides processed", result)
	}
	if !strings.Contains(log.String(), "no Slides directory") {
		t.Errorf("missing warning: %s", log.String())
	}
	// The record is still written for inspection.
	if _, err := os.Stat(filepath.Join(outDir, "board.yaml")); err != nil {
		t.Errorf("missing record: %v", err)
	}
}

func TestConvertArchive_NotAnArchive(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "bogus.mhb")
	if err := os.WriteFile(path, []byte("plain text"), 0o644); err != nil {
		t.Fatal(err)
	}

	var log bytes.Buffer
	_, err := ConvertArchive(path, path, types.ConvertConfig{OutDir: tmpDir}, &log)
	if err == nil {
		t.Fatal("expected error for non-archive input")
	}
	if !strings.Contains(err.Error(), "not a valid archive") {
		t.Errorf("error = %q", err)
	}
}

func TestConvertArchive_MissingDocumentIsWarning(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "board.mhb")
	buildArchive(t, archive, map[string]string{
		"Slides/Slide1.xml": slideXML,
	})

	outDir := filepath.Join(tmpDir, "out")
	var log bytes.Buffer
	result, err := ConvertArchive(archive, archive, types.ConvertConfig{OutDir: outDir}, &log)
	if err != nil {
		t.Fatalf("ConvertArchive: %v", err)
	}
	if result.Converted != 1 {
		t.Errorf("result = %+v, want 1 converted", result)
	}
	if !strings.Contains(log.String(), "warning:") {
		t.Errorf("missing metadata warning: %s", log.String())
	}
}
