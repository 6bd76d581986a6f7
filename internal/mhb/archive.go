// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mhb decodes MAXHUB whiteboard archives. An .mhb file is a ZIP
// container holding Document.xml (flat metadata) and Slides/*.xml (one
// document per slide, ink strokes as <Ink> elements).
package mhb

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ExtractArchive unpacks the .mhb archive at src into destDir. Entry
// paths are validated so a crafted archive cannot write outside destDir.
func ExtractArchive(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%s is not a valid archive: %w", src, err)
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return fmt.Errorf("extracting %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractEntry(f *zip.File, destDir string) error {
	path, err := entryPath(f.Name, destDir)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	_, copyErr := io.Copy(out, rc)
	closeErr := out.Close()
	if copyErr != nil {
		return copyErr
	}
	return closeErr
}

// entryPath resolves an archive entry name under destDir, rejecting
// names that escape it ("zip slip").
func entryPath(name, destDir string) (string, error) {
	path := filepath.Join(destDir, filepath.FromSlash(name))
	if !strings.HasPrefix(path, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("illegal entry path %q", name)
	}
	return path, nil
}
