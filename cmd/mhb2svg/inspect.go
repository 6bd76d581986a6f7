package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akarpov/mhb2svg/internal/fetch"
	"github.com/akarpov/mhb2svg/internal/mhb"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print whiteboard metadata without converting",
	Long: `Inspect extracts a whiteboard archive and prints its Document.xml
metadata and per-slide stroke counts, without rendering any SVG output.`,
	RunE: runInspect,
}

func init() {
	flags := inspectCmd.Flags()
	flags.StringP("file", "f", "", "path to .mhb file")
	flags.StringP("link", "l", "", "MAXHUB URL containing the s_id argument")
	flags.Duration("timeout", defaultTimeout, "HTTP request timeout")
	flags.Int("retries", 0, "max retry attempts for throttled API calls (default 5)")

	inspectCmd.MarkFlagsOneRequired("file", "link")
	inspectCmd.MarkFlagsMutuallyExclusive("file", "link")

	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, _ []string) error {
	file, _ := cmd.Flags().GetString("file")
	link, _ := cmd.Flags().GetString("link")

	archivePath := file
	if link != "" {
		fetchCfg := fetchConfig(cmd)

		tmpDir, err := os.MkdirTemp("", "mhb2svg-dl-*")
		if err != nil {
			return fmt.Errorf("creating download directory: %w", err)
		}
		defer os.RemoveAll(tmpDir)

		client := &http.Client{Timeout: fetchCfg.Timeout}
		archivePath, err = fetch.Fetch(cmd.Context(), client, link, tmpDir, fetchCfg, os.Stdout)
		if err != nil {
			return err
		}
	}

	workDir, err := os.MkdirTemp("", "mhb2svg-*")
	if err != nil {
		return fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	if err := mhb.ExtractArchive(archivePath, workDir); err != nil {
		return err
	}

	meta, err := mhb.ParseDocument(workDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	} else {
		fmt.Printf("metadata of %s:\n", filepath.Base(archivePath))
		for _, f := range meta {
			fmt.Printf("  %s: %s\n", f.Name, f.Value)
		}
	}

	slidePaths, err := mhb.ListSlides(workDir)
	if err != nil {
		if errors.Is(err, mhb.ErrNoSlidesDir) {
			fmt.Println("no Slides directory")
			return nil
		}
		return err
	}

	fmt.Printf("%d slide(s):\n", len(slidePaths))
	for _, path := range slidePaths {
		slide, err := mhb.ParseSlide(path)
		if err != nil {
			fmt.Printf("  %s: unreadable (%v)\n", strings.TrimSuffix(filepath.Base(path), ".xml"), err)
			continue
		}
		points := 0
		for _, s := range slide.Strokes {
			points += len(s.Points)
		}
		fmt.Printf("  %s: %d strokes, %d points\n", slide.Name, len(slide.Strokes), points)
	}
	return nil
}
