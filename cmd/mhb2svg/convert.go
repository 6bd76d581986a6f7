package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akarpov/mhb2svg/internal/catalog"
	"github.com/akarpov/mhb2svg/internal/convert"
	"github.com/akarpov/mhb2svg/internal/fetch"
	"github.com/akarpov/mhb2svg/pkg/types"
)

const (
	defaultPadding   = 10
	defaultRatio     = 1.0
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "mhb2svg/0.1"

	// catalogDirName is the hidden directory under the output directory
	// holding the conversion catalog.
	catalogDirName = ".mhb2svg"
)

func init() {
	flags := rootCmd.Flags()
	flags.BoolP("color", "c", false, "enable color (default black & white)")
	flags.StringP("file", "f", "", "path to .mhb file")
	flags.StringP("link", "l", "", "MAXHUB URL containing the s_id argument")
	flags.IntP("padding", "p", defaultPadding, "padding size for .svg (integer)")
	flags.Float64P("ratio", "r", defaultRatio, "stroke width ratio (float)")
	flags.Bool("paging", false, "split tall slides into sqrt(2) aspect pages")
	flags.StringP("out-dir", "o", ".", "output directory for SVG files")
	flags.Duration("timeout", defaultTimeout, "HTTP request timeout")
	flags.Int("retries", 0, "max retry attempts for throttled API calls (default 5)")

	rootCmd.MarkFlagsOneRequired("file", "link")
	rootCmd.MarkFlagsMutuallyExclusive("file", "link")
}

// runConvert drives the pipeline: (fetch) -> extract -> parse -> render.
func runConvert(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()

	file, _ := flags.GetString("file")
	link, _ := flags.GetString("link")
	outDir, _ := flags.GetString("out-dir")

	renderCfg, err := renderConfig(cmd)
	if err != nil {
		return err
	}
	cfg := types.ConvertConfig{Render: renderCfg, OutDir: outDir}

	archivePath := file
	source := file
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
		source = link
	}

	result, err := convert.ConvertArchive(archivePath, source, cfg, os.Stdout)
	if err != nil {
		return err
	}

	recordInCatalog(cmd, result.Record, outDir)

	if result.HasFailures() {
		return fmt.Errorf("%d slide(s) failed conversion", result.Failed)
	}
	return nil
}

// renderConfig assembles render settings from flags, falling back to the
// config file for values the command line leaves untouched.
func renderConfig(cmd *cobra.Command) (types.RenderConfig, error) {
	flags := cmd.Flags()

	padding, _ := flags.GetInt("padding")
	if !flags.Changed("padding") && viper.IsSet("render.padding") {
		padding = viper.GetInt("render.padding")
	}
	ratio, _ := flags.GetFloat64("ratio")
	if !flags.Changed("ratio") && viper.IsSet("render.stroke_ratio") {
		ratio = viper.GetFloat64("render.stroke_ratio")
	}
	if ratio <= 0 {
		return types.RenderConfig{}, fmt.Errorf("stroke width ratio must be positive, got %v", ratio)
	}

	color, _ := flags.GetBool("color")
	paging, _ := flags.GetBool("paging")

	return types.RenderConfig{
		Padding:     float64(padding),
		StrokeRatio: ratio,
		Color:       color,
		Background:  viper.GetString("render.background"),
		AspectRatio: viper.GetFloat64("render.aspect_ratio"),
		Paging:      paging,
	}, nil
}

func fetchConfig(cmd *cobra.Command) types.FetchConfig {
	flags := cmd.Flags()
	timeout, _ := flags.GetDuration("timeout")
	retries, _ := flags.GetInt("retries")

	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: viper.GetString("http.user_agent"),
		},
		MaxRetries: retries,
	}
}

// recordInCatalog appends the conversion to the catalog. Catalog trouble
// is a warning; the SVG output already exists.
func recordInCatalog(cmd *cobra.Command, record types.ConversionRecord, outDir string) {
	store, err := catalog.NewStore(types.CatalogConfig{
		CatalogDir: filepath.Join(outDir, catalogDirName),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: catalog unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if err := store.Record(cmd.Context(), record); err != nil {
		fmt.Fprintf(os.Stderr, "warning: catalog update failed: %v\n", err)
	}
}
