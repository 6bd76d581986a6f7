// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the mhb2svg CLI, a converter from
// MAXHUB whiteboard archives (.mhb) to SVG images. Input is a local
// archive or a MAXHUB share link; output is one SVG per slide (or per
// page when paging is enabled), a YAML conversion record, and a catalog
// entry.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/akarpov/mhb2svg/internal/render"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command. Running it without a subcommand performs
// the conversion itself.
var rootCmd = &cobra.Command{
	Use:   "mhb2svg",
	Short: "Convert MAXHUB whiteboard files to SVG",
	Long: `mhb2svg converts MAXHUB whiteboard saves (.mhb) into SVG images. The
whiteboard comes from a local file (--file) or is downloaded through a
MAXHUB share link (--link). Each slide becomes one SVG; with --paging,
tall slides are split into pages of sqrt(2) aspect ratio.

Output is monochrome by default; --color keeps the recorded stroke
colors and paints the slide background. Every conversion is appended to
a local catalog, queryable with the catalog subcommand.`,
	Args: cobra.NoArgs,
	RunE: runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./mhb2svg.yaml or ~/.config/mhb2svg/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("mhb2svg")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "mhb2svg"))
		}
	}

	viper.SetEnvPrefix("MHB2SVG")
	viper.AutomaticEnv()

	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("render.background", render.DefaultBackground)
	viper.SetDefault("render.aspect_ratio", render.DefaultAspectRatio)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
