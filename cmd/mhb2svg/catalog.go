package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/akarpov/mhb2svg/internal/catalog"
	"github.com/akarpov/mhb2svg/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List and export past conversions",
	Long: `Catalog queries the local conversion catalog that every run of mhb2svg
appends to. Entries can be filtered by title, printed as a table or JSON,
and exported to YAML and JSON files next to the database.`,
	RunE: runCatalog,
}

func init() {
	flags := catalogCmd.Flags()
	flags.StringP("out-dir", "o", ".", "output directory the catalog lives under")
	flags.String("query", "", "filter by title or whiteboard ID substring")
	flags.Int("limit", 0, "maximum number of entries (default 20)")
	flags.Bool("json", false, "print entries as JSON")
	flags.Bool("export", false, "write export.yaml and export.json next to the database")

	rootCmd.AddCommand(catalogCmd)
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	outDir, _ := flags.GetString("out-dir")
	query, _ := flags.GetString("query")
	limit, _ := flags.GetInt("limit")
	asJSON, _ := flags.GetBool("json")
	doExport, _ := flags.GetBool("export")

	store, err := catalog.NewStore(types.CatalogConfig{
		CatalogDir: filepath.Join(outDir, catalogDirName),
	})
	if err != nil {
		return err
	}
	defer store.Close()

	opts := catalog.QueryOptions{Title: query, MaxResults: limit}

	if doExport {
		if err := store.ExportYAML(cmd.Context(), opts); err != nil {
			return err
		}
		if err := store.ExportJSON(cmd.Context(), opts); err != nil {
			return err
		}
		fmt.Println("wrote export.yaml and export.json")
		return nil
	}

	entries, err := store.List(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("catalog is empty")
		return nil
	}
	for _, e := range entries {
		title := e.Title
		if title == "" {
			title = "-"
		}
		pages := 0
		for _, s := range e.Slides {
			pages += len(s.SVGPaths)
		}
		fmt.Printf("%-24s  %-32s  %d slide(s), %d file(s)  %s\n",
			e.ID, title, len(e.Slides), pages, e.ConvertedAt.Format(time.RFC3339))
	}
	return nil
}
