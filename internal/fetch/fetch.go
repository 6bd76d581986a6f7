// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch resolves MAXHUB share links and downloads whiteboard
// archives. A share link carries an s_id query parameter; the share API
// maps it to a downloadable .mhb resource.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/akarpov/mhb2svg/internal/httputil"
	"github.com/akarpov/mhb2svg/pkg/types"
)

// shareAPIBase is the MAXHUB share API root. Declared as a var so tests
// can substitute an httptest server.
var shareAPIBase = "https://res.maxhub.com/v3/clientairdisk/api/share/v2"

// fallbackName is used when neither the response headers nor the URL
// yield a filename.
const fallbackName = "archive.mhb"

// ExtractSID pulls the s_id query parameter out of a share link.
func ExtractSID(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing share link: %w", err)
	}
	sid := u.Query().Get("s_id")
	if sid == "" {
		return "", fmt.Errorf("share link %q does not contain the s_id parameter", link)
	}
	return sid, nil
}

// shareResource is one entry of the share API's resources.json array.
type shareResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ResolveResource asks the share API for the download URL of the first
// resource published under sid.
func ResolveResource(ctx context.Context, client *http.Client, sid string, cfg types.FetchConfig) (string, error) {
	apiURL := fmt.Sprintf("%s/%s/resources.json", shareAPIBase, sid)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("share API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("share API returned HTTP %d for s_id %s", resp.StatusCode, sid)
	}

	var resources []shareResource
	if err := json.NewDecoder(resp.Body).Decode(&resources); err != nil {
		return "", fmt.Errorf("parsing share API response: %w", err)
	}
	if len(resources) == 0 || resources[0].URL == "" {
		return "", fmt.Errorf("share API response did not contain a file URL")
	}
	return resources[0].URL, nil
}

// DownloadArchive fetches the archive at fileURL into destDir, writing to
// a temporary file and renaming on success. The filename comes from the
// Content-Disposition header when present, the URL path otherwise.
func DownloadArchive(ctx context.Context, client *http.Client, fileURL, destDir string, cfg types.FetchConfig) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fileURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, client, req, cfg.MaxRetries)
	if err != nil {
		return "", fmt.Errorf("downloading archive: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, fileURL)
	}

	destPath := filepath.Join(destDir, archiveName(resp, fileURL))

	tmpFile, err := os.CreateTemp(destDir, ".fetch-*.tmp")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("renaming temp file: %w", err)
	}
	return destPath, nil
}

// archiveName picks a filename for the downloaded archive.
func archiveName(resp *http.Response, fileURL string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := filepath.Base(params["filename"]); name != "" && name != "." && name != string(os.PathSeparator) {
				return name
			}
		}
	}
	if u, err := url.Parse(fileURL); err == nil {
		if name := path.Base(u.Path); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return fallbackName
}

// Fetch resolves a share link and downloads its whiteboard archive into
// destDir, reporting progress on w. It returns the local archive path.
func Fetch(ctx context.Context, client *http.Client, link, destDir string, cfg types.FetchConfig, w io.Writer) (string, error) {
	sid, err := ExtractSID(link)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(w, "extracted s_id: %s\n", sid)

	fileURL, err := ResolveResource(ctx, client, sid, cfg)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(w, "file URL: %s\n", fileURL)

	archivePath, err := DownloadArchive(ctx, client, fileURL, destDir, cfg)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(w, "downloaded: %s\n", filepath.Base(archivePath))
	return archivePath, nil
}
