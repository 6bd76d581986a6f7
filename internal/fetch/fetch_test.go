// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akarpov/mhb2svg/pkg/types"
)

func testConfig() types.FetchConfig {
	return types.FetchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   5 * time.Second,
			UserAgent: "mhb2svg-test",
		},
		MaxRetries: 1,
	}
}

func TestExtractSID(t *testing.T) {
	tests := []struct {
		name    string
		link    string
		want    string
		wantErr bool
	}{
		{
			name: "plain share link",
			link: "https://share.maxhub.com/share?s_id=abc123",
			want: "abc123",
		},
		{
			name: "s_id among other parameters",
			link: "https://share.maxhub.com/share?lang=en&s_id=xyz-9&from=qr",
			want: "xyz-9",
		},
		{
			name:    "missing s_id",
			link:    "https://share.maxhub.com/share?id=abc123",
			wantErr: true,
		},
		{
			name:    "unparsable link",
			link:    "://not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sid, err := ExtractSID(tt.link)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, sid)
		})
	}
}

func TestResolveResource(t *testing.T) {
	var gotPath, gotAgent string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		fmt.Fprint(w, `[{"name":"board.mhb","url":"https://cdn.example.com/board.mhb"}]`)
	}))
	defer ts.Close()

	old := shareAPIBase
	shareAPIBase = ts.URL
	defer func() { shareAPIBase = old }()

	fileURL, err := ResolveResource(context.Background(), ts.Client(), "abc123", testConfig())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/board.mhb", fileURL)
	assert.Equal(t, "/abc123/resources.json", gotPath)
	assert.Equal(t, "mhb2svg-test", gotAgent)
}

func TestResolveResource_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		errMsg  string
	}{
		{
			name: "empty resource list",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `[]`)
			},
			errMsg: "did not contain a file URL",
		},
		{
			name: "resource without url",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `[{"name":"board.mhb"}]`)
			},
			errMsg: "did not contain a file URL",
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			},
			errMsg: "HTTP 404",
		},
		{
			name: "malformed JSON",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				fmt.Fprint(w, `{not json`)
			},
			errMsg: "parsing share API response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			old := shareAPIBase
			shareAPIBase = ts.URL
			defer func() { shareAPIBase = old }()

			_, err := ResolveResource(context.Background(), ts.Client(), "abc123", testConfig())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDownloadArchive(t *testing.T) {
	const content = "PK<fake archive bytes>"

	tests := []struct {
		name        string
		disposition string
		urlPath     string
		wantName    string
	}{
		{
			name:        "filename from content disposition",
			disposition: `attachment; filename="meeting-0412.mhb"`,
			urlPath:     "/download",
			wantName:    "meeting-0412.mhb",
		},
		{
			name:     "filename from URL path",
			urlPath:  "/files/board.mhb",
			wantName: "board.mhb",
		},
		{
			name:     "fallback name",
			urlPath:  "/",
			wantName: "archive.mhb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				if tt.disposition != "" {
					w.Header().Set("Content-Disposition", tt.disposition)
				}
				fmt.Fprint(w, content)
			}))
			defer ts.Close()

			destDir := t.TempDir()
			path, err := DownloadArchive(context.Background(), ts.Client(), ts.URL+tt.urlPath, destDir, testConfig())
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, filepath.Base(path))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, content, string(data))

			// No temp files left behind.
			leftovers, err := filepath.Glob(filepath.Join(destDir, ".fetch-*"))
			require.NoError(t, err)
			assert.Empty(t, leftovers)
		})
	}
}

func TestDownloadArchive_HTTPError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	destDir := t.TempDir()
	_, err := DownloadArchive(context.Background(), ts.Client(), ts.URL+"/board.mhb", destDir, testConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 403")

	entries, err := os.ReadDir(destDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "failed download must not leave files")
}

func TestFetch(t *testing.T) {
	const content = "PK<fake archive bytes>"

	mux := http.NewServeMux()
	var ts *httptest.Server
	mux.HandleFunc("/abc123/resources.json", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprintf(w, `[{"url":%q}]`, ts.URL+"/files/board.mhb")
	})
	mux.HandleFunc("/files/board.mhb", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, content)
	})
	ts = httptest.NewServer(mux)
	defer ts.Close()

	old := shareAPIBase
	shareAPIBase = ts.URL
	defer func() { shareAPIBase = old }()

	destDir := t.TempDir()
	var log bytes.Buffer
	path, err := Fetch(context.Background(), ts.Client(),
		"https://share.maxhub.com/share?s_id=abc123", destDir, testConfig(), &log)
	require.NoError(t, err)
	assert.Equal(t, "board.mhb", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	out := log.String()
	assert.Contains(t, out, "extracted s_id: abc123")
	assert.Contains(t, out, "file URL:")
	assert.Contains(t, out, "downloaded: board.mhb")
}
