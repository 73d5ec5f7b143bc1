package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/http/httputil"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/domain/credentials"
)

func testOptions(apiBase string) Options {
	return Options{
		APIBase:     apiBase,
		Timeout:     2 * time.Second,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// fakeGitHub serves the subset of the REST API the fetcher touches.
func fakeGitHub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, v any) {
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}

	mux.HandleFunc("/repos/acme/webthing", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"name":           "webthing",
			"full_name":      "acme/webthing",
			"description":    "a web thing",
			"default_branch": "main",
			"stargazers_count": 42,
			"forks_count":      7,
			"size":             123,
			"license":          map[string]string{"name": "MIT License"},
		})
	})
	mux.HandleFunc("/repos/acme/webthing/languages", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int64{"Go": 9000})
	})
	mux.HandleFunc("/repos/acme/webthing/readme", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"content": b64("# webthing\nInstall with go install."), "encoding": "base64"})
	})
	mux.HandleFunc("/repos/acme/webthing/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"tree": []map[string]any{
				{"path": "main.go", "type": "blob", "size": 120},
				{"path": "docs", "type": "tree", "size": 0},
				{"path": "README.md", "type": "blob", "size": 40},
			},
		})
	})
	mux.HandleFunc("/repos/acme/webthing/commits", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []map[string]any{
			{
				"sha": "abc123",
				"commit": map[string]any{
					"message": "feat: first",
					"author":  map[string]string{"name": "dev", "date": "2026-02-01T10:00:00Z"},
				},
			},
		})
	})
	mux.HandleFunc("/repos/acme/webthing/contents/main.go", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]string{"content": b64("package main\n"), "encoding": "base64"})
	})
	mux.HandleFunc("/rate_limit", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"resources": map[string]any{"core": map[string]int{"remaining": 4999}}})
	})
	return httptest.NewServer(mux)
}

func TestFetchBuildsSnapshot(t *testing.T) {
	srv := fakeGitHub(t)
	defer srv.Close()

	f := NewFetcher(credentials.NewRotator("github", []string{"tok"}), testOptions(srv.URL))
	snap, err := f.Fetch(context.Background(), domain.RepoID{Owner: "acme", Name: "webthing"})
	require.NoError(t, err)

	assert.Equal(t, "acme/webthing", snap.FullName())
	assert.Equal(t, "main", snap.DefaultBranch)
	assert.Equal(t, 42, snap.Stars)
	assert.Equal(t, "MIT License", snap.License)
	assert.Contains(t, snap.Readme, "go install")
	assert.Equal(t, map[string]int64{"Go": 9000}, snap.Languages)

	// trees entries collapse to blobs only
	require.Len(t, snap.Files, 2)
	assert.Equal(t, "main.go", snap.Files[0].Path)

	require.Len(t, snap.Commits, 1)
	assert.Equal(t, "feat: first", snap.Commits[0].Message)

	// only recognized source files are fetched, README.md is skipped
	require.Len(t, snap.Contents, 1)
	assert.Equal(t, "main.go", snap.Contents[0].Path)
	assert.Equal(t, "package main\n", snap.Contents[0].Content)
}

func TestFetchNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(credentials.NewRotator("github", []string{"tok"}), testOptions(srv.URL))
	_, err := f.Fetch(context.Background(), domain.RepoID{Owner: "acme", Name: "gone"})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestFetchRotatesOnUnauthorized(t *testing.T) {
	upstream := fakeGitHub(t)
	defer upstream.Close()

	target, err := url.Parse(upstream.URL)
	require.NoError(t, err)
	proxy := httputil.NewSingleHostReverseProxy(target)

	// only the third token is accepted
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		proxy.ServeHTTP(w, r)
	}))
	defer srv.Close()

	rot := credentials.NewRotator("github", []string{"bad1", "bad2", "good"})
	f := NewFetcher(rot, testOptions(srv.URL))
	snap, err := f.Fetch(context.Background(), domain.RepoID{Owner: "acme", Name: "webthing"})
	require.NoError(t, err)
	assert.Equal(t, "acme/webthing", snap.FullName())
	assert.Equal(t, 1, rot.Remaining())
}

func TestFetchAllTokensRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	rot := credentials.NewRotator("github", []string{"a", "b"})
	f := NewFetcher(rot, testOptions(srv.URL))
	_, err := f.Fetch(context.Background(), domain.RepoID{Owner: "acme", Name: "webthing"})
	assert.Equal(t, domain.KindRateLimited, domain.KindOf(err))
	assert.Equal(t, 0, rot.Remaining())
}

func TestFetchUpstreamErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(credentials.NewRotator("github", []string{"tok"}), testOptions(srv.URL))
	_, err := f.Fetch(context.Background(), domain.RepoID{Owner: "acme", Name: "webthing"})
	assert.Equal(t, domain.KindUpstreamUnavailable, domain.KindOf(err))
}

func TestRateLimitProbe(t *testing.T) {
	srv := fakeGitHub(t)
	defer srv.Close()

	f := NewFetcher(credentials.NewRotator("github", []string{"tok"}), testOptions(srv.URL))
	remaining, err := f.RateLimit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4999, remaining)
}
