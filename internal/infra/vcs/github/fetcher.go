// Package github implements the repository fetcher against the GitHub REST
// v3 API with credential rotation, bounded timeouts and retry/backoff.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/domain/credentials"
)

const defaultAPIBase = "https://api.github.com"

// readmeLimit caps how much README text is carried into the snapshot.
const readmeLimit = 10000

type Options struct {
	APIBase       string
	Timeout       time.Duration // per external call
	MaxAttempts   int
	Backoff       time.Duration
	MaxFiles      int
	MaxFileBytes  int64
	MaxTotalBytes int64
	CommitWindow  int
}

func (o *Options) fillDefaults() {
	if o.APIBase == "" {
		o.APIBase = defaultAPIBase
	}
	if o.Timeout <= 0 {
		o.Timeout = 15 * time.Second
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 4
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.MaxFiles <= 0 {
		o.MaxFiles = 25
	}
	if o.MaxFileBytes <= 0 {
		o.MaxFileBytes = 64 * 1024
	}
	if o.MaxTotalBytes <= 0 {
		o.MaxTotalBytes = 512 * 1024
	}
	if o.CommitWindow <= 0 {
		o.CommitWindow = 100
	}
}

type Fetcher struct {
	rotator *credentials.Rotator
	client  *http.Client
	opts    Options
}

func NewFetcher(rotator *credentials.Rotator, opts Options) *Fetcher {
	opts.fillDefaults()
	return &Fetcher{
		rotator: rotator,
		client:  &http.Client{},
		opts:    opts,
	}
}

type repoMeta struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	Stars         int    `json:"stargazers_count"`
	Forks         int    `json:"forks_count"`
	Size          int64  `json:"size"`
	License       *struct {
		Name string `json:"name"`
	} `json:"license"`
}

type blobResp struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

type treeResp struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int64  `json:"size"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

type commitResp struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string `json:"name"`
			Date string `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// Fetch retrieves metadata, tree, bounded contents and the commit window for
// one repository. Metadata and tree are required; README, languages and
// commits degrade to empty on failure and the extractors explain the gap.
func (f *Fetcher) Fetch(ctx context.Context, id domain.RepoID) (*domain.Snapshot, error) {
	var meta repoMeta
	if err := f.get(ctx, fmt.Sprintf("/repos/%s/%s", id.Owner, id.Name), &meta); err != nil {
		return nil, err
	}
	if meta.Size == 0 {
		return nil, domain.NotFound("repository %s has no files", id)
	}

	snap := &domain.Snapshot{
		Owner:         id.Owner,
		Name:          meta.Name,
		URL:           id.URL(),
		Description:   meta.Description,
		DefaultBranch: meta.DefaultBranch,
		Stars:         meta.Stars,
		Forks:         meta.Forks,
		FetchedAt:     time.Now().UTC(),
	}
	if snap.Name == "" {
		snap.Name = id.Name
	}
	if snap.DefaultBranch == "" {
		snap.DefaultBranch = "main"
	}
	if meta.License != nil {
		snap.License = meta.License.Name
	}

	var langs map[string]int64
	if err := f.get(ctx, fmt.Sprintf("/repos/%s/%s/languages", id.Owner, id.Name), &langs); err == nil {
		snap.Languages = langs
	}

	var readme blobResp
	if err := f.get(ctx, fmt.Sprintf("/repos/%s/%s/readme", id.Owner, id.Name), &readme); err == nil {
		text := decodeBlob(readme)
		if len(text) > readmeLimit {
			text = text[:readmeLimit]
		}
		snap.Readme = text
	}

	var tree treeResp
	if err := f.get(ctx, fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", id.Owner, id.Name, snap.DefaultBranch), &tree); err != nil {
		return nil, err
	}
	for _, entry := range tree.Tree {
		if entry.Type == "blob" {
			snap.Files = append(snap.Files, domain.FileEntry{Path: entry.Path, Size: entry.Size})
		}
	}

	var commits []commitResp
	if err := f.get(ctx, fmt.Sprintf("/repos/%s/%s/commits?per_page=%d", id.Owner, id.Name, f.opts.CommitWindow), &commits); err == nil {
		for _, c := range commits {
			when, _ := time.Parse(time.RFC3339, c.Commit.Author.Date)
			snap.Commits = append(snap.Commits, domain.Commit{
				SHA:     c.SHA,
				Author:  c.Commit.Author.Name,
				Message: c.Commit.Message,
				When:    when,
			})
		}
	}

	snap.Contents = f.fetchContents(ctx, id, snap.Files)
	return snap, nil
}

// RateLimit reports remaining core API headroom.
func (f *Fetcher) RateLimit(ctx context.Context) (int, error) {
	var resp struct {
		Resources struct {
			Core struct {
				Remaining int `json:"remaining"`
			} `json:"core"`
		} `json:"resources"`
	}
	if err := f.get(ctx, "/rate_limit", &resp); err != nil {
		return 0, err
	}
	return resp.Resources.Core.Remaining, nil
}

// fetchContents retrieves a bounded, deterministic selection of source file
// contents: binary and oversized files are skipped, total bytes and file
// count are capped. Per-file failures are skipped, not fatal.
func (f *Fetcher) fetchContents(ctx context.Context, id domain.RepoID, files []domain.FileEntry) []domain.FileContent {
	var candidates []domain.FileEntry
	for _, fe := range files {
		if domain.ClassifyLanguage(fe.Path) == "" {
			continue
		}
		if fe.Size <= 0 || fe.Size > f.opts.MaxFileBytes {
			continue
		}
		candidates = append(candidates, fe)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].Path < candidates[j].Path })

	var out []domain.FileContent
	var total int64
	for _, fe := range candidates {
		if len(out) >= f.opts.MaxFiles || total+fe.Size > f.opts.MaxTotalBytes {
			break
		}
		var blob blobResp
		if err := f.get(ctx, fmt.Sprintf("/repos/%s/%s/contents/%s", id.Owner, id.Name, fe.Path), &blob); err != nil {
			continue
		}
		text := decodeBlob(blob)
		if text == "" {
			continue
		}
		out = append(out, domain.FileContent{Path: fe.Path, Content: text})
		total += fe.Size
	}
	return out
}

// get issues one API call with credential rotation and retry. Quota and
// authentication failures invalidate the current credential and move on to
// the next; transient failures back off and retry with the same pool.
func (f *Fetcher) get(ctx context.Context, path string, v any) error {
	var lastErr error
	rateLimited := false

	for attempt := 0; attempt < f.opts.MaxAttempts; attempt++ {
		cred, err := f.rotator.Acquire()
		if err != nil {
			return domain.RateLimited(err, "all GitHub credentials exhausted, retry later")
		}

		err = f.doOnce(ctx, cred, path, v)
		if err == nil {
			return nil
		}

		var ae *domain.Error
		if errors.As(err, &ae) {
			// not found is definitive, never retried
			return err
		}

		lastErr = err
		switch {
		case errors.Is(err, credentials.ErrQuotaExhausted):
			rateLimited = true
			f.rotator.ReportFailure(cred, credentials.ErrQuotaExhausted)
		case errors.Is(err, credentials.ErrUnauthorized):
			f.rotator.ReportFailure(cred, credentials.ErrUnauthorized)
		default:
			// transient: same pool, linear backoff
			f.rotator.ReportFailure(cred, err)
			select {
			case <-time.After(f.opts.Backoff * time.Duration(attempt+1)):
			case <-ctx.Done():
				return domain.UpstreamUnavailable(ctx.Err(), "GitHub request canceled")
			}
		}
	}

	if rateLimited {
		return domain.RateLimited(lastErr, "GitHub rate limit exceeded, retry later")
	}
	return domain.UpstreamUnavailable(lastErr, "GitHub unavailable after %d attempts", f.opts.MaxAttempts)
}

func (f *Fetcher) doOnce(ctx context.Context, cred *credentials.Credential, path string, v any) error {
	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.opts.APIBase+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if cred.Secret != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Secret)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		return json.NewDecoder(resp.Body).Decode(v)
	case resp.StatusCode == http.StatusNotFound:
		return domain.NotFound("not found or private: %s", path)
	case resp.StatusCode == http.StatusUnauthorized:
		return credentials.ErrUnauthorized
	case resp.StatusCode == http.StatusTooManyRequests:
		return credentials.ErrQuotaExhausted
	case resp.StatusCode == http.StatusForbidden:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			return credentials.ErrQuotaExhausted
		}
		return credentials.ErrUnauthorized
	default:
		return fmt.Errorf("github: unexpected status %d for %s", resp.StatusCode, path)
	}
}

func decodeBlob(b blobResp) string {
	if b.Encoding != "base64" {
		return b.Content
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(b.Content, "\n", ""))
	if err != nil {
		return ""
	}
	return string(raw)
}
