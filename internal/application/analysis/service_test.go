package analysis

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/gitgrade/internal/application/insight"
	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/domain/credentials"
	"github.com/bryanwahyu/gitgrade/internal/domain/scoring"
)

type fakeFetcher struct {
	mu    sync.Mutex
	snap  *domain.Snapshot
	err   error
	calls int
}

func (f *fakeFetcher) Fetch(ctx context.Context, id domain.RepoID) (*domain.Snapshot, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.snap, nil
}

func (f *fakeFetcher) RateLimit(ctx context.Context) (int, error) { return 5000, nil }

func (f *fakeFetcher) fetchCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type memCache struct {
	mu      sync.Mutex
	entries map[string]string
}

func newMemCache() *memCache { return &memCache{entries: make(map[string]string)} }

func (c *memCache) Get(ctx context.Context, key string) (*domain.ScoredResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.entries[key]
	if !ok {
		return nil, nil
	}
	var res domain.ScoredResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *memCache) Put(ctx context.Context, key string, res *domain.ScoredResult) error {
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.entries[key] = string(raw)
	c.mu.Unlock()
	return nil
}

func (c *memCache) Count(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries), nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testSnapshot() *domain.Snapshot {
	return &domain.Snapshot{
		Owner:         "acme",
		Name:          "webthing",
		URL:           "https://github.com/acme/webthing",
		DefaultBranch: "main",
		Readme:        "# webthing\n\n## Install\ngo install\n\nA service that does web things, documented at length so the score has something to chew on.",
		Languages:     map[string]int64{"Go": 50000},
		Files: []domain.FileEntry{
			{Path: "main.go", Size: 500},
			{Path: "main_test.go", Size: 400},
			{Path: "go.mod", Size: 100},
			{Path: "README.md", Size: 800},
		},
		Contents: []domain.FileContent{
			{Path: "main.go", Content: "package main\n\n// entry point\nfunc main() {\n\trun()\n}\n"},
		},
		Commits: []domain.Commit{
			{SHA: "abc", Author: "dev", Message: "feat: initial service", When: time.Now().Add(-24 * time.Hour)},
		},
		FetchedAt: time.Now(),
	}
}

func newTestService(fetcher domain.Fetcher, cache domain.Cache, offline bool) *Service {
	return NewService(
		fetcher,
		scoring.NewEngine(),
		insight.NewService(nil, offline),
		cache,
		nil,
		fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)},
		offline,
	)
}

func waitTerminal(t *testing.T, svc *Service, id domain.TaskID) domain.Task {
	t.Helper()
	var task domain.Task
	require.Eventually(t, func() bool {
		got, err := svc.Progress(id)
		if err != nil {
			return false
		}
		task = got
		return task.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	return task
}

func TestSubmitRunsPipelineToCompletion(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	svc := newTestService(fetcher, newMemCache(), false)

	sub, err := svc.Submit(context.Background(), "https://github.com/acme/webthing")
	require.NoError(t, err)
	assert.False(t, sub.Cached)
	assert.Nil(t, sub.Result)
	require.NotEmpty(t, sub.TaskID)

	task := waitTerminal(t, svc, sub.TaskID)
	assert.Equal(t, domain.StatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	require.NotNil(t, task.Result)
	assert.Equal(t, "acme/webthing", task.Result.RepoName)
	assert.Len(t, task.Result.Dimensions, 8)
	assert.Equal(t, domain.GeneratedByFallback, task.Result.Insight.GeneratedBy)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), task.Result.AnalyzedAt)
}

func TestSecondSubmitHitsCache(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	cache := newMemCache()
	svc := newTestService(fetcher, cache, false)

	sub, err := svc.Submit(context.Background(), "https://github.com/acme/webthing")
	require.NoError(t, err)
	first := waitTerminal(t, svc, sub.TaskID)

	// different letter case must hit the same entry
	sub2, err := svc.Submit(context.Background(), "https://github.com/Acme/WebThing")
	require.NoError(t, err)
	assert.True(t, sub2.Cached)
	require.NotNil(t, sub2.Result)
	assert.Equal(t, 1, fetcher.fetchCalls())

	// cached result is byte-identical to the first run
	a, _ := json.Marshal(first.Result)
	b, _ := json.Marshal(sub2.Result)
	assert.JSONEq(t, string(a), string(b))

	// the cached task is immediately terminal
	task, err := svc.Progress(sub2.TaskID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, task.Status)
	assert.True(t, task.Cached)
}

func TestSubmitInvalidURL(t *testing.T) {
	svc := newTestService(&fakeFetcher{}, newMemCache(), false)
	_, err := svc.Submit(context.Background(), "not a url")
	assert.Equal(t, domain.KindInvalidArgument, domain.KindOf(err))
}

func TestFetchNotFoundFailsTask(t *testing.T) {
	fetcher := &fakeFetcher{err: domain.NotFound("repository acme/gone not found")}
	svc := newTestService(fetcher, newMemCache(), false)

	sub, err := svc.Submit(context.Background(), "https://github.com/acme/gone")
	require.NoError(t, err)

	task := waitTerminal(t, svc, sub.TaskID)
	assert.Equal(t, domain.StatusFailed, task.Status)
	require.NotNil(t, task.Err)
	assert.Equal(t, domain.KindNotFound, task.Err.Kind)
	assert.Nil(t, task.Result)
}

func TestCredentialExhaustionBecomesRateLimited(t *testing.T) {
	fetcher := &fakeFetcher{err: credentials.ErrExhausted}
	svc := newTestService(fetcher, newMemCache(), false)

	sub, err := svc.Submit(context.Background(), "https://github.com/acme/webthing")
	require.NoError(t, err)

	task := waitTerminal(t, svc, sub.TaskID)
	assert.Equal(t, domain.StatusFailed, task.Status)
	require.NotNil(t, task.Err)
	assert.Equal(t, domain.KindRateLimited, task.Err.Kind)
}

func TestOfflineMissRejectsWithoutFetching(t *testing.T) {
	fetcher := &fakeFetcher{snap: testSnapshot()}
	svc := newTestService(fetcher, newMemCache(), true)

	_, err := svc.Submit(context.Background(), "https://github.com/acme/webthing")
	assert.Equal(t, domain.KindOfflineUnavailable, domain.KindOf(err))
	assert.Zero(t, fetcher.fetchCalls())
}

func TestOfflineHitServesFromCache(t *testing.T) {
	cache := newMemCache()
	res := &domain.ScoredResult{RepoName: "acme/webthing", TotalScore: 60, MaxScore: 100}
	require.NoError(t, cache.Put(context.Background(), "acme/webthing", res))

	fetcher := &fakeFetcher{}
	svc := newTestService(fetcher, cache, true)

	sub, err := svc.Submit(context.Background(), "https://github.com/acme/webthing")
	require.NoError(t, err)
	assert.True(t, sub.Cached)
	require.NotNil(t, sub.Result)
	assert.Equal(t, 60, sub.Result.TotalScore)
	assert.Zero(t, fetcher.fetchCalls())
}

func TestProgressUnknownTask(t *testing.T) {
	svc := newTestService(&fakeFetcher{}, newMemCache(), false)
	_, err := svc.Progress("no-such-task")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestHealth(t *testing.T) {
	svc := newTestService(&fakeFetcher{snap: testSnapshot()}, newMemCache(), false)
	h := svc.Health(context.Background())
	assert.Equal(t, "healthy", h.Status)
	assert.Equal(t, 5000, h.GitHubRateLimit)
	assert.False(t, h.AIAvailable)
	assert.Equal(t, 0, h.CachedRepos)
}
