// Package analysis implements the task orchestrator use-cases: submit an
// analysis, run the pipeline in the background, expose progress by task id.
package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/bryanwahyu/gitgrade/internal/application"
	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/domain/credentials"
	"github.com/bryanwahyu/gitgrade/internal/middleware"
)

// Scorer port into the scoring engine.
type Scorer interface {
	Score(snap *domain.Snapshot) (*domain.ScoredResult, error)
}

// Insights port into the insight generator. Never fails.
type Insights interface {
	Generate(ctx context.Context, res *domain.ScoredResult) domain.Insight
	Available() bool
}

// Service is the task orchestrator. Designed for concurrent use: task state
// is guarded by one lock, everything else is either immutable or internally
// synchronized (rotators, cache).
type Service struct {
	Fetcher  domain.Fetcher
	Scorer   Scorer
	Insights Insights
	Cache    domain.Cache
	Archive  domain.ArtifactStore // optional
	Clock    application.Clock
	Offline  bool

	mu    sync.RWMutex
	tasks map[domain.TaskID]*domain.Task
}

func NewService(fetcher domain.Fetcher, scorer Scorer, insights Insights, cache domain.Cache, archive domain.ArtifactStore, clock application.Clock, offline bool) *Service {
	return &Service{
		Fetcher:  fetcher,
		Scorer:   scorer,
		Insights: insights,
		Cache:    cache,
		Archive:  archive,
		Clock:    clock,
		Offline:  offline,
		tasks:    make(map[domain.TaskID]*domain.Task),
	}
}

// SubmitResult is returned synchronously from Submit.
type SubmitResult struct {
	TaskID  domain.TaskID        `json:"task_id"`
	Cached  bool                 `json:"cached"`
	Message string               `json:"message"`
	Result  *domain.ScoredResult `json:"result,omitempty"`
}

// Submit validates the identifier, consults the cache, and on a miss queues
// the pipeline in the background. On a hit the task is created already
// completed with the cached result inline.
func (s *Service) Submit(ctx context.Context, rawURL string) (SubmitResult, error) {
	id, err := domain.ParseRepoURL(rawURL)
	if err != nil {
		return SubmitResult{}, err
	}

	// Cache is read before any external call is made.
	if cached, err := s.Cache.Get(ctx, id.CacheKey()); err != nil {
		log.Printf("analysis: cache read failed for %s: %v", id, err)
	} else if cached != nil {
		task := s.newTask(id, domain.StatusCompleted, 100, "Analysis complete (cached)")
		task.Result = cached
		task.Cached = true
		s.storeTask(task)
		middleware.IncrementCacheHits()
		return SubmitResult{
			TaskID:  task.ID,
			Cached:  true,
			Message: "Using cached result",
			Result:  cached,
		}, nil
	}

	if s.Offline {
		return SubmitResult{}, domain.OfflineUnavailable("offline mode: %s is not cached", id)
	}

	task := s.newTask(id, domain.StatusQueued, 0, "Analysis queued")
	s.storeTask(task)
	middleware.IncrementAnalyses()

	go s.run(id, task.ID)

	return SubmitResult{
		TaskID:  task.ID,
		Message: "Analysis started, poll /api/progress/{task_id} for updates",
	}, nil
}

// Progress returns a copy of the task record.
func (s *Service) Progress(taskID domain.TaskID) (domain.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tasks[taskID]
	if !ok {
		return domain.Task{}, domain.NotFound("task not found: %s", taskID)
	}
	return *t, nil
}

// Health summarizes liveness of the external collaborators.
type Health struct {
	Status          string `json:"status"`
	GitHubRateLimit int    `json:"github_rate_limit"`
	AIAvailable     bool   `json:"ai_available"`
	CachedRepos     int    `json:"cached_repos"`
	Offline         bool   `json:"offline"`
}

func (s *Service) Health(ctx context.Context) Health {
	h := Health{Status: "healthy", Offline: s.Offline, AIAvailable: s.Insights.Available()}
	if n, err := s.Cache.Count(ctx); err == nil {
		h.CachedRepos = n
	} else {
		h.Status = "degraded"
	}
	if !s.Offline {
		if remaining, err := s.Fetcher.RateLimit(ctx); err == nil {
			h.GitHubRateLimit = remaining
		} else {
			h.Status = "degraded"
		}
	}
	return h
}

// run executes the pipeline stages for one task. Once submitted a task runs
// to completion or failure; abandoning the poll does not cancel it.
func (s *Service) run(id domain.RepoID, taskID domain.TaskID) {
	ctx := context.Background()
	middleware.IncrementAnalysesRunning()
	defer middleware.DecrementAnalysesRunning()

	s.setProgress(taskID, domain.StatusRunning, 10, "Fetching repository data...")
	snap, err := s.Fetcher.Fetch(ctx, id)
	if err != nil {
		s.fail(taskID, err)
		return
	}

	s.setProgress(taskID, domain.StatusRunning, 40, "Calculating scores...")
	res, err := s.Scorer.Score(snap)
	if err != nil {
		s.fail(taskID, err)
		return
	}
	res.AnalyzedAt = s.Clock.Now()

	s.setProgress(taskID, domain.StatusRunning, 70, "Generating insights...")
	res.Insight = s.Insights.Generate(ctx, res)

	s.setProgress(taskID, domain.StatusRunning, 90, "Saving result...")
	if err := s.Cache.Put(ctx, id.CacheKey(), res); err != nil {
		// The result is complete; a cache write failure only costs the next
		// caller a re-run.
		log.Printf("analysis: cache write failed for %s: %v", id, err)
	}

	archiveURL := s.archive(ctx, id, res)

	s.complete(taskID, res, archiveURL)
	log.Printf("analysis: completed %s: %d/%d (%s)", id, res.TotalScore, res.MaxScore, res.SkillLevel)
}

// archive uploads the full result document when an artifact store is wired.
func (s *Service) archive(ctx context.Context, id domain.RepoID, res *domain.ScoredResult) string {
	if s.Archive == nil {
		return ""
	}
	body, err := json.Marshal(res)
	if err != nil {
		return ""
	}
	url, err := s.Archive.UploadResult(ctx, id.CacheKey()+".json", body)
	if err != nil {
		log.Printf("analysis: artifact upload failed for %s: %v", id, err)
		return ""
	}
	return url
}

func (s *Service) newTask(id domain.RepoID, status domain.Status, progress int, message string) *domain.Task {
	return &domain.Task{
		ID:        domain.TaskID(uuid.New().String()),
		Repo:      id.String(),
		Status:    status,
		Progress:  progress,
		Message:   message,
		CreatedAt: s.Clock.Now(),
	}
}

func (s *Service) storeTask(t *domain.Task) {
	s.mu.Lock()
	s.tasks[t.ID] = t
	s.mu.Unlock()
}

// setProgress advances a running task. Progress is monotonic and terminal
// states are absorbing.
func (s *Service) setProgress(taskID domain.TaskID, status domain.Status, progress int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.Status.Terminal() {
		return
	}
	t.Status = status
	if progress > t.Progress {
		t.Progress = progress
	}
	t.Message = message
}

func (s *Service) complete(taskID domain.TaskID, res *domain.ScoredResult, archiveURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.Status.Terminal() {
		return
	}
	t.Status = domain.StatusCompleted
	t.Progress = 100
	t.Message = "Analysis complete"
	t.Result = res
	t.ArchiveURL = archiveURL
}

// fail transitions the task to failed with a classified error. Credential
// exhaustion is converted to rate-limited at this boundary; no partial
// result is ever attached.
func (s *Service) fail(taskID domain.TaskID, cause error) {
	middleware.IncrementAnalysesFailed()

	var classified *domain.Error
	if errors.Is(cause, credentials.ErrExhausted) {
		classified = domain.RateLimited(cause, "all credentials exhausted, retry later")
	} else {
		classified = domain.Classify(cause)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[taskID]
	if !ok || t.Status.Terminal() {
		return
	}
	t.Status = domain.StatusFailed
	t.Message = "Analysis failed"
	t.Err = classified
	log.Printf("analysis: task %s failed (%s): %v", taskID, t.Repo, cause)
}
