// Package httpserver exposes the analysis API over chi.
package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	appanalysis "github.com/bryanwahyu/gitgrade/internal/application/analysis"
	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/middleware"
)

type Router struct {
	svc      *appanalysis.Service
	checkers map[string]middleware.HealthChecker
}

func NewRouter(svc *appanalysis.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc, checkers: checkers}
	mux := chi.NewRouter()

	mux.Post("/api/analyze", r.wrap(r.handleAnalyze))
	mux.Get("/api/progress/{task_id}", r.wrap(r.handleProgress))
	mux.Get("/api/health", r.wrap(r.handleHealth))
	mux.Get("/api/metrics", middleware.MetricsHandler)

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

// wrap maps domain error kinds onto HTTP statuses and renders a JSON error
// body. Unclassified errors are 500s with a generic message.
func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}

		kind := domain.KindOf(err)
		status := http.StatusInternalServerError
		switch kind {
		case domain.KindInvalidArgument:
			status = http.StatusBadRequest
		case domain.KindNotFound:
			status = http.StatusNotFound
		case domain.KindRateLimited:
			status = http.StatusTooManyRequests
			w.Header().Set("Retry-After", "60")
		case domain.KindOfflineUnavailable:
			status = http.StatusServiceUnavailable
		case domain.KindUpstreamUnavailable:
			status = http.StatusBadGateway
		}

		msg := domain.Classify(err).Message
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error": msg,
			"kind":  string(kind),
		})
	}
}

// POST /api/analyze
// Body: {"repo_url": "https://github.com/owner/name"}
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		RepoURL string `json:"repo_url"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return domain.InvalidArgument("invalid request body: %v", err)
	}
	if body.RepoURL == "" {
		return domain.InvalidArgument("repo_url is required")
	}

	res, err := r.svc.Submit(req.Context(), body.RepoURL)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	return json.NewEncoder(w).Encode(res)
}

// GET /api/progress/{task_id}
func (r *Router) handleProgress(w http.ResponseWriter, req *http.Request) error {
	id := chi.URLParam(req, "task_id")

	task, err := r.svc.Progress(domain.TaskID(id))
	if err != nil {
		return err
	}

	resp := map[string]any{
		"task_id":  task.ID,
		"repo":     task.Repo,
		"status":   string(task.Status),
		"progress": task.Progress,
		"message":  task.Message,
		"cached":   task.Cached,
	}
	if task.Result != nil {
		resp["result"] = task.Result
	}
	if task.ArchiveURL != "" {
		resp["archive_url"] = task.ArchiveURL
	}
	if task.Err != nil {
		resp["error"] = task.Err.Message
		resp["error_kind"] = string(task.Err.Kind)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// GET /api/health
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) error {
	ctx, cancel := context.WithTimeout(req.Context(), 5*time.Second)
	defer cancel()

	h := r.svc.Health(ctx)

	resp := map[string]any{
		"status":            h.Status,
		"github_rate_limit": h.GitHubRateLimit,
		"ai_available":      h.AIAvailable,
		"cached_repos":      h.CachedRepos,
		"offline":           h.Offline,
	}
	if len(r.checkers) > 0 {
		checks, healthy := middleware.RunChecks(ctx, r.checkers)
		resp["checks"] = checks
		if !healthy {
			resp["status"] = "degraded"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}
