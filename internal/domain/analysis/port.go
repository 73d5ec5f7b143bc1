package analysis

import "context"

// Fetcher port: retrieves an immutable snapshot from the hosted VCS.
type Fetcher interface {
	Fetch(ctx context.Context, id RepoID) (*Snapshot, error)
	// RateLimit reports remaining API call headroom for health probes.
	RateLimit(ctx context.Context) (int, error)
}

// Cache port: durable result store keyed by normalized repo identifier.
// Get returns (nil, nil) on a miss; a hit is always a complete result.
type Cache interface {
	Get(ctx context.Context, key string) (*ScoredResult, error)
	Put(ctx context.Context, key string, res *ScoredResult) error
	Count(ctx context.Context) (int, error)
}

// InsightClient port: the generative primary path of the insight generator.
type InsightClient interface {
	Generate(ctx context.Context, res *ScoredResult) (Insight, error)
	Available() bool
}

// ArtifactStore port: optional archive of the full result document.
type ArtifactStore interface {
	UploadResult(ctx context.Context, key string, body []byte) (string, error)
}
