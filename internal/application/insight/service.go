// Package insight implements the insight generator: a generative primary
// path with a deterministic rule-based fallback. It never fails the task.
package insight

import (
	"context"
	"log"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// Service resolves the primary/fallback duality at a single decision point.
type Service struct {
	Client  domain.InsightClient
	Offline bool
}

func NewService(client domain.InsightClient, offline bool) *Service {
	return &Service{Client: client, Offline: offline}
}

// Available reports whether the generative primary path can be attempted.
func (s *Service) Available() bool {
	return !s.Offline && s.Client != nil && s.Client.Available()
}

// Generate produces an insight for a scored result. Primary-path failures of
// any kind degrade to the rule-based fallback; the fallback itself degrades
// to a minimal static insight. No error is ever returned.
func (s *Service) Generate(ctx context.Context, res *domain.ScoredResult) domain.Insight {
	if s.Available() {
		ins, err := s.Client.Generate(ctx, res)
		if err == nil && ins.Summary != "" && len(ins.Roadmap) > 0 {
			ins.GeneratedBy = domain.GeneratedByAI
			return ins
		}
		if err != nil {
			log.Printf("insight: primary path failed for %s, using fallback: %v", res.RepoName, err)
		} else {
			log.Printf("insight: primary path returned incomplete response for %s, using fallback", res.RepoName)
		}
	}
	return Fallback(res)
}
