// Package scoring implements the deterministic scoring engine: eight
// independent extractors over an immutable snapshot, combined into a bounded
// total. Scores are transparent; every dimension explains itself with
// signals.
package scoring

import (
	"fmt"
	"sync"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

type extractor struct {
	dim      domain.Dimension
	maxScore int
	extract  func(*domain.Snapshot) domain.DimensionScore
}

// registry holds the extractors in fixed order. Each is a pure function of
// the snapshot with no dependency on its siblings, which is what allows the
// parallel fan-out below.
var registry = []extractor{
	{domain.DimCodeQuality, 18, scoreCodeQuality},
	{domain.DimArchitecture, 12, scoreArchitecture},
	{domain.DimDocumentation, 15, scoreDocumentation},
	{domain.DimTesting, 12, scoreTesting},
	{domain.DimSecurity, 10, scoreSecurity},
	{domain.DimGitWorkflow, 13, scoreGitWorkflow},
	{domain.DimRealWorld, 12, scoreRealWorld},
	{domain.DimInnovation, 8, scoreInnovation},
}

type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Score runs all extractors concurrently and combines their output by
// dimension key. It fails only on a structurally invalid snapshot; extractor
// panics degrade the affected dimension instead of failing the pipeline.
func (e *Engine) Score(snap *domain.Snapshot) (*domain.ScoredResult, error) {
	if snap == nil || snap.Empty() {
		return nil, fmt.Errorf("snapshot is empty, nothing to score")
	}

	dims := make(map[domain.Dimension]domain.DimensionScore, len(registry))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, ex := range registry {
		wg.Add(1)
		go func(ex extractor) {
			defer wg.Done()
			ds := runExtractor(ex, snap)
			mu.Lock()
			dims[ex.dim] = ds
			mu.Unlock()
		}(ex)
	}
	wg.Wait()

	total := 0
	for _, ds := range dims {
		total += ds.Score
	}
	if total > domain.TotalMaxScore {
		total = domain.TotalMaxScore
	}

	return &domain.ScoredResult{
		RepoName:   snap.FullName(),
		RepoURL:    snap.URL,
		TotalScore: total,
		MaxScore:   domain.TotalMaxScore,
		SkillLevel: SkillLevel(total),
		Percentile: Percentile(total),
		Dimensions: dims,
	}, nil
}

// runExtractor isolates one extractor: a panic becomes a zero score with an
// explanatory signal, never a pipeline failure.
func runExtractor(ex extractor, snap *domain.Snapshot) (ds domain.DimensionScore) {
	defer func() {
		if r := recover(); r != nil {
			ds = domain.DimensionScore{
				Score:    0,
				MaxScore: ex.maxScore,
				Signals:  []string{fmt.Sprintf("dimension analysis failed: %v", r)},
				Formula:  "degraded",
			}
		}
	}()
	ds = ex.extract(snap)
	ds = clampScore(ds)
	return ds
}

func clampScore(ds domain.DimensionScore) domain.DimensionScore {
	if ds.Score < 0 {
		ds.Score = 0
	}
	if ds.Score > ds.MaxScore {
		ds.Score = ds.MaxScore
	}
	if len(ds.Signals) == 0 {
		ds.Signals = []string{"no evidence collected"}
	}
	return ds
}

// SkillLevel maps a total score through fixed documented thresholds.
func SkillLevel(total int) string {
	switch {
	case total >= 86:
		return "Expert"
	case total >= 71:
		return "Advanced"
	case total >= 41:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

// Percentile is a fixed monotonic step mapping of the total score. The curve
// shape is a stand-in for a reference distribution; only stability and
// monotonicity are contractual.
func Percentile(total int) int {
	switch {
	case total >= 90:
		return 95
	case total >= 80:
		return 85
	case total >= 70:
		return 70
	case total >= 60:
		return 55
	case total >= 50:
		return 40
	case total >= 40:
		return 30
	default:
		p := total / 2
		if p < 10 {
			p = 10
		}
		return p
	}
}
