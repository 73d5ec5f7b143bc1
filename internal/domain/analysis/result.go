package analysis

import "time"

// Dimension keys for the eight scoring categories.
type Dimension string

const (
	DimCodeQuality   Dimension = "code_quality"
	DimArchitecture  Dimension = "architecture"
	DimDocumentation Dimension = "documentation"
	DimTesting       Dimension = "testing"
	DimSecurity      Dimension = "security"
	DimGitWorkflow   Dimension = "git_workflow"
	DimRealWorld     Dimension = "real_world"
	DimInnovation    Dimension = "innovation"
)

// Dimensions lists all keys in fixed registry order. Results are always
// combined by key, never by completion order.
var Dimensions = []Dimension{
	DimCodeQuality,
	DimArchitecture,
	DimDocumentation,
	DimTesting,
	DimSecurity,
	DimGitWorkflow,
	DimRealWorld,
	DimInnovation,
}

// TotalMaxScore is the documented global maximum across all dimensions.
const TotalMaxScore = 100

// DimensionScore is the immutable output of one extractor.
type DimensionScore struct {
	Score    int      `json:"score"`
	MaxScore int      `json:"max_score"`
	Signals  []string `json:"signals"`
	Formula  string   `json:"formula"`
}

// Ratio returns score/max_score for ranking weakest dimensions.
func (d DimensionScore) Ratio() float64 {
	if d.MaxScore == 0 {
		return 0
	}
	return float64(d.Score) / float64(d.MaxScore)
}

// RoadmapItem is one improvement step with its rationale.
type RoadmapItem struct {
	Item   string `json:"item"`
	Reason string `json:"reason"`
}

// Insight generation provenance markers.
const (
	GeneratedByAI       = "ai"
	GeneratedByFallback = "rule-based-fallback"
	GeneratedByStatic   = "static"
)

// Insight is the narrative attached to a scored result.
type Insight struct {
	Summary     string        `json:"summary"`
	Roadmap     []RoadmapItem `json:"roadmap"`
	GeneratedBy string        `json:"generated_by"`
}

// ScoredResult is the terminal artifact of the pipeline: written to cache and
// attached to a completed task. Immutable once created.
type ScoredResult struct {
	RepoName   string                       `json:"repo_name"`
	RepoURL    string                       `json:"repo_url"`
	TotalScore int                          `json:"total_score"`
	MaxScore   int                          `json:"max_score"`
	SkillLevel string                       `json:"skill_level"`
	Percentile int                          `json:"percentile"`
	Dimensions map[Dimension]DimensionScore `json:"dimensions"`
	Insight    Insight                      `json:"ai_insights"`
	AnalyzedAt time.Time                    `json:"analyzed_at"`
}
