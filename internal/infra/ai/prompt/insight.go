package prompt

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// GetSystemPrompt provides strict directions and schema for JSON output.
func GetSystemPrompt() string {
	return `You are a senior software engineer mentoring a developer. You explain scores, you never invent them. You must produce one valid JSON object only (no markdown, no commentary). Do not include code fences.

Requirements:
- Output must be a single JSON object.
- Base every statement on the scores and signals given in the prompt; do not give generic advice.
- The summary is 2-3 encouraging sentences and must reference at least one concrete signal.
- roadmap is an ordered array of exactly 5 items, most impactful first, each targeting a weak dimension.

Schema (example with empty values):
{
  "summary": "<string>",
  "roadmap": [
    {"item": "<string>", "reason": "<string>"}
  ]
}`
}

// GetUserPrompt builds the user message from a scored result. The digest is
// deterministic for identical results.
func GetUserPrompt(res *domain.ScoredResult) string {
	return fmt.Sprintf("Explain this repository assessment and respond with the JSON per schema.\n\n%s", BuildDigest(res))
}

// BuildDigest renders the scored result as a compact structured summary.
// Dimensions appear in fixed registry order.
func BuildDigest(res *domain.ScoredResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\n", res.RepoName)
	fmt.Fprintf(&b, "URL: %s\n", res.RepoURL)
	fmt.Fprintf(&b, "Overall: %d/%d (%s), better than %d%% of repositories\n\n", res.TotalScore, res.MaxScore, res.SkillLevel, res.Percentile)
	b.WriteString("Dimension scores:\n")
	for _, d := range domain.Dimensions {
		ds, ok := res.Dimensions[d]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "- %s: %d/%d (%s)\n", d, ds.Score, ds.MaxScore, ds.Formula)
		for _, sig := range ds.Signals {
			fmt.Fprintf(&b, "    signal: %s\n", sig)
		}
	}
	return b.String()
}
