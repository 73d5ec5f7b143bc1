package scoring

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

var deployKeywords = []string{"docker", "deploy", "cloud", "aws", "heroku", "vercel", "kubernetes"}

var deployFiles = []string{"dockerfile", "docker-compose.yml", "docker-compose.yaml", "procfile", "makefile", "vercel.json", "fly.toml"}

// Real-world Applicability (12 points): deployment readiness and project
// maturity.
func scoreRealWorld(snap *domain.Snapshot) domain.DimensionScore {
	score := 0
	var signals []string

	var indicators []string
	if ok, p := hasFile(snap.Files, deployFiles...); ok {
		indicators = append(indicators, p)
	}
	indicators = append(indicators, containsAny(snap.Readme+" "+snap.Description, deployKeywords)...)
	switch {
	case len(indicators) >= 2:
		score += 6
		signals = append(signals, fmt.Sprintf("deployment ready (%s)", strings.Join(indicators[:2], ", ")))
	case len(indicators) == 1:
		score += 4
		signals = append(signals, fmt.Sprintf("deployment info (%s)", indicators[0]))
	default:
		score += 2
		signals = append(signals, "basic setup info only")
	}

	recent := recentCommits(snap.Commits, snap.FetchedAt)
	switch {
	case recent > 5:
		score += 6
		signals = append(signals, "active development cycle")
	case len(snap.Commits) > 20:
		score += 4
		signals = append(signals, "established codebase")
	default:
		score += 2
		signals = append(signals, "early stage project")
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 12,
		Signals:  signals,
		Formula:  "deployment(6) + maturity(6)",
	}
}
