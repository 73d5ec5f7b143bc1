package scoring

import (
	"fmt"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// Git Workflow (13 points): history depth, recent cadence and commit message
// quality over the bounded commit window.
func scoreGitWorkflow(snap *domain.Snapshot) domain.DimensionScore {
	score := 0
	var signals []string

	commits := len(snap.Commits)
	switch {
	case commits > 40:
		score += 4
		signals = append(signals, fmt.Sprintf("strong history (%d+ commits in window)", commits))
	case commits > 20:
		score += 3
		signals = append(signals, fmt.Sprintf("good history (%d commits)", commits))
	case commits > 10:
		score += 2
		signals = append(signals, fmt.Sprintf("building history (%d commits)", commits))
	case commits > 0:
		score += 1
		signals = append(signals, fmt.Sprintf("initial commits (%d)", commits))
	default:
		signals = append(signals, "no commit history retrieved")
	}

	recent := recentCommits(snap.Commits, snap.FetchedAt)
	switch {
	case recent > 5:
		score += 4
		signals = append(signals, fmt.Sprintf("very active (%d commits in last 30 days)", recent))
	case recent > 2:
		score += 3
		signals = append(signals, fmt.Sprintf("active (%d recent commits)", recent))
	case commits > 0:
		score += 2
		signals = append(signals, "stable, little recent activity")
	}

	conv := conventionalCommitRatio(snap.Commits)
	msgLen := avgMessageLength(snap.Commits)
	switch {
	case conv >= 0.6:
		score += 5
		signals = append(signals, fmt.Sprintf("conventional commit messages (%.0f%%)", conv*100))
	case conv >= 0.3:
		score += 3
		signals = append(signals, fmt.Sprintf("some conventional commits (%.0f%%)", conv*100))
	case msgLen >= 20:
		score += 2
		signals = append(signals, fmt.Sprintf("descriptive commit messages (avg %d chars)", msgLen))
	case commits > 0:
		score += 1
		signals = append(signals, fmt.Sprintf("terse commit messages (avg %d chars)", msgLen))
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 13,
		Signals:  signals,
		Formula:  "history(4) + activity(4) + message quality(5)",
	}
}
