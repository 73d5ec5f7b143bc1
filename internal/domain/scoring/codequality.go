package scoring

import (
	"fmt"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// Code Quality (18 points): comment ratio, file length, nesting depth over
// the retrieved file contents.
func scoreCodeQuality(snap *domain.Snapshot) domain.DimensionScore {
	score := 0
	var signals []string

	if len(snap.Contents) == 0 {
		return domain.DimensionScore{
			Score:    0,
			MaxScore: 18,
			Signals:  []string{"no file contents retrieved, code quality could not be measured"},
			Formula:  "comments(6) + file length(6) + nesting(6)",
		}
	}

	ratio, lines := commentRatio(snap.Contents)
	switch {
	case ratio > 0.2:
		score += 6
		signals = append(signals, fmt.Sprintf("well commented (%.0f%% of %d lines)", ratio*100, lines))
	case ratio > 0.1:
		score += 4
		signals = append(signals, fmt.Sprintf("adequately commented (%.0f%%)", ratio*100))
	case ratio > 0.05:
		score += 2
		signals = append(signals, fmt.Sprintf("minimally commented (%.0f%%)", ratio*100))
	default:
		signals = append(signals, fmt.Sprintf("poorly commented (%.0f%%)", ratio*100))
	}

	avg := avgLinesPerFile(snap.Contents)
	switch {
	case avg < 150:
		score += 6
		signals = append(signals, fmt.Sprintf("small focused files (avg %d lines)", avg))
	case avg < 300:
		score += 4
		signals = append(signals, fmt.Sprintf("moderate file size (avg %d lines)", avg))
	case avg < 500:
		score += 2
		signals = append(signals, fmt.Sprintf("large files (avg %d lines)", avg))
	default:
		signals = append(signals, fmt.Sprintf("very large files (avg %d lines)", avg))
	}

	depth := maxIndentDepth(snap.Contents)
	switch {
	case depth < 4:
		score += 6
		signals = append(signals, fmt.Sprintf("low nesting (max depth %d)", depth))
	case depth < 6:
		score += 4
		signals = append(signals, fmt.Sprintf("moderate nesting (max depth %d)", depth))
	case depth < 8:
		score += 2
		signals = append(signals, fmt.Sprintf("high nesting (max depth %d)", depth))
	default:
		signals = append(signals, fmt.Sprintf("very high nesting (max depth %d)", depth))
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 18,
		Signals:  signals,
		Formula:  "comments(6) + file length(6) + nesting(6)",
	}
}
