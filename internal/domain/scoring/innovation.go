package scoring

import (
	"fmt"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// Innovation & Complexity (8 points): baseline sophistication plus language
// diversity.
func scoreInnovation(snap *domain.Snapshot) domain.DimensionScore {
	score := 4
	var signals []string

	if primary := snap.PrimaryLanguage(); primary != "" {
		signals = append(signals, fmt.Sprintf("primary language %s", primary))
	} else {
		signals = append(signals, "no language statistics available")
	}

	langs := len(snap.Languages)
	switch {
	case langs > 3:
		score += 4
		signals = append(signals, fmt.Sprintf("multi-language (%d languages)", langs))
	case langs > 1:
		score += 2
		signals = append(signals, fmt.Sprintf("uses %d languages", langs))
	default:
		signals = append(signals, "single language")
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 8,
		Signals:  signals,
		Formula:  "sophistication(4) + diversity(4)",
	}
}
