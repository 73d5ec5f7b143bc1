package scoring

import (
	"fmt"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

var setupKeywords = []string{"install", "setup", "getting started", "usage", "how to"}

// Documentation (15 points): README presence, length and setup instructions.
func scoreDocumentation(snap *domain.Snapshot) domain.DimensionScore {
	score := 0
	var signals []string

	if snap.Readme != "" {
		score += 5
		signals = append(signals, "README exists")
	} else {
		signals = append(signals, "no README found")
	}

	readmeLen := len(snap.Readme)
	switch {
	case readmeLen > 2000:
		score += 5
		signals = append(signals, fmt.Sprintf("comprehensive README (%d chars)", readmeLen))
	case readmeLen > 1000:
		score += 4
		signals = append(signals, fmt.Sprintf("detailed README (%d chars)", readmeLen))
	case readmeLen > 500:
		score += 3
		signals = append(signals, fmt.Sprintf("basic README (%d chars)", readmeLen))
	case readmeLen > 100:
		score += 1
		signals = append(signals, fmt.Sprintf("minimal README (%d chars)", readmeLen))
	}

	if found := containsAny(snap.Readme, setupKeywords); len(found) > 0 {
		score += 5
		signals = append(signals, "has setup instructions")
	} else {
		signals = append(signals, "missing setup instructions")
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 15,
		Signals:  signals,
		Formula:  "exists(5) + length(5) + instructions(5)",
	}
}
