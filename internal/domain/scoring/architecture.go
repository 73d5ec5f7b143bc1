package scoring

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

var layoutDirs = []string{
	"src", "lib", "internal", "pkg", "cmd", "app", "api",
	"services", "components", "tests", "test", "docs", "config",
}

// Architecture & Structure (12 points): folder organization and recognizable
// layout conventions from the file tree.
func scoreArchitecture(snap *domain.Snapshot) domain.DimensionScore {
	score := 0
	var signals []string

	dirs := topLevelDirs(snap.Files)
	switch {
	case len(dirs) > 5:
		score += 6
		signals = append(signals, fmt.Sprintf("well organized (%d top-level folders)", len(dirs)))
	case len(dirs) > 2:
		score += 4
		signals = append(signals, fmt.Sprintf("organized (%d top-level folders)", len(dirs)))
	default:
		score += 2
		signals = append(signals, fmt.Sprintf("simple structure (%d top-level folders)", len(dirs)))
	}

	var known []string
	for _, d := range dirs {
		lower := strings.ToLower(d)
		for _, l := range layoutDirs {
			if lower == l {
				known = append(known, d)
				break
			}
		}
	}
	switch {
	case len(known) >= 3:
		score += 6
		signals = append(signals, fmt.Sprintf("conventional layout (%s)", strings.Join(known[:3], ", ")))
	case len(known) >= 1:
		score += 4
		signals = append(signals, fmt.Sprintf("some layout conventions (%s)", strings.Join(known, ", ")))
	default:
		score += 2
		signals = append(signals, "no recognized layout conventions")
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 12,
		Signals:  signals,
		Formula:  "organization(6) + layout conventions(6)",
	}
}
