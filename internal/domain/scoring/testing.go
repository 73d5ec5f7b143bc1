package scoring

import (
	"fmt"
	"strings"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// Testing & QA (12 points): test-file ratio, CI configuration, and whether
// the README talks about testing.
func scoreTesting(snap *domain.Snapshot) domain.DimensionScore {
	score := 0
	var signals []string

	source, tests := 0, 0
	for _, f := range snap.Files {
		if !isSourceFile(f.Path) {
			continue
		}
		if isTestFile(f.Path) {
			tests++
		} else {
			source++
		}
	}
	switch {
	case source == 0 && tests == 0:
		signals = append(signals, "no source files detected")
	case tests == 0:
		signals = append(signals, fmt.Sprintf("no test files among %d source files", source))
	default:
		ratio := float64(tests) / float64(source+tests)
		switch {
		case ratio >= 0.3:
			score += 6
			signals = append(signals, fmt.Sprintf("strong test presence (%d test files, %.0f%%)", tests, ratio*100))
		case ratio >= 0.1:
			score += 4
			signals = append(signals, fmt.Sprintf("tests present (%d test files, %.0f%%)", tests, ratio*100))
		default:
			score += 2
			signals = append(signals, fmt.Sprintf("sparse tests (%d test files, %.0f%%)", tests, ratio*100))
		}
	}

	if ok, p := hasCIConfig(snap.Files); ok {
		score += 4
		signals = append(signals, fmt.Sprintf("CI configured (%s)", p))
	} else {
		signals = append(signals, "no CI configuration found")
	}

	if strings.Contains(strings.ToLower(snap.Readme), "test") {
		score += 2
		signals = append(signals, "documentation mentions testing")
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 12,
		Signals:  signals,
		Formula:  "test ratio(6) + ci(4) + docs(2)",
	}
}
