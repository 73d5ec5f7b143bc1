package scoring

import (
	"fmt"
	"regexp"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

var lockfileNames = []string{
	"go.sum", "package-lock.json", "yarn.lock", "pnpm-lock.yaml",
	"poetry.lock", "pipfile.lock", "cargo.lock", "gemfile.lock", "composer.lock",
}

// secretPatterns flags obvious embedded credentials in retrieved contents.
var secretPatterns = []*regexp.Regexp{
	regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`-----BEGIN (RSA |EC |OPENSSH )?PRIVATE KEY-----`),
	regexp.MustCompile(`(?i)(api[_-]?key|secret|password|token)\s*[:=]\s*['"][A-Za-z0-9_\-]{16,}['"]`),
}

// Security & Best Practices (10 points): pinned dependencies, absence of
// committed secrets, license presence.
func scoreSecurity(snap *domain.Snapshot) domain.DimensionScore {
	score := 0
	var signals []string

	if ok, p := hasFile(snap.Files, lockfileNames...); ok {
		score += 3
		signals = append(signals, fmt.Sprintf("dependency lockfile present (%s)", p))
	} else {
		signals = append(signals, "no dependency lockfile found")
	}

	leaked := ""
	for _, fc := range snap.Contents {
		for _, re := range secretPatterns {
			if re.MatchString(fc.Content) {
				leaked = fc.Path
				break
			}
		}
		if leaked != "" {
			break
		}
	}
	if leaked == "" {
		score += 4
		signals = append(signals, "no secret-like patterns in sampled files")
	} else {
		signals = append(signals, fmt.Sprintf("possible hardcoded secret in %s", leaked))
	}

	if snap.License != "" {
		score += 3
		signals = append(signals, fmt.Sprintf("has license (%s)", snap.License))
	} else {
		signals = append(signals, "no license declared")
	}

	return domain.DimensionScore{
		Score:    score,
		MaxScore: 10,
		Signals:  signals,
		Formula:  "lockfile(3) + secrets(4) + license(3)",
	}
}
