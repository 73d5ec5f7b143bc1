package scoring

import (
	"path"
	"regexp"
	"strings"
	"time"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

// recentWindow bounds what counts as recent commit activity.
const recentWindow = 30 * 24 * time.Hour

func isSourceFile(p string) bool {
	return domain.ClassifyLanguage(p) != ""
}

var testPathPattern = regexp.MustCompile(`(?i)(^|/)(tests?|spec|__tests__)(/|$)|(_test\.\w+$)|(\.test\.\w+$)|(\.spec\.\w+$)|((^|/)test_[^/]+$)`)

func isTestFile(p string) bool {
	return isSourceFile(p) && testPathPattern.MatchString(p)
}

var ciPaths = []string{
	".github/workflows/",
	".gitlab-ci.yml",
	".circleci/",
	".travis.yml",
	"jenkinsfile",
	"azure-pipelines.yml",
}

func hasCIConfig(files []domain.FileEntry) (bool, string) {
	for _, f := range files {
		lower := strings.ToLower(f.Path)
		for _, ci := range ciPaths {
			if strings.HasPrefix(lower, ci) || lower == strings.TrimSuffix(ci, "/") {
				return true, f.Path
			}
		}
	}
	return false, ""
}

func topLevelDirs(files []domain.FileEntry) []string {
	seen := map[string]bool{}
	var dirs []string
	for _, f := range files {
		if i := strings.IndexByte(f.Path, '/'); i > 0 {
			d := f.Path[:i]
			if !seen[d] {
				seen[d] = true
				dirs = append(dirs, d)
			}
		}
	}
	return dirs
}

func containsAny(text string, keywords []string) []string {
	lower := strings.ToLower(text)
	var found []string
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			found = append(found, kw)
		}
	}
	return found
}

func hasFile(files []domain.FileEntry, names ...string) (bool, string) {
	for _, f := range files {
		base := strings.ToLower(path.Base(f.Path))
		for _, n := range names {
			if base == n {
				return true, f.Path
			}
		}
	}
	return false, ""
}

// commentRatio measures comment lines against non-blank lines over the
// retrieved contents. Counts //, #, *, -- and /* prefixes.
func commentRatio(contents []domain.FileContent) (float64, int) {
	comments, code := 0, 0
	for _, fc := range contents {
		for _, line := range strings.Split(fc.Content, "\n") {
			t := strings.TrimSpace(line)
			if t == "" {
				continue
			}
			if strings.HasPrefix(t, "//") || strings.HasPrefix(t, "#") ||
				strings.HasPrefix(t, "*") || strings.HasPrefix(t, "/*") ||
				strings.HasPrefix(t, "--") {
				comments++
			} else {
				code++
			}
		}
	}
	total := comments + code
	if total == 0 {
		return 0, 0
	}
	return float64(comments) / float64(total), total
}

func avgLinesPerFile(contents []domain.FileContent) int {
	if len(contents) == 0 {
		return 0
	}
	lines := 0
	for _, fc := range contents {
		lines += strings.Count(fc.Content, "\n") + 1
	}
	return lines / len(contents)
}

// maxIndentDepth is a cheap nesting proxy: deepest leading indentation seen,
// counting a tab or four spaces as one level.
func maxIndentDepth(contents []domain.FileContent) int {
	max := 0
	for _, fc := range contents {
		for _, line := range strings.Split(fc.Content, "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if d := indentDepth(line); d > max {
				max = d
			}
		}
	}
	return max
}

func indentDepth(line string) int {
	depth := 0
	for {
		switch {
		case strings.HasPrefix(line, "\t"):
			line = line[1:]
		case strings.HasPrefix(line, "    "):
			line = line[4:]
		default:
			return depth
		}
		depth++
	}
}

var conventionalPattern = regexp.MustCompile(`^(feat|fix|docs|chore|refactor|test|ci|build|perf|style|revert)(\(.+\))?!?:`)

func conventionalCommitRatio(commits []domain.Commit) float64 {
	if len(commits) == 0 {
		return 0
	}
	n := 0
	for _, c := range commits {
		if conventionalPattern.MatchString(strings.ToLower(c.Message)) {
			n++
		}
	}
	return float64(n) / float64(len(commits))
}

func avgMessageLength(commits []domain.Commit) int {
	if len(commits) == 0 {
		return 0
	}
	total := 0
	for _, c := range commits {
		first := c.Message
		if i := strings.IndexByte(first, '\n'); i >= 0 {
			first = first[:i]
		}
		total += len(first)
	}
	return total / len(commits)
}

func recentCommits(commits []domain.Commit, now time.Time) int {
	n := 0
	for _, c := range commits {
		if now.Sub(c.When) <= recentWindow {
			n++
		}
	}
	return n
}
