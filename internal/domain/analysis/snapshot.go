package analysis

import (
	"path"
	"strings"
	"time"
)

// FileEntry is one blob in the repository tree.
type FileEntry struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// FileContent holds retrieved text content for a bounded set of files.
type FileContent struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Commit is one entry of the bounded commit log window.
type Commit struct {
	SHA     string    `json:"sha"`
	Author  string    `json:"author"`
	Message string    `json:"message"`
	When    time.Time `json:"when"`
}

// Snapshot is the immutable bundle of fetched repository data. Produced once
// per task by the fetcher and never mutated afterwards.
type Snapshot struct {
	Owner         string           `json:"owner"`
	Name          string           `json:"name"`
	URL           string           `json:"url"`
	Description   string           `json:"description"`
	DefaultBranch string           `json:"default_branch"`
	Stars         int              `json:"stars"`
	Forks         int              `json:"forks"`
	License       string           `json:"license,omitempty"`
	Readme        string           `json:"readme"`
	Languages     map[string]int64 `json:"languages"`
	Files         []FileEntry      `json:"files"`
	Contents      []FileContent    `json:"contents"`
	Commits       []Commit         `json:"commits"`
	FetchedAt     time.Time        `json:"fetched_at"`
}

func (s *Snapshot) FullName() string {
	return s.Owner + "/" + s.Name
}

// Empty reports whether the snapshot carries nothing worth scoring.
func (s *Snapshot) Empty() bool {
	return len(s.Files) == 0 && s.Readme == "" && len(s.Languages) == 0
}

// PrimaryLanguage returns the language with the most bytes, or "".
func (s *Snapshot) PrimaryLanguage() string {
	var best string
	var bestBytes int64 = -1
	for lang, bytes := range s.Languages {
		if bytes > bestBytes || (bytes == bestBytes && lang < best) {
			best, bestBytes = lang, bytes
		}
	}
	return best
}

// ClassifyLanguage maps a file path to a coarse language label by extension.
func ClassifyLanguage(p string) string {
	switch strings.ToLower(path.Ext(p)) {
	case ".go":
		return "Go"
	case ".py":
		return "Python"
	case ".js", ".jsx", ".mjs":
		return "JavaScript"
	case ".ts", ".tsx":
		return "TypeScript"
	case ".java":
		return "Java"
	case ".rb":
		return "Ruby"
	case ".rs":
		return "Rust"
	case ".c", ".h":
		return "C"
	case ".cpp", ".cc", ".hpp":
		return "C++"
	case ".cs":
		return "C#"
	case ".php":
		return "PHP"
	case ".kt", ".kts":
		return "Kotlin"
	case ".swift":
		return "Swift"
	case ".sh":
		return "Shell"
	case ".html", ".htm":
		return "HTML"
	case ".css", ".scss":
		return "CSS"
	default:
		return ""
	}
}
