package analysis

import (
	"fmt"
	"regexp"
	"strings"
)

// RepoID is the normalized repository identifier (owner + name).
type RepoID struct {
	Owner string
	Name  string
}

var repoURLPattern = regexp.MustCompile(`^(?:https://)?github\.com/([\w-]+)/([\w.-]+?)(?:\.git)?/?$`)

// ParseRepoURL validates a GitHub repository URL and extracts owner/name.
// Accepted format: https://github.com/owner/repository
func ParseRepoURL(raw string) (RepoID, error) {
	raw = strings.TrimSpace(raw)
	m := repoURLPattern.FindStringSubmatch(raw)
	if m == nil {
		return RepoID{}, InvalidArgument("invalid GitHub URL %q (expected https://github.com/owner/repository)", raw)
	}
	return RepoID{Owner: m[1], Name: m[2]}, nil
}

func (id RepoID) String() string {
	return id.Owner + "/" + id.Name
}

func (id RepoID) URL() string {
	return fmt.Sprintf("https://github.com/%s/%s", id.Owner, id.Name)
}

// CacheKey lower-cases the identifier; GitHub treats owner and repository
// names case-insensitively, so the cache must too.
func (id RepoID) CacheKey() string {
	return strings.ToLower(id.String())
}
