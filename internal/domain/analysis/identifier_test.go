package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoURL(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		want  RepoID
		valid bool
	}{
		{"canonical", "https://github.com/golang/go", RepoID{"golang", "go"}, true},
		{"no scheme", "github.com/golang/go", RepoID{"golang", "go"}, true},
		{"trailing slash", "https://github.com/golang/go/", RepoID{"golang", "go"}, true},
		{"git suffix", "https://github.com/golang/go.git", RepoID{"golang", "go"}, true},
		{"dots and dashes", "https://github.com/my-org/my.repo-name", RepoID{"my-org", "my.repo-name"}, true},
		{"surrounding whitespace", "  https://github.com/golang/go  ", RepoID{"golang", "go"}, true},
		{"empty", "", RepoID{}, false},
		{"not github", "https://gitlab.com/golang/go", RepoID{}, false},
		{"missing repo", "https://github.com/golang", RepoID{}, false},
		{"extra path", "https://github.com/golang/go/tree/master", RepoID{}, false},
		{"http scheme", "http://github.com/golang/go", RepoID{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := ParseRepoURL(tc.raw)
			if !tc.valid {
				require.Error(t, err)
				assert.Equal(t, KindInvalidArgument, KindOf(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, id)
		})
	}
}

func TestCacheKeyIsCaseInsensitive(t *testing.T) {
	a, err := ParseRepoURL("https://github.com/Golang/Go")
	require.NoError(t, err)
	b, err := ParseRepoURL("https://github.com/golang/go")
	require.NoError(t, err)
	assert.Equal(t, b.CacheKey(), a.CacheKey())
	assert.Equal(t, "golang/go", a.CacheKey())
}

func TestRepoIDURL(t *testing.T) {
	id := RepoID{Owner: "golang", Name: "go"}
	assert.Equal(t, "https://github.com/golang/go", id.URL())
	assert.Equal(t, "golang/go", id.String())
}
