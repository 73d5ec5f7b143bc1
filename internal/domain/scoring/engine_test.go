package scoring

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
)

var dimensionMax = map[domain.Dimension]int{
	domain.DimCodeQuality:   18,
	domain.DimArchitecture:  12,
	domain.DimDocumentation: 15,
	domain.DimTesting:       12,
	domain.DimSecurity:      10,
	domain.DimGitWorkflow:   13,
	domain.DimRealWorld:     12,
	domain.DimInnovation:    8,
}

func richSnapshot() *domain.Snapshot {
	readme := strings.Repeat("A mature web service with careful docs. ", 60) +
		"\n## Install\nRun make install.\n## Usage\nSee examples.\n"

	content := `package server

// Server handles requests.
// It keeps handlers small.
func Serve() {
	// start listening
	run()
}
`
	var commits []domain.Commit
	for i := 0; i < 40; i++ {
		commits = append(commits, domain.Commit{
			SHA:     fmt.Sprintf("%040d", i),
			Author:  "dev",
			Message: "feat: add incremental improvement to the request pipeline",
			When:    time.Now().Add(-time.Duration(i) * 24 * time.Hour),
		})
	}

	return &domain.Snapshot{
		Owner:         "acme",
		Name:          "webthing",
		URL:           "https://github.com/acme/webthing",
		Description:   "a web thing",
		DefaultBranch: "main",
		Stars:         240,
		Forks:         31,
		License:       "MIT License",
		Readme:        readme,
		Languages:     map[string]int64{"Go": 90000, "Shell": 500},
		Files: []domain.FileEntry{
			{Path: "cmd/api/main.go", Size: 900},
			{Path: "internal/server/server.go", Size: 2200},
			{Path: "internal/server/server_test.go", Size: 1800},
			{Path: "internal/store/store.go", Size: 1500},
			{Path: "internal/store/store_test.go", Size: 1100},
			{Path: "go.mod", Size: 300},
			{Path: "go.sum", Size: 4000},
			{Path: "Dockerfile", Size: 400},
			{Path: ".github/workflows/ci.yml", Size: 600},
			{Path: ".gitignore", Size: 100},
			{Path: "LICENSE", Size: 1000},
			{Path: "README.md", Size: 3000},
		},
		Contents: []domain.FileContent{
			{Path: "internal/server/server.go", Content: content},
			{Path: "internal/store/store.go", Content: content},
		},
		Commits:   commits,
		FetchedAt: time.Now(),
	}
}

func TestScoreProducesAllDimensions(t *testing.T) {
	res, err := NewEngine().Score(richSnapshot())
	require.NoError(t, err)

	assert.Equal(t, "acme/webthing", res.RepoName)
	assert.Equal(t, domain.TotalMaxScore, res.MaxScore)
	assert.Len(t, res.Dimensions, len(domain.Dimensions))

	sum := 0
	for dim, wantMax := range dimensionMax {
		ds, ok := res.Dimensions[dim]
		require.True(t, ok, "missing dimension %s", dim)
		assert.Equal(t, wantMax, ds.MaxScore, dim)
		assert.GreaterOrEqual(t, ds.Score, 0, dim)
		assert.LessOrEqual(t, ds.Score, ds.MaxScore, dim)
		assert.NotEmpty(t, ds.Signals, dim)
		assert.NotEmpty(t, ds.Formula, dim)
		sum += ds.Score
	}
	assert.Equal(t, sum, res.TotalScore)
	assert.LessOrEqual(t, res.TotalScore, domain.TotalMaxScore)
	assert.Zero(t, res.AnalyzedAt, "engine must not stamp wall-clock time")
}

func TestScoreIsDeterministic(t *testing.T) {
	snap := richSnapshot()
	eng := NewEngine()

	first, err := eng.Score(snap)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := eng.Score(snap)
		require.NoError(t, err)
		assert.True(t, reflect.DeepEqual(first, again), "run %d differed", i)
	}
}

func TestScoreEmptySnapshot(t *testing.T) {
	_, err := NewEngine().Score(nil)
	assert.Error(t, err)

	_, err = NewEngine().Score(&domain.Snapshot{Owner: "a", Name: "b"})
	assert.Error(t, err)
}

func TestScoreSparseSnapshot(t *testing.T) {
	// files but no contents, no commits, no readme: every dimension still
	// reports with explanatory signals instead of failing
	snap := &domain.Snapshot{
		Owner:     "acme",
		Name:      "bare",
		URL:       "https://github.com/acme/bare",
		Languages: map[string]int64{"Go": 100},
		Files:     []domain.FileEntry{{Path: "main.go", Size: 50}},
	}
	res, err := NewEngine().Score(snap)
	require.NoError(t, err)
	assert.Len(t, res.Dimensions, len(domain.Dimensions))

	cq := res.Dimensions[domain.DimCodeQuality]
	assert.Equal(t, 0, cq.Score)
	assert.Contains(t, cq.Signals[0], "no file contents")
}

func TestSkillLevel(t *testing.T) {
	cases := []struct {
		total int
		want  string
	}{
		{100, "Expert"},
		{86, "Expert"},
		{85, "Advanced"},
		{71, "Advanced"},
		{70, "Intermediate"},
		{41, "Intermediate"},
		{40, "Beginner"},
		{0, "Beginner"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SkillLevel(tc.total), "total=%d", tc.total)
	}
}

func TestPercentileMonotonicAndBounded(t *testing.T) {
	prev := -1
	for total := 0; total <= 100; total++ {
		p := Percentile(total)
		assert.GreaterOrEqual(t, p, prev, "total=%d", total)
		assert.GreaterOrEqual(t, p, 10)
		assert.LessOrEqual(t, p, 95)
		prev = p
	}
	assert.Equal(t, 95, Percentile(90))
	assert.Equal(t, 85, Percentile(80))
	assert.Equal(t, 10, Percentile(0))
}
