package openai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/domain/credentials"
)

func TestParseInsight(t *testing.T) {
	raw := `{"summary": "great repo", "roadmap": [{"item": "add tests", "reason": "coverage is low"}]}`

	ins, err := parseInsight(raw)
	require.NoError(t, err)
	assert.Equal(t, "great repo", ins.Summary)
	assert.Equal(t, domain.GeneratedByAI, ins.GeneratedBy)
	require.Len(t, ins.Roadmap, 1)
	assert.Equal(t, "add tests", ins.Roadmap[0].Item)
	assert.Equal(t, "coverage is low", ins.Roadmap[0].Reason)
}

func TestParseInsightRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":      "here is your analysis: great repo",
		"empty object":  `{}`,
		"no roadmap":    `{"summary": "great"}`,
		"no summary":    `{"roadmap": [{"item": "x", "reason": "y"}]}`,
		"empty roadmap": `{"summary": "great", "roadmap": []}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseInsight(raw)
			assert.Error(t, err)
		})
	}
}

func TestAvailable(t *testing.T) {
	c := NewClient(credentials.NewRotator("openai", []string{"k1"}), "", 0)
	assert.True(t, c.Available())

	cred, err := c.rotator.Acquire()
	require.NoError(t, err)
	c.rotator.ReportFailure(cred, credentials.ErrQuotaExhausted)
	assert.False(t, c.Available())
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(credentials.NewRotator("openai", []string{"k"}), "", 0)
	assert.Equal(t, defaultModel, c.model)
	assert.NotZero(t, c.timeout)
}
