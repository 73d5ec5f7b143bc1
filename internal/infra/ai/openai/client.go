// Package openai implements the insight generator's primary path with key
// rotation through the credential rotator.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domain "github.com/bryanwahyu/gitgrade/internal/domain/analysis"
	"github.com/bryanwahyu/gitgrade/internal/domain/credentials"
	"github.com/bryanwahyu/gitgrade/internal/infra/ai/prompt"
)

const maxTokens = 2048

const defaultModel = "gpt-4o-mini"

type Client struct {
	rotator *credentials.Rotator
	model   string
	timeout time.Duration
}

func NewClient(rotator *credentials.Rotator, model string, timeout time.Duration) *Client {
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{rotator: rotator, model: model, timeout: timeout}
}

// Available reports whether at least one API key is still usable.
func (c *Client) Available() bool {
	return c.rotator != nil && c.rotator.Remaining() > 0
}

// Generate builds the prompt deterministically from the scored result, calls
// the chat API with a bounded timeout and parses the structured response.
// Quota and auth errors invalidate the current key and rotate to the next.
func (c *Client) Generate(ctx context.Context, res *domain.ScoredResult) (domain.Insight, error) {
	var lastErr error
	for attempt := 0; attempt < c.rotator.Size(); attempt++ {
		cred, err := c.rotator.Acquire()
		if err != nil {
			return domain.Insight{}, fmt.Errorf("insight primary path: %w", err)
		}

		ins, err := c.generateOnce(ctx, cred.Secret, res)
		if err == nil {
			return ins, nil
		}
		lastErr = err

		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.HTTPStatusCode {
			case http.StatusTooManyRequests:
				c.rotator.ReportFailure(cred, credentials.ErrQuotaExhausted)
				continue
			case http.StatusUnauthorized, http.StatusForbidden:
				c.rotator.ReportFailure(cred, credentials.ErrUnauthorized)
				continue
			}
		}
		// timeouts and malformed responses are not the key's fault
		c.rotator.ReportFailure(cred, err)
		return domain.Insight{}, err
	}
	return domain.Insight{}, lastErr
}

func (c *Client) generateOnce(ctx context.Context, apiKey string, res *domain.ScoredResult) (domain.Insight, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cli := openai.NewClient(apiKey)
	req := openai.ChatCompletionRequest{
		Model: c.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt.GetSystemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: prompt.GetUserPrompt(res)},
		},
	}
	// For reasoning models (o1/o3/o4/gpt-5*) use MaxCompletionTokens instead of MaxTokens
	if strings.HasPrefix(c.model, "o1") || strings.HasPrefix(c.model, "o3") || strings.HasPrefix(c.model, "o4") || strings.HasPrefix(c.model, "gpt-5") {
		req.MaxCompletionTokens = maxTokens
	} else {
		req.MaxTokens = maxTokens
	}

	resp, err := cli.CreateChatCompletion(ctx, req)
	if err != nil {
		return domain.Insight{}, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.Insight{}, fmt.Errorf("empty chat completion response")
	}
	return parseInsight(resp.Choices[0].Message.Content)
}

func parseInsight(raw string) (domain.Insight, error) {
	var out struct {
		Summary string `json:"summary"`
		Roadmap []struct {
			Item   string `json:"item"`
			Reason string `json:"reason"`
		} `json:"roadmap"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return domain.Insight{}, fmt.Errorf("malformed insight response: %w", err)
	}
	if out.Summary == "" || len(out.Roadmap) == 0 {
		return domain.Insight{}, fmt.Errorf("incomplete insight response")
	}
	ins := domain.Insight{Summary: out.Summary, GeneratedBy: domain.GeneratedByAI}
	for _, r := range out.Roadmap {
		ins.Roadmap = append(ins.Roadmap, domain.RoadmapItem{Item: r.Item, Reason: r.Reason})
	}
	return ins, nil
}
