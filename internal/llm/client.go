package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "meta-llama/llama-4-scout-17b-16e-instruct"

	defaultTemperature = 1.3
	maxRetries         = 2
	requestTimeout     = 30 * time.Second
)

// ErrNotJSON is returned when the model answers with something that is not a
// JSON object.
var ErrNotJSON = errors.New("response is not a JSON object")

// Client talks to any OpenAI-compatible chat completions endpoint. Groq is the
// default.
type Client struct {
	client      openai.Client
	model       string
	temperature float64
}

// NewClient creates a client. An empty baseURL or model falls back to the Groq
// defaults.
func NewClient(apiKey, model, baseURL string) *Client {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(maxRetries),
			option.WithRequestTimeout(requestTimeout),
		),
		model:       model,
		temperature: defaultTemperature,
	}
}

// Complete sends a system and a user message, asks for a JSON object back and
// returns it after checking it is valid JSON.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(c.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("api error %d: %w", apiErr.StatusCode, err)
		}
		return "", fmt.Errorf("api call: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("empty response content")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if !strings.HasPrefix(content, "{") || !strings.HasSuffix(content, "}") || !json.Valid([]byte(content)) {
		return "", fmt.Errorf("%w: %s", ErrNotJSON, truncate(content, 100))
	}
	return content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
