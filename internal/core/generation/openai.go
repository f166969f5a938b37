package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mediflash/config"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// BackendOptions configures OpenAIBackend. Nothing is read from the environment.
type BackendOptions struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string         `json:"model"`
	Messages            []chatMessage  `json:"messages"`
	Temperature         float64        `json:"temperature"`
	MaxCompletionTokens int            `json:"max_completion_tokens,omitempty"`
	ResponseFormat      responseFormat `json:"response_format"`
}

type chatChoice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
}

var ErrEmptyReply = errors.New("backend returned no content")

// OpenAIBackend calls an OpenAI compatible chat completions endpoint in JSON mode.
type OpenAIBackend struct {
	client openai.Client
	opts   BackendOptions
}

// NewOpenAIBackend builds a client from opts. Automatic retries are disabled;
// a failed call costs only its chunk.
func NewOpenAIBackend(opts BackendOptions) (*OpenAIBackend, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("%v: api key is required", config.ModuleOpenAI)
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, fmt.Errorf("%v: model is required", config.ModuleOpenAI)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
	}
	if opts.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(opts.BaseURL))
	}
	if opts.Timeout > 0 {
		reqOpts = append(reqOpts, option.WithRequestTimeout(opts.Timeout))
	}

	return &OpenAIBackend{
		client: openai.NewClient(reqOpts...),
		opts:   opts,
	}, nil
}

func (b *OpenAIBackend) Generate(ctx context.Context, prompt Prompt, cardCount int) (string, error) {
	req := chatRequest{
		Model:               b.opts.Model,
		Temperature:         b.opts.Temperature,
		MaxCompletionTokens: b.opts.MaxOutputTokens,
		ResponseFormat:      responseFormat{Type: "json_object"},
		Messages: []chatMessage{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
	}

	var out chatResponse
	if err := b.client.Post(ctx, "chat/completions", req, &out); err != nil {
		return "", fmt.Errorf("%v: chat completion for %d cards: %w", config.ModuleOpenAI, cardCount, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%v: %w: no choices", config.ModuleOpenAI, ErrEmptyReply)
	}
	content := strings.TrimSpace(out.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%v: %w: finish reason %q", config.ModuleOpenAI, ErrEmptyReply, out.Choices[0].FinishReason)
	}
	return content, nil
}
