package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/ppiankov/dii/internal/util"
)

// narrationSeed pins sampling so repeated runs over one report read alike.
const narrationSeed = 42

// OpenAI narrates reports through the Chat Completions API. BaseURL points
// it at any compatible gateway.
type OpenAI struct {
	client *openai.Client
	cfg    Config
}

// NewOpenAI requires an API key.
func NewOpenAI(cfg Config) (*OpenAI, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("openai: api key is required (llm.api_key or OPENAI_API_KEY)")
	}

	cc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		cc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	if cfg.HTTPProxy != "" || cfg.HTTPSProxy != "" {
		cc.HTTPClient = util.NewHTTPClient(0, util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy))
	}
	return &OpenAI{client: openai.NewClientWithConfig(cc), cfg: cfg}, nil
}

func (o *OpenAI) Name() string { return "openai" }

// IsAvailable checks the key against the configured model, or the model
// list when none is set.
func (o *OpenAI) IsAvailable(ctx context.Context) bool {
	if o.cfg.Model != "" {
		_, err := o.client.GetModel(ctx, o.cfg.Model)
		return err == nil
	}
	_, err := o.client.ListModels(ctx)
	return err == nil
}

func (o *OpenAI) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	n, err := o.cfg.narrate(req, openai.GPT4oMini)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.cfg.timeout(30*time.Second))
	defer cancel()

	seed := narrationSeed
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: n.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: n.prompt},
		},
		MaxTokens:   n.maxTokens,
		Temperature: narrationTemperature,
		Seed:        &seed,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("openai chat (%d %s): %s", apiErr.HTTPStatusCode, apiErr.Type, apiErr.Message)
		}
		return nil, fmt.Errorf("openai chat: %w", err)
	}

	for _, choice := range resp.Choices {
		if text := strings.TrimSpace(choice.Message.Content); text != "" {
			return &SummarizeResponse{Summary: text, Model: resp.Model, TokensUsed: resp.Usage.TotalTokens}, nil
		}
	}
	return nil, fmt.Errorf("openai chat: no narrative in %d choices", len(resp.Choices))
}
