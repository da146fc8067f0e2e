package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/dii/internal/util"
)

const (
	anthropicEndpoint = "https://api.anthropic.com"
	anthropicVersion  = "2023-06-01"
	anthropicModel    = "claude-3-5-haiku-latest"
)

// Anthropic narrates reports through the Messages API.
type Anthropic struct {
	endpoint string
	header   http.Header
	client   *http.Client
	cfg      Config
}

type anthropicMessages struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicReply struct {
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type anthropicError struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// NewAnthropic requires an API key.
func NewAnthropic(cfg Config) (*Anthropic, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("anthropic: api key is required (llm.api_key or ANTHROPIC_API_KEY)")
	}
	endpoint := strings.TrimRight(cfg.BaseURL, "/")
	if endpoint == "" {
		endpoint = anthropicEndpoint
	}
	h := http.Header{}
	h.Set("x-api-key", cfg.APIKey)
	h.Set("anthropic-version", anthropicVersion)
	return &Anthropic{
		endpoint: endpoint,
		header:   h,
		client:   util.NewHTTPClient(cfg.timeout(30*time.Second), util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)),
		cfg:      cfg,
	}, nil
}

func (a *Anthropic) Name() string { return "anthropic" }

// IsAvailable lists models, which checks the key without spending tokens.
func (a *Anthropic) IsAvailable(ctx context.Context) bool {
	var list struct {
		Data []json.RawMessage `json:"data"`
	}
	return a.call(ctx, http.MethodGet, "/v1/models", nil, &list) == nil
}

func (a *Anthropic) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	n, err := a.cfg.narrate(req, anthropicModel)
	if err != nil {
		return nil, err
	}

	var reply anthropicReply
	err = a.call(ctx, http.MethodPost, "/v1/messages", anthropicMessages{
		Model:       n.model,
		MaxTokens:   n.maxTokens,
		System:      systemPrompt,
		Messages:    []anthropicMessage{{Role: "user", Content: n.prompt}},
		Temperature: narrationTemperature,
	}, &reply)
	if err != nil {
		return nil, fmt.Errorf("anthropic messages: %w", err)
	}

	var text strings.Builder
	for _, block := range reply.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	summary := strings.TrimSpace(text.String())
	if summary == "" {
		return nil, fmt.Errorf("anthropic messages: no text in reply from %s", n.model)
	}
	return &SummarizeResponse{
		Summary:    summary,
		Model:      reply.Model,
		TokensUsed: reply.Usage.InputTokens + reply.Usage.OutputTokens,
	}, nil
}

func (a *Anthropic) call(ctx context.Context, method, path string, in, out any) error {
	return doJSON(ctx, a.client, method, a.endpoint+path, a.header, in, out, func(raw []byte) string {
		var e anthropicError
		if json.Unmarshal(raw, &e) == nil && e.Error.Message != "" {
			return e.Error.Type + ": " + e.Error.Message
		}
		return ""
	})
}
