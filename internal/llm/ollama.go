package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ppiankov/dii/internal/util"
)

const ollamaDefaultEndpoint = "http://localhost:11434"

// Ollama narrates reports with a locally served model through the chat API.
type Ollama struct {
	endpoint string
	client   *http.Client
	cfg      Config
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChat struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  map[string]any  `json:"options,omitempty"`
}

type ollamaReply struct {
	Model           string        `json:"model"`
	Message         ollamaMessage `json:"message"`
	Done            bool          `json:"done"`
	PromptEvalCount int           `json:"prompt_eval_count"`
	EvalCount       int           `json:"eval_count"`
	Error           string        `json:"error"`
}

type ollamaTags struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// NewOllama builds a provider for cfg.BaseURL, or the local default.
func NewOllama(cfg Config) *Ollama {
	endpoint := strings.TrimRight(cfg.BaseURL, "/")
	if endpoint == "" {
		endpoint = ollamaDefaultEndpoint
	}
	// Local models load slowly on first use.
	timeout := cfg.timeout(90 * time.Second)
	return &Ollama{
		endpoint: endpoint,
		client:   util.NewHTTPClient(timeout, util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy)),
		cfg:      cfg,
	}
}

func (o *Ollama) Name() string { return "ollama" }

// IsAvailable asks the server for its local models. When a model is
// configured it must be among them.
func (o *Ollama) IsAvailable(ctx context.Context) bool {
	var tags ollamaTags
	if err := o.call(ctx, http.MethodGet, "/api/tags", nil, &tags); err != nil {
		return false
	}
	if o.cfg.Model == "" {
		return true
	}
	for _, m := range tags.Models {
		if m.Name == o.cfg.Model || strings.TrimSuffix(m.Name, ":latest") == o.cfg.Model {
			return true
		}
	}
	return false
}

// Summarize sends a single non-streaming chat turn.
func (o *Ollama) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	n, err := o.cfg.narrate(req, "")
	if err != nil {
		return nil, fmt.Errorf("ollama: %w (e.g. llama3.1:8b)", err)
	}

	chat := ollamaChat{
		Model: n.model,
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: n.prompt},
		},
		Options: map[string]any{
			"temperature": narrationTemperature,
			"num_predict": n.maxTokens,
		},
	}

	var reply ollamaReply
	if err := o.call(ctx, http.MethodPost, "/api/chat", chat, &reply); err != nil {
		return nil, fmt.Errorf("ollama chat: %w", err)
	}

	text := strings.TrimSpace(reply.Message.Content)
	if text == "" {
		return nil, fmt.Errorf("ollama chat: empty reply from %s", n.model)
	}
	used := reply.PromptEvalCount + reply.EvalCount
	if used == 0 {
		// Some models omit counts; estimate at four characters a token.
		used = (len(n.prompt) + len(text)) / 4
	}
	return &SummarizeResponse{Summary: text, Model: reply.Model, TokensUsed: used}, nil
}

func (o *Ollama) call(ctx context.Context, method, path string, in, out any) error {
	return doJSON(ctx, o.client, method, o.endpoint+path, nil, in, out, func(raw []byte) string {
		var reply ollamaReply
		if json.Unmarshal(raw, &reply) == nil {
			return reply.Error
		}
		return ""
	})
}
