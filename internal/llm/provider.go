package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/dii/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize writes a narrative for the report in strict figures mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the finished assessment to narrate
	Report model.Report

	// Figures is the STRICT allowlist of numbers the narrative may quote.
	// Anything else is an invented number and rejects the response.
	Figures []Figure

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	// Summary is the generated summary text
	Summary string

	// CitedFigures are the numbers the narrative quoted (for verification)
	CitedFigures []float64

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// StrictFigures rejects narratives that quote numbers absent from the report
	StrictFigures bool

	// MaxTokens for response generation
	MaxTokens int

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:      "", // Disabled by default
		Timeout:       30,
		StrictFigures: true,
		MaxTokens:     800,
	}
}

// narrationTemperature keeps the narrative close to the supplied figures.
const narrationTemperature = 0.2

// narration is a request with every default filled in.
type narration struct {
	prompt    string
	model     string
	maxTokens int
}

// narrate fills prompt, model and token defaults for req. fallbackModel is
// used when neither the request nor the config names a model; an empty
// fallback makes the model mandatory.
func (c Config) narrate(req SummarizeRequest, fallbackModel string) (narration, error) {
	n := narration{prompt: req.Prompt, model: req.Model, maxTokens: req.MaxTokens}
	if n.prompt == "" {
		n.prompt = BuildPrompt(req.Report, req.Figures)
	}
	for _, m := range []string{c.Model, fallbackModel} {
		if n.model == "" {
			n.model = m
		}
	}
	if n.model == "" {
		return n, ErrNoModel
	}
	if n.maxTokens <= 0 {
		n.maxTokens = c.MaxTokens
	}
	if n.maxTokens <= 0 {
		n.maxTokens = DefaultConfig().MaxTokens
	}
	return n, nil
}

// timeout returns the configured request timeout or def.
func (c Config) timeout(def time.Duration) time.Duration {
	if c.Timeout > 0 {
		return time.Duration(c.Timeout) * time.Second
	}
	return def
}

// ErrNoModel is returned when a provider needs an explicit model name.
var ErrNoModel = errors.New("llm model must be specified")

const systemPrompt = "You explain digital immunity assessments to business leaders. You never invent numbers and never change a computed score."

// BuildPrompt constructs the default prompt with the figures allowlist
func BuildPrompt(report model.Report, figures []Figure) string {
	var b strings.Builder

	fmt.Fprintf(&b, `You are writing a short narrative for a Digital Immunity assessment. The score was computed deterministically; you explain it, you do not re-evaluate it.

CRITICAL RULES:
1. You MUST ONLY quote numbers from this allowed list:
%s

2. DO NOT estimate, extrapolate or introduce any other figure.
3. If information is missing, say so explicitly.
4. Refer to dimensions by their full names, not their tags.
5. Never promise that a recommendation will reach a particular score.

Assessment:
- Organization: %s
- Business model: %s
- Answered dimensions: %d of %d
`, joinFigures(figures), report.Subject, report.Classification.Name, report.Composite.RealAnswers, model.DimensionCount)

	fmt.Fprintf(&b, "- Stage: %s\n", report.Composite.Stage)
	if report.Interpretation.Headline != "" {
		fmt.Fprintf(&b, "- Headline: %s\n", report.Interpretation.Headline)
	}

	if len(report.Interpretation.Vulnerabilities) > 0 {
		b.WriteString("\nVulnerabilities:\n")
		for i, v := range report.Interpretation.Vulnerabilities {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", v)
		}
	}

	if len(report.Interpretation.Recommendations) > 0 {
		b.WriteString("\nRecommendations:\n")
		for i, r := range report.Interpretation.Recommendations {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	b.WriteString("\nWrite 4-6 sentences for an executive audience: the overall position, the weakest dimension and the first step to take.")
	return b.String()
}

func joinFigures(figures []Figure) string {
	if len(figures) == 0 {
		return "(No figures available)"
	}
	var b strings.Builder
	for i, f := range figures {
		if i >= maxPromptFigures {
			fmt.Fprintf(&b, "\n... and %d more figures", len(figures)-maxPromptFigures)
			break
		}
		fmt.Fprintf(&b, "\n- %s: %s", f.Label, f.Text())
	}
	return b.String()
}
