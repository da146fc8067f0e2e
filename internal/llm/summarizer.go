package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/dii/internal/model"
)

// Summarizer adds an optional narrative to finished reports. The narrative
// is generated after scoring and never feeds back into it.
type Summarizer struct {
	provider Provider
	config   Config
}

// NewSummarizer creates a summarizer; an empty provider disables it.
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{provider: provider, config: config}, nil
}

// IsEnabled reports whether a provider is configured.
func (s *Summarizer) IsEnabled() bool {
	return s != nil && s.provider != nil
}

// ProviderName returns the configured provider name, or "".
func (s *Summarizer) ProviderName() string {
	if !s.IsEnabled() {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary returns nil when disabled. Provider failures come back as
// warnings on the summary so the assessment itself never fails.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if !s.IsEnabled() {
		return nil, nil
	}

	summary := &model.LLMSummary{
		Provider:      s.provider.Name(),
		Model:         s.config.Model,
		StrictFigures: s.config.StrictFigures,
	}

	if !s.provider.IsAvailable(ctx) {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("LLM provider %s is not available", s.provider.Name()))
		return summary, nil
	}
	summary.Enabled = true

	figures := Figures(report)
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:    report,
		Figures:   figures,
		Model:     s.config.Model,
		MaxTokens: s.config.MaxTokens,
	})
	if err != nil {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Narrative generation failed: %v", err))
		return summary, nil
	}

	if s.config.StrictFigures {
		cited, err := verifyFigures(resp.Summary, figures)
		if err != nil {
			summary.Warnings = append(summary.Warnings, fmt.Sprintf("Narrative rejected: %v", err))
			return summary, nil
		}
		resp.CitedFigures = cited
	}

	if resp.Model != "" {
		summary.Model = resp.Model
	}
	summary.SummaryMD = resp.Summary
	summary.Warnings = append(summary.Warnings, fmt.Sprintf("Tokens used: %d", resp.TokensUsed))
	if s.config.StrictFigures {
		summary.Warnings = append(summary.Warnings, fmt.Sprintf("Verified %d quoted figures against the report", len(resp.CitedFigures)))
	}
	return summary, nil
}

// RenderSeparateMarkdown renders the narrative as its own markdown file.
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT.** The Digital Immunity Index and every dimension score were determined independently of this narrative.\n\n")
	fmt.Fprintf(&b, "- **Provider:** %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", summary.Model)
	}
	fmt.Fprintf(&b, "- **Strict Figures Mode:** %t\n\n", summary.StrictFigures)

	if summary.SummaryMD == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}
