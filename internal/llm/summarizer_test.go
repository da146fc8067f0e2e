package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/dii/internal/model"
)

// MockProvider implements the Provider interface for testing
type MockProvider struct {
	name      string
	available bool
	response  *SummarizeResponse
	err       error
	got       SummarizeRequest
}

func (m *MockProvider) Name() string {
	return m.name
}

func (m *MockProvider) Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error) {
	m.got = req
	if m.err != nil {
		return nil, m.err
	}
	return m.response, nil
}

func (m *MockProvider) IsAvailable(ctx context.Context) bool {
	return m.available
}

func testReport() model.Report {
	var contributions [model.DimensionCount]model.DimensionContribution
	for i, d := range model.AllDimensions() {
		contributions[i] = model.DimensionContribution{Dimension: d, Score: float64(i + 3)}
	}
	return model.Report{
		Subject:        "Acme Retail",
		Classification: model.Classification{Name: "Supply Chain", Confidence: 0.72},
		Responses: []model.DimensionResponse{
			{Dimension: model.AER, Value: 1200000, Score: 4},
		},
		Composite: model.CompositeScore{
			Score:         3.4,
			Percentile:    25,
			Confidence:    64,
			RealAnswers:   1,
			Stage:         model.StageFragile,
			Contributions: contributions,
		},
		Interpretation: model.Interpretation{
			Headline:         "Fragile operations",
			DowntimeHours:    36,
			RevenueAtRiskPct: 18.5,
			Vulnerabilities:  []string{"Recovery Gap"},
			Recommendations:  []string{"Test restores quarterly"},
		},
	}
}

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if summarizer.provider != nil {
		t.Error("Expected provider to be nil when disabled")
	}
	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "palm"}); err == nil {
		t.Fatal("Expected error for unsupported provider")
	}
}

func TestSummarizer_GenerateSummary_Disabled(t *testing.T) {
	summarizer := &Summarizer{}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error when disabled, got %v", err)
	}
	if summary != nil {
		t.Error("Expected nil summary when provider disabled")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{name: "test-provider", available: false},
		config:   Config{StrictFigures: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Expected warning about unavailability, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	mock := &MockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    "Acme Retail scores 3.4 (25th percentile) and could lose $1.2M per incident with 36 hours of downtime.",
			Model:      "test-model",
			TokensUsed: 150,
		},
	}
	summarizer := &Summarizer{
		provider: mock,
		config:   Config{Model: "test-model", StrictFigures: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if !summary.Enabled {
		t.Error("Expected summary to be enabled")
	}
	if summary.Provider != "test-provider" || summary.Model != "test-model" {
		t.Errorf("Unexpected provider/model %s/%s", summary.Provider, summary.Model)
	}
	if !summary.StrictFigures {
		t.Error("Expected strict figures mode to be enabled")
	}
	if !strings.HasPrefix(summary.SummaryMD, "Acme Retail scores 3.4") {
		t.Errorf("Unexpected summary text %q", summary.SummaryMD)
	}
	if len(mock.got.Figures) == 0 {
		t.Error("Expected figures allowlist to be passed to the provider")
	}

	foundTokens, foundVerified := false, false
	for _, w := range summary.Warnings {
		if strings.Contains(w, "Tokens used") {
			foundTokens = true
		}
		if strings.Contains(w, "Verified 4 quoted figures") {
			foundVerified = true
		}
	}
	if !foundTokens || !foundVerified {
		t.Errorf("Expected token and verification notes, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_RejectsInventedFigures(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{
			name:      "test-provider",
			available: true,
			response:  &SummarizeResponse{Summary: "Acme scores 3.4 but would reach 7.9 with one fix."},
		},
		config: Config{StrictFigures: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summary.SummaryMD != "" {
		t.Error("Rejected narrative must not be kept")
	}
	if len(summary.Warnings) == 0 || !strings.Contains(summary.Warnings[0], "FIGURE LEAK") {
		t.Errorf("Expected figure leak warning, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	summarizer := &Summarizer{
		provider: &MockProvider{
			name:      "test-provider",
			available: true,
			err:       &mockError{msg: "API rate limit exceeded"},
		},
		config: Config{Model: "test-model", StrictFigures: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error (graceful degradation), got %v", err)
	}
	if summary == nil || !summary.Enabled {
		t.Fatal("Expected enabled summary with error warning")
	}

	found := false
	for _, w := range summary.Warnings {
		if strings.Contains(w, "failed") && strings.Contains(w, "rate limit") {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
}

func TestRenderSeparateMarkdown_Disabled(t *testing.T) {
	if md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}); md != "" {
		t.Error("Expected empty markdown when disabled")
	}
	if md := RenderSeparateMarkdown(nil); md != "" {
		t.Error("Expected empty markdown when nil")
	}
}

func TestRenderSeparateMarkdown_Success(t *testing.T) {
	summary := &model.LLMSummary{
		Enabled:       true,
		Provider:      "openai",
		Model:         "gpt-4o-mini",
		StrictFigures: true,
		SummaryMD:     "This is the generated summary content.",
		Warnings:      []string{"Tokens used: 150"},
	}

	md := RenderSeparateMarkdown(summary)

	for _, section := range []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"determined independently",
		"openai",
		"gpt-4o-mini",
		"Strict Figures Mode:** true",
		"This is the generated summary content.",
		"## Notes",
		"Tokens used: 150",
	} {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain '%s'", section)
		}
	}
}

func TestRenderSeparateMarkdown_NoSummary(t *testing.T) {
	md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "test-provider"})
	if !strings.Contains(md, "No summary generated") {
		t.Error("Expected message about no summary")
	}
}

func TestBuildPrompt_BasicStructure(t *testing.T) {
	report := testReport()
	prompt := BuildPrompt(report, Figures(report))

	for _, element := range []string{
		"CRITICAL RULES",
		"MUST ONLY quote numbers from this allowed list",
		"Digital Immunity Index (0-10): 3.4",
		"Percentile among peers: 25",
		"Attack Economics Ratio score",
		"Organization: Acme Retail",
		"Business model: Supply Chain",
		"Answered dimensions: 1 of 5",
		"Recovery Gap",
		"Test restores quarterly",
	} {
		if !strings.Contains(prompt, element) {
			t.Errorf("Expected prompt to contain '%s'", element)
		}
	}
}

func TestBuildPrompt_NoFigures(t *testing.T) {
	prompt := BuildPrompt(model.Report{Subject: "Empty"}, nil)
	if !strings.Contains(prompt, "No figures available") {
		t.Error("Expected message about no figures")
	}
}

func TestJoinFigures_Truncates(t *testing.T) {
	figures := make([]Figure, maxPromptFigures+5)
	for i := range figures {
		figures[i] = Figure{Label: "f", Value: float64(100 + i)}
	}
	if got := joinFigures(figures); !strings.Contains(got, "and 5 more figures") {
		t.Errorf("Expected truncation message, got %q", got)
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Provider != "" {
		t.Errorf("Expected provider to be empty (disabled), got '%s'", config.Provider)
	}
	if !config.StrictFigures {
		t.Error("Expected strict figures to be enabled by default")
	}
	if config.Timeout <= 0 || config.MaxTokens <= 0 {
		t.Error("Expected positive timeout and max tokens")
	}
}

func TestSummarizer_ProviderName(t *testing.T) {
	enabled := &Summarizer{provider: &MockProvider{name: "test-provider"}}
	if !enabled.IsEnabled() || enabled.ProviderName() != "test-provider" {
		t.Errorf("Expected enabled provider 'test-provider', got '%s'", enabled.ProviderName())
	}

	var nilSummarizer *Summarizer
	if nilSummarizer.IsEnabled() {
		t.Error("Nil summarizer must be disabled")
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(
		model.LLMConfig{Provider: "ollama", Model: "llama3.1", Timeout: 10, MaxTokens: 500},
		model.HTTPConfig{HTTPSProxy: "http://proxy:3128"},
	)
	if !cfg.StrictFigures {
		t.Error("Strict figures must always be on")
	}
	if cfg.Provider != "ollama" || cfg.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("Unexpected config %+v", cfg)
	}
}

// Mock error type for testing
type mockError struct {
	msg string
}

func (e *mockError) Error() string {
	return e.msg
}
