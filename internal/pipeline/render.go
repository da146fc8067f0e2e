package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/llm"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/orchestrate"
)

// Renderer writes reports as JSON and Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the human readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes an already rendered narrative file
func (r *Renderer) RenderLLMMarkdown(content, path string) error {
	return writeFile(path, []byte(content))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Markdown renders the report body.
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	c := report.Composite
	in := report.Interpretation

	fmt.Fprintf(&b, "# Digital Immunity Report: %s\n\n", report.Subject)
	if report.SourceURL != "" {
		fmt.Fprintf(&b, "**Website:** %s\n", report.SourceURL)
	}
	fmt.Fprintf(&b, "**Assessed:** %s\n\n", report.AssessedAt.Format("2006-01-02 15:04 MST"))

	b.WriteString("## Score\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Digital Immunity Index | %.1f / 10 |\n", c.Score)
	fmt.Fprintf(&b, "| Stage | %s |\n", c.Stage)
	fmt.Fprintf(&b, "| Peer percentile | %d |\n", c.Percentile)
	fmt.Fprintf(&b, "| Confidence | %d%% (%d of %d answered) |\n", c.Confidence, c.RealAnswers, model.DimensionCount)
	if c.Trend != "" {
		fmt.Fprintf(&b, "| Trend | %s |\n", c.Trend)
	}
	fmt.Fprintf(&b, "| Operational risk | %s |\n\n", in.OperationalRisk)
	if in.Headline != "" {
		fmt.Fprintf(&b, "> %s\n\n", in.Headline)
	}

	cls := report.Classification
	b.WriteString("## Business Model\n\n")
	fmt.Fprintf(&b, "**%s** (confidence %.0f%%)\n\n", cls.Name, cls.Confidence*100)
	if cls.Reasoning != "" {
		fmt.Fprintf(&b, "%s\n\n", cls.Reasoning)
	}
	if len(cls.Alternatives) > 0 {
		b.WriteString("Alternatives: ")
		for i, alt := range cls.Alternatives {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s (%.0f%%)", alt.Name, alt.Confidence*100)
		}
		b.WriteString("\n\n")
	}

	b.WriteString("## Dimensions\n\n")
	b.WriteString("| Dimension | Answer | Score | Source |\n|---|---|---|---|\n")
	answered := make(map[model.Dimension]model.DimensionResponse, len(report.Responses))
	for _, resp := range report.Responses {
		answered[resp.Dimension] = resp
	}
	for _, contrib := range c.Contributions {
		d := contrib.Dimension
		answer, source := "-", "estimated"
		if resp, ok := answered[d]; ok {
			answer = FormatMetric(d, resp.Value)
			source = "answered"
			if resp.Inferred {
				source = "inferred"
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %.1f | %s |\n", d.Name(), answer, contrib.Score, source)
	}
	b.WriteString("\n")

	writeList(&b, "Strengths", in.Strengths)
	writeList(&b, "Vulnerabilities", in.Vulnerabilities)

	b.WriteString("## Business Impact\n\n")
	fmt.Fprintf(&b, "- Estimated downtime per major incident: %.0f hours\n", in.DowntimeHours)
	fmt.Fprintf(&b, "- Revenue at risk: %.1f%%\n", in.RevenueAtRiskPct)
	if cls.Risk.HourlyImpactUSD > 0 {
		fmt.Fprintf(&b, "- Typical hourly impact for this business model: %s\n", orchestrate.Money(cls.Risk.HourlyImpactUSD))
	}
	b.WriteString("\n")

	writeList(&b, "Recommendations", in.Recommendations)

	if len(report.Skips) > 0 {
		b.WriteString("## Estimates You Can Accept\n\n")
		for _, s := range report.Skips {
			fmt.Fprintf(&b, "- **%s**: %s (confidence %d%%). %s\n", s.Dimension.Name(), FormatMetric(s.Dimension, s.SuggestedMetric), s.Confidence, s.Rationale)
		}
		b.WriteString("\n")
	}

	writeList(&b, "Correlations", report.Hints)

	if len(report.Insights) > 0 {
		b.WriteString("## Insights\n\n")
		for _, ins := range report.Insights {
			fmt.Fprintf(&b, "### %s\n\n%s\n\n", ins.Headline, ins.BusinessImpact)
			if ins.Peer.Message != "" {
				fmt.Fprintf(&b, "_%s_\n\n", ins.Peer.Message)
			}
		}
	}

	if len(report.Signals) > 0 {
		b.WriteString("## How the Score Was Computed\n\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&b, "- [%s] %s\n", s.Severity, s.Description)
		}
		b.WriteString("\n")
	}

	if report.LLM != nil && report.LLM.Enabled && report.LLM.SummaryMD != "" {
		b.WriteString("## Narrative\n\n")
		b.WriteString("_Generated content. See the separate summary file for details._\n\n")
		b.WriteString(report.LLM.SummaryMD)
		b.WriteString("\n\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_The index is computed deterministically from the answers above. Estimated dimensions use archetype baselines and lower the confidence. Hints, insights and narrative never change the score._\n")
	}

	return b.String()
}

func writeList(b *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

// FormatMetric renders a raw metric with its unit and staircase label.
func FormatMetric(d model.Dimension, v float64) string {
	var s string
	switch d.Unit() {
	case "usd":
		s = orchestrate.Money(v)
	case "percent":
		s = strconv.FormatFloat(v, 'f', -1, 64) + "%"
	case "multiplier":
		s = strconv.FormatFloat(v, 'f', -1, 64) + "x"
	default:
		s = strconv.FormatFloat(v, 'f', -1, 64) + " " + d.Unit()
	}
	if label, err := convert.Label(d, v); err == nil && label != "" {
		s += " (" + label + ")"
	}
	return s
}

// RenderSummary prints a short summary to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	c := report.Composite
	fmt.Fprintf(w, "\n%s\n", report.Subject)
	fmt.Fprintf(w, "  Business model: %s (%.0f%%)\n", report.Classification.Name, report.Classification.Confidence*100)
	fmt.Fprintf(w, "  Immunity index: %.1f/10  %s  percentile %d\n", c.Score, c.Stage, c.Percentile)
	fmt.Fprintf(w, "  Confidence:     %d%% (%d/%d answered)\n", c.Confidence, c.RealAnswers, model.DimensionCount)
	if report.Interpretation.Headline != "" {
		fmt.Fprintf(w, "  %s\n", report.Interpretation.Headline)
	}
	if len(report.Interpretation.Recommendations) > 0 {
		fmt.Fprintf(w, "  First step: %s\n", report.Interpretation.Recommendations[0])
	}
}

// RenderReport renders the report to the specified outputs
func (r *Renderer) RenderReport(w io.Writer, report *model.Report, jsonPath, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(w, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(w, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	// Narrative goes to its own file next to the Markdown report
	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := r.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			fmt.Fprintf(w, "Warning: failed to write LLM summary: %v\n", err)
		} else if verbose {
			fmt.Fprintf(w, "✓ Wrote LLM Summary: %s\n", llmPath)
		}
	}

	r.RenderSummary(w, report)
	return nil
}
