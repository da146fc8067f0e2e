package llm

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/dii/internal/model"
)

const maxPromptFigures = 30

// Figure is a number from the report the narrative may quote.
type Figure struct {
	Label string
	Value float64
}

// Text formats the value the way the prompt shows it.
func (f Figure) Text() string {
	if f.Value == math.Trunc(f.Value) {
		return strconv.FormatFloat(f.Value, 'f', 0, 64)
	}
	return strconv.FormatFloat(f.Value, 'f', 1, 64)
}

// Figures lists the numbers computed for the report.
func Figures(r model.Report) []Figure {
	c := r.Composite
	figs := []Figure{
		{"Digital Immunity Index (0-10)", c.Score},
		{"Percentile among peers", float64(c.Percentile)},
		{"Confidence (%)", float64(c.Confidence)},
		{"Classification confidence (%)", math.Round(r.Classification.Confidence * 100)},
		{"Estimated downtime (hours)", r.Interpretation.DowntimeHours},
		{"Revenue at risk (%)", r.Interpretation.RevenueAtRiskPct},
	}
	for _, contrib := range c.Contributions {
		if !contrib.Dimension.Valid() {
			continue
		}
		figs = append(figs, Figure{contrib.Dimension.Name() + " score", contrib.Score})
	}
	for _, resp := range r.Responses {
		label := fmt.Sprintf("%s (%s)", resp.Dimension.Name(), resp.Dimension.Unit())
		figs = append(figs, Figure{label, resp.Value})
	}
	if r.Classification.Risk.HourlyImpactUSD > 0 {
		figs = append(figs, Figure{"Hourly impact (USD)", r.Classification.Risk.HourlyImpactUSD})
	}
	return figs
}

var figurePattern = regexp.MustCompile(`\d[\d,]*(?:\.\d+)?`)

// extractFigures returns the numbers quoted in text. Small counts (0-10)
// and years are prose, not figures, and are skipped.
func extractFigures(text string) []float64 {
	var out []float64
	seen := make(map[float64]bool)
	for _, m := range figurePattern.FindAllString(text, -1) {
		v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimRight(m, ","), ",", ""), 64)
		if err != nil {
			continue
		}
		if isProse(v) || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func isProse(v float64) bool {
	if v == math.Trunc(v) && v <= 10 {
		return true
	}
	return v == math.Trunc(v) && v >= 1900 && v <= 2100
}

// allowed reports whether v matches a figure, accepting one-decimal
// rounding and thousand or million shorthand ("$1.2M").
func allowed(v float64, figures []Figure) bool {
	for _, f := range figures {
		for _, unit := range []float64{1, 1e3, 1e6, 1e9} {
			scaled := f.Value / unit
			if math.Abs(scaled-v) <= 0.05+math.Abs(scaled)*0.005 {
				return true
			}
		}
	}
	return false
}

// verifyFigures returns the quoted figures, or an error naming the first
// one that is not in the allowlist.
func verifyFigures(summary string, figures []Figure) ([]float64, error) {
	cited := extractFigures(summary)
	for _, v := range cited {
		if !allowed(v, figures) {
			return cited, fmt.Errorf("FIGURE LEAK: narrative quoted a number not in the report: %s",
				strconv.FormatFloat(v, 'f', -1, 64))
		}
	}
	return cited, nil
}
