// Package provider implements the question and incident collaborators,
// both as built-in static data and as rate-limited HTTP clients.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/ports"
)

var questionTexts = [model.DimensionCount]string{
	model.TRD: "If {org} core revenue-generating systems went down, how long before you lose 10% of expected revenue?",
	model.AER: "What is the total potential value an attacker could extract from {org} systems and data?",
	model.HFP: "In {org} last phishing simulation, what percentage of employees fell for the attack?",
	model.BRI: "If an attacker compromises one of {org} systems, what percentage of the other systems could they access?",
	model.RRG: "When {org} team last tested recovery procedures, how did actual time compare to the documented plans?",
}

// Appended when the organization runs critical infrastructure.
var criticalInfraNotes = [model.DimensionCount]string{
	model.TRD: " Count loss of public service as revenue loss.",
	model.BRI: " Include operational technology and safety systems.",
	model.RRG: " Use the last exercise that involved operational technology.",
}

// Options ordered from worst (level 1) to best (level 5).
var options = [model.DimensionCount][5]ports.Option{
	model.TRD: {
		{Level: 1, Label: "Less than 2 hours", Interpretation: "Critical - Immediate revenue impact expected", Metric: 1},
		{Level: 2, Label: "2-6 hours", Interpretation: "Vulnerable - Revenue degradation likely within hours", Metric: 4},
		{Level: 3, Label: "6-24 hours", Interpretation: "Moderate - Can sustain short-term disruptions", Metric: 12},
		{Level: 4, Label: "1-3 days", Interpretation: "Resilient - Good tolerance for operational issues", Metric: 48},
		{Level: 5, Label: "More than 3 days", Interpretation: "Exceptional - Can maintain revenue through extended disruptions", Metric: 96},
	},
	model.AER: {
		{Level: 1, Label: "Over $1M potential value", Interpretation: "Prime Target - Extremely attractive to attackers", Metric: 2_000_000},
		{Level: 2, Label: "$200K - $1M attack value", Interpretation: "High Value - Regular target for sophisticated attacks", Metric: 500_000},
		{Level: 3, Label: "$50K - $200K potential", Interpretation: "Moderate Target - Opportunistic attacks likely", Metric: 100_000},
		{Level: 4, Label: "$10K - $50K limited value", Interpretation: "Low Interest - Commodity attacks only", Metric: 25_000},
		{Level: 5, Label: "Under $10K minimal value", Interpretation: "Unattractive - Not economically viable for most attackers", Metric: 5_000},
	},
	model.HFP: {
		{Level: 1, Label: "Over 50% failure rate", Interpretation: "Critical - Humans are primary vulnerability", Metric: 60},
		{Level: 2, Label: "30-50% susceptible", Interpretation: "Poor - Significant social engineering risk", Metric: 40},
		{Level: 3, Label: "15-30% average rate", Interpretation: "Average - Standard human factor risk", Metric: 20},
		{Level: 4, Label: "5-15% good awareness", Interpretation: "Good - Above average security awareness", Metric: 10},
		{Level: 5, Label: "Under 5% excellent culture", Interpretation: "Excellent - Strong security culture established", Metric: 3},
	},
	model.BRI: {
		{Level: 1, Label: "80-100% systems accessible", Interpretation: "No Isolation - Complete network compromise likely", Metric: 90},
		{Level: 2, Label: "60-80% lateral movement", Interpretation: "Poor Isolation - Major systems at risk from single breach", Metric: 70},
		{Level: 3, Label: "40-60% limited segmentation", Interpretation: "Limited Isolation - Moderate containment capability", Metric: 50},
		{Level: 4, Label: "20-40% good boundaries", Interpretation: "Good Isolation - Can limit blast radius effectively", Metric: 30},
		{Level: 5, Label: "Under 20% well-segmented", Interpretation: "Well Segmented - Excellent breach containment", Metric: 10},
	},
	model.RRG: {
		{Level: 1, Label: "Over 5x longer than planned", Interpretation: "No Real Recovery - Plans are theoretical only", Metric: 6},
		{Level: 2, Label: "3-5x recovery multiplier", Interpretation: "Major Gap - Recovery takes much longer than planned", Metric: 4},
		{Level: 3, Label: "2-3x actual vs planned", Interpretation: "Moderate Gap - Some deviation from recovery plans", Metric: 2.5},
		{Level: 4, Label: "1.5-2x minor delays", Interpretation: "Minor Gap - Generally meets recovery objectives", Metric: 1.75},
		{Level: 5, Label: "Meets planned timelines", Interpretation: "Meets Plan - Reliable and tested recovery capability", Metric: 1},
	},
}

// Options returns the five answer options for d.
func Options(d model.Dimension) ([]ports.Option, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("options for %d: %w", int(d), model.ErrUnknownDimension)
	}
	out := make([]ports.Option, len(options[d]))
	copy(out, options[d][:])
	return out, nil
}

// OptionMetric returns the raw metric submitted for an option level.
func OptionMetric(d model.Dimension, level int) (float64, error) {
	if !d.Valid() {
		return 0, fmt.Errorf("option for %d: %w", int(d), model.ErrUnknownDimension)
	}
	if level < 1 || level > len(options[d]) {
		return 0, fmt.Errorf("option level %d for %s: must be 1-5", level, d)
	}
	return options[d][level-1].Metric, nil
}

// StaticQuestions serves the built-in English question set.
type StaticQuestions struct{}

// NewStaticQuestions creates the built-in question provider.
func NewStaticQuestions() *StaticQuestions {
	return &StaticQuestions{}
}

// Question implements ports.QuestionProvider.
func (StaticQuestions) Question(_ context.Context, req ports.QuestionRequest) (ports.Question, error) {
	opts, err := Options(req.Dimension)
	if err != nil {
		return ports.Question{}, err
	}

	org := "your"
	if name := strings.TrimSpace(req.Company.Name); name != "" {
		org = possessive(name)
	}
	text := strings.ReplaceAll(questionTexts[req.Dimension], "{org}", org)
	if req.CriticalInfra || req.Company.CriticalInfrastructure {
		text += criticalInfraNotes[req.Dimension]
	}

	return ports.Question{
		Dimension: req.Dimension,
		Text:      text,
		Options:   opts,
		Source:    "static",
	}, nil
}

func possessive(name string) string {
	if strings.HasSuffix(name, "s") {
		return name + "'"
	}
	return name + "'s"
}
