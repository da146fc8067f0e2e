package model

import "time"

// Report is the complete assessment output for one organization.
type Report struct {
	Subject    string         `json:"subject"`
	SourceURL  string         `json:"source_url,omitempty"` // Website used for profile enrichment
	AssessedAt time.Time      `json:"assessed_at"`
	Profile    CompanyProfile `json:"profile"`
	FetchMeta  *FetchMeta     `json:"fetch_meta,omitempty"`

	Classification Classification       `json:"classification"`
	Responses      []DimensionResponse  `json:"responses"`
	Composite      CompositeScore       `json:"composite"`
	Interpretation Interpretation       `json:"interpretation"`
	Orchestration  OrchestrationState   `json:"orchestration"`
	Skips          []SkipRecommendation `json:"skip_recommendations,omitempty"`
	Hints          []string             `json:"correlation_hints,omitempty"`
	Insights       []InsightRevelation  `json:"insights,omitempty"`
	Signals        []Signal             `json:"signals"`

	Principles Principles `json:"principles"`

	LLM *LLMSummary `json:"llm,omitempty"` // Optional narrative, never affects the score
}

// FetchMeta contains HTTP metadata from fetching a company website.
type FetchMeta struct {
	StatusCode   int               `json:"status_code"`
	ContentType  string            `json:"content_type,omitempty"`
	LastModified string            `json:"last_modified,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// OperationalRisk is the business-facing risk level derived from the composite.
type OperationalRisk string

const (
	RiskCritical OperationalRisk = "critical"
	RiskHigh     OperationalRisk = "high"
	RiskMedium   OperationalRisk = "medium"
	RiskLow      OperationalRisk = "low"
)

// Interpretation translates a composite score into business language.
type Interpretation struct {
	Stage            MaturityStage   `json:"stage"`
	Headline         string          `json:"headline"`
	Strengths        []string        `json:"strengths"`
	Vulnerabilities  []string        `json:"vulnerabilities"`
	OperationalRisk  OperationalRisk `json:"operational_risk"`
	DowntimeHours    float64         `json:"estimated_downtime_hours"`
	RevenueAtRiskPct float64         `json:"revenue_at_risk_pct"`
	Recommendations  []string        `json:"recommendations"`
}

// Signal is a transparent, auditable step in the score computation.
type Signal struct {
	Type        SignalType             `json:"type"`
	Severity    SignalSeverity         `json:"severity"`
	Description string                 `json:"description"`
	Data        map[string]interface{} `json:"data,omitempty"`
}

// SignalType classifies a transparency signal.
type SignalType string

const (
	SignalDimensionAnswered  SignalType = "dimension_answered"
	SignalDimensionEstimated SignalType = "dimension_estimated"
	SignalRawRatio           SignalType = "raw_ratio"
	SignalBaseline           SignalType = "archetype_baseline"
	SignalComposite          SignalType = "composite_score"
	SignalCorrelation        SignalType = "correlation_hint"
)

// SignalSeverity indicates the importance of the signal.
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)

// Principles documents the guarantees the report was produced under.
type Principles struct {
	Recomputable bool `json:"recomputable"` // Derived values are rebuilt from responses, never trusted
	Transparent  bool `json:"transparent"`  // Every score step is listed in Signals
	Advisory     bool `json:"advisory"`     // Hints, insights and narrative never change the score
}

// DefaultPrinciples returns the standard report principles.
func DefaultPrinciples() Principles {
	return Principles{
		Recomputable: true,
		Transparent:  true,
		Advisory:     true,
	}
}

// LLMSummary contains an optional generated narrative.
type LLMSummary struct {
	Enabled       bool     `json:"enabled"`
	Provider      string   `json:"provider,omitempty"` // openai, anthropic, ollama
	Model         string   `json:"model,omitempty"`
	StrictFigures bool     `json:"strict_figures"` // Every cited number was checked against the report
	SummaryMD     string   `json:"summary_md,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
}

// AssessmentInput is one organization to assess: a profile, an optional
// website for enrichment, an optional archetype override and whatever raw
// answers are known. Unanswered dimensions are estimated.
type AssessmentInput struct {
	Profile   CompanyProfile        `json:"profile" yaml:"profile"`
	URL       string                `json:"url,omitempty" yaml:"url,omitempty"`
	Archetype ArchetypeID           `json:"archetype_id,omitempty" yaml:"archetype_id,omitempty"`
	Answers   map[Dimension]float64 `json:"answers,omitempty" yaml:"answers,omitempty"`
}

// Subject returns the best display name for the input.
func (in AssessmentInput) Subject() string {
	switch {
	case in.Profile.Name != "":
		return in.Profile.Name
	case in.Profile.Domain != "":
		return in.Profile.Domain
	default:
		return in.URL
	}
}
