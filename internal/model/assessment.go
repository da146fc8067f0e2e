package model

import "time"

// DimensionResponse is a single captured answer for one dimension.
type DimensionResponse struct {
	Dimension  Dimension `json:"dimension"`
	RawInput   string    `json:"raw_input,omitempty"` // What the respondent selected or typed
	Value      float64   `json:"value"`               // Domain metric (hours, USD, percent, multiplier)
	Score      float64   `json:"score"`               // Normalized score in [1,10]
	CapturedAt time.Time `json:"captured_at"`
	Confidence int       `json:"confidence"` // 0-100
	Inferred   bool      `json:"inferred,omitempty"`
}

// Responses holds at most one live response per dimension, indexed by Dimension.
// A nil slot means the dimension is unanswered. Responses is a value type: copying
// it yields an independent slot array and the stored records are never mutated.
type Responses [DimensionCount]*DimensionResponse

// Get returns the response for d, if any.
func (r Responses) Get(d Dimension) (*DimensionResponse, bool) {
	if !d.Valid() || r[d] == nil {
		return nil, false
	}
	return r[d], true
}

// Has reports whether d has a live response.
func (r Responses) Has(d Dimension) bool {
	_, ok := r.Get(d)
	return ok
}

// Value returns the raw metric for d and whether it was answered.
func (r Responses) Value(d Dimension) (float64, bool) {
	resp, ok := r.Get(d)
	if !ok {
		return 0, false
	}
	return resp.Value, true
}

// With returns a copy with resp stored in its dimension slot, replacing any earlier answer.
func (r Responses) With(resp DimensionResponse) Responses {
	if resp.Dimension.Valid() {
		r[resp.Dimension] = &resp
	}
	return r
}

// Without returns a copy with the slot for d cleared.
func (r Responses) Without(d Dimension) Responses {
	if d.Valid() {
		r[d] = nil
	}
	return r
}

// Answered lists answered dimensions in canonical order.
func (r Responses) Answered() []Dimension {
	var out []Dimension
	for _, d := range AllDimensions() {
		if r[d] != nil {
			out = append(out, d)
		}
	}
	return out
}

// Count returns the number of answered dimensions.
func (r Responses) Count() int {
	n := 0
	for _, resp := range r {
		if resp != nil {
			n++
		}
	}
	return n
}

// RealCount returns the number of dimensions answered by the respondent.
// Responses accepted from a skip estimate are not counted.
func (r Responses) RealCount() int {
	n := 0
	for _, resp := range r {
		if resp != nil && !resp.Inferred {
			n++
		}
	}
	return n
}

// Real reports whether d holds a response that was not inferred.
func (r Responses) Real(d Dimension) bool {
	resp, ok := r.Get(d)
	return ok && !resp.Inferred
}

// List returns the live responses in canonical order.
func (r Responses) List() []DimensionResponse {
	out := make([]DimensionResponse, 0, DimensionCount)
	for _, resp := range r {
		if resp != nil {
			out = append(out, *resp)
		}
	}
	return out
}

// MaturityStage is the coarse qualitative band of a composite score.
type MaturityStage string

const (
	StageFragile   MaturityStage = "FRAGILE"
	StageRobust    MaturityStage = "ROBUST"
	StageResilient MaturityStage = "RESILIENT"
	StageAdaptive  MaturityStage = "ADAPTIVE"
)

// Trend compares a composite score with the previous calculation.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// DimensionContribution is one dimension's input to the composite formula.
type DimensionContribution struct {
	Dimension  Dimension `json:"dimension"`
	Score      float64   `json:"score"`
	Estimated  bool      `json:"estimated"`
	Assumption string    `json:"assumption,omitempty"`
}

// CompositeScore is the derived immunity index. It is always recomputable from the
// response set plus the archetype and is never persisted as authoritative.
type CompositeScore struct {
	Archetype     ArchetypeID                           `json:"archetype"`
	Score         float64                               `json:"score"`     // 0-10
	RawScore      float64                               `json:"raw_score"` // (TRD*AER)/(HFP*BRI*RRG)
	Baseline      float64                               `json:"baseline"`
	Confidence    int                                   `json:"confidence"` // 0-100
	RealAnswers   int                                   `json:"real_answers"`
	Stage         MaturityStage                         `json:"stage"`
	Percentile    int                                   `json:"percentile"`
	Trend         Trend                                 `json:"trend"`
	Contributions [DimensionCount]DimensionContribution `json:"contributions"`
	CalculatedAt  time.Time                             `json:"calculated_at"`
}

// ScoreEntry is a retained history point used for trend detection.
type ScoreEntry struct {
	Score       float64   `json:"score"`
	RealAnswers int       `json:"real_answers"`
	At          time.Time `json:"at"`
}

// DimensionPriority describes a dimension's place in the question sequence.
type DimensionPriority struct {
	Dimension Dimension `json:"dimension"`
	Priority  int       `json:"priority"` // 1 = ask first
	Rationale string    `json:"rationale"`
	Minutes   int       `json:"minutes"`
}

// OrchestrationState is the recommended question order for an assessment.
// Order is always a permutation of the five dimensions.
type OrchestrationState struct {
	Order            [DimensionCount]Dimension         `json:"order"`
	Priorities       [DimensionCount]DimensionPriority `json:"priorities"`
	RemainingMinutes int                               `json:"remaining_minutes"`
	AdaptiveReason   string                            `json:"adaptive_reason,omitempty"`
}

// SkipRecommendation is an estimated value offered for an open dimension.
type SkipRecommendation struct {
	Dimension       Dimension `json:"dimension"`
	SuggestedValue  int       `json:"suggested_value"` // Response option level, 1 (worst) to 5 (best)
	SuggestedMetric float64   `json:"suggested_metric"`
	Confidence      int       `json:"confidence"` // 0-100
	Rationale       string    `json:"rationale"`
}

// PeerPosition places a metric relative to archetype peers.
type PeerPosition string

const (
	PositionAhead   PeerPosition = "ahead"
	PositionAverage PeerPosition = "average"
	PositionBehind  PeerPosition = "behind"
)

// PeerComparison benchmarks one answer against the archetype.
type PeerComparison struct {
	Position   PeerPosition `json:"position"`
	Percentile int          `json:"percentile"`
	Message    string       `json:"message"`
}

// Teaser hints at the next dimension worth answering.
type Teaser struct {
	Dimension Dimension `json:"dimension"`
	Text      string    `json:"text"`
}

// InsightRevelation is the narrative produced right after a dimension is answered.
type InsightRevelation struct {
	Dimension      Dimension      `json:"dimension"`
	Headline       string         `json:"headline"`
	BusinessImpact string         `json:"business_impact"`
	Peer           PeerComparison `json:"peer_comparison"`
	Correlations   []string       `json:"correlations"`
	Next           *Teaser        `json:"next,omitempty"`
	Depth          int            `json:"depth"` // 1-5
}
