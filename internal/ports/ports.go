// Package ports declares the collaborators the assessment engine talks to:
// session persistence, question content and the comparable-incident catalog.
// None of them feed the composite score.
package ports

import (
	"context"
	"errors"
	"time"

	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/session"
)

// ErrNotFound is returned by stores when no snapshot exists for an id.
var ErrNotFound = errors.New("not found")

// SessionStore persists session snapshots. Loaded snapshots are passed to
// session.Engine.Restore, which recomputes every derived value.
type SessionStore interface {
	Save(ctx context.Context, id string, snap session.Snapshot) error
	Load(ctx context.Context, id string) (session.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// QuestionRequest asks for the wording of one dimension's question.
type QuestionRequest struct {
	Archetype     model.ArchetypeID    `json:"archetype_id"`
	Dimension     model.Dimension      `json:"dimension"`
	Company       model.CompanyProfile `json:"company"`
	CriticalInfra bool                 `json:"critical_infrastructure"`
}

// Option is one discrete answer. Metric is the raw value submitted when the
// option is picked.
type Option struct {
	Level          int     `json:"level"` // 1 (worst) to 5 (best)
	Label          string  `json:"label"`
	Interpretation string  `json:"interpretation,omitempty"`
	Metric         float64 `json:"metric"`
}

// Question is localized question content.
type Question struct {
	Dimension model.Dimension `json:"dimension"`
	Text      string          `json:"text"`
	Options   []Option        `json:"options"`
	Source    string          `json:"source,omitempty"`
}

// QuestionProvider supplies question content.
type QuestionProvider interface {
	Question(ctx context.Context, req QuestionRequest) (Question, error)
}

// IncidentQuery selects comparable incidents. Zero values are ignored.
type IncidentQuery struct {
	Archetype model.ArchetypeID `json:"archetype_id"`
	Size      string            `json:"size,omitempty"`
	Region    string            `json:"region,omitempty"`
	Score     float64           `json:"score,omitempty"`
	Limit     int               `json:"limit,omitempty"`
}

// Incident is a publicly reported breach used for display.
type Incident struct {
	ID            string            `json:"id"`
	Discovered    time.Time         `json:"date_discovered"`
	Archetype     model.ArchetypeID `json:"archetype_id"`
	Match         string            `json:"match_confidence"` // high, medium, low
	Sector        string            `json:"sector"`
	Size          string            `json:"size"`
	Region        string            `json:"region"`
	Score         float64           `json:"dii_estimate,omitempty"`
	Vector        string            `json:"vector"`
	Method        string            `json:"method,omitempty"`
	LossUSD       float64           `json:"financial_loss_usd"`
	DowntimeHours float64           `json:"downtime_hours"`
	RecoveryHours float64           `json:"recovery_hours,omitempty"`
}

// IncidentInsights aggregates the matched incidents.
type IncidentInsights struct {
	AverageLossUSD       float64  `json:"average_loss_usd"`
	AverageDowntimeHours float64  `json:"average_downtime_hours"`
	CommonVectors        []string `json:"common_vectors"`
	PeerComparison       string   `json:"peer_comparison"`
}

// IncidentMatches is a ranked result from an IncidentCatalog.
type IncidentMatches struct {
	Exact    []Incident       `json:"exact_matches"`
	Similar  []Incident       `json:"similar_matches"`
	Insights IncidentInsights `json:"insights"`
}

// IncidentCatalog returns incidents comparable to an assessment.
type IncidentCatalog interface {
	Comparable(ctx context.Context, q IncidentQuery) (IncidentMatches, error)
}
