package session

import (
	"github.com/google/uuid"

	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/model"
)

// Snapshot is the persisted form of a session. Derived values such as the
// composite, normalized scores and question order are not part of it.
type Snapshot struct {
	ArchetypeID  model.ArchetypeID         `json:"archetype_id"`
	Responses    []model.DimensionResponse `json:"dimension_responses"`
	ScoreHistory []model.ScoreEntry        `json:"score_history"`
}

// Snapshot returns the persisted form of s.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		ArchetypeID:  s.Archetype,
		Responses:    s.Responses.List(),
		ScoreHistory: append([]model.ScoreEntry{}, s.History...),
	}
}

// Restore rebuilds a session from persisted state. Responses with an unknown
// dimension or an out-of-range value are dropped, and normalized scores are
// reconverted from metric values. A missing or unknown archetype falls back
// to the default classification archetype. An empty id gets a fresh one.
func (e *Engine) Restore(id string, snap Snapshot) (*Session, error) {
	archetype := snap.ArchetypeID
	if !archetype.Valid() {
		archetype = model.HybridCommerce
	}
	if id == "" {
		id = uuid.New().String()
	}

	base, err := e.Start(archetype)
	if err != nil {
		return nil, err
	}
	base.ID = id

	var responses model.Responses
	for _, r := range snap.Responses {
		if !r.Dimension.Valid() || convert.Validate(r.Dimension, r.Value) != nil {
			continue
		}
		value, err := convert.ConvertToScore(r.Dimension, r.Value, archetype)
		if err != nil {
			return nil, err
		}
		r.Score = value
		if r.Confidence < 0 || r.Confidence > answeredConfidence {
			r.Confidence = answeredConfidence
		}
		responses = responses.With(r)
	}

	history := snap.ScoreHistory
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}
	base.History = append([]model.ScoreEntry{}, history...)

	composite, err := e.calc.Calculate(archetype, responses, base.History)
	if err != nil {
		return nil, err
	}
	state, err := e.orch.AdaptOrder(base.Orchestration.Order, responses, archetype)
	if err != nil {
		return nil, err
	}

	base.Responses = responses
	base.Composite = composite
	base.Orchestration = state
	return base, nil
}
