// Package session holds the state of one assessment as immutable snapshots.
// Every transition returns a new Session and leaves the receiver untouched.
package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/insight"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/orchestrate"
	"github.com/ppiankov/dii/internal/score"
)

// MaxHistory is the number of retained composite scores.
const MaxHistory = 20

// Confidence of a response the respondent entered directly.
const answeredConfidence = 100

// ErrNotAnswered is returned when removing a dimension that has no response.
var ErrNotAnswered = errors.New("dimension not answered")

// Engine wires the scoring components that every session transition runs.
// It is stateless and shared by all sessions.
type Engine struct {
	calc    *score.Calculator
	orch    *orchestrate.Orchestrator
	insight *insight.Engine
	now     func() time.Time
}

// NewEngine creates an engine over the catalog.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{
		calc:    score.NewCalculator(c),
		orch:    orchestrate.New(),
		insight: insight.New(c),
		now:     time.Now,
	}
}

// Calculator exposes the engine's calculator for interpretation and planning.
func (e *Engine) Calculator() *score.Calculator {
	return e.calc
}

// Session is one assessment. Its fields are read-only; use the transition
// methods to derive a new session.
type Session struct {
	ID            string
	Archetype     model.ArchetypeID
	Responses     model.Responses
	History       []model.ScoreEntry
	Composite     model.CompositeScore
	Orchestration model.OrchestrationState
	Insight       *model.InsightRevelation // Set only by Answer
	UpdatedAt     time.Time

	engine *Engine
}

// Start opens a new assessment for the archetype.
func (e *Engine) Start(archetype model.ArchetypeID) (*Session, error) {
	state, err := e.orch.InitialOrder(archetype)
	if err != nil {
		return nil, err
	}
	composite, err := e.calc.Calculate(archetype, model.Responses{}, nil)
	if err != nil {
		return nil, err
	}
	return &Session{
		ID:            uuid.New().String(),
		Archetype:     archetype,
		History:       []model.ScoreEntry{},
		Composite:     composite,
		Orchestration: state,
		UpdatedAt:     e.now().UTC(),
		engine:        e,
	}, nil
}

// Answer records a raw metric for d. Out-of-range values return
// convert.ErrOutOfRange and no new session.
func (s *Session) Answer(d model.Dimension, raw float64, at time.Time) (*Session, error) {
	return s.AnswerInput(d, raw, "", at)
}

// AnswerInput is Answer with the respondent's original selection or text.
func (s *Session) AnswerInput(d model.Dimension, raw float64, input string, at time.Time) (*Session, error) {
	if err := convert.Validate(d, raw); err != nil {
		return nil, err
	}
	value, err := convert.ConvertToScore(d, raw, s.Archetype)
	if err != nil {
		return nil, err
	}

	resp := model.DimensionResponse{
		Dimension:  d,
		RawInput:   input,
		Value:      raw,
		Score:      value,
		CapturedAt: at.UTC(),
		Confidence: answeredConfidence,
	}
	next, err := s.transition(s.Responses.With(resp))
	if err != nil {
		return nil, err
	}

	revelation, err := s.engine.insight.Reveal(resp, s.Archetype, next.Responses, &next.Composite)
	if err != nil {
		return nil, err
	}
	next.Insight = &revelation
	return next, nil
}

// AcceptSkip stores an estimated response for an open dimension. It is
// marked inferred and keeps the recommendation's lower confidence.
func (s *Session) AcceptSkip(rec model.SkipRecommendation, at time.Time) (*Session, error) {
	if err := convert.Validate(rec.Dimension, rec.SuggestedMetric); err != nil {
		return nil, err
	}
	value, err := convert.ConvertToScore(rec.Dimension, rec.SuggestedMetric, s.Archetype)
	if err != nil {
		return nil, err
	}
	return s.transition(s.Responses.With(model.DimensionResponse{
		Dimension:  rec.Dimension,
		RawInput:   rec.Rationale,
		Value:      rec.SuggestedMetric,
		Score:      value,
		CapturedAt: at.UTC(),
		Confidence: rec.Confidence,
		Inferred:   true,
	}))
}

// Remove clears the response for d.
func (s *Session) Remove(d model.Dimension) (*Session, error) {
	if !s.Responses.Has(d) {
		return nil, fmt.Errorf("remove %s: %w", d, ErrNotAnswered)
	}
	return s.transition(s.Responses.Without(d))
}

// transition recomputes every derived field for responses.
func (s *Session) transition(responses model.Responses) (*Session, error) {
	e := s.engine
	composite, err := e.calc.Calculate(s.Archetype, responses, s.History)
	if err != nil {
		return nil, err
	}
	state, err := e.orch.AdaptOrder(s.Orchestration.Order, responses, s.Archetype)
	if err != nil {
		return nil, err
	}

	now := e.now().UTC()
	history := appendHistory(s.History, model.ScoreEntry{
		Score:       composite.Score,
		RealAnswers: composite.RealAnswers,
		At:          now,
	})

	return &Session{
		ID:            s.ID,
		Archetype:     s.Archetype,
		Responses:     responses,
		History:       history,
		Composite:     composite,
		Orchestration: state,
		UpdatedAt:     now,
		engine:        e,
	}, nil
}

// appendHistory returns a new slice; earlier snapshots keep their own history.
func appendHistory(history []model.ScoreEntry, entry model.ScoreEntry) []model.ScoreEntry {
	start := 0
	if len(history)+1 > MaxHistory {
		start = len(history) + 1 - MaxHistory
	}
	out := make([]model.ScoreEntry, 0, len(history)-start+1)
	out = append(out, history[start:]...)
	return append(out, entry)
}

// Remaining lists the open dimensions in recommended order.
func (s *Session) Remaining() []model.Dimension {
	return orchestrate.Remaining(s.Orchestration.Order, s.Responses)
}

// Next returns the next dimension to ask, if any is left.
func (s *Session) Next() (model.Dimension, bool) {
	remaining := s.Remaining()
	if len(remaining) == 0 {
		return 0, false
	}
	return remaining[0], true
}

// Complete reports whether all five dimensions have a response.
func (s *Session) Complete() bool {
	return s.Responses.Count() == model.DimensionCount
}

// Skips returns estimates for every open dimension.
func (s *Session) Skips() []model.SkipRecommendation {
	return orchestrate.SkipRecommendations(s.Responses, s.Remaining())
}

// Hints returns advisory warnings for the current answers.
func (s *Session) Hints() []string {
	return orchestrate.CorrelationHints(s.Responses)
}

// EstimatedMinutes is the time left to finish, adjusted for answering speed.
func (s *Session) EstimatedMinutes() int {
	return orchestrate.EstimateRemainingTime(s.Responses.Count())
}

// CuriosityHook returns the progress message for the current state.
func (s *Session) CuriosityHook() string {
	return insight.CuriosityHook(s.Responses.Count(), &s.Composite)
}
