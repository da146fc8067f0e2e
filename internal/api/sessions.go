package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/pipeline"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/provider"
	"github.com/ppiankov/dii/internal/score"
	"github.com/ppiankov/dii/internal/session"
)

// Boundary calls that outlive this are dropped and never reach the session.
const boundaryTimeout = 5 * time.Second

var errNoSkip = errors.New("no skip recommendation for dimension")

type sessionView struct {
	ID               string                     `json:"id"`
	Archetype        model.ArchetypeID          `json:"archetype_id"`
	Responses        []model.DimensionResponse  `json:"responses"`
	Composite        model.CompositeScore       `json:"composite"`
	Orchestration    model.OrchestrationState   `json:"orchestration"`
	Remaining        []model.Dimension          `json:"remaining"`
	Next             *model.Dimension           `json:"next,omitempty"`
	Complete         bool                       `json:"complete"`
	Skips            []model.SkipRecommendation `json:"skip_recommendations"`
	Hints            []string                   `json:"correlation_hints"`
	EstimatedMinutes int                        `json:"estimated_minutes"`
	CuriosityHook    string                     `json:"curiosity_hook"`
	Insight          *model.InsightRevelation   `json:"insight,omitempty"`
	Impact           *score.Impact              `json:"impact,omitempty"`
}

func viewOf(s *session.Session) sessionView {
	v := sessionView{
		ID:               s.ID,
		Archetype:        s.Archetype,
		Responses:        s.Responses.List(),
		Composite:        s.Composite,
		Orchestration:    s.Orchestration,
		Remaining:        s.Remaining(),
		Complete:         s.Complete(),
		Skips:            s.Skips(),
		Hints:            s.Hints(),
		EstimatedMinutes: s.EstimatedMinutes(),
		CuriosityHook:    s.CuriosityHook(),
		Insight:          s.Insight,
	}
	if d, ok := s.Next(); ok {
		v.Next = &d
	}
	return v
}

type startRequest struct {
	Archetype model.ArchetypeID    `json:"archetype_id"`
	Profile   model.CompanyProfile `json:"profile"`
}

// startSession opens a session for an explicit archetype, or classifies the
// profile when none is given.
func (s *Server) startSession(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	archetype := req.Archetype
	if archetype == 0 {
		if req.Profile.Name == "" {
			s.fail(c, fmt.Errorf("%w: archetype_id or profile.name is required", errBadRequest))
			return
		}
		_, cls, _, err := s.pipeline.Classify(c.Request.Context(), model.AssessmentInput{Profile: req.Profile})
		if err != nil {
			s.fail(c, err)
			return
		}
		archetype = cls.Archetype
	}

	sess, err := s.engine.Start(archetype)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.sessions.Save(c.Request.Context(), sess.ID, sess.Snapshot()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(sess))
}

func (s *Server) load(ctx context.Context, id string) (*session.Session, error) {
	snap, err := s.sessions.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.engine.Restore(id, snap)
}

func (s *Server) getSession(c *gin.Context) {
	sess, err := s.load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) deleteSession(c *gin.Context) {
	id := c.Param("id")
	if err := s.sessions.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	s.latestIncidents.Delete(id)
	c.Status(http.StatusNoContent)
}

// answerRequest carries either a raw metric or a 1-5 option level.
type answerRequest struct {
	Dimension string   `json:"dimension" binding:"required"`
	Value     *float64 `json:"value"`
	Level     int      `json:"level"`
	Input     string   `json:"input"`
}

func (s *Server) answer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	d, err := model.ParseDimension(req.Dimension)
	if err != nil {
		s.fail(c, err)
		return
	}
	raw, err := req.metric(d)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	sess, err := s.load(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	next, err := sess.AnswerInput(d, raw, req.Input, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.sessions.Save(ctx, next.ID, next.Snapshot()); err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.RecordAnswer(d, "answered")

	view := viewOf(next)
	impact := score.AnalyzeImpact(sess.Composite.Score, next.Composite.Score)
	view.Impact = &impact
	c.JSON(http.StatusOK, view)
}

func (r answerRequest) metric(d model.Dimension) (float64, error) {
	switch {
	case r.Value != nil:
		return *r.Value, nil
	case r.Level != 0:
		v, err := provider.OptionMetric(d, r.Level)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", errBadRequest, err)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%w: value or level is required", errBadRequest)
	}
}

func (s *Server) removeAnswer(c *gin.Context) {
	d, err := model.ParseDimension(c.Param("dimension"))
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	sess, err := s.load(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	next, err := sess.Remove(d)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.sessions.Save(ctx, next.ID, next.Snapshot()); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, viewOf(next))
}

type skipRequest struct {
	Dimension string `json:"dimension" binding:"required"`
}

func (s *Server) acceptSkip(c *gin.Context) {
	var req skipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	d, err := model.ParseDimension(req.Dimension)
	if err != nil {
		s.fail(c, err)
		return
	}

	ctx := c.Request.Context()
	sess, err := s.load(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	var rec *model.SkipRecommendation
	for _, r := range sess.Skips() {
		if r.Dimension == d {
			rec = &r
			break
		}
	}
	if rec == nil {
		s.fail(c, fmt.Errorf("%w: %s", errNoSkip, d))
		return
	}

	next, err := sess.AcceptSkip(*rec, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.sessions.Save(ctx, next.ID, next.Snapshot()); err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.RecordAnswer(d, "skipped")
	c.JSON(http.StatusOK, viewOf(next))
}

// question returns the wording for ?dimension=, or for the next recommended
// dimension when omitted.
func (s *Server) question(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.load(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	var d model.Dimension
	if tag := c.Query("dimension"); tag != "" {
		if d, err = model.ParseDimension(tag); err != nil {
			s.fail(c, err)
			return
		}
	} else {
		next, ok := sess.Next()
		if !ok {
			c.JSON(http.StatusOK, gin.H{"complete": true})
			return
		}
		d = next
	}

	req := ports.QuestionRequest{
		Archetype: sess.Archetype,
		Dimension: d,
		Company:   model.CompanyProfile{Name: c.Query("company")},
	}
	callCtx, cancel := context.WithTimeout(ctx, boundaryTimeout)
	defer cancel()
	q, err := s.questions.Question(callCtx, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (s *Server) comparableIncidents(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.load(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	q := ports.IncidentQuery{
		Archetype: sess.Archetype,
		Size:      c.Query("size"),
		Region:    c.Query("region"),
		Score:     sess.Composite.Score,
	}

	// Incidents are display-only. A failed or superseded lookup falls back
	// to the newest result kept for the session, possibly empty.
	slot := s.incidentSlot(sess.ID)
	callCtx, cancel := context.WithTimeout(ctx, boundaryTimeout)
	defer cancel()
	matches, ok := provider.Fetch(callCtx, slot, func(ctx context.Context) (ports.IncidentMatches, error) {
		return s.incidents.Comparable(ctx, q)
	})
	if !ok {
		s.log.Warn().Str("session", sess.ID).Msg("incident lookup dropped")
		matches, _ = slot.Get()
	}
	c.JSON(http.StatusOK, matches)
}

func (s *Server) incidentSlot(id string) *provider.Latest[ports.IncidentMatches] {
	v, _ := s.latestIncidents.LoadOrStore(id, &provider.Latest[ports.IncidentMatches]{})
	return v.(*provider.Latest[ports.IncidentMatches])
}

func (s *Server) sessionReport(c *gin.Context) {
	ctx := c.Request.Context()
	sess, err := s.load(ctx, c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	report, err := pipeline.NewReport(s.engine.Calculator(), sess, s.now())
	if err != nil {
		s.fail(c, err)
		return
	}
	report.Subject = c.DefaultQuery("subject", sess.ID)
	if a, err := s.catalog.Lookup(sess.Archetype); err == nil {
		report.Classification = model.Classification{
			Archetype:  a.ID,
			Name:       a.Name,
			Confidence: 1,
		}
	}
	if c.Query("narrative") == "true" {
		s.pipeline.Narrate(ctx, report)
	}
	c.JSON(http.StatusOK, report)
}

type scenarioRequest struct {
	Name    string   `json:"name"`
	Actions []string `json:"actions"`
	Target  float64  `json:"target"`
}

// scenario projects a named set of actions, or builds a roadmap to target
// when no actions are listed.
func (s *Server) scenario(c *gin.Context) {
	var req scenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	sess, err := s.load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	var result score.Scenario
	switch {
	case len(req.Actions) > 0:
		name := req.Name
		if name == "" {
			name = "Custom scenario"
		}
		result, err = s.planner.Plan(name, sess.Archetype, sess.Responses, req.Actions)
	case req.Target > 0 && req.Target <= 10:
		result, err = s.planner.Roadmap(sess.Archetype, sess.Responses, req.Target)
	default:
		err = fmt.Errorf("%w: actions or a target between 0 and 10 is required", errBadRequest)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type projectionRequest struct {
	Overrides map[model.Dimension]float64 `json:"overrides" binding:"required"`
}

func (s *Server) projection(c *gin.Context) {
	var req projectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	sess, err := s.load(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := s.planner.Project(sess.Archetype, sess.Responses, req.Overrides)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}
