package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ppiankov/dii/internal/classify"
	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/score"
)

const defaultHistoryLimit = 20

func (s *Server) listArchetypes(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"archetypes": s.catalog.All()})
}

func (s *Server) getArchetype(c *gin.Context) {
	id, err := model.ParseArchetypeID(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.catalog.Lookup(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

type dimensionInfo struct {
	Dimension      model.Dimension `json:"dimension"`
	Name           string          `json:"name"`
	Bounds         convert.Bounds  `json:"bounds"`
	HigherIsBetter bool            `json:"higher_is_better"`
	RiskOriented   bool            `json:"risk_oriented"`
}

func (s *Server) listDimensions(c *gin.Context) {
	out := make([]dimensionInfo, 0, model.DimensionCount)
	for _, d := range model.AllDimensions() {
		bounds, err := convert.InputBounds(d)
		if err != nil {
			s.fail(c, err)
			return
		}
		out = append(out, dimensionInfo{
			Dimension:      d,
			Name:           d.Name(),
			Bounds:         bounds,
			HigherIsBetter: d.HigherIsBetter(),
			RiskOriented:   d.RiskOriented(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"dimensions": out})
}

func (s *Server) listActions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"actions": score.Actions()})
}

type classifyRequest struct {
	Profile   model.CompanyProfile `json:"profile"`
	URL       string               `json:"url"`
	Archetype model.ArchetypeID    `json:"archetype_id"`
}

type classifyResponse struct {
	Profile        model.CompanyProfile `json:"profile"`
	Classification model.Classification `json:"classification"`
	FetchMeta      *model.FetchMeta     `json:"fetch_meta,omitempty"`
}

func (s *Server) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if req.Profile.Name == "" && req.URL == "" {
		s.fail(c, fmt.Errorf("%w: profile.name or url is required", errBadRequest))
		return
	}

	profile, cls, meta, err := s.pipeline.Classify(c.Request.Context(), model.AssessmentInput{
		Profile:   req.Profile,
		URL:       req.URL,
		Archetype: req.Archetype,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, classifyResponse{Profile: profile, Classification: cls, FetchMeta: meta})
}

type validateRequest struct {
	Profile   model.CompanyProfile `json:"profile"`
	Archetype model.ArchetypeID    `json:"archetype_id" binding:"required"`
}

func (s *Server) validateClassification(c *gin.Context) {
	var req validateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if !req.Archetype.Valid() {
		s.fail(c, fmt.Errorf("%w: %d", model.ErrUnknownArchetype, int(req.Archetype)))
		return
	}
	c.JSON(http.StatusOK, classify.ValidateClassification(req.Profile, req.Archetype))
}

type convertRequest struct {
	Values    map[model.Dimension]float64 `json:"values" binding:"required"`
	Archetype model.ArchetypeID           `json:"archetype_id" binding:"required"`
}

func (s *Server) convert(c *gin.Context) {
	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if !req.Archetype.Valid() {
		s.fail(c, fmt.Errorf("%w: %d", model.ErrUnknownArchetype, int(req.Archetype)))
		return
	}
	out, err := convert.ConvertBatch(req.Values, req.Archetype)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"conversions": out})
}

func (s *Server) assess(c *gin.Context) {
	var in model.AssessmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if in.Profile.Name == "" && in.URL == "" {
		s.fail(c, fmt.Errorf("%w: profile.name or url is required", errBadRequest))
		return
	}

	report, err := s.pipeline.Assess(c.Request.Context(), in)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.metrics.RecordAssessment(report.Composite)

	if s.reports != nil {
		if err := s.reports.SaveReport(c.Request.Context(), report); err != nil {
			s.log.Warn().Err(err).Str("subject", report.Subject).Msg("failed to store report")
		}
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) reportHistory(c *gin.Context) {
	if s.reports == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "report history requires the postgres store"})
		return
	}
	subject := c.Query("subject")
	if subject == "" {
		s.fail(c, fmt.Errorf("%w: subject is required", errBadRequest))
		return
	}
	limit := defaultHistoryLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.fail(c, fmt.Errorf("%w: invalid limit %q", errBadRequest, v))
			return
		}
		limit = n
	}

	reports, err := s.reports.ReportHistory(c.Request.Context(), subject, limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"subject": subject, "reports": reports})
}
