// Package api exposes the assessment engine over HTTP with gin.
package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/convert"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/pipeline"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/score"
	"github.com/ppiankov/dii/internal/session"
)

const shutdownTimeout = 10 * time.Second

// ReportStore keeps finished reports. The postgres store implements it.
type ReportStore interface {
	SaveReport(ctx context.Context, r *model.Report) error
	ReportHistory(ctx context.Context, subject string, limit int) ([]model.Report, error)
}

// Deps are the collaborators behind the handlers. Reports and Metrics are
// optional.
type Deps struct {
	Catalog   *catalog.Catalog
	Pipeline  *pipeline.Pipeline
	Sessions  ports.SessionStore
	Questions ports.QuestionProvider
	Incidents ports.IncidentCatalog
	Reports   ReportStore
	Metrics   *Metrics
}

// Server is the HTTP API
type Server struct {
	cfg       model.ServerConfig
	catalog   *catalog.Catalog
	pipeline  *pipeline.Pipeline
	engine    *session.Engine
	planner   *score.Planner
	sessions  ports.SessionStore
	questions ports.QuestionProvider
	incidents ports.IncidentCatalog
	reports   ReportStore
	metrics   *Metrics
	log       zerolog.Logger
	now       func() time.Time

	latestIncidents sync.Map // session id -> *provider.Latest[ports.IncidentMatches]
}

// NewServer wires the handlers
func NewServer(cfg model.ServerConfig, deps Deps, log zerolog.Logger) *Server {
	engine := deps.Pipeline.Engine()
	metrics := deps.Metrics
	if metrics == nil {
		metrics = NewMetrics("dii")
	}
	return &Server{
		cfg:       cfg,
		catalog:   deps.Catalog,
		pipeline:  deps.Pipeline,
		engine:    engine,
		planner:   score.NewPlanner(engine.Calculator()),
		sessions:  deps.Sessions,
		questions: deps.Questions,
		incidents: deps.Incidents,
		reports:   deps.Reports,
		metrics:   metrics,
		log:       log.With().Str("component", "api").Logger(),
		now:       time.Now,
	}
}

// Router builds the gin engine with every route registered
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(s.log))
	r.Use(s.metrics.Middleware())
	r.Use(corsMiddleware(s.cfg.AllowedOrigins))

	r.GET("/health", s.health)
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.Use(requireAPIKey(s.cfg.APIKey))
	{
		v1.GET("/archetypes", s.listArchetypes)
		v1.GET("/archetypes/:id", s.getArchetype)
		v1.GET("/dimensions", s.listDimensions)
		v1.GET("/actions", s.listActions)

		v1.POST("/classify", s.classify)
		v1.POST("/classify/validate", s.validateClassification)
		v1.POST("/convert", s.convert)
		v1.POST("/assess", s.assess)
		v1.GET("/reports", s.reportHistory)

		sessions := v1.Group("/sessions")
		{
			sessions.POST("", s.startSession)
			sessions.GET("/:id", s.getSession)
			sessions.DELETE("/:id", s.deleteSession)
			sessions.POST("/:id/answers", s.answer)
			sessions.DELETE("/:id/answers/:dimension", s.removeAnswer)
			sessions.POST("/:id/skips", s.acceptSkip)
			sessions.GET("/:id/question", s.question)
			sessions.GET("/:id/incidents", s.comparableIncidents)
			sessions.GET("/:id/report", s.sessionReport)
			sessions.POST("/:id/scenarios", s.scenario)
			sessions.POST("/:id/projection", s.projection)
		}
	}

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Addr).Msg("starting HTTP API")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.log.Info().Msg("shutting down HTTP API")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "dii",
	})
}

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrDisallowed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, convert.ErrOutOfRange),
		errors.Is(err, model.ErrUnknownDimension),
		errors.Is(err, model.ErrUnknownArchetype),
		errors.Is(err, score.ErrUnknownAction),
		errors.Is(err, session.ErrNotAnswered),
		errors.Is(err, errNoSkip),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	if status == http.StatusInternalServerError {
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
