package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/classify"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/pipeline"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/provider"
	"github.com/ppiankov/dii/internal/store/cachestore"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type memoryReports struct {
	saved []model.Report
}

func (r *memoryReports) SaveReport(_ context.Context, report *model.Report) error {
	r.saved = append(r.saved, *report)
	return nil
}

func (r *memoryReports) ReportHistory(_ context.Context, subject string, limit int) ([]model.Report, error) {
	var out []model.Report
	for _, rep := range r.saved {
		if rep.Subject == subject && len(out) < limit {
			out = append(out, rep)
		}
	}
	return out, nil
}

func newTestServer(t *testing.T, cfg model.ServerConfig, reports ReportStore) *Server {
	t.Helper()
	pcfg := model.DefaultConfig()
	pcfg.HTTP.RespectRobots = false
	cat := catalog.Default()

	return NewServer(cfg, Deps{
		Catalog:   cat,
		Pipeline:  pipeline.NewPipeline(pcfg, classify.New(cat), zerolog.Nop()),
		Sessions:  cachestore.New(cache.NewMemoryCache(time.Hour, time.Hour), time.Hour),
		Questions: provider.NewStaticQuestions(),
		Incidents: provider.NewStaticIncidents(nil),
		Reports:   reports,
		Metrics:   NewMetrics("test"),
	}, zerolog.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestHealth(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestAPIKey(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{APIKey: "secret"}, nil).Router()

	w := do(t, router, http.MethodGet, "/api/v1/archetypes", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/archetypes", nil)
	req.Header.Set(APIKeyHeader, "secret")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays open
	w = do(t, router, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestArchetypes(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodGet, "/api/v1/archetypes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Archetypes []struct {
			ID model.ArchetypeID `json:"id"`
		} `json:"archetypes"`
	}
	decode(t, w, &list)
	assert.Len(t, list.Archetypes, model.ArchetypeCount)

	w = do(t, router, http.MethodGet, "/api/v1/archetypes/financial_services", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var a struct {
		ID model.ArchetypeID `json:"id"`
	}
	decode(t, w, &a)
	assert.Equal(t, model.FinancialServices, a.ID)

	w = do(t, router, http.MethodGet, "/api/v1/archetypes/42", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDimensions(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodGet, "/api/v1/dimensions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"dimension":"RRG"`)
	assert.Contains(t, w.Body.String(), "Recovery Reality Gap")
}

func TestClassify(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodPost, "/api/v1/classify", gin.H{
		"profile": gin.H{"name": "First Mutual Bank", "industry": "Banking", "is_regulated": true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp classifyResponse
	decode(t, w, &resp)
	assert.Equal(t, model.FinancialServices, resp.Classification.Archetype)
	assert.Nil(t, resp.FetchMeta)

	w = do(t, router, http.MethodPost, "/api/v1/classify", gin.H{"profile": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestValidateClassification(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodPost, "/api/v1/classify/validate", gin.H{
		"profile":      gin.H{"name": "Acme Bank"},
		"archetype_id": int(model.FinancialServices),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var check model.ClassificationCheck
	decode(t, w, &check)
	assert.False(t, check.Valid)
	assert.NotEmpty(t, check.Issues)
}

func TestConvert(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodPost, "/api/v1/convert", gin.H{
		"values":       gin.H{"TRD": 12, "HFP": 20},
		"archetype_id": int(model.CriticalSoftware),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"TRD"`)
	assert.Contains(t, w.Body.String(), `"adjustment_applied":true`)

	w = do(t, router, http.MethodPost, "/api/v1/convert", gin.H{
		"values":       gin.H{"HFP": 140},
		"archetype_id": int(model.CriticalSoftware),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "out of range")
}

func TestAssess(t *testing.T) {
	reports := &memoryReports{}
	srv := newTestServer(t, model.ServerConfig{}, reports)
	router := srv.Router()

	w := do(t, router, http.MethodPost, "/api/v1/assess", gin.H{
		"profile": gin.H{"name": "Acme Retail", "description": "Retail stores and online shop"},
		"answers": gin.H{"TRD": 12, "AER": 150000, "HFP": 20, "BRI": 55, "RRG": 2.5},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var report model.Report
	decode(t, w, &report)
	assert.Equal(t, "Acme Retail", report.Subject)
	assert.Equal(t, model.DimensionCount, report.Composite.RealAnswers)
	require.Len(t, reports.saved, 1)

	w = do(t, router, http.MethodGet, "/api/v1/reports?subject=Acme+Retail", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Acme Retail")

	w = do(t, router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_assessments_total")
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}

func TestReportHistory_NoStore(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodGet, "/api/v1/reports?subject=Acme", nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func startSession(t *testing.T, h http.Handler, archetype model.ArchetypeID) sessionView {
	t.Helper()
	w := do(t, h, http.MethodPost, "/api/v1/sessions", gin.H{"archetype_id": int(archetype)})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view sessionView
	decode(t, w, &view)
	return view
}

func TestSessionLifecycle(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	view := startSession(t, router, model.HybridCommerce)
	assert.NotEmpty(t, view.ID)
	assert.Len(t, view.Remaining, model.DimensionCount)
	require.NotNil(t, view.Next)
	base := "/api/v1/sessions/" + view.ID

	// raw metric answer
	w := do(t, router, http.MethodPost, base+"/answers", gin.H{"dimension": "TRD", "value": 4})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var answered sessionView
	decode(t, w, &answered)
	assert.Equal(t, 1, answered.Composite.RealAnswers)
	assert.NotNil(t, answered.Insight)
	assert.NotNil(t, answered.Impact)
	assert.Len(t, answered.Remaining, model.DimensionCount-1)

	// option level answer
	w = do(t, router, http.MethodPost, base+"/answers", gin.H{"dimension": "BRI", "level": 2})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// out of range
	w = do(t, router, http.MethodPost, base+"/answers", gin.H{"dimension": "HFP", "value": 400})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// unknown dimension
	w = do(t, router, http.MethodPost, base+"/answers", gin.H{"dimension": "XYZ", "value": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// state survives a reload
	w = do(t, router, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var loaded sessionView
	decode(t, w, &loaded)
	assert.Equal(t, 2, loaded.Composite.RealAnswers)
	assert.Equal(t, view.ID, loaded.ID)

	// remove
	w = do(t, router, http.MethodDelete, base+"/answers/BRI", nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodDelete, base+"/answers/BRI", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// delete
	w = do(t, router, http.MethodDelete, base, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(t, router, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionStartFromProfile(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()

	w := do(t, router, http.MethodPost, "/api/v1/sessions", gin.H{
		"profile": gin.H{"name": "City Hospital", "industry": "Healthcare"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var view sessionView
	decode(t, w, &view)
	assert.Equal(t, model.RegulatedInformation, view.Archetype)

	w = do(t, router, http.MethodPost, "/api/v1/sessions", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAcceptSkip(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()
	view := startSession(t, router, model.CriticalSoftware)
	base := "/api/v1/sessions/" + view.ID

	w := do(t, router, http.MethodPost, base+"/answers", gin.H{"dimension": "TRD", "value": 10})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var answered sessionView
	decode(t, w, &answered)
	require.NotEmpty(t, answered.Skips)

	target := answered.Skips[0].Dimension
	w = do(t, router, http.MethodPost, base+"/skips", gin.H{"dimension": target.String()})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var skipped sessionView
	decode(t, w, &skipped)
	assert.NotContains(t, skipped.Remaining, target)

	// a dimension with a response has no recommendation
	w = do(t, router, http.MethodPost, base+"/skips", gin.H{"dimension": "TRD"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestionAndIncidents(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()
	view := startSession(t, router, model.FinancialServices)
	base := "/api/v1/sessions/" + view.ID

	w := do(t, router, http.MethodGet, base+"/question?company=Acme", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var q ports.Question
	decode(t, w, &q)
	assert.Equal(t, *view.Next, q.Dimension)
	assert.Len(t, q.Options, 5)
	assert.True(t, strings.Contains(q.Text, "Acme"), q.Text)

	w = do(t, router, http.MethodGet, base+"/question?dimension=RRG", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &q)
	assert.Equal(t, model.RRG, q.Dimension)

	w = do(t, router, http.MethodGet, base+"/incidents", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "insights")
}

func TestScenarioAndProjection(t *testing.T) {
	router := newTestServer(t, model.ServerConfig{}, nil).Router()
	view := startSession(t, router, model.HybridCommerce)
	base := "/api/v1/sessions/" + view.ID

	w := do(t, router, http.MethodPost, base+"/scenarios", gin.H{"name": "MFA first", "actions": []string{"hfp-mfa"}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "MFA first")

	w = do(t, router, http.MethodPost, base+"/scenarios", gin.H{"actions": []string{"nope"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, router, http.MethodPost, base+"/scenarios", gin.H{"target": 6})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Roadmap to 6.0")

	w = do(t, router, http.MethodPost, base+"/projection", gin.H{"overrides": gin.H{"TRD": 100}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "projected")

	w = do(t, router, http.MethodGet, base+"/report?subject=Acme", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report model.Report
	decode(t, w, &report)
	assert.Equal(t, "Acme", report.Subject)
	assert.Equal(t, model.HybridCommerce, report.Classification.Archetype)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(ports.ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, statusFor(model.ErrUnknownArchetype))
	assert.Equal(t, http.StatusUnprocessableEntity, statusFor(pipeline.ErrDisallowed))
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
}
