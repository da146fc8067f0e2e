package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ppiankov/dii/internal/model"
)

// Metrics collects HTTP and assessment metrics on a private registry
type Metrics struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec

	assessments *prometheus.CounterVec
	answers     *prometheus.CounterVec
	scores      prometheus.Histogram
}

// NewMetrics creates the collectors under namespace
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dii"
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 15, 30},
			},
			[]string{"method", "route"},
		),
		assessments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assessments_total",
				Help:      "Completed assessments by maturity stage",
			},
			[]string{"stage"},
		),
		answers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_answers_total",
				Help:      "Dimension responses recorded in interactive sessions",
			},
			[]string{"dimension", "source"},
		),
		scores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "composite_score",
				Help:      "Distribution of composite immunity scores",
				Buckets:   []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
			},
		),
	}

	m.registry.MustRegister(m.requests, m.duration, m.assessments, m.answers, m.scores)
	return m
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Middleware records request counts and latency by route template
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.duration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// RecordAssessment counts a finished assessment
func (m *Metrics) RecordAssessment(composite model.CompositeScore) {
	m.assessments.WithLabelValues(string(composite.Stage)).Inc()
	m.scores.Observe(composite.Score)
}

// RecordAnswer counts a session response. source is "answered" or "skipped".
func (m *Metrics) RecordAnswer(d model.Dimension, source string) {
	m.answers.WithLabelValues(d.String(), source).Inc()
}
