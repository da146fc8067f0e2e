package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/dii/internal/cache"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/ports"
	"github.com/ppiankov/dii/internal/worker"
)

const maxResponseBytes = 4 << 20

// incidentCatalogTTL is how long a fetched incident catalog is reused.
const incidentCatalogTTL = time.Hour

// Client is the shared transport of the remote providers.
type Client struct {
	http      *http.Client
	limiter   *worker.Limiter
	userAgent string
}

// NewClient creates a rate-limited JSON client.
func NewClient(httpClient *http.Client, limiter *worker.Limiter, userAgent string) *Client {
	return &Client{http: httpClient, limiter: limiter, userAgent: userAgent}
}

func (c *Client) do(ctx context.Context, method, url string, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: unexpected status %d", method, url, resp.StatusCode)
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// HTTPQuestions fetches question content from a remote service. The request
// body is the ports.QuestionRequest, the response a ports.Question.
type HTTPQuestions struct {
	client *Client
	url    string
}

// NewHTTPQuestions creates a remote question provider.
func NewHTTPQuestions(client *Client, url string) *HTTPQuestions {
	return &HTTPQuestions{client: client, url: url}
}

// Question implements ports.QuestionProvider.
func (h *HTTPQuestions) Question(ctx context.Context, req ports.QuestionRequest) (ports.Question, error) {
	if !req.Dimension.Valid() {
		return ports.Question{}, fmt.Errorf("question for %d: %w", int(req.Dimension), model.ErrUnknownDimension)
	}

	var q ports.Question
	if err := h.client.do(ctx, http.MethodPost, h.url, req, &q); err != nil {
		return ports.Question{}, err
	}
	if q.Dimension != req.Dimension {
		return ports.Question{}, fmt.Errorf("question service answered for %s, asked %s", q.Dimension, req.Dimension)
	}
	if q.Text == "" || len(q.Options) < 2 {
		return ports.Question{}, fmt.Errorf("question service returned incomplete content for %s", req.Dimension)
	}
	if q.Source == "" {
		q.Source = "remote"
	}
	return q, nil
}

// incidentDocument is the remote catalog format.
type incidentDocument struct {
	Version   string           `json:"version"`
	Incidents []ports.Incident `json:"incidents"`
}

// HTTPIncidents downloads an incident catalog and matches it locally. The
// catalog is cached for an hour.
type HTTPIncidents struct {
	client *Client
	url    string
	cache  cache.Cache
}

// NewHTTPIncidents creates a remote incident catalog. A nil cache disables
// caching.
func NewHTTPIncidents(client *Client, url string, c cache.Cache) *HTTPIncidents {
	if c == nil {
		c = cache.Noop{}
	}
	return &HTTPIncidents{client: client, url: url, cache: c}
}

// Comparable implements ports.IncidentCatalog.
func (h *HTTPIncidents) Comparable(ctx context.Context, q ports.IncidentQuery) (ports.IncidentMatches, error) {
	if !q.Archetype.Valid() {
		return ports.IncidentMatches{}, &model.ConfigError{Component: "incidents", Err: model.ErrUnknownArchetype}
	}

	key := cache.Key("incidents", h.url)
	var doc incidentDocument
	if !cache.GetJSON(h.cache, key, &doc) {
		if err := h.client.do(ctx, http.MethodGet, h.url, nil, &doc); err != nil {
			return ports.IncidentMatches{}, err
		}
		_ = cache.SetJSON(h.cache, key, doc, incidentCatalogTTL)
	}
	return Match(doc.Incidents, q), nil
}

// FallbackQuestions asks the primary provider and answers from the static
// set when it fails.
type FallbackQuestions struct {
	primary  ports.QuestionProvider
	fallback ports.QuestionProvider
	log      zerolog.Logger
}

// NewFallbackQuestions wraps primary with the static question set.
func NewFallbackQuestions(primary ports.QuestionProvider, log zerolog.Logger) *FallbackQuestions {
	return &FallbackQuestions{primary: primary, fallback: NewStaticQuestions(), log: log}
}

// Question implements ports.QuestionProvider.
func (f *FallbackQuestions) Question(ctx context.Context, req ports.QuestionRequest) (ports.Question, error) {
	q, err := f.primary.Question(ctx, req)
	if err == nil {
		return q, nil
	}
	f.log.Warn().Err(err).Str("dimension", req.Dimension.String()).Msg("question provider failed, using built-in text")
	return f.fallback.Question(ctx, req)
}

// NewQuestionProvider returns the remote provider when url is set, else the
// static one.
func NewQuestionProvider(client *Client, url string, log zerolog.Logger) ports.QuestionProvider {
	if url == "" {
		return NewStaticQuestions()
	}
	return NewFallbackQuestions(NewHTTPQuestions(client, url), log)
}

// NewIncidentCatalog returns the remote catalog when url is set, else the
// built-in sample.
func NewIncidentCatalog(client *Client, url string, c cache.Cache) ports.IncidentCatalog {
	if url == "" {
		return NewStaticIncidents(nil)
	}
	return NewHTTPIncidents(client, url, c)
}
