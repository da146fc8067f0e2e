// Package pipeline runs a complete assessment: optional website enrichment,
// classification, the answer session and report assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/dii/internal/catalog"
	"github.com/ppiankov/dii/internal/extract"
	"github.com/ppiankov/dii/internal/extract/adapters"
	"github.com/ppiankov/dii/internal/llm"
	"github.com/ppiankov/dii/internal/model"
	"github.com/ppiankov/dii/internal/score"
	"github.com/ppiankov/dii/internal/session"
	"github.com/ppiankov/dii/internal/util"
	"github.com/ppiankov/dii/internal/worker"
)

// ErrDisallowed is returned when robots.txt forbids fetching a page.
var ErrDisallowed = errors.New("disallowed by robots.txt")

// Classifier is satisfied by classify.Classifier and classify.Cached.
type Classifier interface {
	Classify(p model.CompanyProfile) model.Classification
	Assign(p model.CompanyProfile, id model.ArchetypeID) (model.Classification, error)
}

// Pipeline orchestrates the complete assessment process
type Pipeline struct {
	fetcher    *Fetcher
	robots     *util.RobotsChecker // nil when robots.txt is ignored
	limiter    *worker.Limiter
	adapters   *adapters.Registry
	classifier Classifier
	engine     *session.Engine
	summarizer *llm.Summarizer // nil or disabled when no provider is configured
	log        zerolog.Logger
	now        func() time.Time
}

var _ worker.Assessor = (*Pipeline)(nil)

// NewPipeline creates a pipeline with the given configuration. An LLM
// provider that fails to initialize is logged and left disabled.
func NewPipeline(cfg *model.Config, classifier Classifier, log zerolog.Logger) *Pipeline {
	proxy := util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy)

	var robots *util.RobotsChecker
	if cfg.HTTP.RespectRobots {
		robots = util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout, proxy)
	}

	summarizer, err := llm.NewSummarizer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP))
	if err != nil {
		log.Warn().Err(err).Str("provider", cfg.LLM.Provider).Msg("LLM provider disabled")
		summarizer = nil
	}

	return &Pipeline{
		fetcher:    NewFetcher(util.NewHTTPClient(cfg.HTTP.Timeout, proxy), cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes),
		robots:     robots,
		limiter:    worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize),
		adapters:   adapters.NewRegistry(),
		classifier: classifier,
		engine:     session.NewEngine(catalog.Default()),
		summarizer: summarizer,
		log:        log,
		now:        time.Now,
	}
}

// Engine exposes the session engine used for assessments.
func (p *Pipeline) Engine() *session.Engine {
	return p.engine
}

// Enrichment is what website enrichment learned about a company.
type Enrichment struct {
	Page extract.Page
	Meta model.FetchMeta
}

// Enrich fetches rawURL and reads the company page. robots.txt and the
// per-host rate limit are honored.
func (p *Pipeline) Enrich(ctx context.Context, rawURL string) (*Enrichment, error) {
	var delay time.Duration
	if p.robots != nil {
		allowed, crawlDelay, err := p.robots.CanFetch(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("%s: %w", rawURL, ErrDisallowed)
		}
		delay = crawlDelay
	}

	if err := p.limiter.WaitWithDelay(ctx, rawURL, delay); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	fetched, err := p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	page, err := p.adapters.Extract(fetched.HTML, fetched.FinalURL, fetched.Meta.ContentType)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	return &Enrichment{Page: page, Meta: fetched.Meta}, nil
}

// Classify enriches the profile from url when given, then classifies it.
// An explicit archetype skips signal classification.
func (p *Pipeline) Classify(ctx context.Context, in model.AssessmentInput) (model.CompanyProfile, model.Classification, *model.FetchMeta, error) {
	profile := in.Profile
	var meta *model.FetchMeta

	if in.URL != "" {
		enriched, err := p.Enrich(ctx, in.URL)
		switch {
		case err == nil:
			profile = extract.Merge(profile, enriched.Page)
			meta = &enriched.Meta
		case profile.Name == "" && profile.Description == "":
			return profile, model.Classification{}, nil, fmt.Errorf("enrich %s: %w", in.URL, err)
		default:
			p.log.Warn().Err(err).Str("url", in.URL).Msg("website enrichment failed, using the supplied profile")
		}
	}

	if in.Archetype != 0 {
		cls, err := p.classifier.Assign(profile, in.Archetype)
		return profile, cls, meta, err
	}
	return profile, p.classifier.Classify(profile), meta, nil
}

// Assess runs the full assessment for one input. Known answers are given
// in the order the orchestrator asks for them so insights and adaptive
// reordering match an interactive session.
func (p *Pipeline) Assess(ctx context.Context, in model.AssessmentInput) (*model.Report, error) {
	for d := range in.Answers {
		if !d.Valid() {
			return nil, fmt.Errorf("%w: %d", model.ErrUnknownDimension, int(d))
		}
	}

	profile, cls, meta, err := p.Classify(ctx, in)
	if err != nil {
		return nil, err
	}

	s, err := p.engine.Start(cls.Archetype)
	if err != nil {
		return nil, err
	}
	var insights []model.InsightRevelation
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, ok := nextAnswered(s, in.Answers)
		if !ok {
			break
		}
		s, err = s.Answer(d, in.Answers[d], p.now())
		if err != nil {
			return nil, fmt.Errorf("answer %s: %w", d, err)
		}
		if s.Insight != nil {
			insights = append(insights, *s.Insight)
		}
	}

	report, err := NewReport(p.engine.Calculator(), s, p.now())
	if err != nil {
		return nil, err
	}
	report.Subject = subject(in, profile)
	report.SourceURL = in.URL
	report.Profile = profile
	report.FetchMeta = meta
	report.Classification = cls
	report.Insights = insights

	p.Narrate(ctx, report)
	return report, nil
}

// NewReport builds the scoring part of a report from a session. Identity
// fields (subject, profile, classification) are left to the caller.
func NewReport(calc *score.Calculator, s *session.Session, at time.Time) (*model.Report, error) {
	interpretation, err := calc.Interpret(s.Composite)
	if err != nil {
		return nil, err
	}
	return &model.Report{
		AssessedAt:     at.UTC(),
		Responses:      s.Responses.List(),
		Composite:      s.Composite,
		Interpretation: interpretation,
		Orchestration:  s.Orchestration,
		Skips:          s.Skips(),
		Hints:          s.Hints(),
		Signals:        score.Signals(s.Composite),
		Principles:     model.DefaultPrinciples(),
	}, nil
}

// Narrate attaches an LLM narrative when a provider is configured. It runs
// after scoring and never changes the report's numbers.
func (p *Pipeline) Narrate(ctx context.Context, report *model.Report) {
	if !p.summarizer.IsEnabled() {
		return
	}
	summary, err := p.summarizer.GenerateSummary(ctx, *report)
	if err != nil {
		p.log.Warn().Err(err).Str("subject", report.Subject).Msg("LLM summary failed")
		return
	}
	report.LLM = summary
}

// nextAnswered returns the first open dimension, in recommended order, for
// which an answer was supplied.
func nextAnswered(s *session.Session, answers map[model.Dimension]float64) (model.Dimension, bool) {
	for _, d := range s.Remaining() {
		if _, ok := answers[d]; ok {
			return d, true
		}
	}
	return 0, false
}

func subject(in model.AssessmentInput, enriched model.CompanyProfile) string {
	if in.Profile.Name != "" {
		return in.Profile.Name
	}
	if enriched.Name != "" {
		return enriched.Name
	}
	return in.Subject()
}
