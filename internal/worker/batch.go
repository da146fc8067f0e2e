package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/dii/internal/model"
)

// Assessor produces a report for one organization.
type Assessor interface {
	Assess(ctx context.Context, in model.AssessmentInput) (*model.Report, error)
}

// AssessResult is the outcome for one batch input.
type AssessResult struct {
	Index    int
	Subject  string
	Report   *model.Report
	Error    error
	Duration time.Duration
}

// BatchProcessor assesses many organizations concurrently
type BatchProcessor struct {
	assessor    Assessor
	concurrency int
	log         zerolog.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(assessor Assessor, concurrency int, log zerolog.Logger) *BatchProcessor {
	return &BatchProcessor{
		assessor:    assessor,
		concurrency: concurrency,
		log:         log,
	}
}

// Process assesses every input and returns results in input order. Inputs
// not started before ctx is cancelled get ctx's error.
func (b *BatchProcessor) Process(ctx context.Context, inputs []model.AssessmentInput) []*AssessResult {
	if len(inputs) == 0 {
		return []*AssessResult{}
	}

	pool := NewPool[*AssessResult](ctx, b.concurrency)
	pool.Start()

	go func() {
		for i, in := range inputs {
			if !pool.Submit(b.assessTask(i, in)) {
				break
			}
		}
		pool.Close()
	}()

	results := make([]*AssessResult, len(inputs))
	for res := range pool.Results() {
		results[res.Index] = res

		ev := b.log.Debug()
		if res.Error != nil {
			ev = b.log.Warn().Err(res.Error)
		}
		ev.Str("subject", res.Subject).Dur("took", res.Duration).Msg("assessment finished")
	}

	for i, res := range results {
		if res == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			results[i] = &AssessResult{Index: i, Subject: inputs[i].Subject(), Error: err}
		}
	}
	return results
}

func (b *BatchProcessor) assessTask(index int, in model.AssessmentInput) Task[*AssessResult] {
	return func(ctx context.Context) *AssessResult {
		started := time.Now()
		report, err := b.assessor.Assess(ctx, in)
		return &AssessResult{
			Index:    index,
			Subject:  in.Subject(),
			Report:   report,
			Error:    err,
			Duration: time.Since(started),
		}
	}
}

// Summary counts successes and failures.
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	ByStage   map[model.MaturityStage]int
}

// Summarize aggregates batch results.
func Summarize(results []*AssessResult) Summary {
	s := Summary{Total: len(results), ByStage: make(map[model.MaturityStage]int)}
	for _, r := range results {
		if r.Error != nil || r.Report == nil {
			s.Failed++
			continue
		}
		s.Succeeded++
		s.ByStage[r.Report.Composite.Stage]++
	}
	return s
}

// Stages returns the stages present in the summary, sorted.
func (s Summary) Stages() []model.MaturityStage {
	out := make([]model.MaturityStage, 0, len(s.ByStage))
	for stage := range s.ByStage {
		out = append(out, stage)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ReadURLsFromFile reads website URLs from a file (one per line), skipping
// blank lines, comments and duplicates.
func ReadURLsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}

// InputsFromURLs turns a URL list into inputs with no known answers.
func InputsFromURLs(urls []string) []model.AssessmentInput {
	inputs := make([]model.AssessmentInput, len(urls))
	for i, u := range urls {
		inputs[i] = model.AssessmentInput{URL: u}
	}
	return inputs
}
