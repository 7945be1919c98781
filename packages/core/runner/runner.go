package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/abdul-hamid-achik/domspec/packages/assert"
	"github.com/abdul-hamid-achik/domspec/packages/core/parser"
	"github.com/abdul-hamid-achik/domspec/packages/count"
	"github.com/abdul-hamid-achik/domspec/packages/document"
	"github.com/abdul-hamid-achik/domspec/packages/metrics"
	"github.com/abdul-hamid-achik/domspec/packages/poll"
	"github.com/abdul-hamid-achik/domspec/packages/query"
	"golang.org/x/time/rate"
)

// Config controls a run.
type Config struct {
	DefaultWait  time.Duration
	PollInterval time.Duration
	FetchTimeout time.Duration
	FetchRate    float64
	Bail         bool
	Verbose      bool
}

// Runner executes page-check specs.
type Runner struct {
	config   *Config
	recorder *metrics.Recorder
}

// NewRunner returns a runner with the given configuration.
func NewRunner(cfg *Config) *Runner {
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.DefaultWait <= 0 {
		cfg.DefaultWait = assert.DefaultWait
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = poll.DefaultInterval
	}
	return &Runner{
		config:   cfg,
		recorder: metrics.NewRecorder(),
	}
}

// CheckResult is the outcome of one check.
type CheckResult struct {
	Description string        `json:"description"`
	Passed      bool          `json:"passed"`
	Message     string        `json:"message,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// PageResult collects the check outcomes for one page.
type PageResult struct {
	Name   string         `json:"name"`
	Target string         `json:"target"`
	Checks []*CheckResult `json:"checks"`
}

// Failed returns the number of failed checks on the page.
func (p *PageResult) Failed() int {
	n := 0
	for _, c := range p.Checks {
		if !c.Passed {
			n++
		}
	}
	return n
}

// RunResult is the outcome of running one spec file.
type RunResult struct {
	SpecFile  string        `json:"specFile"`
	StartedAt time.Time     `json:"startedAt"`
	Duration  time.Duration `json:"duration"`
	Pages     []*PageResult `json:"pages"`
}

// Total returns the number of checks across all pages.
func (r *RunResult) Total() int {
	n := 0
	for _, p := range r.Pages {
		n += len(p.Checks)
	}
	return n
}

// Failed returns the number of failed checks across all pages.
func (r *RunResult) Failed() int {
	n := 0
	for _, p := range r.Pages {
		n += p.Failed()
	}
	return n
}

// Passed reports whether every check passed.
func (r *RunResult) Passed() bool {
	return r.Failed() == 0
}

// Metrics returns a snapshot of resolution latencies recorded so far.
func (r *Runner) Metrics() metrics.Summary {
	return r.recorder.Summarize()
}

// RunFile parses and executes one spec file.
func (r *Runner) RunFile(ctx context.Context, path string) (*RunResult, error) {
	spec, err := parser.ParseFile(path)
	if err != nil {
		return nil, err
	}

	result := &RunResult{
		SpecFile:  path,
		StartedAt: time.Now(),
	}
	baseDir := filepath.Dir(path)

	for _, page := range spec.Pages {
		pageResult, err := r.runPage(ctx, page, baseDir)
		if err != nil {
			return nil, fmt.Errorf("page %q: %w", page.Name, err)
		}
		result.Pages = append(result.Pages, pageResult)
		if r.config.Bail && pageResult.Failed() > 0 {
			break
		}
	}

	result.Duration = time.Since(result.StartedAt)
	return result, nil
}

func (r *Runner) runPage(ctx context.Context, page *parser.PageSpec, baseDir string) (*PageResult, error) {
	scope, err := r.buildScope(page, baseDir)
	if err != nil {
		return nil, err
	}

	target := page.URL
	if target == "" {
		target = page.File
	}

	asserter := assert.New(scope,
		assert.WithDefaultWait(r.config.DefaultWait),
		assert.WithEvaluator(poll.NewEvaluator(
			poll.WithInterval(r.config.PollInterval),
			poll.WithObserver(r.recorder.Record),
		)),
	)

	pageResult := &PageResult{Name: page.Name, Target: target}
	for _, check := range page.Checks {
		checkResult, err := r.runCheck(ctx, asserter, check)
		if err != nil {
			return nil, fmt.Errorf("check %s: %w", check.Describe(), err)
		}
		pageResult.Checks = append(pageResult.Checks, checkResult)
		if r.config.Bail && !checkResult.Passed {
			break
		}
	}
	return pageResult, nil
}

// buildScope turns a page spec into a Scope. Local files are re-read on
// every resolution so watch mode and concurrently written fixtures behave
// like a live page.
func (r *Runner) buildScope(page *parser.PageSpec, baseDir string) (query.Scope, error) {
	if page.URL != "" {
		opts := []document.LiveOption{}
		if r.config.FetchRate > 0 {
			opts = append(opts, document.WithFetchRate(rate.Limit(r.config.FetchRate)))
		}
		if r.config.FetchTimeout > 0 {
			opts = append(opts, document.WithFetchTimeout(r.config.FetchTimeout))
		}
		return document.NewLive(page.URL, opts...), nil
	}

	path := page.File
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	return document.SourceFunc(func(ctx context.Context) (*query.Node, error) {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		static, err := document.ParseBytes(data)
		if err != nil {
			return nil, err
		}
		return static.Root(ctx)
	}), nil
}

func (r *Runner) runCheck(ctx context.Context, asserter *assert.Asserter, check *parser.Check) (*CheckResult, error) {
	result := &CheckResult{Description: check.Describe()}
	start := time.Now()

	err := r.executeCheck(ctx, asserter, check)
	result.Duration = time.Since(start)

	if err == nil {
		result.Passed = true
		return result, nil
	}

	var enm *assert.ExpectationNotMet
	if errors.As(err, &enm) {
		result.Message = enm.Msg
		return result, nil
	}
	// Anything else is a defect or environment fault, not a failed check.
	return nil, err
}

func (r *Runner) executeCheck(ctx context.Context, asserter *assert.Asserter, check *parser.Check) error {
	opts, err := countOptions(check)
	if err != nil {
		return err
	}

	switch check.Kind {
	case "text", "pattern":
		q, err := buildTextQuery(check, opts)
		if err != nil {
			return err
		}
		if check.Negated {
			return asserter.AssertNoText(ctx, q)
		}
		return asserter.AssertText(ctx, q)
	default:
		q, err := buildSelectorQuery(check, opts)
		if err != nil {
			return err
		}
		if check.Negated {
			return asserter.AssertNoSelector(ctx, q)
		}
		return asserter.AssertSelector(ctx, q)
	}
}

func countOptions(check *parser.Check) (count.Options, error) {
	opts := count.Options{
		Count:   check.Count,
		Minimum: check.Minimum,
		Maximum: check.Maximum,
	}
	if len(check.Between) == 2 {
		opts.Between = &count.Range{Min: check.Between[0], Max: check.Between[1]}
	}
	if err := opts.Validate(); err != nil {
		return count.Options{}, err
	}
	return opts, nil
}

func buildTextQuery(check *parser.Check, opts count.Options) (*query.TextQuery, error) {
	if check.Text != "" || check.Checked != nil || len(check.Attrs) > 0 {
		return nil, fmt.Errorf("text/checked/attrs overlays are not supported for %q checks", check.Kind)
	}

	textOpts := []query.TextOption{query.WithTextCount(opts)}
	if check.WaitMs != nil {
		textOpts = append(textOpts, query.WithTextWait(time.Duration(*check.WaitMs)*time.Millisecond))
	}
	if check.Kind == "pattern" {
		return query.NewTextPattern(check.Locator, textOpts...)
	}
	return query.NewText(check.Locator, textOpts...)
}

func buildSelectorQuery(check *parser.Check, opts count.Options) (*query.SelectorQuery, error) {
	selOpts := []query.SelectorOption{query.WithCount(opts)}
	if check.WaitMs != nil {
		selOpts = append(selOpts, query.WithWait(time.Duration(*check.WaitMs)*time.Millisecond))
	}
	if check.Text != "" {
		selOpts = append(selOpts, query.WithText(check.Text))
	}
	if check.Checked != nil {
		if *check.Checked {
			selOpts = append(selOpts, query.Checked())
		} else {
			selOpts = append(selOpts, query.Unchecked())
		}
	}
	for name, value := range check.Attrs {
		selOpts = append(selOpts, query.WithAttr(name, value))
	}
	return query.NewSelector(query.Kind(check.Kind), check.Locator, selOpts...)
}
