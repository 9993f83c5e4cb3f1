// CLAUDE:SUMMARY Chain controller: render → extract → solve → submit rounds under absolute deadline and depth budget.
// Package chain drives the traversal of a quiz chain: render a page, gather
// its referenced data, ask the reasoning backend, submit, and follow the
// grading endpoint's next URL until the chain completes or a budget runs out.
package chain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/quizchain/ingest"
	"github.com/hazyhaar/quizchain/render"
	"github.com/hazyhaar/quizchain/solve"
	"github.com/hazyhaar/quizchain/submit"
)

// Renderer produces a text projection of a quiz page.
type Renderer interface {
	Render(ctx context.Context, url string, forceDynamic bool) (*render.Page, error)
}

// Ingestor downloads and summarizes a resource referenced by a page.
type Ingestor interface {
	Fetch(ctx context.Context, url string) *ingest.Summary
}

// Solver answers a question given its supporting material.
type Solver interface {
	Ask(ctx context.Context, req solve.Request) (*solve.Answer, error)
}

// Submitter posts an answer payload and interprets the grading response.
type Submitter interface {
	Submit(ctx context.Context, url string, payload []byte) *submit.Outcome
}

// idleCloser is implemented by collaborators that pool HTTP connections.
// The runner releases them on every chain exit path.
type idleCloser interface {
	CloseIdleConnections()
}

// Event is one step of a chain, recorded for later inspection.
type Event struct {
	RunID   string
	Type    string // round, submit, done, failed
	URL     string
	Depth   int
	Correct bool
	Detail  string
}

// EventSink receives chain events. Implementations must not block the chain.
type EventSink interface {
	Record(ctx context.Context, ev Event)
}

// Identity is forwarded verbatim with every submission.
type Identity struct {
	Email  string
	Secret string
}

// Config bounds one chain traversal.
type Config struct {
	// MaxDepth caps the number of rounds. Default: 5.
	MaxDepth int

	// RetryBudget is the number of re-solves allowed per round after a
	// wrong answer. Default: 1 (two attempts per page).
	RetryBudget int

	// Budget is the wall-clock allowance of a whole chain, measured from
	// acceptance. Default: 3m.
	Budget time.Duration

	// QuestionLimit caps question text handed to the backend, in runes.
	// Default: 8000.
	QuestionLimit int

	// MaxFiles caps data-file downloads per round. Default: 10.
	MaxFiles int

	// MaxPayloadBytes caps the serialized submission body. Default: 1MB.
	MaxPayloadBytes int

	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.MaxDepth <= 0 {
		c.MaxDepth = 5
	}
	if c.RetryBudget <= 0 {
		c.RetryBudget = 1
	}
	if c.Budget <= 0 {
		c.Budget = 3 * time.Minute
	}
	if c.QuestionLimit <= 0 {
		c.QuestionLimit = 8000
	}
	if c.MaxFiles <= 0 {
		c.MaxFiles = 10
	}
	if c.MaxPayloadBytes <= 0 {
		c.MaxPayloadBytes = 1_000_000
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result is the terminal record of one chain.
type Result struct {
	RunID     string
	Depth     int    // rounds executed
	FinalURL  string // last page the chain worked on
	Completed bool   // a correct answer with no next URL ended the chain
	Err       error  // why the chain stopped, when not Completed
}

// Runner executes chains.
type Runner struct {
	cfg      Config
	renderer Renderer
	ingestor Ingestor
	solver   Solver
	subm     Submitter
	events   EventSink
	registry *Registry
	logger   *slog.Logger
}

// NewRunner wires a Runner from its collaborators. events may be nil.
func NewRunner(cfg Config, renderer Renderer, ingestor Ingestor, solver Solver, subm Submitter, events EventSink) *Runner {
	cfg.defaults()
	return &Runner{
		cfg:      cfg,
		renderer: renderer,
		ingestor: ingestor,
		solver:   solver,
		subm:     subm,
		events:   events,
		registry: NewRegistry(0),
		logger:   cfg.Logger,
	}
}

// Registry exposes the runner's run registry for status queries.
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Start launches a chain in the background and returns its run ID and
// deadline. The chain's lifetime is bound to ctx, not to the caller's
// request.
func (r *Runner) Start(ctx context.Context, initialURL string, id Identity) (string, time.Time) {
	deadline := time.Now().Add(r.cfg.Budget)
	runID := r.registry.Create(initialURL, deadline)
	go func() {
		res := r.Run(ctx, runID, initialURL, id, deadline)
		r.registry.Finish(runID, res)
	}()
	return runID, deadline
}

// submissionPayload is the wire shape posted to the grading endpoint.
type submissionPayload struct {
	Email  string `json:"email"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
	Answer any    `json:"answer"`
}

// Run traverses the chain from initialURL until it completes or a budget
// runs out. The deadline is absolute: it is checked at the top of every
// round and before every retry, so no chain starts work past it.
func (r *Runner) Run(ctx context.Context, runID, initialURL string, id Identity, deadline time.Time) *Result {
	log := r.logger.With("run_id", runID)
	res := &Result{RunID: runID, FinalURL: initialURL}

	// Pooled connections are scoped to the chain.
	defer func() {
		for _, c := range []any{r.ingestor, r.subm} {
			if ic, ok := c.(idleCloser); ok {
				ic.CloseIdleConnections()
			}
		}
	}()

	current := initialURL
	for {
		if !time.Now().Before(deadline) {
			res.Err = ErrDeadlineExceeded
			break
		}
		if res.Depth >= r.cfg.MaxDepth {
			res.Err = ErrDepthExhausted
			break
		}
		if err := ctx.Err(); err != nil {
			res.Err = fmt.Errorf("chain: cancelled: %w", err)
			break
		}

		res.FinalURL = current
		r.registry.Progress(runID, current, res.Depth)
		log.Info("chain: round start", "url", current, "depth", res.Depth)
		r.record(ctx, Event{RunID: runID, Type: "round", URL: current, Depth: res.Depth})

		phase, out, err := r.round(ctx, runID, current, id, deadline, log)
		res.Depth++
		if err != nil {
			res.Err = err
			break
		}

		switch phase {
		case PhaseDone:
			res.Completed = true
		case PhaseAdvancing:
			current = out.NextURL
			continue
		case PhaseFailed:
			res.Err = fmt.Errorf("%w: %s", ErrStuck, out.Reason)
		default:
			res.Err = fmt.Errorf("chain: unexpected phase %v", phase)
		}
		break
	}

	if res.Completed {
		log.Info("chain: completed", "depth", res.Depth, "final_url", res.FinalURL)
		r.record(ctx, Event{RunID: runID, Type: "done", URL: res.FinalURL, Depth: res.Depth, Correct: true})
	} else {
		log.Warn("chain: failed", "depth", res.Depth, "final_url", res.FinalURL, "error", res.Err)
		r.record(ctx, Event{RunID: runID, Type: "failed", URL: res.FinalURL, Depth: res.Depth, Detail: errString(res.Err)})
	}
	return res
}

// round works one page to a non-retry phase: solve, submit, and re-solve
// while the retry budget and deadline allow.
func (r *Runner) round(ctx context.Context, runID, current string, id Identity, deadline time.Time, log *slog.Logger) (Phase, *submit.Outcome, error) {
	retries := 0
	for {
		out, err := r.attempt(ctx, runID, current, id, retries, log)
		if err != nil {
			return PhaseFailed, nil, err
		}
		phase := Decide(out.Correct, out.NextURL != "", retries, r.cfg.RetryBudget)
		if phase != PhaseRetrying {
			return phase, out, nil
		}
		retries++
		if !time.Now().Before(deadline) {
			return PhaseFailed, out, ErrDeadlineExceeded
		}
		log.Info("chain: retrying", "url", current, "retry", retries)
	}
}

// attempt performs one render → assemble → solve → submit pass.
func (r *Runner) attempt(ctx context.Context, runID, current string, id Identity, retry int, log *slog.Logger) (*submit.Outcome, error) {
	page, err := r.renderer.Render(ctx, current, false)
	if err != nil {
		return nil, fmt.Errorf("chain: render %s: %w", current, err)
	}

	submitURL, err := ExtractSubmitURL(page)
	if err != nil {
		return nil, err
	}

	req := r.assemble(ctx, page)
	ans, err := r.solver.Ask(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoAnswer, err)
	}

	body, err := json.Marshal(submissionPayload{
		Email:  id.Email,
		Secret: id.Secret,
		URL:    current,
		Answer: ans.Value,
	})
	if err != nil {
		return nil, fmt.Errorf("chain: marshal payload: %w", err)
	}
	if len(body) > r.cfg.MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(body))
	}

	out := r.subm.Submit(ctx, submitURL, body)
	log.Info("chain: submitted",
		"url", current,
		"submit_url", submitURL,
		"retry", retry,
		"correct", out.Correct,
		"next_url", out.NextURL)
	r.record(ctx, Event{RunID: runID, Type: "submit", URL: submitURL, Correct: out.Correct, Detail: out.Reason})
	return out, nil
}

// assemble builds the solver request: clipped question text, downloaded
// data files, and any API data the page calls out. Downloads are
// sequential; a quiz page references a handful of small files at most.
func (r *Runner) assemble(ctx context.Context, page *render.Page) solve.Request {
	req := solve.Request{Question: clipRunes(page.Text, r.cfg.QuestionLimit)}

	urls := DiscoverFileURLs(page)
	if len(urls) > r.cfg.MaxFiles {
		urls = urls[:r.cfg.MaxFiles]
	}
	for _, u := range urls {
		req.Files = append(req.Files, r.ingestor.Fetch(ctx, u))
	}

	if apiURL := DiscoverAPIURL(page.Text); apiURL != "" {
		s := r.ingestor.Fetch(ctx, apiURL)
		switch {
		case strings.HasPrefix(s.Preview, "[error"):
			// Unreachable API data is omitted rather than fed to the
			// backend as if it were real.
		case s.Data != nil:
			req.APIData = s.Data
		case s.Preview != "":
			req.APIData = map[string]any{"text": s.Preview}
		}
	}
	return req
}

func (r *Runner) record(ctx context.Context, ev Event) {
	if r.events != nil {
		r.events.Record(ctx, ev)
	}
}

func clipRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Unwrap-friendly classification helpers for callers that care why a chain
// stopped.
func IsBudgetError(err error) bool {
	return errors.Is(err, ErrDeadlineExceeded) || errors.Is(err, ErrDepthExhausted)
}
