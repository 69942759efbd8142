// Package orchestrator runs the agent loop: it queries the model with the
// accumulated context, interprets the directive and invokes tools until the
// iteration budget is exhausted or an error aborts the run.
package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/effective-security/toolloop/directive"
	"github.com/effective-security/toolloop/pkg/metricskey"
	"github.com/effective-security/toolloop/pkg/prompts"
	"github.com/effective-security/toolloop/tools"
	"github.com/effective-security/xlog"
	"github.com/google/uuid"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "orchestrator")

// DefaultMaxIterations is the default iteration budget.
const DefaultMaxIterations = 6

// Generator produces the model response for a prompt.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Invoker calls a tool with raw positional values.
type Invoker interface {
	Invoke(ctx context.Context, name string, raw []any) tools.Result
}

// PromptBuilder composes the query and the prompt of each iteration.
type PromptBuilder interface {
	Query(prev string, state prompts.History) string
	Prompt(query string) string
}

// Config for the orchestrator.
type Config struct {
	MaxIterations int
	Task          string
	Callback      Callback
}

// Option configures the orchestrator.
type Option func(*Config)

// WithMaxIterations sets the iteration budget, values below 1 are ignored.
func WithMaxIterations(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxIterations = n
		}
	}
}

// WithTask sets the task used as the query of the first iteration.
func WithTask(task string) Option {
	return func(c *Config) {
		c.Task = task
	}
}

// WithCallback sets the run events callback.
func WithCallback(cb Callback) Option {
	return func(c *Config) {
		if cb != nil {
			c.Callback = cb
		}
	}
}

// Outcome is the snapshot of a finished run.
type Outcome struct {
	RunID      string
	State      Status
	Iterations int
	Records    []IterationRecord
	// LastResult is the last normalized result, empty if no iteration completed.
	LastResult string
	// Kind and Err are set when the run was aborted.
	Kind ErrorKind
	Err  error
}

// Orchestrator owns the conversation state of one run at a time.
// Run is not safe for concurrent use.
type Orchestrator struct {
	cfg     Config
	model   Generator
	invoker Invoker
	builder PromptBuilder

	status Status
	state  ConversationState
	query  string
	seen   map[uint64]int
}

// New returns an orchestrator.
func New(model Generator, invoker Invoker, builder PromptBuilder, opts ...Option) *Orchestrator {
	cfg := Config{
		MaxIterations: DefaultMaxIterations,
		Callback:      noop{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Orchestrator{
		cfg:     cfg,
		model:   model,
		invoker: invoker,
		builder: builder,
		status:  StatusIdle,
	}
}

// Status returns the state of the state machine.
func (o *Orchestrator) Status() Status {
	return o.status
}

// Conversation returns the live state, it is empty outside of Run.
func (o *Orchestrator) Conversation() *ConversationState {
	return &o.state
}

// MaxIterations returns the iteration budget.
func (o *Orchestrator) MaxIterations() int {
	return o.cfg.MaxIterations
}

// Run executes the loop and returns its outcome.
// Model and tool errors abort the run, they are reported in the outcome.
func (o *Orchestrator) Run(ctx context.Context) *Outcome {
	runID := uuid.NewString()
	modelName := o.model.Name()

	o.reset()
	o.status = StatusRunning
	o.query = o.cfg.Task

	started := time.Now()
	defer metricskey.PerfRun.MeasureSince(started, modelName)

	logger.ContextKV(ctx, xlog.INFO,
		"status", "run_start",
		"run_id", runID,
		"model", modelName,
		"max_iterations", o.cfg.MaxIterations)
	o.cfg.Callback.OnRunStart(ctx, runID, o.cfg.Task)

	for o.state.Iteration() < o.cfg.MaxIterations {
		if kind, err := o.step(ctx, runID); err != nil {
			return o.abort(ctx, runID, kind, err)
		}
		metricskey.StatsIterations.IncrCounter(1, modelName)
	}

	o.status = StatusCompleted
	metricskey.StatsRunsCompleted.IncrCounter(1, modelName)
	logger.ContextKV(ctx, xlog.INFO,
		"status", "run_completed",
		"run_id", runID,
		"iterations", o.state.Iteration())
	return o.finish(ctx, runID, KindNone, nil)
}

// step executes one iteration. State is only changed when the iteration completes.
func (o *Orchestrator) step(ctx context.Context, runID string) (ErrorKind, error) {
	index := o.state.Iteration() + 1
	cb := o.cfg.Callback

	o.query = o.builder.Query(o.query, &o.state)
	prompt := o.builder.Prompt(o.query)

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "iteration",
		"run_id", runID,
		"iteration", index,
		"query_size", len(o.query))

	cb.OnModelCallStart(ctx, index, prompt)
	text, err := o.model.Generate(ctx, prompt)
	if err != nil {
		cb.OnModelError(ctx, index, err)
		return KindOf(err, KindGeneration), err
	}
	cb.OnModelCallEnd(ctx, index, text)

	switch d := directive.Parse(text).(type) {
	case *directive.Malformed:
		metricskey.StatsResponseParseErrors.IncrCounter(1, o.model.Name())
		cb.OnParseError(ctx, index, d.Raw, d.Err)
		return KindMalformedResponse, d.Err

	case *directive.FunctionCall:
		o.checkRepeat(ctx, runID, index, d)
		cb.OnToolStart(ctx, index, d)
		res := o.invoker.Invoke(ctx, d.Name, d.Params)
		if !res.OK() {
			cb.OnToolError(ctx, index, d, res.Err)
			return KindOf(res.Err, KindToolExecution), res.Err
		}
		cb.OnToolEnd(ctx, index, d, res)

		answer := res.Text()
		rec := o.state.complete(calledSummary(index, d.Name, answer), answer)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "tool_result",
			"run_id", runID,
			"summary", rec.Summary)

	case *directive.FinalAnswer:
		// the run continues until the budget is exhausted
		cb.OnFinalAnswer(ctx, index, d)
		rec := o.state.complete(finalSummary(index, d.Value), d.Value)
		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "final_answer",
			"run_id", runID,
			"summary", rec.Summary)
	}
	return KindNone, nil
}

// abort is the only transition into Aborted.
func (o *Orchestrator) abort(ctx context.Context, runID string, kind ErrorKind, err error) *Outcome {
	rec := o.state.fail(err)
	o.status = StatusAborted
	metricskey.StatsRunsAborted.IncrCounter(1, o.model.Name(), string(kind))
	logger.ContextKV(ctx, xlog.WARNING,
		"status", "run_aborted",
		"run_id", runID,
		"kind", kind,
		"note", rec.Summary)
	return o.finish(ctx, runID, kind, err)
}

// finish takes the outcome snapshot and clears the live state.
func (o *Orchestrator) finish(ctx context.Context, runID string, kind ErrorKind, err error) *Outcome {
	last, _ := o.state.LastResult()
	outcome := &Outcome{
		RunID:      runID,
		State:      o.status,
		Iterations: o.state.Iteration(),
		Records:    o.state.Records(),
		LastResult: last,
		Kind:       kind,
		Err:        err,
	}
	o.reset()
	o.cfg.Callback.OnRunEnd(ctx, outcome)
	return outcome
}

func (o *Orchestrator) reset() {
	o.state.Reset()
	o.query = ""
	o.seen = make(map[uint64]int)
}

// checkRepeat reports a call with the same name and parameters as an earlier one.
// Repeats are not blocked.
func (o *Orchestrator) checkRepeat(ctx context.Context, runID string, index int, call *directive.FunctionCall) {
	key := fingerprint(call)
	if first, ok := o.seen[key]; ok {
		metricskey.StatsToolCallsRepeated.IncrCounter(1, call.Name)
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "repeated_call",
			"run_id", runID,
			"tool", call.Name,
			"iteration", index,
			"first_iteration", first)
		return
	}
	o.seen[key] = index
}

func fingerprint(call *directive.FunctionCall) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(call.Name)
	_, _ = d.Write([]byte{0})
	params, err := json.Marshal(call.Params)
	if err != nil {
		params = []byte(fmt.Sprint(call.Params))
	}
	_, _ = d.Write(params)
	return d.Sum64()
}
