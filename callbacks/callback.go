// Package callbacks provides implementations of orchestrator.Callback.
package callbacks

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/effective-security/toolloop/directive"
	"github.com/effective-security/toolloop/orchestrator"
	"github.com/effective-security/toolloop/tools"
	"github.com/effective-security/xlog"
	"gopkg.in/yaml.v3"
)

// ensure that the callbacks implement the correct interfaces
var (
	_ orchestrator.Callback = (*Noop)(nil)
	_ orchestrator.Callback = (*Printer)(nil)
	_ orchestrator.Callback = (*PackageLogger)(nil)
	_ orchestrator.Callback = (*Fanout)(nil)
	_ orchestrator.Callback = (*Scratchpad)(nil)
)

// Mode defines the mode for callback printing
type Mode int

const (
	// ModeDefault is the default mode for callback printing
	ModeDefault Mode = iota
	// ModeVerbose is the verbose mode for callback printing
	ModeVerbose
)

// ParseMode returns the printing mode for the console setting,
// verbose or anything else for the default mode.
func ParseMode(console string) Mode {
	if strings.EqualFold(console, "verbose") {
		return ModeVerbose
	}
	return ModeDefault
}

// NewConsole returns a Printer for the console setting,
// or Noop when the console output is none.
func NewConsole(w io.Writer, console string) orchestrator.Callback {
	if strings.EqualFold(console, "none") {
		return NewNoop()
	}
	return NewPrinter(w, ParseMode(console))
}

// Fanout is a callback handler that forwards the events to multiple callbacks.
type Fanout struct {
	callbacks []orchestrator.Callback
}

func NewFanout(callbacks ...orchestrator.Callback) *Fanout {
	return &Fanout{callbacks: callbacks}
}

func (l *Fanout) Add(callback orchestrator.Callback) {
	l.callbacks = append(l.callbacks, callback)
}

func (l *Fanout) OnRunStart(ctx context.Context, runID, task string) {
	for _, callback := range l.callbacks {
		callback.OnRunStart(ctx, runID, task)
	}
}

func (l *Fanout) OnRunEnd(ctx context.Context, outcome *orchestrator.Outcome) {
	for _, callback := range l.callbacks {
		callback.OnRunEnd(ctx, outcome)
	}
}

func (l *Fanout) OnModelCallStart(ctx context.Context, iteration int, prompt string) {
	for _, callback := range l.callbacks {
		callback.OnModelCallStart(ctx, iteration, prompt)
	}
}

func (l *Fanout) OnModelCallEnd(ctx context.Context, iteration int, response string) {
	for _, callback := range l.callbacks {
		callback.OnModelCallEnd(ctx, iteration, response)
	}
}

func (l *Fanout) OnModelError(ctx context.Context, iteration int, err error) {
	for _, callback := range l.callbacks {
		callback.OnModelError(ctx, iteration, err)
	}
}

func (l *Fanout) OnParseError(ctx context.Context, iteration int, response string, err error) {
	for _, callback := range l.callbacks {
		callback.OnParseError(ctx, iteration, response, err)
	}
}

func (l *Fanout) OnToolStart(ctx context.Context, iteration int, call *directive.FunctionCall) {
	for _, callback := range l.callbacks {
		callback.OnToolStart(ctx, iteration, call)
	}
}

func (l *Fanout) OnToolEnd(ctx context.Context, iteration int, call *directive.FunctionCall, result tools.Result) {
	for _, callback := range l.callbacks {
		callback.OnToolEnd(ctx, iteration, call, result)
	}
}

func (l *Fanout) OnToolError(ctx context.Context, iteration int, call *directive.FunctionCall, err error) {
	for _, callback := range l.callbacks {
		callback.OnToolError(ctx, iteration, call, err)
	}
}

func (l *Fanout) OnFinalAnswer(ctx context.Context, iteration int, answer *directive.FinalAnswer) {
	for _, callback := range l.callbacks {
		callback.OnFinalAnswer(ctx, iteration, answer)
	}
}

// Noop does nothing.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

func (*Noop) OnRunStart(context.Context, string, string)                            {}
func (*Noop) OnRunEnd(context.Context, *orchestrator.Outcome)                       {}
func (*Noop) OnModelCallStart(context.Context, int, string)                         {}
func (*Noop) OnModelCallEnd(context.Context, int, string)                           {}
func (*Noop) OnModelError(context.Context, int, error)                              {}
func (*Noop) OnParseError(context.Context, int, string, error)                      {}
func (*Noop) OnToolStart(context.Context, int, *directive.FunctionCall)             {}
func (*Noop) OnToolEnd(context.Context, int, *directive.FunctionCall, tools.Result) {}
func (*Noop) OnToolError(context.Context, int, *directive.FunctionCall, error)      {}
func (*Noop) OnFinalAnswer(context.Context, int, *directive.FinalAnswer)            {}

// Printer is a callback handler that prints to the Writer.
type Printer struct {
	Out  io.Writer
	Mode Mode

	lock sync.Mutex
}

func NewPrinter(out io.Writer, mode Mode) *Printer {
	return &Printer{Out: out, Mode: mode}
}

func (l *Printer) OnRunStart(ctx context.Context, runID, task string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Run Start: %s\n", runID)
	fmt.Fprintf(l.Out, "Task: %s\n", task)
}

func (l *Printer) OnRunEnd(ctx context.Context, outcome *orchestrator.Outcome) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Run End: %s: %s after %d iterations\n", outcome.RunID, outcome.State, outcome.Iterations)
	for _, rec := range outcome.Records {
		fmt.Fprintln(l.Out, rec.Summary)
	}
}

func (l *Printer) OnModelCallStart(ctx context.Context, iteration int, prompt string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "--- Iteration %d ---\n", iteration)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Prompt: %s\n", prompt)
	}
}

func (l *Printer) OnModelCallEnd(ctx context.Context, iteration int, response string) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "LLM Response: %s\n", response)
}

func (l *Printer) OnModelError(ctx context.Context, iteration int, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "LLM Error: %s\n", err.Error())
}

func (l *Printer) OnParseError(ctx context.Context, iteration int, response string, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "LLM Parse Error: %s\n", err.Error())
	fmt.Fprintf(l.Out, "Response: %s\n", response)
}

func (l *Printer) OnToolStart(ctx context.Context, iteration int, call *directive.FunctionCall) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Start: %s\n", call.Name)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Call:\n%s", toYAML(call))
	}
}

func (l *Printer) OnToolEnd(ctx context.Context, iteration int, call *directive.FunctionCall, result tools.Result) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool End: %s\n", call.Name)
	if l.Mode == ModeVerbose {
		fmt.Fprintf(l.Out, "Output: %s\n", result.Text())
	}
}

func (l *Printer) OnToolError(ctx context.Context, iteration int, call *directive.FunctionCall, err error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Tool Error: %s: %s\n", call.Name, err.Error())
}

func (l *Printer) OnFinalAnswer(ctx context.Context, iteration int, answer *directive.FinalAnswer) {
	l.lock.Lock()
	defer l.lock.Unlock()
	fmt.Fprintf(l.Out, "Final Answer: %s\n", answer.Value)
}

type callView struct {
	Name      string `yaml:"name"`
	Params    []any  `yaml:"params"`
	Reasoning string `yaml:"reasoning,omitempty"`
	SelfCheck string `yaml:"self_check,omitempty"`
	Errors    string `yaml:"errors,omitempty"`
}

func toYAML(call *directive.FunctionCall) string {
	params := make([]any, 0, len(call.Params))
	for _, p := range call.Params {
		params = append(params, fmt.Sprint(p))
	}
	b, err := yaml.Marshal(callView{
		Name:      call.Name,
		Params:    params,
		Reasoning: call.Meta.Reasoning,
		SelfCheck: call.Meta.SelfCheck,
		Errors:    call.Meta.Errors,
	})
	if err != nil {
		return err.Error() + "\n"
	}
	return string(b)
}

// PackageLogger is a callback handler that prints to the logger.
type PackageLogger struct {
	logger *xlog.PackageLogger
}

func NewPackageLogger(logger *xlog.PackageLogger) *PackageLogger {
	return &PackageLogger{logger: logger}
}

func (l *PackageLogger) OnRunStart(ctx context.Context, runID, task string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "run_start",
		"run_id", runID,
		"task", task,
	)
}

func (l *PackageLogger) OnRunEnd(ctx context.Context, outcome *orchestrator.Outcome) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "run_end",
		"run_id", outcome.RunID,
		"state", outcome.State,
		"iterations", outcome.Iterations,
		"last_result", outcome.LastResult,
	)
}

func (l *PackageLogger) OnModelCallStart(ctx context.Context, iteration int, prompt string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "model_call_start",
		"iteration", iteration,
		"prompt_size", len(prompt),
	)
}

func (l *PackageLogger) OnModelCallEnd(ctx context.Context, iteration int, response string) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "model_call_end",
		"iteration", iteration,
		"response", response,
	)
}

func (l *PackageLogger) OnModelError(ctx context.Context, iteration int, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "model_error",
		"iteration", iteration,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnParseError(ctx context.Context, iteration int, response string, err error) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "parse_error",
		"iteration", iteration,
		"err", err.Error(),
		"response", response,
	)
}

func (l *PackageLogger) OnToolStart(ctx context.Context, iteration int, call *directive.FunctionCall) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_start",
		"iteration", iteration,
		"tool", call.Name,
		"params", call.Params,
	)
}

func (l *PackageLogger) OnToolEnd(ctx context.Context, iteration int, call *directive.FunctionCall, result tools.Result) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "tool_end",
		"iteration", iteration,
		"tool", call.Name,
		"output", result.Text(),
	)
}

func (l *PackageLogger) OnToolError(ctx context.Context, iteration int, call *directive.FunctionCall, err error) {
	l.logger.ContextKV(ctx, xlog.ERROR,
		"event", "tool_error",
		"iteration", iteration,
		"tool", call.Name,
		"err", err.Error(),
	)
}

func (l *PackageLogger) OnFinalAnswer(ctx context.Context, iteration int, answer *directive.FinalAnswer) {
	l.logger.ContextKV(ctx, xlog.DEBUG,
		"event", "final_answer",
		"iteration", iteration,
		"answer", answer.Value,
	)
}
