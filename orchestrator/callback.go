package orchestrator

import (
	"context"

	"github.com/effective-security/toolloop/directive"
	"github.com/effective-security/toolloop/tools"
)

// Callback receives the events of a run.
// Callbacks are called synchronously from the loop.
type Callback interface {
	OnRunStart(ctx context.Context, runID, task string)
	OnRunEnd(ctx context.Context, outcome *Outcome)
	OnModelCallStart(ctx context.Context, iteration int, prompt string)
	OnModelCallEnd(ctx context.Context, iteration int, response string)
	OnModelError(ctx context.Context, iteration int, err error)
	OnParseError(ctx context.Context, iteration int, response string, err error)
	OnToolStart(ctx context.Context, iteration int, call *directive.FunctionCall)
	OnToolEnd(ctx context.Context, iteration int, call *directive.FunctionCall, result tools.Result)
	OnToolError(ctx context.Context, iteration int, call *directive.FunctionCall, err error)
	OnFinalAnswer(ctx context.Context, iteration int, answer *directive.FinalAnswer)
}

type noop struct{}

func (noop) OnRunStart(context.Context, string, string)                            {}
func (noop) OnRunEnd(context.Context, *Outcome)                                    {}
func (noop) OnModelCallStart(context.Context, int, string)                         {}
func (noop) OnModelCallEnd(context.Context, int, string)                           {}
func (noop) OnModelError(context.Context, int, error)                              {}
func (noop) OnParseError(context.Context, int, string, error)                      {}
func (noop) OnToolStart(context.Context, int, *directive.FunctionCall)             {}
func (noop) OnToolEnd(context.Context, int, *directive.FunctionCall, tools.Result) {}
func (noop) OnToolError(context.Context, int, *directive.FunctionCall, error)      {}
func (noop) OnFinalAnswer(context.Context, int, *directive.FinalAnswer)            {}
