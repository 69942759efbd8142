package callbacks

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/effective-security/toolloop/directive"
	"github.com/effective-security/toolloop/orchestrator"
	"github.com/effective-security/toolloop/tools"
)

var TimeNowFn = time.Now

// RunStats are the counters of one run.
type RunStats struct {
	RunID string

	Duration           time.Duration
	Iterations         int
	ModelCalls         uint32
	ModelCallsFailed   uint32
	ParseErrors        uint32
	PromptBytes        uint64
	ResponseBytes      uint64
	ToolCalls          uint32
	ToolCallsSucceeded uint32
	ToolCallsFailed    uint32
	FinalAnswers       uint32
}

// KV returns the stats as key-value pairs for logging.
func (s *RunStats) KV() []any {
	return []any{
		"run_id", s.RunID,
		"duration", s.Duration.String(),
		"iterations", s.Iterations,
		"model_calls", s.ModelCalls,
		"model_calls_failed", s.ModelCallsFailed,
		"parse_errors", s.ParseErrors,
		"prompt_bytes", s.PromptBytes,
		"response_bytes", s.ResponseBytes,
		"tool_calls", s.ToolCalls,
		"tool_calls_succeeded", s.ToolCallsSucceeded,
		"tool_calls_failed", s.ToolCallsFailed,
		"final_answers", s.FinalAnswers,
	}
}

// Scratchpad is a callback handler that keeps a transcript and stats of the run.
// Runs are sequential, the transcript of the finished run is available until the next one starts.
type Scratchpad struct {
	mode Mode
	lock sync.Mutex

	current *run
	stats   *RunStats
	output  []byte
}

func NewScratchpad(mode Mode) *Scratchpad {
	return &Scratchpad{mode: mode}
}

// Last returns the stats and transcript of the last finished run.
func (l *Scratchpad) Last() (*RunStats, []byte) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.stats, l.output
}

func (l *Scratchpad) getRun() *run {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.current
}

func (l *Scratchpad) OnRunStart(ctx context.Context, runID, task string) {
	r := &run{
		stats:   RunStats{RunID: runID},
		started: TimeNowFn(),
	}

	l.lock.Lock()
	l.current = r
	l.lock.Unlock()

	r.print("*** Run Started ***")
	r.print("Task:", task)
}

func (l *Scratchpad) OnRunEnd(ctx context.Context, outcome *orchestrator.Outcome) {
	r := l.getRun()
	if r == nil {
		return
	}

	stats := r.stats
	stats.Duration = TimeNowFn().Sub(r.started)
	stats.Iterations = outcome.Iterations

	for _, rec := range outcome.Records {
		r.print(rec.Summary)
	}
	r.print(fmt.Sprintf("Model calls: %d, Failed: %d, Parse errors: %d, Prompt bytes: %d, Response bytes: %d",
		stats.ModelCalls,
		stats.ModelCallsFailed,
		stats.ParseErrors,
		stats.PromptBytes,
		stats.ResponseBytes,
	))
	r.print(fmt.Sprintf("Tool calls: %d, Succeeded: %d, Failed: %d, Final answers: %d",
		stats.ToolCalls,
		stats.ToolCallsSucceeded,
		stats.ToolCallsFailed,
		stats.FinalAnswers,
	))
	r.print(fmt.Sprintf("*** Run %s. Iterations: %d, Duration: %s ***", outcome.State, stats.Iterations, stats.Duration))

	l.lock.Lock()
	l.current = nil
	l.stats = &stats
	l.output = r.w.Bytes()
	l.lock.Unlock()
}

func (l *Scratchpad) OnModelCallStart(ctx context.Context, iteration int, prompt string) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.ModelCalls++
	r.stats.PromptBytes += uint64(len(prompt))
	r.print(iterationTag(iteration), "*** LLM Call ***", fmt.Sprintf("%d bytes", len(prompt)))
	if l.mode == ModeVerbose {
		r.print(iterationTag(iteration), "Prompt:", prompt)
	}
}

func (l *Scratchpad) OnModelCallEnd(ctx context.Context, iteration int, response string) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.ResponseBytes += uint64(len(response))
	r.print(iterationTag(iteration), "*** LLM Call End ***")
	if l.mode == ModeVerbose {
		r.print(iterationTag(iteration), "Response:", response)
	}
}

func (l *Scratchpad) OnModelError(ctx context.Context, iteration int, err error) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.ModelCallsFailed++
	r.print(iterationTag(iteration), "*** LLM Error ***", err.Error())
}

func (l *Scratchpad) OnParseError(ctx context.Context, iteration int, response string, err error) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.ParseErrors++
	r.print(iterationTag(iteration), "*** LLM Parse Error ***", err.Error())
	r.print("Response:", response)
}

func (l *Scratchpad) OnToolStart(ctx context.Context, iteration int, call *directive.FunctionCall) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.ToolCalls++
	r.print(iterationTag(iteration), call.Name, "*** Tool Start ***")
	r.print(iterationTag(iteration), call.Name, "Params:", fmt.Sprint(call.Params))
}

func (l *Scratchpad) OnToolEnd(ctx context.Context, iteration int, call *directive.FunctionCall, result tools.Result) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.ToolCallsSucceeded++
	if l.mode == ModeVerbose {
		r.print(iterationTag(iteration), call.Name, "Output:", result.Text())
	}
	r.print(iterationTag(iteration), call.Name, "*** Tool End ***")
}

func (l *Scratchpad) OnToolError(ctx context.Context, iteration int, call *directive.FunctionCall, err error) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.ToolCallsFailed++
	r.print(iterationTag(iteration), call.Name, "*** Tool Error ***", err.Error())
}

func (l *Scratchpad) OnFinalAnswer(ctx context.Context, iteration int, answer *directive.FinalAnswer) {
	r := l.getRun()
	if r == nil {
		return
	}
	r.stats.FinalAnswers++
	r.print(iterationTag(iteration), "*** Final Answer ***", answer.Value)
}

func iterationTag(iteration int) string {
	return "#" + strconv.Itoa(iteration)
}

type run struct {
	w       bytes.Buffer
	started time.Time
	lock    sync.Mutex
	stats   RunStats
}

// print writes the entries to the run's output.
// The entries are written in the following format:
// [timestamp runID] entry entry\n
func (r *run) print(entries ...string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	now := TimeNowFn()
	ts := now.Format("2006-01-02 15:04:05")

	_, _ = r.w.WriteString(ts)
	_, _ = r.w.WriteString(" ")
	_, _ = r.w.WriteString(r.stats.RunID)
	_, _ = r.w.WriteString(" ")

	for i, entry := range entries {
		if i > 0 {
			_, _ = r.w.WriteString(" ")
		}
		_, _ = r.w.WriteString(entry)
	}
	_, _ = r.w.WriteString("\n")
}
