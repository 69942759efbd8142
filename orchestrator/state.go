package orchestrator

import "fmt"

// Status is the state of the run state machine.
type Status string

const (
	// StatusIdle is the state before the run and after a reset.
	StatusIdle Status = "Idle"
	// StatusRunning is the state while iterations execute.
	StatusRunning Status = "Running"
	// StatusCompleted is the terminal state when the budget is exhausted without errors.
	StatusCompleted Status = "Completed"
	// StatusAborted is the terminal state after an error.
	StatusAborted Status = "Aborted"
)

// IsTerminal returns true for Completed and Aborted.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusAborted
}

// IterationRecord is one entry of the conversation history.
// A record with Err is the terminal error note of an aborted run.
type IterationRecord struct {
	Index   int
	Summary string
	Err     error
}

// IsError returns true for the terminal error note.
func (r IterationRecord) IsError() bool {
	return r.Err != nil
}

// ConversationState is the history of one run.
// Records are append-only, the iteration counter only grows.
type ConversationState struct {
	records    []IterationRecord
	lastResult *string
	iteration  int
}

// Reset clears the state.
func (s *ConversationState) Reset() {
	s.records = nil
	s.lastResult = nil
	s.iteration = 0
}

// IsEmpty returns true when nothing was recorded since the last reset.
func (s *ConversationState) IsEmpty() bool {
	return len(s.records) == 0 && s.lastResult == nil && s.iteration == 0
}

// Iteration returns the number of completed iterations.
func (s *ConversationState) Iteration() int {
	return s.iteration
}

// Records returns a copy of the history.
func (s *ConversationState) Records() []IterationRecord {
	return append([]IterationRecord(nil), s.records...)
}

// LastResult returns the last normalized result, if any.
func (s *ConversationState) LastResult() (string, bool) {
	if s.lastResult == nil {
		return "", false
	}
	return *s.lastResult, true
}

// HasResult returns true once any iteration completed.
func (s *ConversationState) HasResult() bool {
	return s.lastResult != nil
}

// Summaries returns the summary lines in iteration order.
func (s *ConversationState) Summaries() []string {
	list := make([]string, 0, len(s.records))
	for _, r := range s.records {
		list = append(list, r.Summary)
	}
	return list
}

// complete records a successful iteration and advances the counter.
func (s *ConversationState) complete(summary, result string) IterationRecord {
	s.iteration++
	rec := IterationRecord{Index: s.iteration, Summary: summary}
	s.records = append(s.records, rec)
	s.lastResult = &result
	return rec
}

// fail appends the terminal error note for the current iteration,
// the counter is not advanced.
func (s *ConversationState) fail(err error) IterationRecord {
	index := s.iteration + 1
	rec := IterationRecord{
		Index:   index,
		Summary: fmt.Sprintf("Error in iteration %d: %s", index, err.Error()),
		Err:     err,
	}
	s.records = append(s.records, rec)
	return rec
}

func calledSummary(index int, tool, answer string) string {
	return fmt.Sprintf("In iteration %d you called %s and got answer %s.", index, tool, answer)
}

func finalSummary(index int, answer string) string {
	return fmt.Sprintf("In iteration %d you got final answer %s.", index, answer)
}
