package tools

import "github.com/cockroachdb/errors"

var (
	// ErrUnknownTool is returned when a call names a tool absent from the catalog.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrParameterExhausted is returned when the call has fewer values than the schema declares.
	ErrParameterExhausted = errors.New("parameter exhausted")
	// ErrTypeMismatch is returned when a value can not be converted to the declared type.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrToolExecution is returned when the provider fails or flags the result as error.
	ErrToolExecution = errors.New("tool execution failed")
)
