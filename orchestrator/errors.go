package orchestrator

import (
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/directive"
	"github.com/effective-security/toolloop/modelclient"
	"github.com/effective-security/toolloop/tools"
)

// ErrorKind classifies the error that aborted a run.
type ErrorKind string

const (
	// KindNone is the kind of a run that was not aborted.
	KindNone ErrorKind = ""
	// KindTimeout is a model call exceeding the deadline.
	KindTimeout ErrorKind = "Timeout"
	// KindGeneration is a failed model call.
	KindGeneration ErrorKind = "Generation"
	// KindMalformedResponse is a response that is not one JSON object.
	KindMalformedResponse ErrorKind = "MalformedResponse"
	// KindUnknownTool is a call to a tool absent from the catalog.
	KindUnknownTool ErrorKind = "UnknownTool"
	// KindParameterExhausted is a call with fewer values than the tool declares.
	KindParameterExhausted ErrorKind = "ParameterExhausted"
	// KindTypeMismatch is a value that can not be converted to the declared type.
	KindTypeMismatch ErrorKind = "TypeMismatch"
	// KindToolExecution is a failure reported by the capability service.
	KindToolExecution ErrorKind = "ToolExecution"
)

var kinds = []struct {
	sentinel error
	kind     ErrorKind
}{
	{modelclient.ErrTimeout, KindTimeout},
	{modelclient.ErrGeneration, KindGeneration},
	{directive.ErrMalformed, KindMalformedResponse},
	{tools.ErrUnknownTool, KindUnknownTool},
	{tools.ErrParameterExhausted, KindParameterExhausted},
	{tools.ErrTypeMismatch, KindTypeMismatch},
	{tools.ErrToolExecution, KindToolExecution},
}

// KindOf returns the kind of the error, or fallback when it matches no sentinel.
func KindOf(err error, fallback ErrorKind) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return fallback
}
