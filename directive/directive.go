// Package directive classifies a model response into the decision it carries:
// a function call, a final answer, or a malformed response.
package directive

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "directive")

const (
	// OpeningFence is stripped from the start of a response.
	OpeningFence = "```json"
	// ClosingFence is stripped from the end of a response.
	ClosingFence = "```"
	// FunctionCallKey is the member that carries a function call.
	FunctionCallKey = "function_call"
	// FinalAnswerKey is the member that carries a final answer.
	FinalAnswerKey = "final_answer"
)

// ErrMalformed is returned for a response that is not a single JSON object
// of the expected shape.
var ErrMalformed = errors.New("malformed response")

// Directive is the decision carried by a model response,
// one of FunctionCall, FinalAnswer or Malformed.
type Directive interface {
	directive()
}

// Meta is the optional commentary a response may carry.
type Meta struct {
	Reasoning string `json:"reasoning,omitempty"`
	SelfCheck string `json:"self_check,omitempty"`
	Errors    string `json:"errors,omitempty"`
}

// FunctionCall asks to invoke the tool with positional parameters.
type FunctionCall struct {
	Name   string
	Params []any
	Meta   Meta
}

// FinalAnswer declares an answer.
type FinalAnswer struct {
	Value string
	Meta  Meta
}

// Malformed is a response that could not be classified.
type Malformed struct {
	Raw string
	Err error
}

func (*FunctionCall) directive() {}
func (*FinalAnswer) directive()  {}
func (*Malformed) directive()    {}

type response struct {
	FunctionCall json.RawMessage `json:"function_call"`
	FinalAnswer  json.RawMessage `json:"final_answer"`
	Reasoning    any             `json:"reasoning"`
	SelfCheck    any             `json:"self_check"`
	Errors       any             `json:"errors"`
}

type functionCall struct {
	Name *string `json:"name"`
	Args *struct {
		Parameters []any `json:"parameters"`
	} `json:"args"`
}

// Strip removes surrounding whitespace and the fence markers.
func Strip(text string) string {
	s := strings.TrimSpace(text)
	s = strings.TrimPrefix(s, OpeningFence)
	s = strings.TrimSuffix(s, ClosingFence)
	return strings.TrimSpace(s)
}

// Parse classifies the response text.
// The whole stripped text must be exactly one JSON object.
func Parse(text string) Directive {
	s := Strip(text)
	hint := strings.Contains(s, FunctionCallKey)

	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()

	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return malformed(text, errors.Wrap(err, "invalid JSON"))
	}
	if obj == nil {
		return malformed(text, errors.New("expected JSON object"))
	}
	if rest := strings.TrimSpace(s[dec.InputOffset():]); rest != "" {
		return malformed(text, errors.New("unexpected data after JSON object"))
	}

	var resp response
	if err := decodeNumbers([]byte(s), &resp); err != nil {
		return malformed(text, errors.Wrap(err, "invalid JSON"))
	}
	meta := Meta{
		Reasoning: textOf(resp.Reasoning),
		SelfCheck: textOf(resp.SelfCheck),
		Errors:    textOf(resp.Errors),
	}

	if _, ok := obj[FunctionCallKey]; ok {
		var fc functionCall
		if err := decodeNumbers(resp.FunctionCall, &fc); err != nil {
			return malformed(text, errors.Wrap(err, "invalid function_call"))
		}
		if fc.Name == nil || *fc.Name == "" {
			return malformed(text, errors.New("function_call without name"))
		}
		params := []any{}
		if fc.Args != nil && fc.Args.Parameters != nil {
			params = fc.Args.Parameters
		}
		logger.KV(xlog.DEBUG, "status", "function_call", "name", *fc.Name, "params", params)
		return &FunctionCall{Name: *fc.Name, Params: params, Meta: meta}
	}

	if hint {
		logger.KV(xlog.DEBUG, "status", "function_call_token_without_call")
	}

	value := s
	if raw, ok := obj[FinalAnswerKey]; ok {
		value = rawText(raw)
	}
	return &FinalAnswer{Value: value, Meta: meta}
}

func malformed(text string, err error) *Malformed {
	logger.KV(xlog.DEBUG, "reason", "malformed", "err", err.Error())
	return &Malformed{Raw: text, Err: errors.Mark(err, ErrMalformed)}
}

func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

// rawText returns a JSON string value unquoted, other values as their JSON text.
func rawText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) > 0 && raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	}
	return string(raw)
}

func textOf(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		js, _ := json.Marshal(val)
		return string(js)
	}
}
