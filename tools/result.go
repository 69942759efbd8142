package tools

import (
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Result is the outcome of a tool invocation:
// either a sequence of text values, or an error.
type Result struct {
	Values []string
	Err    error
}

// Success returns a successful result.
func Success(values []string) Result {
	return Result{Values: values}
}

// Failure returns a failed result.
func Failure(err error) Result {
	return Result{Err: err}
}

// OK returns true for a successful result.
func (r Result) OK() bool {
	return r.Err == nil
}

// Text returns the canonical text of the result:
// a single value collapses to itself, otherwise values are rendered as [a, b, c].
func (r Result) Text() string {
	if r.Err != nil {
		return r.Err.Error()
	}
	if len(r.Values) == 1 {
		return r.Values[0]
	}
	return "[" + strings.Join(r.Values, ", ") + "]"
}

// Normalize converts a heterogeneous tool result to text values.
// Results exposing a content sequence produce one value per item,
// other values produce their textual representation.
func Normalize(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case *mcp.CallToolResult:
		return normalizeContent(v.Content)
	case []mcp.Content:
		return normalizeContent(v)
	case ContentProvider:
		items := v.GetContent()
		list := make([]string, 0, len(items))
		for _, item := range items {
			list = append(list, itemText(item))
		}
		return list
	default:
		return []string{itemText(v)}
	}
}

func normalizeContent(content []mcp.Content) []string {
	list := make([]string, 0, len(content))
	for _, c := range content {
		if t, ok := c.(*mcp.TextContent); ok {
			list = append(list, t.Text)
			continue
		}
		list = append(list, toText(c))
	}
	return list
}

func itemText(v any) string {
	switch val := v.(type) {
	case TextProvider:
		return val.GetText()
	case fmt.Stringer:
		return val.String()
	case *mcp.TextContent:
		return val.Text
	default:
		return toText(v)
	}
}
