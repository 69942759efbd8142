// Package mathtools is an MCP tool server with the arithmetic, character code
// and mail tools used by the math agent.
package mathtools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/schema"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "mathtools")

// ServerName is the MCP implementation name.
const ServerName = "mathtools"

var (
	// ErrDivisionByZero is returned by divide.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrNegativeInput is returned for inputs outside of the tool domain.
	ErrNegativeInput = errors.New("negative input")
	// ErrOverflow is returned when an integer result does not fit in int64.
	ErrOverflow = errors.New("integer overflow")
)

var validate = validator.New()

// Handler computes the text values of a tool result.
type Handler[In any] func(ctx context.Context, in *In) ([]string, error)

// NewServer returns an MCP server with all tools registered.
func NewServer(version string, mailer Mailer) (*mcp.Server, error) {
	s := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: version}, nil)

	err := errors.Join(
		AddTool(s, "add", "Add two numbers", Add),
		AddTool(s, "subtract", "Subtract the second number from the first", Subtract),
		AddTool(s, "multiply", "Multiply two numbers", Multiply),
		AddTool(s, "divide", "Divide the first number by the second", Divide),
		AddTool(s, "power", "Raise the first number to the power of the second", Power),
		AddTool(s, "sqrt", "Square root of a number", Sqrt),
		AddTool(s, "factorial", "Factorial of a number", Factorial),
		AddTool(s, "fibonacci_numbers", "Return the first n Fibonacci numbers", Fibonacci),
		AddTool(s, "strings_to_chars_to_int", "Return the ASCII values of the characters in a word", StringsToCharsToInt),
		AddTool(s, "validate_strings_to_chars_to_int", "Validate that the list holds the ASCII values of the characters in a word", ValidateStringsToCharsToInt),
		AddTool(s, "int_list_to_exponential_sum", "Return sum of exponentials of numbers in a list", IntListToExponentialSum),
		AddTool(s, "call_send_gmail", "Send an email with the final answer", SendMail(mailer)),
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// AddTool registers the tool with the input schema reflected from In.
// Arguments are validated before the handler is called,
// handler errors are returned as error results.
func AddTool[In any](s *mcp.Server, name, description string, h Handler[In]) error {
	sch, err := schema.For[In]()
	if err != nil {
		return errors.WithMessagef(err, "tool %q", name)
	}

	s.AddTool(&mcp.Tool{
		Name:        name,
		Description: description,
		InputSchema: sch.Raw,
	}, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		in := new(In)
		if len(req.Params.Arguments) > 0 {
			if err := json.Unmarshal(req.Params.Arguments, in); err != nil {
				return errorResult(ctx, name, errors.Wrap(err, "invalid arguments")), nil
			}
		}
		if err := validate.Struct(in); err != nil {
			return errorResult(ctx, name, errors.Wrap(err, "invalid arguments")), nil
		}

		values, err := h(ctx, in)
		if err != nil {
			return errorResult(ctx, name, err), nil
		}

		logger.ContextKV(ctx, xlog.DEBUG,
			"status", "called",
			"tool", name,
			"result", values)

		content := make([]mcp.Content, 0, len(values))
		for _, v := range values {
			content = append(content, &mcp.TextContent{Text: v})
		}
		return &mcp.CallToolResult{Content: content}, nil
	})
	return nil
}

func errorResult(ctx context.Context, name string, err error) *mcp.CallToolResult {
	logger.ContextKV(ctx, xlog.DEBUG,
		"reason", "failed",
		"tool", name,
		"err", err.Error())
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
	}
}

// Add returns a+b.
func Add(_ context.Context, in *TwoIntegers) ([]string, error) {
	res := in.A + in.B
	if (in.B > 0 && res < in.A) || (in.B < 0 && res > in.A) {
		return nil, errors.WithMessagef(ErrOverflow, "%d + %d", in.A, in.B)
	}
	return ints(res), nil
}

// Subtract returns a-b.
func Subtract(_ context.Context, in *TwoIntegers) ([]string, error) {
	res := in.A - in.B
	if (in.B > 0 && res > in.A) || (in.B < 0 && res < in.A) {
		return nil, errors.WithMessagef(ErrOverflow, "%d - %d", in.A, in.B)
	}
	return ints(res), nil
}

// Multiply returns a*b.
func Multiply(_ context.Context, in *TwoIntegers) ([]string, error) {
	res, ok := mul(in.A, in.B)
	if !ok {
		return nil, errors.WithMessagef(ErrOverflow, "%d * %d", in.A, in.B)
	}
	return ints(res), nil
}

// mul returns a*b and false when the product overflows.
func mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	res := a * b
	return res, res/b == a
}

// Divide returns a/b.
func Divide(_ context.Context, in *TwoIntegers) ([]string, error) {
	if in.B == 0 {
		return nil, ErrDivisionByZero
	}
	return floats(float64(in.A) / float64(in.B)), nil
}

// Power returns a**b for a non-negative exponent.
func Power(_ context.Context, in *TwoIntegers) ([]string, error) {
	if in.B < 0 {
		return nil, errors.WithMessagef(ErrNegativeInput, "exponent %d", in.B)
	}
	switch in.A {
	case 0:
		if in.B == 0 {
			return ints(1), nil
		}
		return ints(0), nil
	case 1:
		return ints(1), nil
	case -1:
		if in.B%2 == 0 {
			return ints(1), nil
		}
		return ints(-1), nil
	}

	// |a| >= 2 overflows within 63 steps
	res := int64(1)
	for i := int64(0); i < in.B; i++ {
		var ok bool
		if res, ok = mul(res, in.A); !ok {
			return nil, errors.WithMessagef(ErrOverflow, "%d ** %d", in.A, in.B)
		}
	}
	return ints(res), nil
}

// Sqrt returns the square root.
func Sqrt(_ context.Context, in *OneNumber) ([]string, error) {
	if in.A < 0 {
		return nil, errors.WithMessagef(ErrNegativeInput, "%v", in.A)
	}
	return floats(math.Sqrt(in.A)), nil
}

// Factorial returns a!.
func Factorial(_ context.Context, in *FactorialInput) ([]string, error) {
	res := int64(1)
	for i := int64(2); i <= in.A; i++ {
		res *= i
	}
	return ints(res), nil
}

// Fibonacci returns the first n Fibonacci numbers.
func Fibonacci(_ context.Context, in *FibonacciInput) ([]string, error) {
	list := make([]int64, 0, in.N)
	a, b := int64(0), int64(1)
	for i := int64(0); i < in.N; i++ {
		list = append(list, a)
		a, b = b, a+b
	}
	return ints(list...), nil
}

// StringsToCharsToInt returns the character codes of the string.
func StringsToCharsToInt(_ context.Context, in *StringInput) ([]string, error) {
	return ints(charCodes(in.String)...), nil
}

// ValidateStringsToCharsToInt checks the list against the character codes of the string.
func ValidateStringsToCharsToInt(_ context.Context, in *ValidateCharsInput) ([]string, error) {
	codes := charCodes(in.String)
	ok := len(codes) == len(in.IntList)
	for i := 0; ok && i < len(codes); i++ {
		ok = codes[i] == in.IntList[i]
	}
	return []string{strconv.FormatBool(ok)}, nil
}

// IntListToExponentialSum returns the sum of e**x over the list.
func IntListToExponentialSum(_ context.Context, in *IntListInput) ([]string, error) {
	var sum float64
	for _, x := range in.IntList {
		sum += math.Exp(float64(x))
	}
	return floats(sum), nil
}

// SendMail returns the handler of the mail tool.
func SendMail(mailer Mailer) Handler[MailInput] {
	return func(ctx context.Context, in *MailInput) ([]string, error) {
		err := mailer.Send(ctx, &Mail{
			To:      in.To,
			Subject: in.Subject,
			Body:    in.Body,
		})
		if err != nil {
			return nil, errors.WithMessagef(err, "failed to send mail to %s", in.To)
		}
		return []string{fmt.Sprintf("Email sent to %s", in.To)}, nil
	}
}

func charCodes(s string) []int64 {
	list := make([]int64, 0, len(s))
	for _, r := range s {
		list = append(list, int64(r))
	}
	return list
}

func ints(list ...int64) []string {
	res := make([]string, 0, len(list))
	for _, v := range list {
		res = append(res, strconv.FormatInt(v, 10))
	}
	return res
}

func floats(list ...float64) []string {
	res := make([]string, 0, len(list))
	for _, v := range list {
		res = append(res, strconv.FormatFloat(v, 'g', -1, 64))
	}
	return res
}
