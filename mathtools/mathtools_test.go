package mathtools_test

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/mathtools"
	"github.com/effective-security/toolloop/tools"
	"github.com/effective-security/toolloop/tools/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connect(t *testing.T, mailer mathtools.Mailer) *mcptools.Provider {
	t.Helper()
	ctx := context.Background()

	server, err := mathtools.NewServer("v0.0.1", mailer)
	require.NoError(t, err)

	ct, st := mcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, st, nil)
	require.NoError(t, err)

	p, err := mcptools.Connect(ctx, ct, "v0.0.1")
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })
	return p
}

func TestCatalog(t *testing.T) {
	p := connect(t, mathtools.NewOutbox())

	list, err := p.ListTools(context.Background())
	require.NoError(t, err)
	catalog := tools.NewCatalog(list...)
	assert.Equal(t, 12, catalog.Len())

	exp := map[string]string{
		"add":                              "add(a:integer,b:integer)",
		"divide":                           "divide(a:integer,b:integer)",
		"sqrt":                             "sqrt(a:number)",
		"fibonacci_numbers":                "fibonacci_numbers(n:integer)",
		"strings_to_chars_to_int":          "strings_to_chars_to_int(string:string)",
		"validate_strings_to_chars_to_int": "validate_strings_to_chars_to_int(string:string,int_list:array)",
		"int_list_to_exponential_sum":      "int_list_to_exponential_sum(int_list:array)",
		"call_send_gmail":                  "call_send_gmail(to:string,subject:string,body:string)",
	}
	for name, sig := range exp {
		d, ok := catalog.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, sig, d.Signature())
	}
}

func TestTools(t *testing.T) {
	ctx := context.Background()
	outbox := mathtools.NewOutbox()
	p := connect(t, outbox)

	list, err := p.ListTools(ctx)
	require.NoError(t, err)
	inv := tools.NewInvoker(tools.NewCatalog(list...), p)

	tcases := []struct {
		name string
		raw  []any
		exp  string
		err  string
	}{
		{name: "add", raw: []any{"2", "3"}, exp: "5"},
		{name: "subtract", raw: []any{"2", "3"}, exp: "-1"},
		{name: "multiply", raw: []any{"4", "3"}, exp: "12"},
		{name: "divide", raw: []any{"7", "2"}, exp: "3.5"},
		{name: "divide", raw: []any{"7", "0"}, err: "division by zero"},
		{name: "power", raw: []any{"2", "10"}, exp: "1024"},
		{name: "power", raw: []any{"2", "-1"}, err: "negative input"},
		{name: "power", raw: []any{"2", "63"}, err: "integer overflow"},
		{name: "power", raw: []any{"-2", "63"}, exp: "-9223372036854775808"},
		{name: "power", raw: []any{"-1", "1000000000000"}, exp: "1"},
		{name: "add", raw: []any{"9223372036854775807", "1"}, err: "integer overflow"},
		{name: "subtract", raw: []any{"-9223372036854775808", "1"}, err: "integer overflow"},
		{name: "multiply", raw: []any{"4294967296", "4294967296"}, err: "integer overflow"},
		{name: "multiply", raw: []any{"-1", "-9223372036854775808"}, err: "integer overflow"},
		{name: "sqrt", raw: []any{"16"}, exp: "4"},
		{name: "sqrt", raw: []any{"-1"}, err: "negative input"},
		{name: "factorial", raw: []any{"5"}, exp: "120"},
		{name: "factorial", raw: []any{"21"}, err: "invalid arguments"},
		{name: "fibonacci_numbers", raw: []any{"6"}, exp: "[0, 1, 1, 2, 3, 5]"},
		{name: "fibonacci_numbers", raw: []any{"0"}, exp: "[]"},
		{name: "strings_to_chars_to_int", raw: []any{"INDIA"}, exp: "[73, 78, 68, 73, 65]"},
		{name: "validate_strings_to_chars_to_int", raw: []any{"INDIA", "[73, 78, 68, 73, 65]"}, exp: "true"},
		{name: "validate_strings_to_chars_to_int", raw: []any{"INDIA", "[73, 78]"}, exp: "false"},
		{name: "int_list_to_exponential_sum", raw: []any{"[0, 0]"}, exp: "2"},
		{name: "call_send_gmail", raw: []any{"not-an-address", "s", "b"}, err: "invalid arguments"},
	}
	for _, tc := range tcases {
		res := inv.Invoke(ctx, tc.name, tc.raw)
		if tc.err != "" {
			require.Error(t, res.Err, tc.name)
			assert.True(t, errors.Is(res.Err, tools.ErrToolExecution), tc.name)
			assert.Contains(t, res.Err.Error(), tc.err)
			continue
		}
		require.NoError(t, res.Err, tc.name)
		assert.Equal(t, tc.exp, res.Text(), tc.name)
	}
	assert.Empty(t, outbox.Mails())
}

func TestExponentialSum(t *testing.T) {
	res, err := mathtools.IntListToExponentialSum(context.Background(), &mathtools.IntListInput{IntList: []int64{73, 78, 68, 73, 65}})
	require.NoError(t, err)

	exp := math.Exp(73) + math.Exp(78) + math.Exp(68) + math.Exp(73) + math.Exp(65)
	assert.Equal(t, []string{strconv.FormatFloat(exp, 'g', -1, 64)}, res)
}

func TestSendMail(t *testing.T) {
	ctx := context.Background()
	outbox := mathtools.NewOutbox()

	now := time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC)
	mathtools.TimeNowFn = func() time.Time { return now }
	defer func() { mathtools.TimeNowFn = time.Now }()

	p := connect(t, outbox)
	list, err := p.ListTools(ctx)
	require.NoError(t, err)
	inv := tools.NewInvoker(tools.NewCatalog(list...), p)

	res := inv.Invoke(ctx, "call_send_gmail", []any{"user@example.com", "Final Answer", "Final answer is 42"})
	require.NoError(t, res.Err)
	assert.Equal(t, "Email sent to user@example.com", res.Text())

	mails := outbox.Mails()
	require.Len(t, mails, 1)
	assert.Equal(t, &mathtools.Mail{
		To:      "user@example.com",
		Subject: "Final Answer",
		Body:    "Final answer is 42",
		SentAt:  now,
	}, mails[0])
}
