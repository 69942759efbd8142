package tools_test

import (
	"encoding/json"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/tools"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func argsMap(args *tools.Args) map[string]any {
	m := map[string]any{}
	for pair := args.Oldest(); pair != nil; pair = pair.Next() {
		m[pair.Key] = pair.Value
	}
	return m
}

func TestCoerce(t *testing.T) {
	tcases := []struct {
		name   string
		params []tools.ParamSpec
		raw    []any
		exp    map[string]any
		err    error
	}{
		{
			name:   "integers",
			params: []tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}, {Name: "b", Type: tools.ParamInteger}},
			raw:    []any{json.Number("2"), " 3 "},
			exp:    map[string]any{"a": int64(2), "b": int64(3)},
		},
		{
			name:   "number",
			params: []tools.ParamSpec{{Name: "x", Type: tools.ParamNumber}},
			raw:    []any{json.Number("2.5")},
			exp:    map[string]any{"x": 2.5},
		},
		{
			name:   "number from text",
			params: []tools.ParamSpec{{Name: "x", Type: tools.ParamNumber}},
			raw:    []any{"1e3"},
			exp:    map[string]any{"x": 1000.0},
		},
		{
			name:   "array from text",
			params: []tools.ParamSpec{{Name: "int_list", Type: tools.ParamArray}},
			raw:    []any{"[73, 78, 68, 73, 65]"},
			exp:    map[string]any{"int_list": []int64{73, 78, 68, 73, 65}},
		},
		{
			name:   "array from JSON",
			params: []tools.ParamSpec{{Name: "int_list", Type: tools.ParamArray}},
			raw:    []any{[]any{json.Number("1"), "2"}},
			exp:    map[string]any{"int_list": []int64{1, 2}},
		},
		{
			name:   "empty array",
			params: []tools.ParamSpec{{Name: "int_list", Type: tools.ParamArray}},
			raw:    []any{"[]"},
			exp:    map[string]any{"int_list": []int64{}},
		},
		{
			name:   "string pass-through",
			params: []tools.ParamSpec{{Name: "s", Type: tools.ParamString}},
			raw:    []any{"INDIA"},
			exp:    map[string]any{"s": "INDIA"},
		},
		{
			name:   "string from JSON values",
			params: []tools.ParamSpec{{Name: "n", Type: tools.ParamString}, {Name: "b", Type: tools.ParamString}, {Name: "l", Type: tools.ParamString}},
			raw:    []any{json.Number("42"), true, []any{json.Number("1"), "x"}},
			exp:    map[string]any{"n": "42", "b": "true", "l": `[1,"x"]`},
		},
		{
			name:   "surplus ignored",
			params: []tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}},
			raw:    []any{"1", "2", "3"},
			exp:    map[string]any{"a": int64(1)},
		},
		{
			name:   "no params",
			params: nil,
			raw:    []any{"1"},
			exp:    map[string]any{},
		},
		{
			name:   "exhausted",
			params: []tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}, {Name: "b", Type: tools.ParamInteger}},
			raw:    []any{"1"},
			err:    tools.ErrParameterExhausted,
		},
		{
			name:   "integer mismatch",
			params: []tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}},
			raw:    []any{"abc"},
			err:    tools.ErrTypeMismatch,
		},
		{
			name:   "fractional integer",
			params: []tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}},
			raw:    []any{json.Number("3.5")},
			err:    tools.ErrTypeMismatch,
		},
		{
			name:   "boolean integer",
			params: []tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}},
			raw:    []any{true},
			err:    tools.ErrTypeMismatch,
		},
		{
			name:   "number mismatch",
			params: []tools.ParamSpec{{Name: "x", Type: tools.ParamNumber}},
			raw:    []any{"two"},
			err:    tools.ErrTypeMismatch,
		},
		{
			name:   "array element mismatch",
			params: []tools.ParamSpec{{Name: "l", Type: tools.ParamArray}},
			raw:    []any{"[1, two]"},
			err:    tools.ErrTypeMismatch,
		},
		{
			name:   "array object mismatch",
			params: []tools.ParamSpec{{Name: "l", Type: tools.ParamArray}},
			raw:    []any{map[string]any{"a": 1}},
			err:    tools.ErrTypeMismatch,
		},
		{
			name:   "first failure wins",
			params: []tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}, {Name: "b", Type: tools.ParamInteger}},
			raw:    []any{"x"},
			err:    tools.ErrTypeMismatch,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			args, err := tools.Coerce(tc.params, tc.raw)
			if tc.err != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tc.err), "unexpected error: %v", err)
				assert.Nil(t, args)
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tc.exp, argsMap(args)); diff != "" {
				t.Errorf("Coerce() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCoerce_ErrorNamesParameter(t *testing.T) {
	_, err := tools.Coerce([]tools.ParamSpec{{Name: "a", Type: tools.ParamInteger}, {Name: "b", Type: tools.ParamInteger}}, []any{"1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b"`)
}

func TestCoerce_Positional(t *testing.T) {
	// binding depends only on position, never on the declared names
	for range 20 {
		first := gofakeit.LetterN(8)
		second := gofakeit.LetterN(9)
		a := gofakeit.Int64()
		b := gofakeit.Word()

		args, err := tools.Coerce([]tools.ParamSpec{
			{Name: first, Type: tools.ParamInteger},
			{Name: second, Type: tools.ParamString},
		}, []any{json.Number(jsonInt(a)), b})
		require.NoError(t, err)

		var keys []string
		for pair := args.Oldest(); pair != nil; pair = pair.Next() {
			keys = append(keys, pair.Key)
		}
		assert.Equal(t, []string{first, second}, keys)
		v, _ := args.Get(first)
		assert.Equal(t, a, v)
		v, _ = args.Get(second)
		assert.Equal(t, b, v)
	}
}

func jsonInt(n int64) string {
	js, _ := json.Marshal(n)
	return string(js)
}
