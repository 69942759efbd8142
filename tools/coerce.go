package tools

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Args is the coerced argument mapping, in schema order.
type Args = orderedmap.OrderedMap[string, any]

// Coerce binds raw positional values to the declared parameters.
// Binding is strictly positional: the i-th value is bound to the i-th parameter
// regardless of names. Surplus values are ignored.
// Coercion stops at the first failure and no partial arguments are returned.
func Coerce(params []ParamSpec, raw []any) (*Args, error) {
	args := orderedmap.New[string, any](orderedmap.WithCapacity[string, any](len(params)))
	for i, p := range params {
		if i >= len(raw) {
			return nil, errors.WithMessagef(ErrParameterExhausted, "missing value for parameter %q", p.Name)
		}
		v, err := coerceValue(p.Type, raw[i])
		if err != nil {
			return nil, errors.WithMessagef(err, "parameter %q", p.Name)
		}
		args.Set(p.Name, v)
	}
	return args, nil
}

func coerceValue(t ParamType, v any) (any, error) {
	switch t {
	case ParamInteger:
		return toInt(v)
	case ParamNumber:
		return toFloat(v)
	case ParamArray:
		return toIntList(v)
	default:
		return toText(v), nil
	}
}

func toInt(v any) (int64, error) {
	s, ok := scalarText(v)
	if !ok {
		return 0, errors.WithMessagef(ErrTypeMismatch, "expected integer, got %s", toText(v))
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, errors.WithMessagef(ErrTypeMismatch, "expected integer, got %q", s)
	}
	return n, nil
}

func toFloat(v any) (float64, error) {
	s, ok := scalarText(v)
	if !ok {
		return 0, errors.WithMessagef(ErrTypeMismatch, "expected number, got %s", toText(v))
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, errors.WithMessagef(ErrTypeMismatch, "expected number, got %q", s)
	}
	return f, nil
}

func toIntList(v any) ([]int64, error) {
	switch val := v.(type) {
	case []any:
		list := make([]int64, 0, len(val))
		for _, item := range val {
			n, err := toInt(item)
			if err != nil {
				return nil, err
			}
			list = append(list, n)
		}
		return list, nil
	case string:
		s := strings.TrimSpace(val)
		s = strings.TrimSpace(strings.TrimSuffix(strings.TrimPrefix(s, "["), "]"))
		if s == "" {
			return []int64{}, nil
		}
		tokens := strings.Split(s, ",")
		list := make([]int64, 0, len(tokens))
		for _, tok := range tokens {
			n, err := toInt(tok)
			if err != nil {
				return nil, err
			}
			list = append(list, n)
		}
		return list, nil
	default:
		return nil, errors.WithMessagef(ErrTypeMismatch, "expected array, got %s", toText(v))
	}
}

// scalarText returns the text of a string or number value.
func scalarText(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case json.Number:
		return val.String(), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	default:
		return "", false
	}
}

// toText returns strings as is, other values as their JSON text.
func toText(v any) string {
	if s, ok := scalarText(v); ok {
		return s
	}
	js, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(js)
}
