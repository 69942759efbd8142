package schema_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/effective-security/toolloop/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Point struct {
	X int64 `json:"x"`
	Y int64 `json:"y"`
}

type Shape struct {
	Name   string  `json:"name" jsonschema:"description=Name of the shape"`
	Scale  float64 `json:"scale"`
	Sides  []int64 `json:"sides"`
	Center Point   `json:"center"`
	Label  string  `json:"label,omitempty"`
}

func TestSchema(t *testing.T) {
	s, err := schema.New(reflect.TypeOf(Shape{}))
	require.NoError(t, err)

	assert.Equal(t, "object", s.Parameters.Type)
	assert.Equal(t, []string{"name", "scale", "sides", "center"}, s.Parameters.Required)

	var keys []string
	for pair := s.Parameters.Properties.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	assert.Equal(t, []string{"name", "scale", "sides", "center", "label"}, keys)

	name, _ := s.Parameters.Properties.Get("name")
	assert.Equal(t, "string", name.Type)
	assert.Equal(t, "Name of the shape", name.Description)
	sides, _ := s.Parameters.Properties.Get("sides")
	assert.Equal(t, "array", sides.Type)
	assert.Equal(t, "integer", sides.Items.Type)
	center, _ := s.Parameters.Properties.Get("center")
	assert.Equal(t, "object", center.Type)
	assert.Empty(t, center.Ref)

	var m map[string]any
	require.NoError(t, json.Unmarshal(s.Raw, &m))
	assert.Equal(t, "object", m["type"])
	assert.NotContains(t, s.String(), "$defs")

	// cached
	s2, err := schema.For[Shape]()
	require.NoError(t, err)
	assert.Same(t, s, s2)

	s3, err := schema.New(reflect.TypeOf(&Shape{}))
	require.NoError(t, err)
	assert.Same(t, s, s3)
}

func TestSchemaErrors(t *testing.T) {
	_, err := schema.New(reflect.TypeOf(""))
	assert.EqualError(t, err, "expected struct type: string")
}
