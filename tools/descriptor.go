package tools

import (
	"fmt"
	"strings"
)

// ParamType is the declared type of a tool parameter.
type ParamType string

const (
	ParamInteger ParamType = "integer"
	ParamNumber  ParamType = "number"
	ParamArray   ParamType = "array"
	ParamString  ParamType = "string"
)

// ParseParamType returns the parameter type,
// unsupported types are treated as string.
func ParseParamType(s string) ParamType {
	switch t := ParamType(strings.ToLower(strings.TrimSpace(s))); t {
	case ParamInteger, ParamNumber, ParamArray:
		return t
	default:
		return ParamString
	}
}

// ParamSpec is a declared parameter of a tool.
type ParamSpec struct {
	Name string    `json:"name" yaml:"name"`
	Type ParamType `json:"type" yaml:"type"`
}

// Descriptor describes a tool: its name, description and ordered parameters.
type Descriptor struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description" yaml:"description"`
	Params      []ParamSpec `json:"params" yaml:"params"`
}

// Signature renders the descriptor as name(param:type,...)
func (d *Descriptor) Signature() string {
	var b strings.Builder
	b.WriteString(d.Name)
	b.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Name)
		b.WriteByte(':')
		b.WriteString(string(p.Type))
	}
	b.WriteByte(')')
	return b.String()
}

// Catalog is the ordered set of tools available for a run.
// It is read-only after construction.
type Catalog struct {
	list   []*Descriptor
	byName map[string]*Descriptor
}

// NewCatalog returns a catalog in the order of the descriptors,
// a later descriptor with the same name replaces the earlier one on lookup.
func NewCatalog(list ...*Descriptor) *Catalog {
	c := &Catalog{
		list:   list,
		byName: make(map[string]*Descriptor, len(list)),
	}
	for _, d := range list {
		c.byName[d.Name] = d
	}
	return c
}

// Tools returns the descriptors in catalog order.
func (c *Catalog) Tools() []*Descriptor {
	return c.list
}

// Len returns the number of tools.
func (c *Catalog) Len() int {
	return len(c.list)
}

// Lookup returns the descriptor by exact name.
func (c *Catalog) Lookup(name string) (*Descriptor, bool) {
	d, ok := c.byName[name]
	return d, ok
}

// Lines renders one numbered line per tool.
func (c *Catalog) Lines() []string {
	lines := make([]string, 0, len(c.list))
	for i, d := range c.list {
		sig := d.Signature()
		if len(d.Params) == 0 {
			sig = d.Name + "(no parameters)"
		}
		lines = append(lines, fmt.Sprintf("%d. %s - %s", i+1, sig, d.Description))
	}
	return lines
}

// Describe renders the catalog for the system prompt.
func (c *Catalog) Describe() string {
	return strings.Join(c.Lines(), "\n")
}
