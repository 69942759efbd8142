// Package mcptools implements tools.Provider over a Model Context Protocol client session.
package mcptools

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/tools"
	"github.com/effective-security/xlog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "mcptools")

// ClientName is reported to the tool server on initialize.
const ClientName = "toolloop"

// Provider calls tools on a connected MCP server.
type Provider struct {
	session *mcp.ClientSession
}

var _ tools.Provider = (*Provider)(nil)

// CommandTransport returns a transport that spawns the tool server
// and talks to it over stdin/stdout.
// env is appended to the current process environment.
func CommandTransport(command string, args []string, env []string) *mcp.CommandTransport {
	cmd := exec.Command(command, args...)
	if len(env) > 0 {
		cmd.Env = append(os.Environ(), env...)
	}
	cmd.Stderr = os.Stderr
	return &mcp.CommandTransport{Command: cmd}
}

// Connect initializes a client session over the transport.
func Connect(ctx context.Context, transport mcp.Transport, version string) (*Provider, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    ClientName,
		Version: version,
	}, nil)

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to tool server")
	}
	logger.ContextKV(ctx, xlog.DEBUG, "status", "connected", "version", version)
	return &Provider{session: session}, nil
}

// Close ends the session, and stops the tool server process if one was spawned.
func (p *Provider) Close() error {
	return p.session.Close()
}

// ListTools returns the server tool catalog in the server order.
func (p *Provider) ListTools(ctx context.Context) ([]*tools.Descriptor, error) {
	var list []*tools.Descriptor
	params := &mcp.ListToolsParams{}
	for {
		res, err := p.session.ListTools(ctx, params)
		if err != nil {
			return nil, errors.Wrap(err, "failed to list tools")
		}
		for _, t := range res.Tools {
			specs, err := ParamsFromSchema(t.InputSchema)
			if err != nil {
				return nil, errors.WithMessagef(err, "tool %q", t.Name)
			}
			list = append(list, &tools.Descriptor{
				Name:        t.Name,
				Description: t.Description,
				Params:      specs,
			})
		}
		if res.NextCursor == "" {
			break
		}
		params.Cursor = res.NextCursor
	}
	logger.ContextKV(ctx, xlog.DEBUG, "status", "listed", "tools", len(list))
	return list, nil
}

// CallTool calls the tool, a result flagged as error is returned as error.
func (p *Provider) CallTool(ctx context.Context, name string, args map[string]any) (any, error) {
	res, err := p.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to call tool %q", name)
	}
	if res.IsError {
		return nil, errors.Newf("tool %q returned error: %s", name, strings.Join(tools.Normalize(res), "; "))
	}
	return res, nil
}

type propertySchema struct {
	Type any `json:"type"`
}

type objectSchema struct {
	Properties *orderedmap.OrderedMap[string, propertySchema] `json:"properties"`
	Required   []string                                       `json:"required"`
}

// ParamsFromSchema returns the ordered parameters of a JSON object schema.
// Required properties come first in the order of the required list,
// followed by the remaining properties in document order.
// A property without a type is a string.
// Schemas listed by an MCP client session are decoded into maps first,
// so their optional properties come out in alphabetical order.
func ParamsFromSchema(schema any) ([]tools.ParamSpec, error) {
	if schema == nil {
		return nil, nil
	}

	var raw []byte
	switch s := schema.(type) {
	case json.RawMessage:
		raw = s
	case []byte:
		raw = s
	default:
		js, err := json.Marshal(schema)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode input schema")
		}
		raw = js
	}

	var obj objectSchema
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, errors.Wrap(err, "failed to decode input schema")
	}
	if obj.Properties == nil {
		return nil, nil
	}

	specs := make([]tools.ParamSpec, 0, obj.Properties.Len())
	for _, name := range obj.Required {
		if prop, ok := obj.Properties.Get(name); ok {
			specs = append(specs, tools.ParamSpec{Name: name, Type: paramType(prop.Type)})
		}
	}
	for pair := obj.Properties.Oldest(); pair != nil; pair = pair.Next() {
		if slices.Contains(obj.Required, pair.Key) {
			continue
		}
		specs = append(specs, tools.ParamSpec{Name: pair.Key, Type: paramType(pair.Value.Type)})
	}
	return specs, nil
}

// paramType handles both "type": "integer" and "type": ["integer", "null"]
func paramType(t any) tools.ParamType {
	switch v := t.(type) {
	case string:
		return tools.ParseParamType(v)
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok && s != "null" {
				return tools.ParseParamType(s)
			}
		}
	}
	return tools.ParamString
}
