package tools

import (
	"context"
)

//go:generate mockgen -source=provider.go -destination=../mocks/mocktools/tools_mock.gen.go -package mocktools

// Provider is the external capability service.
type Provider interface {
	// ListTools returns the tool catalog in the provider's order.
	ListTools(ctx context.Context) ([]*Descriptor, error)
	// CallTool invokes the tool with the coerced arguments,
	// the returned value is normalized by the Invoker.
	CallTool(ctx context.Context, name string, args map[string]any) (any, error)
}

// ContentProvider is implemented by results exposing a content sequence.
type ContentProvider interface {
	GetContent() []any
}

// TextProvider is implemented by content items exposing text.
type TextProvider interface {
	GetText() string
}
