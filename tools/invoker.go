package tools

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "tools")

// Invoker resolves tools in the catalog and calls them through the provider.
type Invoker struct {
	catalog  *Catalog
	provider Provider
}

// NewInvoker returns an invoker for the catalog.
func NewInvoker(catalog *Catalog, provider Provider) *Invoker {
	return &Invoker{
		catalog:  catalog,
		provider: provider,
	}
}

// Catalog returns the catalog the invoker resolves names against.
func (i *Invoker) Catalog() *Catalog {
	return i.catalog
}

// Invoke resolves the tool by exact name, coerces the raw positional values
// and calls the provider. The returned result is normalized to text.
func (i *Invoker) Invoke(ctx context.Context, name string, raw []any) Result {
	desc, ok := i.catalog.Lookup(name)
	if !ok {
		metricskey.StatsToolCallsNotFound.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG, "reason", "not_found", "tool", name)
		return Failure(errors.WithMessagef(ErrUnknownTool, "%q", name))
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "resolved",
		"tool", name,
		"schema", desc.Signature(),
		"params", raw)

	args, err := Coerce(desc.Params, raw)
	if err != nil {
		return Failure(err)
	}

	callArgs := make(map[string]any, args.Len())
	for pair := args.Oldest(); pair != nil; pair = pair.Next() {
		callArgs[pair.Key] = pair.Value
	}

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "calling",
		"tool", name,
		"args", args)

	started := time.Now()
	res, err := i.provider.CallTool(ctx, name, callArgs)
	metricskey.PerfToolCall.MeasureSince(started, name)
	if err != nil {
		metricskey.StatsToolCallsFailed.IncrCounter(1, name)
		logger.ContextKV(ctx, xlog.DEBUG, "reason", "call", "tool", name, "err", err.Error())
		return Failure(errors.Mark(errors.Wrapf(err, "tool %q", name), ErrToolExecution))
	}
	metricskey.StatsToolCallsSucceeded.IncrCounter(1, name)

	values := Normalize(res)
	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "called",
		"tool", name,
		"result", values)
	return Success(values)
}
