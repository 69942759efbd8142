// Command toolloop runs the agent loop once against an MCP tool server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/callbacks"
	"github.com/effective-security/toolloop/config"
	"github.com/effective-security/toolloop/modelclient"
	"github.com/effective-security/toolloop/orchestrator"
	"github.com/effective-security/toolloop/pkg/llmfactory"
	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/effective-security/toolloop/pkg/prompts"
	"github.com/effective-security/toolloop/tools"
	"github.com/effective-security/toolloop/tools/mcptools"
	"github.com/effective-security/xlog"
	"github.com/joho/godotenv"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "cmd/toolloop")

// Version is set at build time.
var Version = "v0.1.0"

const defaultConfigFile = "toolloop.yaml"

func main() {
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))

	out, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
		os.Exit(1)
	}
	if out.State != orchestrator.StatusCompleted {
		os.Exit(2)
	}
}

func run() (*orchestrator.Outcome, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// API keys may come from .env
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to load .env")
	}

	cfgFile := defaultConfigFile
	if v := os.Getenv(config.EnvConfigFile); v != "" {
		cfgFile = v
	}
	if len(os.Args) > 1 {
		cfgFile = os.Args[1]
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	xlog.SetGlobalLogLevel(cfg.Level())

	model, err := newModel(cfg)
	if err != nil {
		return nil, err
	}

	transport := mcptools.CommandTransport(cfg.ToolServer.Command, cfg.ToolServer.Args, cfg.ToolServer.Env)
	provider, err := mcptools.Connect(ctx, transport, Version)
	if err != nil {
		return nil, err
	}
	defer func() { _ = provider.Close() }()

	list, err := provider.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	catalog := tools.NewCatalog(list...)
	logger.ContextKV(ctx, xlog.INFO, "status", "catalog", "tools", catalog.Len())

	tmpl, err := cfg.SystemPrompt()
	if err != nil {
		return nil, err
	}
	builder, err := prompts.NewBuilder(tmpl, catalog)
	if err != nil {
		return nil, err
	}

	var callOpts []llms.CallOption
	if cfg.Agent.JSONMode {
		callOpts = append(callOpts, llms.WithJSONMode())
	}

	pad := callbacks.NewScratchpad(callbacks.ParseMode(cfg.Output.Console))
	cb := callbacks.NewFanout(
		callbacks.NewConsole(os.Stdout, cfg.Output.Console),
		callbacks.NewPackageLogger(logger),
		pad,
	)

	o := orchestrator.New(
		modelclient.New(model,
			modelclient.WithTimeout(cfg.ModelTimeout()),
			modelclient.WithCallOptions(callOpts...)),
		tools.NewInvoker(catalog, provider),
		builder,
		orchestrator.WithMaxIterations(cfg.Agent.MaxIterations),
		orchestrator.WithTask(cfg.Agent.Task),
		orchestrator.WithCallback(cb),
	)
	out := o.Run(ctx)

	stats, transcript := pad.Last()
	if stats != nil {
		logger.ContextKV(ctx, xlog.INFO, append([]any{"status", "run_stats"}, stats.KV()...)...)
	}
	if file := cfg.TranscriptFile(); file != "" {
		if err := os.WriteFile(file, transcript, 0o644); err != nil {
			return nil, errors.Wrapf(err, "failed to write transcript: %s", file)
		}
	}
	return out, nil
}

func newModel(cfg *config.Config) (llms.Model, error) {
	f := llmfactory.New(&cfg.LLM)
	if cfg.Agent.ProviderType != "" {
		return f.ModelByType(cfg.Agent.ProviderType)
	}
	return f.ModelByName(cfg.Agent.Models...)
}
