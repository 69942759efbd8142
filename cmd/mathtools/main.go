// Command mathtools serves the math agent tools over MCP on stdio.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/effective-security/toolloop/mathtools"
	"github.com/effective-security/xlog"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "cmd/mathtools")

// Version is set at build time.
var Version = "v0.1.0"

func main() {
	// stdout is the MCP channel
	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	if os.Getenv("MATHTOOLS_LOG") == "debug" {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.WARNING)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %+v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server, err := mathtools.NewServer(Version, mathtools.NewOutbox())
	if err != nil {
		return err
	}

	logger.KV(xlog.INFO, "status", "serving", "version", Version)
	return server.Run(ctx, &mcp.StdioTransport{})
}
