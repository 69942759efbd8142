// Package modelclient turns a prompt into model text under a wall-clock deadline.
package modelclient

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/effective-security/toolloop/pkg/llmutils"
	"github.com/effective-security/toolloop/pkg/metricskey"
	"github.com/effective-security/xlog"
)

var logger = xlog.NewPackageLogger("github.com/effective-security/toolloop", "modelclient")

// DefaultTimeout is the default deadline of a single generation.
const DefaultTimeout = 10 * time.Second

var (
	// ErrTimeout is returned when the generation did not complete before the deadline.
	ErrTimeout = errors.New("model call timed out")
	// ErrGeneration is returned when the generation failed.
	ErrGeneration = errors.New("model call failed")
)

// Config for the Client
type Config struct {
	Timeout     time.Duration
	CallOptions []llms.CallOption
}

// Option to configure the Client
type Option func(*Config)

// WithTimeout sets the deadline of each generation, non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.Timeout = d
		}
	}
}

// WithCallOptions sets the options passed to the model on each call.
func WithCallOptions(opts ...llms.CallOption) Option {
	return func(c *Config) {
		c.CallOptions = append(c.CallOptions, opts...)
	}
}

// Client calls the model once per prompt, without retries.
type Client struct {
	model llms.Model
	cfg   Config
}

// New returns a client for the model.
func New(model llms.Model, opts ...Option) *Client {
	cfg := Config{
		Timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		model: model,
		cfg:   cfg,
	}
}

// Name returns the model name.
func (c *Client) Name() string {
	return c.model.GetName()
}

// Timeout returns the configured deadline.
func (c *Client) Timeout() time.Duration {
	return c.cfg.Timeout
}

type generation struct {
	resp *llms.ContentResponse
	err  error
}

// Generate sends the prompt as a single human message and returns the response text.
//
// The model call runs on its own goroutine. When the deadline expires first,
// the call's context is cancelled and ErrTimeout is returned;
// a result that arrives later is dropped.
// Providers that ignore cancellation keep running until they return.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	modelName := c.model.GetName()
	messages := []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, prompt),
	}

	if err := ctx.Err(); err != nil {
		metricskey.StatsModelCallsFailed.IncrCounter(1, modelName)
		return "", errors.Mark(errors.Wrap(err, "model call cancelled"), ErrGeneration)
	}

	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// buffered, so an abandoned call can always deliver and exit
	done := make(chan generation, 1)

	started := time.Now()
	go func() {
		resp, err := c.model.GenerateContent(callCtx, messages, c.cfg.CallOptions...)
		done <- generation{resp: resp, err: err}
	}()

	timer := time.NewTimer(c.cfg.Timeout)
	defer timer.Stop()

	var res generation
	select {
	case res = <-done:
	case <-timer.C:
		metricskey.StatsModelCallsTimedOut.IncrCounter(1, modelName)
		logger.ContextKV(ctx, xlog.WARNING,
			"reason", "timeout",
			"model", modelName,
			"timeout", c.cfg.Timeout.String())
		return "", errors.WithMessagef(ErrTimeout, "no response within %s", c.cfg.Timeout)
	case <-ctx.Done():
		metricskey.StatsModelCallsFailed.IncrCounter(1, modelName)
		return "", errors.Mark(errors.Wrap(ctx.Err(), "model call cancelled"), ErrGeneration)
	}
	metricskey.PerfModelCall.MeasureSince(started, modelName)

	if res.err != nil {
		metricskey.StatsModelCallsFailed.IncrCounter(1, modelName)
		logger.ContextKV(ctx, xlog.DEBUG,
			"reason", "generate",
			"model", modelName,
			"err", res.err.Error())
		return "", errors.Mark(errors.Wrap(res.err, "model call failed"), ErrGeneration)
	}

	text := llmutils.ResponseText(res.resp)
	if text == "" {
		metricskey.StatsModelCallsFailed.IncrCounter(1, modelName)
		return "", errors.WithMessage(ErrGeneration, "empty response")
	}
	metricskey.StatsModelCallsSucceeded.IncrCounter(1, modelName)

	bytesSent := llmutils.CountMessagesContentSize(messages)
	bytesReceived := llmutils.CountResponseContentSize(res.resp)
	tokensIn, tokensOut, tokensTotal := llmutils.CountTokens(res.resp)
	metricskey.StatsLLMBytesSent.IncrCounter(float64(bytesSent), modelName)
	metricskey.StatsLLMBytesReceived.IncrCounter(float64(bytesReceived), modelName)
	metricskey.StatsLLMInputTokens.IncrCounter(float64(tokensIn), modelName)
	metricskey.StatsLLMOutputTokens.IncrCounter(float64(tokensOut), modelName)
	metricskey.StatsLLMTotalTokens.IncrCounter(float64(tokensTotal), modelName)

	logger.ContextKV(ctx, xlog.DEBUG,
		"status", "generated",
		"model", modelName,
		"bytes_sent", bytesSent,
		"bytes_received", bytesReceived,
		"tokens", tokensTotal,
		"elapsed", time.Since(started).String())

	return text, nil
}
