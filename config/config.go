// Package config loads the run configuration of toolloop.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/llmfactory"
	"github.com/effective-security/x/configloader"
	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
)

// EnvConfigFile is the environment variable with the config file location.
const EnvConfigFile = "TOOLLOOP_CONFIG"

const (
	// DefaultMaxIterations is the iteration budget of a run.
	DefaultMaxIterations = 6
	// DefaultModelTimeout is the deadline of one model call.
	DefaultModelTimeout = "10s"
	// DefaultLogLevel is the global log level.
	DefaultLogLevel = "INFO"
	// DefaultConsole is the console output of a run.
	DefaultConsole = "default"
	// DefaultTask is the task of the math agent.
	DefaultTask = "Find the ASCII values of characters in INDIA and then return sum of exponentials of those values. send a gmail with the final answer. "
)

// Config of a toolloop run.
type Config struct {
	// LogLevel is DEBUG|INFO|WARNING|ERROR
	LogLevel   string            `json:"log_level,omitempty" yaml:"log_level,omitempty" toml:"log_level,omitempty" validate:"omitempty,oneof=DEBUG INFO WARNING ERROR"`
	Agent      Agent             `json:"agent" yaml:"agent" toml:"agent"`
	ToolServer ToolServer        `json:"tool_server" yaml:"tool_server" toml:"tool_server"`
	Output     Output            `json:"output" yaml:"output" toml:"output"`
	LLM        llmfactory.Config `json:"llm" yaml:"llm" toml:"llm"`

	dir string
}

// Agent configures the loop.
type Agent struct {
	MaxIterations int `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty" toml:"max_iterations,omitempty" validate:"gte=0"`
	// ModelTimeout is a duration, like 10s
	ModelTimeout string `json:"model_timeout,omitempty" yaml:"model_timeout,omitempty" toml:"model_timeout,omitempty"`
	Task         string `json:"task,omitempty" yaml:"task,omitempty" toml:"task,omitempty"`
	// SystemPromptFile replaces the built-in system prompt template,
	// a relative path is resolved from the config file folder.
	SystemPromptFile string `json:"system_prompt_file,omitempty" yaml:"system_prompt_file,omitempty" toml:"system_prompt_file,omitempty"`
	// ProviderType selects the LLM provider by API type, like GOOGLEAI.
	// Models are used when empty.
	ProviderType string `json:"provider_type,omitempty" yaml:"provider_type,omitempty" toml:"provider_type,omitempty"`
	// Models are the preferred models, in order, the default provider model is used if none is available.
	Models []string `json:"models,omitempty" yaml:"models,omitempty" toml:"models,omitempty"`
	// JSONMode asks the provider for a JSON response.
	JSONMode bool `json:"json_mode,omitempty" yaml:"json_mode,omitempty" toml:"json_mode,omitempty"`
}

// ToolServer is the command serving MCP tools on stdio.
type ToolServer struct {
	Command string   `json:"command" yaml:"command" toml:"command" validate:"required"`
	Args    []string `json:"args,omitempty" yaml:"args,omitempty" toml:"args,omitempty"`
	// Env is added to the environment of the tool server, as KEY=VALUE
	Env []string `json:"env,omitempty" yaml:"env,omitempty" toml:"env,omitempty"`
}

// Output configures what a run reports.
type Output struct {
	// Console is none|default|verbose
	Console string `json:"console,omitempty" yaml:"console,omitempty" toml:"console,omitempty" validate:"omitempty,oneof=none default verbose"`
	// TranscriptFile receives the transcript of the run,
	// a relative path is resolved from the config file folder.
	TranscriptFile string `json:"transcript_file,omitempty" yaml:"transcript_file,omitempty" toml:"transcript_file,omitempty"`
}

// Load returns the configuration from file with defaults applied.
// YAML and JSON files are expanded with environment variables.
func Load(file string) (*Config, error) {
	cfg := new(Config)
	if strings.EqualFold(filepath.Ext(file), ".toml") {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to load config: %s", file)
		}
	} else if err := configloader.UnmarshalAndExpand(file, cfg); err != nil {
		return nil, errors.WithMessagef(err, "failed to load config: %s", file)
	}
	cfg.dir = filepath.Dir(file)

	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetDefaults fills the empty values.
func (c *Config) SetDefaults() {
	c.LogLevel = strings.ToUpper(values.StringsCoalesce(c.LogLevel, DefaultLogLevel))
	c.Agent.MaxIterations = values.NumbersCoalesce(c.Agent.MaxIterations, DefaultMaxIterations)
	c.Agent.ModelTimeout = values.StringsCoalesce(c.Agent.ModelTimeout, DefaultModelTimeout)
	c.Agent.Task = values.StringsCoalesce(c.Agent.Task, DefaultTask)
	c.Output.Console = strings.ToLower(values.StringsCoalesce(c.Output.Console, DefaultConsole))
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	d, err := time.ParseDuration(c.Agent.ModelTimeout)
	if err != nil {
		return errors.Wrapf(err, "invalid model_timeout")
	}
	if d <= 0 {
		return errors.Newf("invalid model_timeout: %s", c.Agent.ModelTimeout)
	}
	return nil
}

// ModelTimeout returns the model call deadline.
func (c *Config) ModelTimeout() time.Duration {
	d, err := time.ParseDuration(c.Agent.ModelTimeout)
	if err != nil || d <= 0 {
		d, _ = time.ParseDuration(DefaultModelTimeout)
	}
	return d
}

// SystemPrompt returns the content of the system prompt file,
// or empty string if not configured.
func (c *Config) SystemPrompt() (string, error) {
	file := c.resolve(c.Agent.SystemPromptFile)
	if file == "" {
		return "", nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		return "", errors.Wrapf(err, "failed to load system prompt")
	}
	return string(b), nil
}

// TranscriptFile returns the location of the run transcript,
// or empty string if not configured.
func (c *Config) TranscriptFile() string {
	return c.resolve(c.Output.TranscriptFile)
}

func (c *Config) resolve(file string) string {
	if file != "" && !filepath.IsAbs(file) && c.dir != "" {
		return filepath.Join(c.dir, file)
	}
	return file
}

// Level returns the xlog level.
func (c *Config) Level() xlog.LogLevel {
	switch c.LogLevel {
	case "DEBUG":
		return xlog.DEBUG
	case "WARNING":
		return xlog.WARNING
	case "ERROR":
		return xlog.ERROR
	default:
		return xlog.INFO
	}
}
