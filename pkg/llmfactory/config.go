package llmfactory

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/x/configloader"
)

type Config struct {
	// Providers specifies the list of providers to use
	Providers []*ProviderConfig `json:"providers" yaml:"providers" toml:"providers" validate:"dive"`
	// DefaultProvider specifies the default provider to use
	DefaultProvider string `json:"default_provider" yaml:"default_provider" toml:"default_provider"`
}

// ProviderConfig describes one LLM provider
type ProviderConfig struct {
	Name string `json:"name" yaml:"name" toml:"name" validate:"required"`
	// APIType specifies the type of API to use:
	// OPENAI|ANTHROPIC|GOOGLEAI|BEDROCK
	APIType         string   `json:"api_type" yaml:"api_type" toml:"api_type" validate:"required"`
	Token           string   `json:"token,omitempty" yaml:"token,omitempty" toml:"token,omitempty"`
	DefaultModel    string   `json:"default_model,omitempty" yaml:"default_model,omitempty" toml:"default_model,omitempty"`
	AvailableModels []string `json:"available_models,omitempty" yaml:"available_models,omitempty" toml:"available_models,omitempty"`
	MaxTokens       int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty" toml:"max_tokens,omitempty"`

	// BaseURL overrides the OpenAI or Anthropic endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	// OrgID specifies which organization's quota and billing should be used when making OpenAI requests.
	OrgID string `json:"org_id,omitempty" yaml:"org_id,omitempty" toml:"org_id,omitempty"`
	// Project and Location select Vertex AI for GOOGLEAI.
	Project  string `json:"project,omitempty" yaml:"project,omitempty" toml:"project,omitempty"`
	Location string `json:"location,omitempty" yaml:"location,omitempty" toml:"location,omitempty"`
	// Region is the AWS region for BEDROCK.
	Region string `json:"region,omitempty" yaml:"region,omitempty" toml:"region,omitempty"`
}

// FindModel returns the first of the preferred models the provider offers,
// or the provider default.
func (c *ProviderConfig) FindModel(models ...string) string {
	for _, model := range models {
		if slices.Contains(c.AvailableModels, model) {
			return model
		}
	}
	return c.DefaultModel
}

// LoadConfig from file, YAML and JSON files are expanded with environment variables
func LoadConfig(file string) (*Config, error) {
	cfg := new(Config)
	if file == "" {
		return cfg, nil
	}

	if strings.EqualFold(filepath.Ext(file), ".toml") {
		if _, err := toml.DecodeFile(file, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to load config: %s", file)
		}
		return cfg, nil
	}

	err := configloader.UnmarshalAndExpand(file, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}
