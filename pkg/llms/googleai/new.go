// package googleai implements a provider for Google AI LLMs (Gemini).
// See https://ai.google.dev/ for more details.
package googleai

import (
	"context"

	"cloud.google.com/go/auth/credentials"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/llms"
	"google.golang.org/genai"
)

// GoogleAI is a type that represents a Google AI API client.
type GoogleAI struct {
	client *genai.Client
	opts   Options
}

var _ llms.Model = (*GoogleAI)(nil)

const cloudPlatformScope = "https://www.googleapis.com/auth/cloud-platform"

// New creates a new GoogleAI client.
func New(ctx context.Context, opts ...Option) (*GoogleAI, error) {
	clientOptions := DefaultOptions()
	for _, opt := range opts {
		opt(&clientOptions)
	}
	clientOptions.EnsureAuthPresent()

	gi := &GoogleAI{
		opts: clientOptions,
	}

	cfg := &genai.ClientConfig{
		APIKey:     clientOptions.APIKey,
		HTTPClient: clientOptions.HTTPClient,
		Backend:    genai.BackendGeminiAPI,
	}

	if clientOptions.IsVertex() {
		cfg.Backend = genai.BackendVertexAI
		cfg.Project = clientOptions.CloudProject
		cfg.Location = clientOptions.CloudLocation
		cfg.APIKey = ""
		cfg.Credentials = clientOptions.Credentials
		if cfg.Credentials == nil {
			creds, err := credentials.DetectDefault(&credentials.DetectOptions{
				Scopes: []string{cloudPlatformScope},
			})
			if err != nil {
				return nil, errors.Wrap(err, "googleai: failed to detect default credentials")
			}
			cfg.Credentials = creds
		}
	} else if cfg.APIKey == "" {
		return nil, errors.New("googleai: missing API key, set GEMINI_API_KEY")
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "googleai: failed to create client")
	}
	gi.client = client
	return gi, nil
}
