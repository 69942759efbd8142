//nolint:all
package googleai

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/effective-security/toolloop/pkg/llms/googleai/internal/genaiutils"
	"google.golang.org/genai"
)

var (
	ErrNoContentInResponse = errors.New("no content in generation response")
)

const (
	RoleModel            = "model"
	RoleUser             = "user"
	ResponseMIMETypeJson = "application/json"
)

// GetName implements the Model interface.
func (g *GoogleAI) GetName() string {
	return g.opts.DefaultModel
}

// GetProviderType implements the Model interface.
func (g *GoogleAI) GetProviderType() llms.ProviderType {
	return llms.ProviderGoogleAI
}

// GenerateContent implements the [llms.Model] interface.
func (g *GoogleAI) GenerateContent(
	ctx context.Context,
	messages []llms.Message,
	options ...llms.CallOption,
) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(llms.CallOptions{
		Model:       g.opts.DefaultModel,
		MaxTokens:   g.opts.DefaultMaxTokens,
		Temperature: g.opts.DefaultTemperature,
		TopP:        g.opts.DefaultTopP,
	}, options...)

	callCfg := &genai.GenerateContentConfig{
		StopSequences:   opts.StopWords,
		CandidateCount:  1,
		MaxOutputTokens: int32(opts.MaxTokens),
		Temperature:     genaiutils.Float32Ptr(float32(opts.Temperature)),
		TopP:            genaiutils.Float32Ptr(float32(opts.TopP)),
	}
	if opts.JSONMode {
		callCfg.ResponseMIMEType = ResponseMIMETypeJson
	}

	contents, err := convertMessages(messages, callCfg)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Models.GenerateContent(ctx, opts.Model, contents, callCfg)
	if err != nil {
		return nil, errors.Wrap(err, "googleai: failed to generate content")
	}
	if len(resp.Candidates) == 0 {
		return nil, ErrNoContentInResponse
	}
	return convertCandidates(resp.Candidates, resp.UsageMetadata), nil
}

// convertMessages converts messages to genai contents,
// the system message is moved to the config SystemInstruction.
func convertMessages(messages []llms.Message, cfg *genai.GenerateContentConfig) ([]*genai.Content, error) {
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		c := &genai.Content{}
		for _, p := range m.Parts {
			c.Parts = append(c.Parts, &genai.Part{Text: p.Text})
		}

		switch m.Role {
		case llms.RoleSystem:
			c.Role = RoleUser
			cfg.SystemInstruction = c
			continue
		case llms.RoleAI:
			c.Role = RoleModel
		case llms.RoleHuman:
			c.Role = RoleUser
		default:
			return nil, errors.WithMessagef(llms.ErrUnexpectedRole, "googleai: role %v not supported", m.Role)
		}
		contents = append(contents, c)
	}
	return contents, nil
}

// convertCandidates converts a sequence of genai.Candidate to a response.
func convertCandidates(candidates []*genai.Candidate, usage *genai.GenerateContentResponseUsageMetadata) *llms.ContentResponse {
	var contentResponse llms.ContentResponse
	for _, candidate := range candidates {
		contentResponse.Choices = append(contentResponse.Choices,
			&llms.ContentChoice{
				Content:        genaiutils.ContentText(candidate.Content),
				StopReason:     string(candidate.FinishReason),
				GenerationInfo: genaiutils.UsageInfo(usage),
			})
	}
	return &contentResponse
}
