package openai

import (
	"context"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/effective-security/x/values"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

var (
	// ErrEmptyResponse is returned when the OpenAI API returns an empty response.
	ErrEmptyResponse = errors.New("openai: no response")
	ErrMissingToken  = errors.New("openai: missing API key, set it in the OPENAI_API_KEY environment variable")
)

type LLM struct {
	client *openai.Client
	opts   options
}

var _ llms.Model = (*LLM)(nil)

// New returns a new OpenAI LLM.
func New(opts ...Option) (*LLM, error) {
	o := options{
		token:        os.Getenv(tokenEnvVarName),
		model:        os.Getenv(modelEnvVarName),
		baseURL:      os.Getenv(baseURLEnvVarName),
		organization: os.Getenv(organizationEnvVarName),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.token == "" {
		return nil, ErrMissingToken
	}
	o.model = values.StringsCoalesce(o.model, DefaultChatModel)
	o.maxTokens = values.NumbersCoalesce(o.maxTokens, DefaultMaxTokens)

	reqOpts := []option.RequestOption{
		option.WithAPIKey(o.token),
		option.WithMaxRetries(2),
	}
	if o.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(o.baseURL))
	}
	if o.organization != "" {
		reqOpts = append(reqOpts, option.WithOrganization(o.organization))
	}
	if o.httpClient != nil {
		reqOpts = append(reqOpts, option.WithHTTPClient(o.httpClient))
	}

	client := openai.NewClient(reqOpts...)
	return &LLM{
		client: &client,
		opts:   o,
	}, nil
}

// GetName implements the Model interface.
func (o *LLM) GetName() string {
	return o.opts.model
}

// GetProviderType implements the Model interface.
func (o *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderOpenAI
}

// GenerateContent implements the Model interface.
func (o *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(llms.CallOptions{
		Model:     o.opts.model,
		MaxTokens: o.opts.maxTokens,
	}, options...)

	params, err := newChatParams(messages, &opts)
	if err != nil {
		return nil, err
	}

	result, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, errors.Wrap(err, "openai: failed to create chat completion")
	}
	if len(result.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	resp := &llms.ContentResponse{}
	for i, c := range result.Choices {
		resp.Choices = append(resp.Choices, &llms.ContentChoice{
			Content:    c.Message.Content,
			StopReason: c.FinishReason,
			GenerationInfo: map[string]any{
				"InputTokens":  int(result.Usage.PromptTokens),
				"OutputTokens": int(result.Usage.CompletionTokens),
				"TotalTokens":  int(result.Usage.TotalTokens),
				"ID":           result.ID,
				"Index":        i,
			},
		})
	}
	return resp, nil
}

func newChatParams(messages []llms.Message, opts *llms.CallOptions) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(opts.Model),
	}
	for _, m := range messages {
		switch m.Role {
		case llms.RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(m.GetContent()))
		case llms.RoleHuman:
			params.Messages = append(params.Messages, openai.UserMessage(m.GetContent()))
		case llms.RoleAI:
			params.Messages = append(params.Messages, openai.AssistantMessage(m.GetContent()))
		default:
			return params, errors.WithMessagef(llms.ErrUnexpectedRole, "openai: role %v not supported", m.Role)
		}
	}

	if opts.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		params.Temperature = openai.Float(opts.Temperature)
	}
	if opts.TopP > 0 {
		params.TopP = openai.Float(opts.TopP)
	}
	if len(opts.StopWords) > 0 {
		params.Stop = openai.ChatCompletionNewParamsStopUnion{OfStringArray: opts.StopWords}
	}
	if opts.JSONMode {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		}
	}
	return params, nil
}
