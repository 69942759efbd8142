package bedrock

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/llms"
)

const defaultModel = ModelAnthropicClaudeV35Sonnet

// ErrEmptyResponse is returned when Converse returns no text.
var ErrEmptyResponse = errors.New("bedrock: no response")

// LLM is a Bedrock LLM implementation.
type LLM struct {
	modelID   string
	maxTokens int
	client    ConverseAPI
}

var _ llms.Model = (*LLM)(nil)

// New creates a new Bedrock LLM implementation.
func New(ctx context.Context, opts ...Option) (*LLM, error) {
	o := &options{
		modelID: defaultModel,
	}
	for _, opt := range opts {
		opt(o)
	}

	if o.client == nil {
		var loadOpts []func(*config.LoadOptions) error
		if o.region != "" {
			loadOpts = append(loadOpts, config.WithRegion(o.region))
		}
		if o.accessKey != "" {
			loadOpts = append(loadOpts, config.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(o.accessKey, o.secretKey, "")))
		}
		cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
		if err != nil {
			return nil, errors.Wrap(err, "bedrock: failed to load AWS config")
		}
		o.client = bedrockruntime.NewFromConfig(cfg)
	}

	return &LLM{
		client:    o.client,
		modelID:   o.modelID,
		maxTokens: o.maxTokens,
	}, nil
}

// GetName implements the Model interface.
func (l *LLM) GetName() string {
	return l.modelID
}

// GetProviderType implements the Model interface.
func (l *LLM) GetProviderType() llms.ProviderType {
	return llms.ProviderBedrock
}

// GenerateContent implements llms.Model.
func (l *LLM) GenerateContent(ctx context.Context, messages []llms.Message, options ...llms.CallOption) (*llms.ContentResponse, error) {
	opts := llms.NewCallOptions(llms.CallOptions{
		Model:     l.modelID,
		MaxTokens: l.maxTokens,
	}, options...)

	input, err := newConverseInput(messages, &opts)
	if err != nil {
		return nil, err
	}

	out, err := l.client.Converse(ctx, input)
	if err != nil {
		return nil, errors.Wrap(err, "bedrock: converse failed")
	}

	msg, ok := out.Output.(*types.ConverseOutputMemberMessage)
	if !ok {
		return nil, ErrEmptyResponse
	}
	var text strings.Builder
	for _, block := range msg.Value.Content {
		if t, ok := block.(*types.ContentBlockMemberText); ok {
			text.WriteString(t.Value)
		}
	}
	if text.Len() == 0 {
		return nil, ErrEmptyResponse
	}

	info := map[string]any{}
	if out.Usage != nil {
		info["InputTokens"] = int(aws.ToInt32(out.Usage.InputTokens))
		info["OutputTokens"] = int(aws.ToInt32(out.Usage.OutputTokens))
		info["TotalTokens"] = int(aws.ToInt32(out.Usage.TotalTokens))
	}

	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content:        text.String(),
				StopReason:     string(out.StopReason),
				GenerationInfo: info,
			},
		},
	}, nil
}

func newConverseInput(messages []llms.Message, opts *llms.CallOptions) (*bedrockruntime.ConverseInput, error) {
	input := &bedrockruntime.ConverseInput{
		ModelId:         aws.String(opts.Model),
		InferenceConfig: &types.InferenceConfiguration{},
	}

	for _, m := range messages {
		text := m.GetContent()
		switch m.Role {
		case llms.RoleSystem:
			input.System = append(input.System, &types.SystemContentBlockMemberText{Value: text})
		case llms.RoleHuman:
			input.Messages = append(input.Messages, types.Message{
				Role:    types.ConversationRoleUser,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
			})
		case llms.RoleAI:
			input.Messages = append(input.Messages, types.Message{
				Role:    types.ConversationRoleAssistant,
				Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: text}},
			})
		default:
			return nil, errors.WithMessagef(llms.ErrUnexpectedRole, "bedrock: role %v not supported", m.Role)
		}
	}

	if opts.MaxTokens > 0 {
		input.InferenceConfig.MaxTokens = aws.Int32(int32(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		input.InferenceConfig.Temperature = aws.Float32(float32(opts.Temperature))
	}
	if opts.TopP > 0 {
		input.InferenceConfig.TopP = aws.Float32(float32(opts.TopP))
	}
	if len(opts.StopWords) > 0 {
		input.InferenceConfig.StopSequences = opts.StopWords
	}
	return input, nil
}
