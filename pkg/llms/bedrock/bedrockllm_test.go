package bedrock

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConverse struct {
	input *bedrockruntime.ConverseInput
	out   *bedrockruntime.ConverseOutput
	err   error
}

func (f *fakeConverse) Converse(_ context.Context, params *bedrockruntime.ConverseInput, _ ...func(*bedrockruntime.Options)) (*bedrockruntime.ConverseOutput, error) {
	f.input = params
	return f.out, f.err
}

func TestGenerateContent(t *testing.T) {
	fake := &fakeConverse{
		out: &bedrockruntime.ConverseOutput{
			Output: &types.ConverseOutputMemberMessage{
				Value: types.Message{
					Role:    types.ConversationRoleAssistant,
					Content: []types.ContentBlock{&types.ContentBlockMemberText{Value: `{"final_answer": "1"}`}},
				},
			},
			StopReason: types.StopReasonEndTurn,
			Usage: &types.TokenUsage{
				InputTokens:  aws.Int32(3),
				OutputTokens: aws.Int32(2),
				TotalTokens:  aws.Int32(5),
			},
		},
	}

	llm, err := New(context.Background(), WithClient(fake), WithMaxTokens(64))
	require.NoError(t, err)
	assert.Equal(t, defaultModel, llm.GetName())
	assert.Equal(t, llms.ProviderBedrock, llm.GetProviderType())

	resp, err := llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "system"),
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
	}, llms.WithTemperature(0.2))
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `{"final_answer": "1"}`, resp.Choices[0].Content)
	assert.Equal(t, 5, resp.Choices[0].GenerationInfo["TotalTokens"])

	require.NotNil(t, fake.input)
	assert.Equal(t, defaultModel, aws.ToString(fake.input.ModelId))
	assert.Len(t, fake.input.System, 1)
	assert.Len(t, fake.input.Messages, 1)
	assert.Equal(t, int32(64), aws.ToInt32(fake.input.InferenceConfig.MaxTokens))

	fake.err = errors.New("throttled")
	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
	})
	assert.EqualError(t, err, "bedrock: converse failed: throttled")
}

func TestGenerateContent_Empty(t *testing.T) {
	fake := &fakeConverse{out: &bedrockruntime.ConverseOutput{}}
	llm, err := New(context.Background(), WithClient(fake), WithModel(ModelAmazonNovaLite))
	require.NoError(t, err)

	_, err = llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	_, err = llm.GenerateContent(context.Background(), []llms.Message{{Role: "tool"}})
	assert.ErrorIs(t, err, llms.ErrUnexpectedRole)
}
