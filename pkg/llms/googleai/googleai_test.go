package googleai

import (
	"testing"

	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestConvertMessages(t *testing.T) {
	cfg := &genai.GenerateContentConfig{}
	contents, err := convertMessages([]llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "be precise"),
		llms.MessageFromTextParts(llms.RoleHuman, "Query: add 1 and 2"),
		llms.MessageFromTextParts(llms.RoleAI, `{"final_answer": "3"}`),
	}, cfg)
	require.NoError(t, err)
	require.Len(t, contents, 2)
	assert.Equal(t, RoleUser, contents[0].Role)
	assert.Equal(t, "Query: add 1 and 2", contents[0].Parts[0].Text)
	assert.Equal(t, RoleModel, contents[1].Role)
	require.NotNil(t, cfg.SystemInstruction)
	assert.Equal(t, "be precise", cfg.SystemInstruction.Parts[0].Text)

	_, err = convertMessages([]llms.Message{{Role: "tool"}}, cfg)
	assert.ErrorIs(t, err, llms.ErrUnexpectedRole)
}

func TestConvertCandidates(t *testing.T) {
	resp := convertCandidates([]*genai.Candidate{
		{
			Content: &genai.Content{
				Role:  RoleModel,
				Parts: []*genai.Part{{Text: `{"final_answer":`}, {Text: ` "7"}`}},
			},
			FinishReason: genai.FinishReasonStop,
		},
	}, &genai.GenerateContentResponseUsageMetadata{
		PromptTokenCount:     3,
		CandidatesTokenCount: 4,
		TotalTokenCount:      7,
	})
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `{"final_answer": "7"}`, resp.Choices[0].Content)
	assert.Equal(t, string(genai.FinishReasonStop), resp.Choices[0].StopReason)
	assert.Equal(t, 7, resp.Choices[0].GenerationInfo["TotalTokens"])
}

func TestOptions(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GOOGLE_API_KEY", "google-key")

	o := DefaultOptions()
	for _, opt := range []Option{
		WithDefaultModel("gemini-test"),
		WithDefaultModel(""),
		WithDefaultMaxTokens(10),
		WithDefaultTemperature(0.1),
		WithDefaultTopP(0.2),
		WithCloudLocation("us-central1"),
		WithCredentials(nil),
	} {
		opt(&o)
	}
	o.EnsureAuthPresent()
	assert.Equal(t, "gemini-test", o.DefaultModel)
	assert.Equal(t, 10, o.DefaultMaxTokens)
	assert.Equal(t, 0.1, o.DefaultTemperature)
	assert.Equal(t, 0.2, o.DefaultTopP)
	assert.Equal(t, "google-key", o.APIKey)
	assert.Nil(t, o.Credentials)
	assert.False(t, o.IsVertex())

	WithCloudProject("proj")(&o)
	assert.True(t, o.IsVertex())
}
