package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Setenv(tokenEnvVarName, "")
	t.Setenv(modelEnvVarName, "")

	_, err := New()
	assert.ErrorIs(t, err, ErrMissingToken)

	llm, err := New(WithToken("fake"))
	require.NoError(t, err)
	assert.Equal(t, DefaultChatModel, llm.GetName())
	assert.Equal(t, llms.ProviderOpenAI, llm.GetProviderType())
	assert.Equal(t, DefaultMaxTokens, llm.opts.maxTokens)

	llm, err = New(WithToken("fake"), WithModel("gpt-4o"), WithMaxTokens(100), WithOrganization("org"))
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", llm.GetName())
	assert.Equal(t, 100, llm.opts.maxTokens)
}

func TestNewChatParams(t *testing.T) {
	opts := llms.NewCallOptions(llms.CallOptions{Model: "gpt"}, llms.WithJSONMode(), llms.WithTopP(0.9))
	params, err := newChatParams([]llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "system"),
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
		llms.MessageFromTextParts(llms.RoleAI, "answer"),
	}, &opts)
	require.NoError(t, err)
	assert.Len(t, params.Messages, 3)
	assert.NotNil(t, params.ResponseFormat.OfJSONObject)
	assert.Equal(t, "gpt", string(params.Model))

	_, err = newChatParams([]llms.Message{{Role: "tool"}}, &opts)
	assert.ErrorIs(t, err, llms.ErrUnexpectedRole)
}

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt",
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]any{"role": "assistant", "content": `{"final_answer": "5"}`},
				},
			},
			"usage": map[string]any{"prompt_tokens": 2, "completion_tokens": 3, "total_tokens": 5},
		})
	}))
	defer srv.Close()

	llm, err := New(WithToken("fake"), WithModel("gpt"), WithBaseURL(srv.URL+"/v1/"), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	resp, err := llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `{"final_answer": "5"}`, resp.Choices[0].Content)
	assert.Equal(t, "stop", resp.Choices[0].StopReason)
	assert.Equal(t, 5, resp.Choices[0].GenerationInfo["TotalTokens"])
}
