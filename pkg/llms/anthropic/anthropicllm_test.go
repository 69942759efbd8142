package anthropic

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
	t.Setenv(TokenEnvVarName, "")

	tests := []struct {
		name        string
		opts        []Option
		errContains string
	}{
		{
			name:        "missing token",
			opts:        []Option{WithModel("claude-3-5-sonnet-20241022")},
			errContains: "missing API key",
		},
		{
			name:        "missing model",
			opts:        []Option{WithToken("fake-token")},
			errContains: "model is required",
		},
		{
			name: "valid configuration",
			opts: []Option{
				WithToken("fake-token"),
				WithModel("claude-3-5-sonnet-20241022"),
				WithBaseURL("https://custom.anthropic.com"),
				WithHTTPClient(&http.Client{}),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm, err := New(tt.opts...)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "claude-3-5-sonnet-20241022", llm.GetName())
			assert.Equal(t, llms.ProviderAnthropic, llm.GetProviderType())
		})
	}
}

func TestNewMessageParams(t *testing.T) {
	opts := llms.NewCallOptions(llms.CallOptions{Model: "claude"},
		llms.WithTemperature(0.3),
		llms.WithStopWords([]string{"STOP"}),
	)
	params, err := newMessageParams([]llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "system prompt"),
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
	}, &opts)
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultMaxTokens), params.MaxTokens)
	require.Len(t, params.System, 1)
	assert.Equal(t, "system prompt", params.System[0].Text)
	assert.Len(t, params.Messages, 1)
	assert.Equal(t, []string{"STOP"}, params.StopSequences)

	_, err = newMessageParams([]llms.Message{{Role: "tool"}}, &opts)
	assert.ErrorIs(t, err, llms.ErrUnexpectedRole)
}

func TestGenerateContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_1",
			"type":        "message",
			"role":        "assistant",
			"model":       "claude",
			"stop_reason": "end_turn",
			"content": []map[string]any{
				{"type": "text", "text": `{"final_answer": "42"}`},
			},
			"usage": map[string]any{"input_tokens": 5, "output_tokens": 7},
		})
	}))
	defer srv.Close()

	llm, err := New(WithToken("fake"), WithModel("claude"), WithBaseURL(srv.URL), WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	resp, err := llm.GenerateContent(context.Background(), []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
	})
	require.NoError(t, err)
	require.Len(t, resp.Choices, 1)
	assert.Equal(t, `{"final_answer": "42"}`, resp.Choices[0].Content)
	assert.Equal(t, "end_turn", resp.Choices[0].StopReason)
	assert.Equal(t, 12, resp.Choices[0].GenerationInfo["TotalTokens"])
}
