package llmutils_test

import (
	"strings"
	"testing"

	"github.com/effective-security/toolloop/pkg/llms"
	"github.com/effective-security/toolloop/pkg/llmutils"
	"github.com/stretchr/testify/assert"
)

func Test_ResponseText(t *testing.T) {
	assert.Empty(t, llmutils.ResponseText(nil))
	assert.Empty(t, llmutils.ResponseText(&llms.ContentResponse{}))
	assert.Equal(t, "first", llmutils.ResponseText(&llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: "first"}, {Content: "second"}},
	}))
}

func Test_Counts(t *testing.T) {
	msgs := []llms.Message{
		llms.MessageFromTextParts(llms.RoleSystem, "abc"),
		llms.MessageFromTextParts(llms.RoleHuman, "de", "f"),
	}
	// role lengths: system=6, human=5
	assert.Equal(t, uint64(6+3+5+3), llmutils.CountMessagesContentSize(msgs))

	resp := &llms.ContentResponse{
		Choices: []*llms.ContentChoice{
			{
				Content: "hello",
				GenerationInfo: map[string]any{
					"InputTokens":  10,
					"OutputTokens": int64(5),
					"TotalTokens":  15,
				},
			},
		},
	}
	assert.Equal(t, uint64(5), llmutils.CountResponseContentSize(resp))
	in, out, total := llmutils.CountTokens(resp)
	assert.Equal(t, int64(10), in)
	assert.Equal(t, int64(5), out)
	assert.Equal(t, int64(15), total)
}

func Test_Print(t *testing.T) {
	var w strings.Builder
	llmutils.PrintMessages(&w, []llms.Message{
		llms.MessageFromTextParts(llms.RoleHuman, "Query: task"),
	})
	assert.Equal(t, "HUMAN: Query: task\n", w.String())

	assert.Equal(t, `{"a":1}`, llmutils.ToJSON(map[string]int{"a": 1}))
	assert.Equal(t, "a: 1\n", llmutils.ToYAML(map[string]int{"a": 1}))
}
