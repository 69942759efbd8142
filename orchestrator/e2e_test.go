package orchestrator_test

import (
	"context"
	"math"
	"strconv"
	"testing"
	"time"

	"github.com/effective-security/toolloop/mathtools"
	"github.com/effective-security/toolloop/modelclient"
	"github.com/effective-security/toolloop/orchestrator"
	"github.com/effective-security/toolloop/pkg/prompts"
	"github.com/effective-security/toolloop/tools"
	"github.com/effective-security/toolloop/tools/mcptools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indiaTask = "Find the ASCII values of characters in INDIA and then return sum of exponentials of those values. send a gmail with the final answer. "

func TestRun_India(t *testing.T) {
	ctx := context.Background()
	outbox := mathtools.NewOutbox()

	server, err := mathtools.NewServer("v0.0.1", outbox)
	require.NoError(t, err)
	ct, st := mcp.NewInMemoryTransports()
	_, err = server.Connect(ctx, st, nil)
	require.NoError(t, err)

	provider, err := mcptools.Connect(ctx, ct, "v0.0.1")
	require.NoError(t, err)
	defer func() { _ = provider.Close() }()

	list, err := provider.ListTools(ctx)
	require.NoError(t, err)
	catalog := tools.NewCatalog(list...)

	builder, err := prompts.NewBuilder("", catalog)
	require.NoError(t, err)
	assert.Contains(t, builder.System(), "strings_to_chars_to_int(string:string) - Return the ASCII values of the characters in a word")

	sum := strconv.FormatFloat(math.Exp(73)+math.Exp(78)+math.Exp(68)+math.Exp(73)+math.Exp(65), 'g', -1, 64)

	s := &script{responses: []string{
		call("strings_to_chars_to_int", "INDIA"),
		call("validate_strings_to_chars_to_int", "INDIA", "[73, 78, 68, 73, 65]"),
		"```json\n" + call("int_list_to_exponential_sum", "[73, 78, 68, 73, 65]") + "\n```",
		final(sum),
		call("call_send_gmail", "user@example.com", "Final Answer", "Final answer is "+sum),
		final(sum),
	}}

	o := orchestrator.New(
		modelclient.New(newModel(t, s), modelclient.WithTimeout(10*time.Second)),
		tools.NewInvoker(catalog, provider),
		builder,
		orchestrator.WithTask(indiaTask))

	out := o.Run(ctx)
	require.Equal(t, orchestrator.StatusCompleted, out.State, "%v", out.Err)
	assert.Equal(t, 6, out.Iterations)
	assert.Equal(t, sum, out.LastResult)

	summaries := make([]string, 0, len(out.Records))
	for _, r := range out.Records {
		assert.False(t, r.IsError())
		summaries = append(summaries, r.Summary)
	}
	assert.Equal(t, []string{
		"In iteration 1 you called strings_to_chars_to_int and got answer [73, 78, 68, 73, 65].",
		"In iteration 2 you called validate_strings_to_chars_to_int and got answer true.",
		"In iteration 3 you called int_list_to_exponential_sum and got answer " + sum + ".",
		"In iteration 4 you got final answer " + sum + ".",
		"In iteration 5 you called call_send_gmail and got answer Email sent to user@example.com.",
		"In iteration 6 you got final answer " + sum + ".",
	}, summaries)

	mails := outbox.Mails()
	require.Len(t, mails, 1)
	assert.Equal(t, "user@example.com", mails[0].To)
	assert.Contains(t, mails[0].Body, sum)

	require.Len(t, s.prompts, 6)
	assert.Equal(t, builder.Prompt(indiaTask), s.prompts[0])
	assert.Contains(t, s.prompts[5], "In iteration 5 you called call_send_gmail and got answer Email sent to user@example.com.  What should I do next?")
	assert.True(t, o.Conversation().IsEmpty())
}
