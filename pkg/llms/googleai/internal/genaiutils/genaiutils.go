package genaiutils

import (
	"strings"

	"google.golang.org/genai"
)

// Float32Ptr returns a pointer to v, or nil when v is zero so that the
// provider default applies.
func Float32Ptr(v float32) *float32 {
	if v == 0 {
		return nil
	}
	return &v
}

// ContentText concatenates the text parts of the content, ignoring
// non-text parts such as thoughts or inline data.
func ContentText(content *genai.Content) string {
	if content == nil {
		return ""
	}
	var buf strings.Builder
	for _, part := range content.Parts {
		if part == nil || part.Thought {
			continue
		}
		buf.WriteString(part.Text)
	}
	return buf.String()
}

// UsageInfo returns the token usage in the GenerationInfo format shared by
// all providers.
func UsageInfo(usage *genai.GenerateContentResponseUsageMetadata) map[string]any {
	info := make(map[string]any)
	if usage == nil {
		return info
	}
	info["InputTokens"] = int(usage.PromptTokenCount)
	info["OutputTokens"] = int(usage.CandidatesTokenCount + usage.ThoughtsTokenCount)
	info["TotalTokens"] = int(usage.TotalTokenCount)
	return info
}
