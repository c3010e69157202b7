package adapter

import (
	"encoding/json"
	"strings"

	"github.com/openai/openai-go"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
)

// FromOpenAIMessage converts one Chat Completions assistant message into
// parts: its content string (if any) becomes a Text part, and each tool
// call becomes a pending Tool part. Grounded on NeboLoop-nebo's
// api_openai.go decode side (acc.Choices[0].Message.Content/.ToolCalls),
// the one example repo in the pack using the real openai/openai-go SDK
// rather than sashabaranov/go-openai.
func FromOpenAIMessage(msg openai.ChatCompletionMessage) []parts.Part {
	out := make([]parts.Part, 0, 1+len(msg.ToolCalls))
	if content := strings.TrimSpace(msg.Content); content != "" {
		out = append(out, parts.Text{Content: msg.Content})
	}
	for _, tc := range msg.ToolCalls {
		out = append(out, parts.Tool{
			CallID: tc.ID,
			Name:   tc.Function.Name,
			Input:  parseToolArguments(tc.Function.Arguments),
			Status: parts.StatusPending,
		})
	}
	return out
}

func parseToolArguments(raw string) any {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var payload any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return map[string]any{"raw": raw}
	}
	return payload
}
