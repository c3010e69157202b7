// Package adapter converts host-provider wire messages (Anthropic, OpenAI,
// Bedrock) into the engine's parts.Part model (§4.K), and provides a small
// in-memory hooks.Host for demos. Grounded on
// features/model/anthropic/client.go's translateResponse,
// features/model/openai (NeboLoop-nebo's api_openai.go, since that repo
// targets the real openai-go SDK our go.mod carries) decode side, and
// features/model/bedrock/client.go's translateResponse plus
// transcript.ValidateBedrock's thinking-before-tool-use constraint.
package adapter

import (
	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
)

// FromAnthropicMessage converts one Anthropic message's content blocks into
// parts. Tool-use blocks are emitted with StatusPending and no
// output/error — callers reconcile them against the matching tool_result
// via MergeToolResult once the host reports it.
func FromAnthropicMessage(blocks []sdk.ContentBlockUnion) []parts.Part {
	out := make([]parts.Part, 0, len(blocks))
	for _, block := range blocks {
		switch block.Type {
		case "text":
			if block.Text == "" {
				continue
			}
			out = append(out, parts.Text{Content: block.Text})
		case "thinking":
			if block.Thinking == "" {
				continue
			}
			out = append(out, parts.Reasoning{Content: block.Thinking})
		case "tool_use":
			out = append(out, parts.Tool{
				CallID: block.ID,
				Name:   block.Name,
				Input:  block.Input,
				Status: parts.StatusPending,
			})
		}
	}
	return out
}

// MergeToolResult folds a later tool_result block (delivered in the
// following user message, per Anthropic's protocol) into the Tool part
// produced for the matching tool_use. Mirrors the handshake
// transcript.ValidateBedrock enforces for Bedrock, applied here as
// reconciliation rather than validation.
func MergeToolResult(tool parts.Tool, output string, isError bool) parts.Tool {
	if isError {
		tool.Status = parts.StatusError
		tool.Err = output
	} else {
		tool.Status = parts.StatusCompleted
		tool.Output = output
	}
	return tool
}
