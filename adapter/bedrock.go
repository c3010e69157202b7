package adapter

import (
	"encoding/json"

	brtypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go/document"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
)

// FromBedrockMessage converts one Converse API message's content blocks
// into parts. Grounded on features/model/bedrock/client.go's
// translateResponse type switch over brtypes.ContentBlock members.
func FromBedrockMessage(blocks []brtypes.ContentBlock) []parts.Part {
	out := make([]parts.Part, 0, len(blocks))
	for _, block := range blocks {
		switch v := block.(type) {
		case *brtypes.ContentBlockMemberText:
			if v.Value == "" {
				continue
			}
			out = append(out, parts.Text{Content: v.Value})
		case *brtypes.ContentBlockMemberReasoningContent:
			if text, ok := v.Value.(*brtypes.ReasoningContentBlockMemberReasoningText); ok {
				if t := text.Value.Text; t != nil && *t != "" {
					out = append(out, parts.Reasoning{Content: *t})
				}
			}
		case *brtypes.ContentBlockMemberToolUse:
			name := ""
			if v.Value.Name != nil {
				name = *v.Value.Name
			}
			id := ""
			if v.Value.ToolUseId != nil {
				id = *v.Value.ToolUseId
			}
			out = append(out, parts.Tool{
				CallID: id,
				Name:   name,
				Input:  decodeDocument(v.Value.Input),
				Status: parts.StatusPending,
			})
		}
	}
	return out
}

// ValidateThinkingBeforeToolUse enforces the same handshake constraint as
// transcript.ValidateBedrock's thinking-first rule, applied to the
// engine's own parts.Message sequence rather than the provider's wire
// messages: when thinking is enabled, any assistant message containing a
// Tool part must open with a Reasoning part.
func ValidateThinkingBeforeToolUse(messages []parts.Message, thinkingEnabled bool) error {
	if !thinkingEnabled {
		return nil
	}
	for _, m := range messages {
		if m.Role != parts.RoleAssistant || len(m.Parts) == 0 {
			continue
		}
		hasTool := false
		for _, p := range m.Parts {
			if _, ok := p.(parts.Tool); ok {
				hasTool = true
				break
			}
		}
		if !hasTool {
			continue
		}
		if _, ok := m.Parts[0].(parts.Reasoning); !ok {
			return errBedrockThinkingFirst
		}
	}
	return nil
}

var errBedrockThinkingFirst = bedrockThinkingError{}

type bedrockThinkingError struct{}

func (bedrockThinkingError) Error() string {
	return "bedrock: assistant message with tool use must start with thinking"
}

// decodeDocument converts a smithy document (the Converse API's dynamic
// JSON type) into a json.RawMessage, matching
// features/model/bedrock/client.go's decodeDocument.
func decodeDocument(doc document.Interface) json.RawMessage {
	if doc == nil {
		return nil
	}
	data, err := doc.MarshalSmithyDocument()
	if err != nil {
		return nil
	}
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}
