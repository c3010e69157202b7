// Package view implements §4.H's view assembler: given the raw message
// list and session state, it produces the message list the model actually
// sees, applying discards, distillation summaries, reasoning omission, and
// pattern replacements.
package view

import (
	"fmt"
	"sort"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// Assemble returns a new message slice reflecting state's prune plan. The
// input messages are never mutated.
func Assemble(state *session.State, messages []parts.Message) []parts.Message {
	repls := groupReplacements(state.Prune.Replacements)

	out := make([]parts.Message, 0, len(messages))
	for _, msg := range messages {
		newParts := make([]parts.Part, 0, len(msg.Parts))
		for idx, part := range msg.Parts {
			switch p := part.(type) {
			case parts.Tool:
				if rendered, keep := renderTool(state, p); keep {
					newParts = append(newParts, rendered)
				}
			case parts.Text:
				pid := parts.PartID{MessageID: msg.ID, Index: idx}.String()
				if rendered, keep := renderText(state, pid, p, repls[msg.ID][idx]); keep {
					newParts = append(newParts, rendered)
				}
			case parts.Reasoning:
				pid := parts.PartID{MessageID: msg.ID, Index: idx}.String()
				if !state.Prune.IsReasoningPruned(pid) {
					newParts = append(newParts, p)
				}
			default:
				newParts = append(newParts, part)
			}
		}
		out = append(out, parts.Message{ID: msg.ID, Role: msg.Role, Parts: newParts, CreatedAt: msg.CreatedAt})
	}
	return out
}

// renderTool applies the tool-part rule of §4.H plus the Purge-errors
// partial-redaction rule (§4.E): a call id marked in state.InputStripped
// keeps its status/output/error intact and only has its input elided,
// taking precedence over the generic discard placeholder.
func renderTool(state *session.State, p parts.Tool) (parts.Part, bool) {
	if !state.Prune.IsToolPruned(p.CallID) {
		return p, true
	}
	if state.Forgotten[p.CallID] {
		return nil, false
	}
	if state.InputStripped[p.CallID] {
		p.Input = "[input elided]"
		return p, true
	}

	hash, _ := state.HashForCall(p.CallID)
	if summary, ok := state.Distilled[p.CallID]; ok {
		p.Input = nil
		p.Output = fmt.Sprintf("[distilled: %s, hash=%s] %s", p.Name, hash, summary)
		p.Err = ""
		return p, true
	}
	p.Input = nil
	p.Output = fmt.Sprintf("[discarded: %s, hash=%s]", p.Name, hash)
	p.Err = ""
	return p, true
}

// renderText applies the assistant-text rule of §4.H: discard/distill
// placeholder first, pattern replacement otherwise.
func renderText(state *session.State, partID string, p parts.Text, repls []session.ReplacementEntry) (parts.Part, bool) {
	if state.Prune.IsMessagePruned(partID) {
		hash, _ := state.MessageHashForPart(partID)
		if summary, ok := state.Distilled[partID]; ok {
			p.Content = fmt.Sprintf("[distilled: message, hash=%s] %s", hash, summary)
		} else {
			p.Content = fmt.Sprintf("[discarded: message, hash=%s]", hash)
		}
		return p, true
	}
	if len(repls) > 0 {
		p.Content = applyReplacements(p.Content, repls)
	}
	return p, true
}

// applyReplacements substitutes each entry's span in descending startIndex
// order so earlier offsets stay valid as later (higher-offset) spans are
// rewritten first (§4.G "Application is lazy").
func applyReplacements(content string, repls []session.ReplacementEntry) string {
	sorted := append([]session.ReplacementEntry(nil), repls...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartIndex > sorted[j].StartIndex })
	for _, r := range sorted {
		if r.StartIndex < 0 || r.EndIndex > len(content) || r.StartIndex > r.EndIndex {
			continue
		}
		content = content[:r.StartIndex] + r.Replacement + content[r.EndIndex:]
	}
	return content
}

// groupReplacements indexes prune.replacements by message id and part
// index for O(1) lookup while walking messages.
func groupReplacements(entries []session.ReplacementEntry) map[string]map[int][]session.ReplacementEntry {
	out := make(map[string]map[int][]session.ReplacementEntry)
	for _, e := range entries {
		if out[e.MessageID] == nil {
			out[e.MessageID] = make(map[int][]session.ReplacementEntry)
		}
		out[e.MessageID][e.PartIndex] = append(out[e.MessageID][e.PartIndex], e)
	}
	return out
}
