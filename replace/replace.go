// Package replace implements §4.G's pattern-replacement surface: marker-pair
// search over assistant text parts, batch validation, and ReplacementEntry
// production.
package replace

import (
	"strings"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/toolerrors"
)

// Operation is one `replace(operations)` tuple.
type Operation struct {
	Start       string
	End         string
	Replacement string
}

// minMatchLength and minMarkerSpecificity are §4.G's validation
// thresholds.
const (
	minMatchLength       = 30
	minMarkerSpecificity = 15
)

// BatchError collects every validation failure across a batch of
// operations — §4.G: "on failure the whole batch is rejected with a
// combined error message."
type BatchError struct {
	Errors []*toolerrors.ToolError
}

func (b *BatchError) Error() string {
	msgs := make([]string, len(b.Errors))
	for i, e := range b.Errors {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes the first failure for errors.Is/As, matching the common
// case of a single bad operation in the batch.
func (b *BatchError) Unwrap() error {
	if len(b.Errors) == 0 {
		return nil
	}
	return b.Errors[0]
}

type candidate struct {
	opIndex    int
	messageID  string
	partIndex  int
	startIndex int
	endIndex   int // exclusive: just past the end marker
}

// Apply validates every operation collectively against messages, and on
// success appends one ReplacementEntry per operation to state.Prune
// (§4.G). No state is mutated when validation fails.
func Apply(state *session.State, messages []parts.Message, operations []Operation) error {
	matchesByOp := make([][]candidate, len(operations))
	var batchErrs []*toolerrors.ToolError

	for i, op := range operations {
		found := findMatches(messages, i, op)
		switch {
		case len(found) == 0:
			batchErrs = append(batchErrs, toolerrors.Errorf(toolerrors.KindPatternNotFound,
				"operation %d: start marker %q has no match", i, op.Start))
			continue
		case len(found) > 1:
			batchErrs = append(batchErrs, toolerrors.Errorf(toolerrors.KindPatternAmbiguous,
				"operation %d: start marker %q matches %d times", i, op.Start, len(found)))
			continue
		}
		m := found[0]
		if m.endIndex-m.startIndex < minMatchLength {
			batchErrs = append(batchErrs, toolerrors.Errorf(toolerrors.KindMatchTooShort,
				"operation %d: matched region is %d chars, need at least %d", i, m.endIndex-m.startIndex, minMatchLength))
			continue
		}
		if len(op.Start) <= minMarkerSpecificity && len(op.End) <= minMarkerSpecificity {
			batchErrs = append(batchErrs, toolerrors.Errorf(toolerrors.KindMarkersTooShort,
				"operation %d: neither marker exceeds %d characters", i, minMarkerSpecificity))
			continue
		}
		matchesByOp[i] = found
	}

	if overlapErr := checkOverlaps(matchesByOp); overlapErr != nil {
		batchErrs = append(batchErrs, overlapErr)
	}

	if len(batchErrs) > 0 {
		return &BatchError{Errors: batchErrs}
	}

	for i, op := range operations {
		m := matchesByOp[i][0]
		state.Prune.Replacements = append(state.Prune.Replacements, session.ReplacementEntry{
			MessageID:      m.messageID,
			PartIndex:      m.partIndex,
			StartIndex:     m.startIndex,
			EndIndex:       m.endIndex,
			Replacement:    op.Replacement,
			OriginalLength: m.endIndex - m.startIndex,
		})
	}
	return nil
}

// findMatches locates every (start, nearest-following-end) pair for op
// across every assistant text part.
func findMatches(messages []parts.Message, opIndex int, op Operation) []candidate {
	var out []candidate
	for _, msg := range messages {
		if msg.Role != parts.RoleAssistant {
			continue
		}
		for partIdx, part := range msg.Parts {
			text, ok := part.(parts.Text)
			if !ok {
				continue
			}
			out = append(out, findInText(msg.ID, partIdx, opIndex, text.Content, op)...)
		}
	}
	return out
}

func findInText(messageID string, partIdx, opIndex int, content string, op Operation) []candidate {
	var out []candidate
	searchFrom := 0
	for {
		startIdx := strings.Index(content[searchFrom:], op.Start)
		if startIdx < 0 {
			break
		}
		startIdx += searchFrom
		afterStart := startIdx + len(op.Start)
		endIdx := strings.Index(content[afterStart:], op.End)
		if endIdx >= 0 {
			endIdx += afterStart
			out = append(out, candidate{
				opIndex:    opIndex,
				messageID:  messageID,
				partIndex:  partIdx,
				startIndex: startIdx,
				endIndex:   endIdx + len(op.End),
			})
		}
		searchFrom = afterStart
	}
	return out
}

// checkOverlaps enforces rule 4 across every surviving match from every
// operation, since two operations could otherwise target overlapping
// regions of the same text part.
func checkOverlaps(matchesByOp [][]candidate) *toolerrors.ToolError {
	var all []candidate
	for _, ms := range matchesByOp {
		all = append(all, ms...)
	}
	for i := 0; i < len(all); i++ {
		for j := i + 1; j < len(all); j++ {
			a, b := all[i], all[j]
			if a.messageID != b.messageID || a.partIndex != b.partIndex {
				continue
			}
			if a.startIndex < b.endIndex && b.startIndex < a.endIndex {
				return toolerrors.Errorf(toolerrors.KindPatternsOverlap,
					"operations %d and %d overlap in message %s part %d", a.opIndex, b.opIndex, a.messageID, a.partIndex)
			}
		}
	}
	return nil
}
