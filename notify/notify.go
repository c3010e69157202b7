// Package notify implements §4.I's notification formatter plus the §4.M
// transport fan-out: a mandatory note delivered through the host's prompt
// surface, and an optional additive publish onto a Redis stream.
package notify

import (
	"fmt"
	"strings"
)

// Mode selects the notification's verbosity (§4.I: "two modes (minimal,
// detailed) are supported and selected by configuration").
type Mode string

const (
	ModeMinimal  Mode = "minimal"
	ModeDetailed Mode = "detailed"
)

// Category is one bucket of a Summary, labelled by whoever builds it: the
// engine uses a target-type label (tool call, message part, thinking
// block) for manual operations, "pattern replacement" for replace calls,
// and a stats-bucket name (e.g. "hash supersede") for auto runs.
type Category struct {
	Label       string
	Count       int
	TokensSaved int
	Samples     []string // human-readable identifiers, capped by the caller
}

// Summary is the content of one terminal-action notification: an auto
// strategy run, a manual context call, or a replace call.
type Summary struct {
	Action           string
	Categories       []Category
	TotalTokensSaved int
	Attempted        []string // identifiers targeted when Categories is empty (§4.F no-op notification)
}

// Format renders s as the note text, varying level of detail by mode.
func Format(s Summary, mode Mode) string {
	if len(s.Categories) == 0 {
		if len(s.Attempted) == 0 {
			return fmt.Sprintf("context: %s — no eligible targets found", s.Action)
		}
		return fmt.Sprintf("context: %s — no eligible targets found (attempted: %s)", s.Action, strings.Join(s.Attempted, ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "context: %s", s.Action)
	total := 0
	for _, c := range s.Categories {
		total += c.Count
	}
	fmt.Fprintf(&b, " — %d item(s), ~%d tokens saved", total, s.TotalTokensSaved)

	if mode == ModeDetailed {
		for _, c := range s.Categories {
			fmt.Fprintf(&b, "\n  %s: %d (~%d tokens)", c.Label, c.Count, c.TokensSaved)
			if len(c.Samples) > 0 {
				fmt.Fprintf(&b, " e.g. %s", strings.Join(c.Samples, ", "))
			}
		}
	}
	return b.String()
}
