package engine

import (
	"context"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hashing"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/manual"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/notify"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
)

// diffStats returns a Stats value holding only the counts/tokens-saved
// accrued between before and after, so a pipeline run's notification
// reflects what that run actually did rather than the session's lifetime
// totals.
func diffStats(before, after session.Stats) session.Stats {
	var d session.Stats
	diffCounter := func(b, a session.CounterStat) session.CounterStat {
		return session.CounterStat{Count: a.Count - b.Count, TokensSaved: a.TokensSaved - b.TokensSaved}
	}
	d.AutoSupersede.Hash = diffCounter(before.AutoSupersede.Hash, after.AutoSupersede.Hash)
	d.AutoSupersede.File = diffCounter(before.AutoSupersede.File, after.AutoSupersede.File)
	d.AutoSupersede.Todo = diffCounter(before.AutoSupersede.Todo, after.AutoSupersede.Todo)
	d.AutoSupersede.URL = diffCounter(before.AutoSupersede.URL, after.AutoSupersede.URL)
	d.AutoSupersede.StateQuery = diffCounter(before.AutoSupersede.StateQuery, after.AutoSupersede.StateQuery)
	d.AutoSupersede.Snapshot = diffCounter(before.AutoSupersede.Snapshot, after.AutoSupersede.Snapshot)
	d.AutoSupersede.Retry = diffCounter(before.AutoSupersede.Retry, after.AutoSupersede.Retry)
	d.Deduplication = diffCounter(before.Deduplication, after.Deduplication)
	d.PurgeErrors = diffCounter(before.PurgeErrors, after.PurgeErrors)
	d.Truncation = diffCounter(before.Truncation, after.Truncation)
	return d
}

// statsCategories flattens a Stats delta into the notify.Category list a
// Summary expects, omitting any bucket with zero activity.
func statsCategories(d session.Stats) []notify.Category {
	var cats []notify.Category
	add := func(label string, c session.CounterStat) {
		if c.Count > 0 {
			cats = append(cats, notify.Category{Label: label, Count: c.Count, TokensSaved: c.TokensSaved})
		}
	}
	add("hash supersede", d.AutoSupersede.Hash)
	add("file supersede", d.AutoSupersede.File)
	add("todo supersede", d.AutoSupersede.Todo)
	add("url supersede", d.AutoSupersede.URL)
	add("state-query supersede", d.AutoSupersede.StateQuery)
	add("snapshot supersede", d.AutoSupersede.Snapshot)
	add("retry supersede", d.AutoSupersede.Retry)
	add("deduplication", d.Deduplication)
	add("purge errors", d.PurgeErrors)
	add("truncation", d.Truncation)
	return cats
}

// notifyAuto delivers a notification for one sync/auto-strategy pass, when
// it actually touched anything and the host has notifications enabled.
func (e *Engine) notifyAuto(ctx context.Context, sessionID, action string, delta session.Stats) {
	cats := statsCategories(delta)
	if len(cats) == 0 {
		return
	}
	mode, enabled := e.Config.NotificationMode()
	if !enabled {
		return
	}
	summary := notify.Summary{Action: action, Categories: cats, TotalTokensSaved: totalTokens(delta)}
	e.deliver(ctx, sessionID, summary, mode)
}

// categoryLabel maps a hashing.TargetType to the notification label §4.I
// names for manual operations.
func categoryLabel(kind hashing.TargetType) string {
	switch kind {
	case hashing.TargetTool:
		return "tool call"
	case hashing.TargetMessage:
		return "message part"
	case hashing.TargetReasoning:
		return "thinking block"
	default:
		return "target"
	}
}

// notifyManual delivers the §4.F notification for one context tool call,
// including the no-op case (§4.F "No-op notification").
func (e *Engine) notifyManual(ctx context.Context, sessionID string, result *manual.Result) {
	mode, enabled := e.Config.NotificationMode()
	if !enabled {
		return
	}
	if result.Noop() {
		e.deliver(ctx, sessionID, notify.Summary{Action: string(result.Action), Attempted: result.Attempted}, mode)
		return
	}

	byKind := make(map[hashing.TargetType]notify.Category)
	total := 0
	for _, applied := range result.Applied {
		c := byKind[applied.Kind]
		if c.Label == "" {
			c.Label = categoryLabel(applied.Kind)
		}
		c.Count++
		c.TokensSaved += applied.TokensSaved
		if len(c.Samples) < 3 {
			c.Samples = append(c.Samples, applied.Target)
		}
		byKind[applied.Kind] = c
		total += applied.TokensSaved
	}
	cats := make([]notify.Category, 0, len(byKind))
	for _, kind := range []hashing.TargetType{hashing.TargetTool, hashing.TargetMessage, hashing.TargetReasoning} {
		if c, ok := byKind[kind]; ok {
			cats = append(cats, c)
		}
	}
	summary := notify.Summary{Action: string(result.Action), Categories: cats, TotalTokensSaved: total}
	e.deliver(ctx, sessionID, summary, mode)
}

// notifyReplace delivers a notification for one replace tool call.
func (e *Engine) notifyReplace(ctx context.Context, sessionID string, operationCount int) {
	mode, enabled := e.Config.NotificationMode()
	if !enabled {
		return
	}
	summary := notify.Summary{
		Action:     "replace",
		Categories: []notify.Category{{Label: "pattern replacement", Count: operationCount}},
	}
	e.deliver(ctx, sessionID, summary, mode)
}

// deliver sends summary through the mandatory host sink and, when
// configured, the additive Redis fan-out (§4.M).
func (e *Engine) deliver(ctx context.Context, sessionID string, summary notify.Summary, mode notify.Mode) {
	if e.Notify != nil {
		if err := e.Notify.Send(ctx, sessionID, summary, mode); err != nil {
			e.Recorder.Logger.Warn(ctx, "engine: notification delivery failed", "sessionId", sessionID, "err", err)
		}
	}
	if e.Redis != nil {
		e.Redis.Publish(ctx, sessionID, summary, mode)
	}
}
