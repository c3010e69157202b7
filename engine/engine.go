// Package engine wires sync, strategies, manual, replace, view, notify,
// schema, and reminder into the four hook points a host drives (§4.J):
// after-tool, after-turn, tool-registration, session-end. Grounded on
// runtime/agent/runtime/runtime.go's top-level orchestrator shape (a
// struct bundling the collaborators, one method per lifecycle event,
// state loaded/saved around each call) rather than copied line for line,
// since that file's concerns (planner loop, model calls, workflow
// replay) don't exist here.
package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/config"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hooks"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/manual"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/notify"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/reminder"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/replace"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/schema"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/strategies"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/sync"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/telemetry"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/view"
)

// Tool names the engine registers at tool-registration time (§6
// "Engine-exposed"), reused verbatim from package schema.
const (
	ToolContext = schema.ToolContext
	ToolReplace = schema.ToolReplace
)

// Engine is the top-level orchestrator a host constructs once per process
// and drives through the four hook methods below.
type Engine struct {
	Config   config.Config
	Store    session.Store
	Host     hooks.Host
	Bus      hooks.Bus
	Reminder *reminder.Engine
	Notify   *notify.HostSink
	Redis    *notify.RedisSink // optional additive fan-out, may be nil
	Recorder *telemetry.Recorder

	mu       sync.Mutex
	sessions map[string]*session.State
}

// New constructs an Engine. host and store are required; bus, redis, and
// recorder default to a no-op bus-less/nil/noop-telemetry configuration
// when omitted via Options.
func New(cfg config.Config, store session.Store, host hooks.Host, opts ...Option) *Engine {
	e := &Engine{
		Config:   cfg,
		Store:    store,
		Host:     host,
		Reminder: reminder.NewEngine(),
		Recorder: telemetry.NewNoopRecorder(),
		sessions: make(map[string]*session.State),
	}
	e.Notify = &notify.HostSink{Host: host}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithBus registers an event bus hook events are additionally published to.
func WithBus(bus hooks.Bus) Option { return func(e *Engine) { e.Bus = bus } }

// WithRedisSink enables the additive Redis stream fan-out.
func WithRedisSink(sink *notify.RedisSink) Option { return func(e *Engine) { e.Redis = sink } }

// WithRecorder overrides the default no-op telemetry recorder.
func WithRecorder(r *telemetry.Recorder) Option {
	return func(e *Engine) { e.Recorder = r }
}

// stateFor loads sessionID's state from the in-memory cache, falling back
// to the store and finally to a fresh session.New. Callers hold e.mu.
func (e *Engine) stateFor(ctx context.Context, sessionID string) (*session.State, error) {
	if st, ok := e.sessions[sessionID]; ok {
		return st, nil
	}
	st, err := e.Store.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("engine: load session %q: %w", sessionID, err)
	}
	if st == nil {
		st = session.New(sessionID)
	}
	e.sessions[sessionID] = st
	return st, nil
}

func (e *Engine) publish(ctx context.Context, event hooks.Event) error {
	if e.Bus == nil {
		return nil
	}
	return e.Bus.Publish(ctx, event)
}

// isManualTool reports whether toolName is one of the engine's own
// pruning tools, so AfterTool can skip sync+strategies for it (§4.J: "to
// avoid infinite feedback").
func isManualTool(toolName string) bool {
	return toolName == ToolContext || toolName == ToolReplace
}

// runAutoPipeline runs sync (§4.D) and, if enabled, the auto strategies
// (§4.E), returning the stats delta so the caller can notify.
func (e *Engine) runAutoPipeline(ctx context.Context, st *session.State, messages []parts.Message) session.Stats {
	before := st.Stats
	spanCtx, span := e.Recorder.StartSpan(ctx, "sync", "sync")
	sync.Sync(st, e.Config.Sync(), messages, e.Reminder)
	span.End()

	if e.Config.AutoPruneAfterTool {
		stratCfg := e.Config.Strategies()
		_, span = e.Recorder.StartSpan(spanCtx, "strategies", "run")
		// Each strategy gates itself on its own cfg.*.Enabled field, so
		// calling all three unconditionally is safe and keeps this call
		// site in sync as strategies gain tunables.
		strategies.Deduplicate(st, stratCfg)
		strategies.PurgeErrors(st, stratCfg)
		strategies.Truncate(st, stratCfg, messages)
		span.End()
	}
	return diffStats(before, st.Stats)
}

// AfterTool runs on every tool completion (§4.J). toolName is the name of
// the tool that just finished; when it is context or replace, sync and
// the auto strategies are skipped.
func (e *Engine) AfterTool(ctx context.Context, sessionID, toolName string) error {
	if !e.Config.Enabled || isManualTool(toolName) {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.stateFor(ctx, sessionID)
	if err != nil {
		return err
	}
	messages, err := e.Host.Messages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("engine: fetch messages: %w", err)
	}
	delta := e.runAutoPipeline(ctx, st, messages)
	e.notifyAuto(ctx, sessionID, "auto-prune", delta)
	e.deliverReminders(ctx, sessionID, st)
	return e.publish(ctx, hooks.Event{Type: hooks.EventAfterTool, SessionID: sessionID, TokensSaved: totalTokens(delta)})
}

// AfterTurn runs the same pipeline as AfterTool plus opportunistic
// persistence (§4.J).
func (e *Engine) AfterTurn(ctx context.Context, sessionID string) error {
	if !e.Config.Enabled {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.stateFor(ctx, sessionID)
	if err != nil {
		return err
	}
	messages, err := e.Host.Messages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("engine: fetch messages: %w", err)
	}
	delta := e.runAutoPipeline(ctx, st, messages)
	e.notifyAuto(ctx, sessionID, "auto-prune", delta)
	e.deliverReminders(ctx, sessionID, st)

	if err := e.Store.Save(ctx, st); err != nil {
		e.Recorder.Logger.Warn(ctx, "engine: opportunistic persistence failed", "sessionId", sessionID, "err", err)
	}
	return e.publish(ctx, hooks.Event{Type: hooks.EventAfterTurn, SessionID: sessionID, TokensSaved: totalTokens(delta)})
}

// DispatchContext handles one `context` tool call (§4.F), validating its
// arguments against the registered schema before dispatch.
func (e *Engine) DispatchContext(ctx context.Context, sessionID string, payload any, action manual.Action, targets []manual.TargetSpec) (*manual.Result, error) {
	if err := schema.Validate(ToolContext, payload); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.stateFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	result, err := manual.Dispatch(st, e.Config.Manual(), action, targets)
	if err != nil {
		return nil, err
	}
	e.notifyManual(ctx, sessionID, result)
	if pubErr := e.publish(ctx, hooks.Event{Type: hooks.EventManualOperation, SessionID: sessionID, Summary: string(action)}); pubErr != nil {
		return result, pubErr
	}
	return result, nil
}

// DispatchReplace handles one `replace` tool call (§4.G).
func (e *Engine) DispatchReplace(ctx context.Context, sessionID string, payload any, operations []replace.Operation) error {
	if err := schema.Validate(ToolReplace, payload); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.stateFor(ctx, sessionID)
	if err != nil {
		return err
	}
	messages, err := e.Host.Messages(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("engine: fetch messages: %w", err)
	}
	if err := replace.Apply(st, messages, operations); err != nil {
		return err
	}
	e.notifyReplace(ctx, sessionID, len(operations))
	return e.publish(ctx, hooks.Event{Type: hooks.EventManualOperation, SessionID: sessionID, Summary: "replace"})
}

// View returns the redacted message list the model should see (§4.H).
func (e *Engine) View(ctx context.Context, sessionID string) ([]parts.Message, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, err := e.stateFor(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages, err := e.Host.Messages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("engine: fetch messages: %w", err)
	}
	return view.Assemble(st, messages), nil
}

// SessionEnd persists final state and clears the reminder engine's
// per-session bookkeeping.
func (e *Engine) SessionEnd(ctx context.Context, sessionID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if st, ok := e.sessions[sessionID]; ok {
		if err := e.Store.Save(ctx, st); err != nil {
			e.Recorder.Logger.Warn(ctx, "engine: final persistence failed", "sessionId", sessionID, "err", err)
		}
		delete(e.sessions, sessionID)
	}
	e.Reminder.ClearSession(sessionID)
	return e.publish(ctx, hooks.Event{Type: hooks.EventSessionEnd, SessionID: sessionID})
}

// ToolDefinition is what the tool-registration hook hands back to the
// host for each engine-exposed tool.
type ToolDefinition struct {
	Name   string
	Schema string
}

// RegisterTools returns the tool definitions the tool-registration hook
// should register with the host: context always, replace only when
// enabled (§4.J: "registers context (and the replace tool, if enabled)").
func (e *Engine) RegisterTools(replaceEnabled bool) []ToolDefinition {
	defs := []ToolDefinition{{Name: ToolContext, Schema: schema.ContextSchemaJSON}}
	if replaceEnabled {
		defs = append(defs, ToolDefinition{Name: ToolReplace, Schema: schema.ReplaceSchemaJSON})
	}
	return defs
}

// deliverReminders emits every reminder due for st's current turn (§4.O)
// through the host's prompt surface, same ignored/no-reply shape as a
// notification.
func (e *Engine) deliverReminders(ctx context.Context, sessionID string, st *session.State) {
	for _, r := range e.Reminder.Snapshot(sessionID, st.CurrentTurn) {
		if err := e.Host.Prompt(ctx, sessionID, hooks.PromptBody{Text: r.Text, Ignored: true, NoReply: true}); err != nil {
			e.Recorder.Logger.Warn(ctx, "engine: reminder delivery failed", "sessionId", sessionID, "err", err)
		}
	}
}

func totalTokens(s session.Stats) int {
	return s.AutoSupersede.Hash.TokensSaved + s.AutoSupersede.File.TokensSaved +
		s.AutoSupersede.Todo.TokensSaved + s.AutoSupersede.URL.TokensSaved +
		s.AutoSupersede.StateQuery.TokensSaved + s.AutoSupersede.Snapshot.TokensSaved +
		s.AutoSupersede.Retry.TokensSaved + s.Deduplication.TokensSaved +
		s.PurgeErrors.TokensSaved + s.Truncation.TokensSaved
}
