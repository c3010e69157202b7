package notify

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/hooks"
)

// HostSink is the mandatory §4.I delivery path: every terminal action
// notifies through the host's prompt surface, as an ignored, no-reply note
// (§4.I: "session.prompt(..., noReply=true, parts=[{type:text,
// ignored:true}])").
type HostSink struct {
	Host hooks.Host
}

// Send formats summary and delivers it through the host.
func (h HostSink) Send(ctx context.Context, sessionID string, summary Summary, mode Mode) error {
	return h.Host.Prompt(ctx, sessionID, hooks.PromptBody{
		Text:    Format(summary, mode),
		Ignored: true,
		NoReply: true,
	})
}

// RedisSink is §4.M's optional additive fan-out: the same notification
// published onto a Redis stream for hosts running the engine across
// multiple processes. Grounded on the teacher's Pulse stream wrapper
// (features/stream/pulse/clients/pulse/client.go): a stream name, a
// bounded length, and a single Add-equivalent operation — reimplemented
// directly against go-redis since the rest of goa.design/pulse (consumer
// groups, sinks) has no corresponding component here.
type RedisSink struct {
	Client *redis.Client
	Stream string
	MaxLen int64
	Logger *slog.Logger
}

// Publish XAdds the formatted notification to the configured stream.
// Failures are logged and swallowed, exactly like persistence failures in
// §7 — the Redis fan-out is additive, never load-bearing for the model's
// view of what happened.
func (r *RedisSink) Publish(ctx context.Context, sessionID string, summary Summary, mode Mode) {
	if r == nil || r.Client == nil {
		return
	}
	args := &redis.XAddArgs{
		Stream: r.Stream,
		Approx: true,
		Values: map[string]any{
			"sessionId": sessionID,
			"action":    summary.Action,
			"text":      Format(summary, mode),
		},
	}
	if r.MaxLen > 0 {
		args.MaxLen = r.MaxLen
	}
	if _, err := r.Client.XAdd(ctx, args).Result(); err != nil {
		r.logger().Warn("notify: redis publish failed", "err", err, "stream", r.Stream)
	}
}

func (r *RedisSink) logger() *slog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return slog.Default()
}
