package main

import (
	"context"
	"fmt"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/adapter"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/config"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/engine"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/manual"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/parts"
	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/session/store/jsonfile"
)

func main() {
	ctx := context.Background()
	const sessionID = "demo-session"

	// 1) Host: an in-memory message list standing in for a real chat host.
	host := adapter.NewMemoryHost()
	host.Seed(sessionID, []parts.Message{
		{ID: "m1", Role: parts.RoleUser, Parts: []parts.Part{parts.Text{Content: "list the files in this repo"}}},
		{ID: "m2", Role: parts.RoleAssistant, Parts: []parts.Part{
			parts.StepStart{},
			parts.Tool{
				CallID: "call_1", Name: "bash",
				Input:  map[string]any{"command": "ls"},
				Status: parts.StatusCompleted, Output: "go.mod\nmain.go\n",
			},
		}},
	})

	// 2) Engine, persisting to a JSON file per session under ./demo-state.
	cfg := config.Default()
	cfg.AutoPruneAfterTool = true
	store := jsonfile.New("./demo-state")
	e := engine.New(cfg, store, host)

	// 3) Drive the after-tool hook, as a host would after the bash call
	// above completes.
	if err := e.AfterTool(ctx, sessionID, "bash"); err != nil {
		panic(err)
	}

	// 4) Ask the model (simulated) to discard every eligible tool call via
	// the context tool's [tools] bulk pattern, the same way a real
	// tool-registration hook would dispatch an incoming call.
	view, err := e.View(ctx, sessionID)
	if err != nil {
		panic(err)
	}
	for _, msg := range view {
		for _, p := range msg.Parts {
			if tool, ok := p.(parts.Tool); ok && tool.CallID == "call_1" {
				fmt.Println("before discard, output:", tool.Output)
			}
		}
	}
	result, err := e.DispatchContext(ctx, sessionID,
		map[string]any{"action": "discard", "targets": []any{[]any{manual.BulkTools}}},
		manual.ActionDiscard, []manual.TargetSpec{{Target: manual.BulkTools}})
	if err != nil {
		panic(err)
	}
	fmt.Println("dispatch applied:", len(result.Applied))

	// 5) End the session, flushing final state to disk.
	if err := e.SessionEnd(ctx, sessionID); err != nil {
		panic(err)
	}
	fmt.Println("done")
}
