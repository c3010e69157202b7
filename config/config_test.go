package config

import (
	"testing"

	"github.com/tuanhung303/opencode-agent-context-pruning-sub000/notify"
)

func TestDefaultMatchesDocumentedDefaults(t *testing.T) {
	c := Default()
	if !c.Enabled {
		t.Fatalf("expected enabled by default")
	}
	if c.AutoPruneAfterTool {
		t.Fatalf("expected autoPruneAfterTool disabled by default")
	}
	if !c.ShowDistillation {
		t.Fatalf("expected showDistillation enabled by default")
	}
	mode, enabled := c.NotificationMode()
	if !enabled || mode != notify.ModeMinimal {
		t.Fatalf("expected minimal notification by default, got %v enabled=%v", mode, enabled)
	}
}

func TestNotificationOffDisablesNotification(t *testing.T) {
	c := Default()
	c.Notification = NotificationOff
	if _, enabled := c.NotificationMode(); enabled {
		t.Fatalf("expected notification disabled")
	}
}

func TestProtectedToolsPropagateToDerivedConfigs(t *testing.T) {
	c := Default()
	c.ProtectedTools = []string{"write", "bash"}

	syncCfg := c.Sync()
	strategiesCfg := c.Strategies()
	manualCfg := c.Manual()

	for _, set := range []map[string]bool{syncCfg.ProtectedTools, strategiesCfg.ProtectedTools, manualCfg.ProtectedTools} {
		if !set["write"] || !set["bash"] {
			t.Fatalf("expected protected tool set propagated, got %v", set)
		}
	}
}

func TestFullyForgetOnlyAffectsManual(t *testing.T) {
	c := Default()
	c.FullyForget = true
	if !c.Manual().FullyForget {
		t.Fatalf("expected FullyForget propagated to manual.Config")
	}
}

func TestEmptyProtectedToolsYieldsNilSet(t *testing.T) {
	c := Default()
	if c.Sync().ProtectedTools != nil {
		t.Fatalf("expected nil protected tool set when none configured")
	}
}
