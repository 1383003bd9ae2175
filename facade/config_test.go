package facade

import (
	"testing"
	"time"

	"github.com/chasework/scheduler/api"
)

func TestFileConfigDefaults(t *testing.T) {
	cfg := LoadFileConfig("")
	if cfg.DefaultPriority != api.Normal.String() {
		t.Fatalf("DefaultPriority = %q, want %q", cfg.DefaultPriority, api.Normal.String())
	}
	if cfg.IdleBackoffUs != 10 {
		t.Fatalf("IdleBackoffUs = %d, want 10", cfg.IdleBackoffUs)
	}
}

func TestFileConfigMissingPathFallsBackToDefaults(t *testing.T) {
	cfg := LoadFileConfig("/nonexistent/scheduler.yaml")
	if cfg.Workers <= 0 {
		t.Fatalf("Workers = %d, want > 0", cfg.Workers)
	}
}

func TestFileConfigToConfigThreadsIdleBackoff(t *testing.T) {
	cfg := FileConfig{
		Workers:         2,
		DefaultPriority: api.High.String(),
		IdleBackoffUs:   25,
	}
	got := cfg.ToConfig()
	if got.IdleBackoff != 25*time.Microsecond {
		t.Fatalf("IdleBackoff = %v, want %v", got.IdleBackoff, 25*time.Microsecond)
	}
	if got.DefaultPriority != api.High {
		t.Fatalf("DefaultPriority = %v, want %v", got.DefaultPriority, api.High)
	}
}
