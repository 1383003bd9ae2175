package facade

import (
	"os"
	"runtime"
	"time"

	yaml "github.com/goccy/go-yaml"

	"github.com/chasework/scheduler/api"
)

// FileConfig mirrors a scheduler.yaml on disk, extending the
// tick-scheduler config shape in
// _examples/KnightChaser-vrunq/internal/sched/config.go with the fields
// this scheduler actually needs: worker count, default priority, idle
// backoff, and whether to attempt NUMA/CPU pinning.
type FileConfig struct {
	Workers         int    `yaml:"workers"`
	DefaultPriority string `yaml:"default_priority"`
	PinEnabled      bool   `yaml:"pin_enabled"`
	IdleBackoffUs   int    `yaml:"idle_backoff_us"`
}

func defaultFileConfig() FileConfig {
	return FileConfig{
		Workers:         runtime.NumCPU(),
		DefaultPriority: api.Normal.String(),
		PinEnabled:      true,
		IdleBackoffUs:   10,
	}
}

// LoadFileConfig reads YAML from path and overlays it onto the defaults.
// An empty path, a missing file, or malformed YAML all silently fall back
// to defaults, matching sched.Load's "config is an optimization, not a
// requirement" posture.
func LoadFileConfig(path string) FileConfig {
	cfg := defaultFileConfig()
	if path == "" {
		return cfg
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}
	_ = yaml.Unmarshal(data, &cfg)

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.IdleBackoffUs <= 0 {
		cfg.IdleBackoffUs = 10
	}
	if _, ok := parsePriority(cfg.DefaultPriority); !ok {
		cfg.DefaultPriority = api.Normal.String()
	}

	return cfg
}

// ToConfig resolves a FileConfig into a facade.Config ready for New.
func (c FileConfig) ToConfig() Config {
	p, ok := parsePriority(c.DefaultPriority)
	if !ok {
		p = api.Normal
	}
	return Config{
		Workers:         c.Workers,
		DefaultPriority: p,
		PinEnabled:      c.PinEnabled,
		IdleBackoff:     time.Duration(c.IdleBackoffUs) * time.Microsecond,
	}
}

func parsePriority(s string) (api.Priority, bool) {
	for p := api.Low; p <= api.Critical; p++ {
		if p.String() == s {
			return p, true
		}
	}
	return 0, false
}
