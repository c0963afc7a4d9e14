package tuning

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultsValidate(t *testing.T) {
	if err := Defaults().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	raw := "tick_rate_hz: 30\nmode: manual\ncharge:\n  enabled: true\n"
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tune, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune.TickRateHz != 30 || tune.Mode != ModeManual || !tune.Charge.Enabled {
		t.Fatalf("overrides not applied: %+v", tune)
	}
	if tune.MoveStep != 0.08 || tune.Room.Offset != 8 || tune.Charge.EveryHalfZones != 5 {
		t.Fatalf("defaults lost: %+v", tune)
	}
}

func TestLoad_RepoConfigMatchesDefaults(t *testing.T) {
	tune, err := Load(filepath.Join("..", "..", "..", "configs", "tuning.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tune != Defaults() {
		t.Fatalf("configs/tuning.yaml drifted from Defaults():\n%+v\n%+v", tune, Defaults())
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if !os.IsNotExist(err) {
		t.Fatalf("want not-exist error, got %v", err)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tune := Defaults()
	tune.Mode = "hover"
	tune.OccupancyProb = 1.5
	tune.ArriveThreshold = 0.01
	err := tune.Validate()
	if err == nil {
		t.Fatalf("expected error")
	}
	for _, want := range []string{"mode", "occupancy_prob", "arrive_threshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("error %q does not mention %s", err, want)
		}
	}
}
