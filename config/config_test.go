package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.World.Width != 800 || cfg.World.Height != 600 {
		t.Fatalf("unexpected world size %vx%v", cfg.World.Width, cfg.World.Height)
	}
	if cfg.World.TickRate != 30 {
		t.Fatalf("expected tick rate 30, got %d", cfg.World.TickRate)
	}
	if got := cfg.World.TickInterval(); got != time.Second/30 {
		t.Fatalf("unexpected tick interval %v", got)
	}
}

func TestLoadYAMLOverridesOnlyGivenKeys(t *testing.T) {
	path := writeFile(t, "arena.yaml", `
world:
  width: 320
  tick_rate: 10
network:
  write_timeout: 2s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.World.Width != 320 || cfg.World.TickRate != 10 {
		t.Fatalf("yaml values not applied: %+v", cfg.World)
	}
	if cfg.World.Height != 600 {
		t.Fatalf("expected default height to survive, got %v", cfg.World.Height)
	}
	if cfg.Network.WriteTimeout != 2*time.Second {
		t.Fatalf("expected write timeout 2s, got %v", cfg.Network.WriteTimeout)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "arena.toml", `
[server]
addr = ":9000"

[world]
player_speed = 120.0
normalize_diagonal = false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Server.Addr != ":9000" {
		t.Fatalf("expected addr :9000, got %q", cfg.Server.Addr)
	}
	if cfg.World.PlayerSpeed != 120 || cfg.World.NormalizeDiagonal {
		t.Fatalf("toml values not applied: %+v", cfg.World)
	}
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := writeFile(t, "arena.json", `{}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for .json config")
	}
}

func TestLoadRejectsInvalidWorld(t *testing.T) {
	path := writeFile(t, "arena.yaml", "world:\n  tick_rate: 0\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for zero tick rate")
	}
	path = writeFile(t, "big.yaml", "world:\n  player_size: 900\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for oversized player footprint")
	}
}

func TestEncodeWritesYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, Defaults()); err != nil {
		t.Fatalf("Encode() failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"tick_rate: 30", "player_speed: 500", "read_timeout: 1m0s"} {
		if !strings.Contains(out, want) {
			t.Errorf("encoded config missing %q:\n%s", want, out)
		}
	}
}
