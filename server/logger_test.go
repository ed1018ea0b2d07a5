package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tickarena/config"
)

func TestInitLoggerWritesRollingFile(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	path := filepath.Join(t.TempDir(), "arena.log")
	cfg := config.Defaults().Logging
	cfg.File = path
	cfg.Format = "json"
	if err := InitLogger(cfg); err != nil {
		t.Fatalf("InitLogger() failed: %v", err)
	}
	Log.Infow("room created", "room", "r1")
	Log.Debugw("filtered at info level")
	SyncLogger()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"msg":"room created"`) || !strings.Contains(out, `"room":"r1"`) {
		t.Fatalf("log line missing: %s", out)
	}
	if strings.Contains(out, "filtered at info level") {
		t.Fatalf("debug line should be filtered: %s", out)
	}
}

func TestInitLoggerRejectsBadSettings(t *testing.T) {
	prev := Log
	t.Cleanup(func() { Log = prev })

	cfg := config.Defaults().Logging
	cfg.Level = "loud"
	if err := InitLogger(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
	cfg = config.Defaults().Logging
	cfg.Format = "xml"
	if err := InitLogger(cfg); err == nil {
		t.Fatal("expected error for unknown format")
	}
}
