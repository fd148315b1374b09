package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv blanks the override variables for the duration of a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"TEAMTIME_DB_PATH", "TEAMTIME_LISTEN", "TEAMTIME_TIMEZONE", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("expected defaults, got %+v", cfg)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "teamtime.yaml")
	data := "db_path: /tmp/cal.db\nlisten: :9000\ntimezone: UTC\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	t.Setenv("TEAMTIME_LISTEN", ":9999")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/cal.db" {
		t.Errorf("db_path: expected /tmp/cal.db, got %s", cfg.DBPath)
	}
	if cfg.Listen != ":9999" {
		t.Errorf("listen: expected env override :9999, got %s", cfg.Listen)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level: expected debug, got %s", cfg.LogLevel)
	}
	if cfg.Timezone != "UTC" {
		t.Errorf("timezone: expected UTC, got %s", cfg.Timezone)
	}
}

func TestLoadRejectsBadInput(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	os.WriteFile(bad, []byte("listen: [unclosed\n"), 0o644)
	if _, err := Load(bad); err == nil {
		t.Error("expected YAML error")
	}

	t.Setenv("TEAMTIME_TIMEZONE", "Mars/Olympus_Mons")
	if _, err := Load(""); err == nil {
		t.Error("expected timezone error")
	}
}

func TestSaveThenLoad(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "teamtime.yaml")
	want := &Config{DBPath: "x.db", Listen: ":1", LogLevel: "warn", Timezone: "UTC"}

	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
