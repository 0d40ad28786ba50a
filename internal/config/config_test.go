package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %s, want %s", cfg.LogLevel(), DefaultLogLevel)
	}
	if cfg.LibraryRoot() != "" {
		t.Errorf("LibraryRoot() = %q, want empty (probe candidates)", cfg.LibraryRoot())
	}
	if !cfg.BackfillEnabled() {
		t.Error("BackfillEnabled() = false, want true by default")
	}
	if cfg.BackfillConcurrency() != DefaultBackfillConcurrency {
		t.Errorf("BackfillConcurrency() = %d", cfg.BackfillConcurrency())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9001")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLibraryRoot, "/srv/clips")
	t.Setenv(EnvBackfill, "false")
	t.Setenv(EnvBackfillConcurrency, "4")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if cfg.Port() != 9001 {
		t.Errorf("Port() = %d, want 9001", cfg.Port())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %s", cfg.LogLevel())
	}
	if cfg.LibraryRoot() != "/srv/clips" {
		t.Errorf("LibraryRoot() = %q", cfg.LibraryRoot())
	}
	if cfg.BackfillEnabled() {
		t.Error("BackfillEnabled() = true, want false")
	}
	if cfg.BackfillConcurrency() != 4 {
		t.Errorf("BackfillConcurrency() = %d, want 4", cfg.BackfillConcurrency())
	}
}

func TestInvalidValues(t *testing.T) {
	t.Setenv(EnvPort, "not-a-port")
	if _, err := New(); err == nil {
		t.Error("New() should reject a non-numeric port")
	}
	t.Setenv(EnvPort, "99999")
	if _, err := New(); err == nil {
		t.Error("New() should reject an out-of-range port")
	}

	t.Setenv(EnvPort, "8789")
	t.Setenv(EnvBackfillConcurrency, "0")
	if _, err := New(); err == nil {
		t.Error("New() should reject a zero concurrency")
	}
}
