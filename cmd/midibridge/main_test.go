package main

import (
	"context"
	"testing"
	"time"
)

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("MIDIBRIDGE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := run(ctx)
	if err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

func TestGetConfigPath_Default(t *testing.T) {
	t.Setenv("MIDIBRIDGE_CONFIG", "")

	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}
}

func TestGetConfigPath_EnvOverride(t *testing.T) {
	t.Setenv("MIDIBRIDGE_CONFIG", "/etc/midibridge/config.yaml")

	if got := getConfigPath(); got != "/etc/midibridge/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env override", got)
	}
}
