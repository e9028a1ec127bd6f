package main

import (
	"os"
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	opts, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.envFile != ".env" || opts.port != "" || opts.backend != "" {
		t.Fatalf("unexpected defaults %+v", opts)
	}
}

func TestParseFlagsOverridesEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("BACKEND_BASE_URL", "http://localhost:8000")

	opts, err := parseFlags([]string{"--port", "9090", "--backend=http://api:8000", "--env-file", "local.env"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if opts.envFile != "local.env" {
		t.Fatalf("expected env file override, got %s", opts.envFile)
	}
	opts.applyOverrides()
	if got := os.Getenv("PORT"); got != "9090" {
		t.Fatalf("expected port 9090, got %s", got)
	}
	if got := os.Getenv("BACKEND_BASE_URL"); got != "http://api:8000" {
		t.Fatalf("expected backend override, got %s", got)
	}
}

func TestParseFlagsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseFlags([]string{"--verbose"}); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}
