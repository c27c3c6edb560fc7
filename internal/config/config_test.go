package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "base_url: https://api.example.com\nscope: u1\nreconnect_delay: 2s\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BASE_URL", "https://other.example.com")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.BaseURL != "https://other.example.com" {
		t.Fatalf("env override not applied: %q", c.BaseURL)
	}
	if c.Scope != "u1" {
		t.Fatalf("yaml value lost: %q", c.Scope)
	}
	if got := c.Delay(5 * time.Second); got != 2*time.Second {
		t.Fatalf("delay = %v, want 2s", got)
	}
}

func TestDelayFallsBack(t *testing.T) {
	if got := (Config{}).Delay(5 * time.Second); got != 5*time.Second {
		t.Fatalf("empty delay = %v", got)
	}
	if got := (Config{ReconnectDelay: "nope"}).Delay(5 * time.Second); got != 5*time.Second {
		t.Fatalf("invalid delay = %v", got)
	}
}
