package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalYAML = `
environment: test
feed:
  url: wss://feed.example.com/fx
  pairs: [EURUSD]
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Environment != "test" || cfg.Feed.URL == "" {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadRejectsMissingEnvironment(t *testing.T) {
	if _, err := Load(writeConfig(t, "feed:\n  url: wss://x\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsNoTickSource(t *testing.T) {
	if _, err := Load(writeConfig(t, "environment: test\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsPersistenceWithoutHost(t *testing.T) {
	body := minimalYAML + `
persistence:
  enabled: true
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestLoadRejectsCapBelowThreshold(t *testing.T) {
	body := minimalYAML + `
engine:
  thresholds:
    1: 0.5
  sanity_caps:
    1: 0.4
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("FEED_PAIRS", "EURUSD,USDJPY")
	t.Setenv("PERSISTENCE_ENABLED", "false")

	cfg, err := LoadWithEnv(writeConfig(t, minimalYAML))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Feed.Pairs) != 2 || cfg.Feed.Pairs[1] != "USDJPY" {
		t.Fatalf("unexpected pairs %v", cfg.Feed.Pairs)
	}
}
