// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaultsWithFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
cache:
  backend: memory
catalog:
  source: file
  snapshot_path: data/catalog.json
verifier:
  workers: 4
  interval: 30m
`)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("RECOMMEND_CONFIDENCE", "0.75")
	t.Setenv("RECOMMEND_GOAL_DEPTH", "1")

	c, err := load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if c.Cache.Backend != CacheBackendMemory || c.Catalog.Source != CatalogSourceFile {
		t.Errorf("file values not applied: %+v %+v", c.Cache, c.Catalog)
	}
	if c.Verifier.Workers != 4 || c.Verifier.Interval != 30*time.Minute {
		t.Errorf("verifier = %+v", c.Verifier)
	}
	if c.Verifier.CheckTimeout != 5*time.Second || c.Verifier.RetryAttempts != 3 {
		t.Errorf("verifier defaults lost: %+v", c.Verifier)
	}
	if c.Log.Level != "debug" {
		t.Errorf("log level = %q, want env override", c.Log.Level)
	}
	if c.Recommend.ConfidenceThreshold != 0.75 {
		t.Errorf("confidence = %v, want env override", c.Recommend.ConfidenceThreshold)
	}
	if c.Recommend.MaxEntries != 8 {
		t.Errorf("max entries = %d", c.Recommend.MaxEntries)
	}
	if c.Recommend.GoalDepth != 1 {
		t.Errorf("goal depth = %d, want env override", c.Recommend.GoalDepth)
	}
	if strings.Join(c.Recommend.CoreCategories, ",") != "multivitamin,omega-3,vitamin-d3" {
		t.Errorf("core categories = %v", c.Recommend.CoreCategories)
	}
	if c.Server.Address() != "0.0.0.0:8080" {
		t.Errorf("address = %q", c.Server.Address())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "postgres catalog needs a database",
			body:    "cache:\n  backend: memory\n",
			wantErr: "DATABASE_URL",
		},
		{
			name:    "redis backend needs a url",
			body:    "catalog:\n  source: file\n  snapshot_path: c.json\n",
			wantErr: "REDIS_URL",
		},
		{
			name:    "unknown backend",
			body:    "cache:\n  backend: etcd\ncatalog:\n  source: file\n  snapshot_path: c.json\n",
			wantErr: "unknown cache backend",
		},
		{
			name:    "retry attempts bounded",
			body:    "cache:\n  backend: memory\ncatalog:\n  source: file\n  snapshot_path: c.json\nverifier:\n  retry_attempts: 5\n",
			wantErr: "retry_attempts",
		},
		{
			name:    "memory cache refused in production",
			body:    "app:\n  environment: production\ncache:\n  backend: memory\ncatalog:\n  source: file\n  snapshot_path: c.json\n",
			wantErr: "memory cache backend",
		},
		{
			name:    "confidence threshold range",
			body:    "cache:\n  backend: memory\ncatalog:\n  source: file\n  snapshot_path: c.json\nrecommend:\n  confidence_threshold: 1.5\n",
			wantErr: "confidence_threshold",
		},
		{
			name:    "goal depth at least one",
			body:    "cache:\n  backend: memory\ncatalog:\n  source: file\n  snapshot_path: c.json\nrecommend:\n  goal_depth: 0\n",
			wantErr: "goal_depth",
		},
		{
			name:    "core categories required",
			body:    "cache:\n  backend: memory\ncatalog:\n  source: file\n  snapshot_path: c.json\nrecommend:\n  core_categories: []\n",
			wantErr: "core_categories",
		},
	}

	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("load() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestEnvKeyReplacerIgnoresUnknownVars(t *testing.T) {
	if got := envKeyReplacer("HOME"); got != "" {
		t.Errorf("HOME mapped to %q", got)
	}
	if got := envKeyReplacer("VERIFIER_WORKERS"); got != "verifier.workers" {
		t.Errorf("VERIFIER_WORKERS mapped to %q", got)
	}
}
