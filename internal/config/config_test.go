package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"vidsync/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantLogs := filepath.Join(tempHome, ".local", "share", "vidsync", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.StorePath() != filepath.Join(tempHome, ".cache", "vidsync", "signatures.db") {
		t.Fatalf("unexpected store path: %q", cfg.StorePath())
	}
	if cfg.Engine.FrameCacheSize != 100 {
		t.Fatalf("expected frame cache size 100, got %d", cfg.Engine.FrameCacheSize)
	}
	if cfg.Engine.MaxOffsetMS != 15000 || cfg.Engine.CoarseStepMS != 1000 || cfg.Engine.FineStepMS != 25 {
		t.Fatalf("unexpected offset search defaults: %+v", cfg.Engine)
	}
	if cfg.Verdict.OverallMin != 0.85 || cfg.Verdict.HighFraction != 0.70 {
		t.Fatalf("unexpected verdict defaults: %+v", cfg.Verdict)
	}
	if cfg.Store.Enabled {
		t.Fatal("expected signature store disabled by default")
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(t.TempDir(), "config.toml")
	payload := `
[paths]
cache_dir = "~/vidcache"

[engine]
max_offset_ms = 30000
fine_step_ms = 50

[store]
enabled = true

[logging]
format = "JSON"
level = "Debug"
`
	if err := os.WriteFile(configPath, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q exists=%v", resolved, exists)
	}
	if cfg.Paths.CacheDir != filepath.Join(tempHome, "vidcache") {
		t.Fatalf("unexpected cache dir: %q", cfg.Paths.CacheDir)
	}
	if cfg.Engine.MaxOffsetMS != 30000 || cfg.Engine.FineStepMS != 50 {
		t.Fatalf("engine overrides not applied: %+v", cfg.Engine)
	}
	if cfg.Engine.CoarseStepMS != 1000 {
		t.Fatalf("expected untouched coarse step default, got %d", cfg.Engine.CoarseStepMS)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "debug" {
		t.Fatalf("expected logging to be normalized, got %+v", cfg.Logging)
	}
	if !cfg.Store.Enabled {
		t.Fatal("expected store enabled")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"fine above coarse", func(c *config.Config) { c.Engine.FineStepMS = 2000 }, "fine_step_ms"},
		{"offset below coarse", func(c *config.Config) { c.Engine.MaxOffsetMS = 500 }, "max_offset_ms"},
		{"reference window", func(c *config.Config) { c.Engine.ReferenceEndMS = 1000 }, "reference_end_ms"},
		{"verdict range", func(c *config.Config) { c.Verdict.SampleMin = 1.5 }, "verdict.sample_min"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"cache size", func(c *config.Config) { c.Engine.FrameCacheSize = -1 }, "frame_cache_size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("[engine]\nbogus = 1\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestCreateSampleProducesLoadableConfig(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var decoded config.Config
	if err := toml.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if decoded.Engine.MaxOffsetMS != 15000 {
		t.Fatalf("sample max offset = %d", decoded.Engine.MaxOffsetMS)
	}

	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
}
