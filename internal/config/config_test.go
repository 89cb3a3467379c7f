// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// DEFAULT TESTS
// =============================================================================

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL = %q", cfg.Ollama.URL)
	}
	if cfg.Ollama.Model != "llama3.1" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.Timeout() != 120*time.Second {
		t.Errorf("Ollama.Timeout() = %v", cfg.Ollama.Timeout())
	}
	if cfg.Voice.Enabled {
		t.Error("voice should be disabled by default")
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

// =============================================================================
// LOAD TESTS
// =============================================================================

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[storage]
dir = "/tmp/voxchat-test"

[ollama]
url = "http://localhost:11434"
model = "mistral"
timeout_secs = 60

[voice]
enabled = true
rate = 0.7
speak_command = "espeak-ng"

[ui]
theme = "light"
show_timestamps = true
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}

	if cfg.Storage.Dir != "/tmp/voxchat-test" {
		t.Errorf("Storage.Dir = %q", cfg.Storage.Dir)
	}
	if cfg.Ollama.Model != "mistral" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if cfg.Ollama.TimeoutSecs != 60 {
		t.Errorf("Ollama.TimeoutSecs = %d", cfg.Ollama.TimeoutSecs)
	}
	if !cfg.Voice.Enabled {
		t.Error("Voice.Enabled should be true")
	}
	if cfg.Voice.Rate != 0.7 {
		t.Errorf("Voice.Rate = %v", cfg.Voice.Rate)
	}
	if cfg.Voice.SpeakCommand != "espeak-ng" {
		t.Errorf("Voice.SpeakCommand = %q", cfg.Voice.SpeakCommand)
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}
	if !cfg.UI.ShowTimestamps {
		t.Error("UI.ShowTimestamps should be true")
	}
}

func TestLoadFromPath_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file should not fail: %v", err)
	}
	if cfg.Ollama.Model != "llama3.1" {
		t.Errorf("Ollama.Model = %q, want default", cfg.Ollama.Model)
	}
}

func TestLoadFromPath_PartialFileFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ollama]\nmodel = \"phi3\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Ollama.Model != "phi3" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	// Everything else falls back to defaults.
	if cfg.Ollama.URL != "http://127.0.0.1:11434" {
		t.Errorf("Ollama.URL = %q, want default", cfg.Ollama.URL)
	}
	if cfg.UI.Theme != "dark" {
		t.Errorf("UI.Theme = %q, want default", cfg.UI.Theme)
	}
}

func TestLoadFromPath_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("this is { not toml"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFromPath(path); err == nil {
		t.Error("malformed TOML should fail to load")
	}
}

// =============================================================================
// SAVE / ROUND-TRIP TESTS
// =============================================================================

func TestSaveToPathRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	cfg := Default()
	cfg.Ollama.Model = "gemma2"
	cfg.Voice.Enabled = true
	cfg.Voice.Voice = "Daniel"
	cfg.Voice.SpeakArgs = []string{"-s", "160"}

	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath failed: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if loaded.Ollama.Model != "gemma2" {
		t.Errorf("Ollama.Model = %q", loaded.Ollama.Model)
	}
	if !loaded.Voice.Enabled || loaded.Voice.Voice != "Daniel" {
		t.Errorf("Voice = %+v", loaded.Voice)
	}
	if len(loaded.Voice.SpeakArgs) != 2 || loaded.Voice.SpeakArgs[1] != "160" {
		t.Errorf("Voice.SpeakArgs = %v", loaded.Voice.SpeakArgs)
	}
}

// =============================================================================
// VALIDATION TESTS
// =============================================================================

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults valid", func(c *Config) {}, false},
		{"bad url", func(c *Config) { c.Ollama.URL = "://nope" }, true},
		{"negative timeout", func(c *Config) { c.Ollama.TimeoutSecs = -1 }, true},
		{"rate too high", func(c *Config) { c.Voice.Rate = 1.5 }, true},
		{"pitch too low", func(c *Config) { c.Voice.Pitch = 0.1 }, true},
		{"volume negative", func(c *Config) { c.Voice.Volume = -0.2 }, true},
		{"bad theme", func(c *Config) { c.UI.Theme = "neon" }, true},
		{"light theme ok", func(c *Config) { c.UI.Theme = "light" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDE TESTS
// =============================================================================

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("VOXCHAT_DIR", "/custom/dir")
	t.Setenv("VOXCHAT_MODEL", "codellama")
	t.Setenv("VOXCHAT_VOICE", "true")
	t.Setenv("VOXCHAT_THEME", "light")
	t.Setenv("VOXCHAT_TIMEOUT_SECS", "30")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Storage.Dir != "/custom/dir" {
		t.Errorf("Storage.Dir = %q", cfg.Storage.Dir)
	}
	if cfg.Ollama.Model != "codellama" {
		t.Errorf("Ollama.Model = %q", cfg.Ollama.Model)
	}
	if !cfg.Voice.Enabled {
		t.Error("Voice.Enabled should be true")
	}
	if cfg.UI.Theme != "light" {
		t.Errorf("UI.Theme = %q", cfg.UI.Theme)
	}
	if cfg.Ollama.TimeoutSecs != 30 {
		t.Errorf("Ollama.TimeoutSecs = %d", cfg.Ollama.TimeoutSecs)
	}
}

// =============================================================================
// HELPER TESTS
// =============================================================================

func TestStorageDir(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/explicit"
	if got := cfg.StorageDir(); got != "/explicit" {
		t.Errorf("StorageDir() = %q", got)
	}

	cfg.Storage.Dir = ""
	if got := cfg.StorageDir(); filepath.Base(got) != ".voxchat" {
		t.Errorf("StorageDir() = %q, want ~/.voxchat", got)
	}
}

func TestClone(t *testing.T) {
	cfg := Default()
	cfg.Voice.SpeakArgs = []string{"-v", "en"}

	clone := cfg.Clone()
	clone.Ollama.Model = "other"
	clone.Voice.SpeakArgs[0] = "-x"

	if cfg.Ollama.Model == "other" {
		t.Error("clone should not share scalar fields")
	}
	if cfg.Voice.SpeakArgs[0] != "-v" {
		t.Error("clone should not share slice backing arrays")
	}
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ollama]\nmodel = \"llama3.1\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("[ollama]\nmodel = \"mistral\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		if cfg.Ollama.Model != "mistral" {
			t.Errorf("reloaded model = %q, want mistral", cfg.Ollama.Model)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for config reload")
	}
}

func TestWatcher_InvalidChangeIsDropped(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[ollama]\nmodel = \"llama3.1\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(path, func(cfg *Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	defer w.Close()

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	// Broken TOML must not produce a reload.
	if err := os.WriteFile(path, []byte("broken {"), 0600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-reloaded:
		t.Errorf("invalid config should not reload, got %+v", cfg)
	case <-time.After(1 * time.Second):
	}
}
