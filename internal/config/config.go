// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides unified configuration loading and management for voxchat.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete voxchat configuration.
type Config struct {
	// Storage configuration
	Storage StorageConfig `toml:"storage"`

	// Ollama (inference engine) configuration
	Ollama OllamaConfig `toml:"ollama"`

	// Voice configuration
	Voice VoiceConfig `toml:"voice"`

	// UI configuration
	UI UIConfig `toml:"ui"`
}

// StorageConfig contains persistence configuration.
type StorageConfig struct {
	// Dir is the directory holding the persisted records
	// (empty = default ~/.voxchat)
	Dir string `toml:"dir"`
}

// OllamaConfig contains inference engine configuration.
type OllamaConfig struct {
	// URL is the Ollama server base URL
	URL string `toml:"url"`
	// Model is the model used for responses
	Model string `toml:"model"`
	// TimeoutSecs is the per-request timeout in seconds
	TimeoutSecs int `toml:"timeout_secs"`
}

// VoiceConfig contains speech capture and playback configuration.
type VoiceConfig struct {
	// Enabled turns voice playback on at startup
	Enabled bool `toml:"enabled"`
	// Rate is the speaking rate (0.0-1.0, 0.5 = natural)
	Rate float64 `toml:"rate"`
	// Pitch is the pitch multiplier (0.5-2.0)
	Pitch float64 `toml:"pitch"`
	// Volume is the output volume (0.0-1.0)
	Volume float64 `toml:"volume"`
	// Voice names the synthesis voice (empty = engine default)
	Voice string `toml:"voice"`

	// TranscribeCommand is the speech-to-text command; each stdout line is
	// a replacing partial transcript
	TranscribeCommand string   `toml:"transcribe_command"`
	TranscribeArgs    []string `toml:"transcribe_args"`

	// SpeakCommand is the text-to-speech command, run once per utterance
	// with the text on stdin
	SpeakCommand string   `toml:"speak_command"`
	SpeakArgs    []string `toml:"speak_args"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme"`
	// ShowTimestamps displays message timestamps in the transcript
	ShowTimestamps bool `toml:"show_timestamps"`
	// CompactMode uses a more compact UI layout
	CompactMode bool `toml:"compact_mode"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir: "",
		},

		Ollama: OllamaConfig{
			URL:         "http://127.0.0.1:11434",
			Model:       "llama3.1",
			TimeoutSecs: 120,
		},

		Voice: VoiceConfig{
			Enabled: false,
			Rate:    0.5,
			Pitch:   1.0,
			Volume:  1.0,
		},

		UI: UIConfig{
			Theme:          "dark",
			ShowTimestamps: false,
			CompactMode:    false,
		},
	}
}

// Timeout returns the Ollama request timeout as a duration.
func (c *OllamaConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the voxchat configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".voxchat"), nil
}

// ConfigPath returns the path to the TOML config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the default config file, falling back to
// defaults when the file is absent. Environment overrides are applied last.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.ApplyEnvOverrides()
		return cfg, nil
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file with full
// validation. A missing file yields defaults, not an error.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath saves the configuration to a TOML file.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	// Write header comment
	fmt.Fprintln(file, "# voxchat configuration file")
	fmt.Fprintln(file, "# Generated by voxchat - edit with care")
	fmt.Fprintln(file, "")

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Validate Ollama URL
	if c.Ollama.URL != "" {
		if u, err := url.Parse(c.Ollama.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "ollama.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Ollama.URL),
			})
		}
	}

	// Validate request timeout
	if c.Ollama.TimeoutSecs < 0 {
		errs = append(errs, ValidationError{
			Field:   "ollama.timeout_secs",
			Message: "must be non-negative",
		})
	}

	// Validate voice delivery settings
	if c.Voice.Rate < 0 || c.Voice.Rate > 1 {
		errs = append(errs, ValidationError{
			Field:   "voice.rate",
			Message: fmt.Sprintf("must be between 0.0 and 1.0, got %v", c.Voice.Rate),
		})
	}
	if c.Voice.Pitch != 0 && (c.Voice.Pitch < 0.5 || c.Voice.Pitch > 2.0) {
		errs = append(errs, ValidationError{
			Field:   "voice.pitch",
			Message: fmt.Sprintf("must be between 0.5 and 2.0, got %v", c.Voice.Pitch),
		})
	}
	if c.Voice.Volume < 0 || c.Voice.Volume > 1 {
		errs = append(errs, ValidationError{
			Field:   "voice.volume",
			Message: fmt.Sprintf("must be between 0.0 and 1.0, got %v", c.Voice.Volume),
		})
	}

	// Validate UI theme
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Ollama.URL == "" {
		c.Ollama.URL = defaults.Ollama.URL
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaults.Ollama.Model
	}
	if c.Ollama.TimeoutSecs == 0 {
		c.Ollama.TimeoutSecs = defaults.Ollama.TimeoutSecs
	}

	if c.Voice.Rate == 0 {
		c.Voice.Rate = defaults.Voice.Rate
	}
	if c.Voice.Pitch == 0 {
		c.Voice.Pitch = defaults.Voice.Pitch
	}
	if c.Voice.Volume == 0 {
		c.Voice.Volume = defaults.Voice.Volume
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - VOXCHAT_DIR: overrides storage.dir
//   - VOXCHAT_OLLAMA_URL: overrides ollama.url
//   - VOXCHAT_MODEL: overrides ollama.model
//   - VOXCHAT_VOICE: set to "1" or "true" to enable voice playback
//   - VOXCHAT_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if dir := os.Getenv("VOXCHAT_DIR"); dir != "" {
		c.Storage.Dir = dir
	}

	if u := os.Getenv("VOXCHAT_OLLAMA_URL"); u != "" {
		c.Ollama.URL = u
	}

	if model := os.Getenv("VOXCHAT_MODEL"); model != "" {
		c.Ollama.Model = model
	}

	if voice := os.Getenv("VOXCHAT_VOICE"); voice != "" {
		c.Voice.Enabled = voice == "1" || strings.ToLower(voice) == "true"
	}

	if theme := os.Getenv("VOXCHAT_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if timeout := os.Getenv("VOXCHAT_TIMEOUT_SECS"); timeout != "" {
		if secs, err := strconv.Atoi(timeout); err == nil && secs > 0 {
			c.Ollama.TimeoutSecs = secs
		}
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// StorageDir resolves the effective storage directory.
func (c *Config) StorageDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".voxchat"
	}
	return filepath.Join(home, ".voxchat")
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	if c.Voice.TranscribeArgs != nil {
		clone.Voice.TranscribeArgs = append([]string(nil), c.Voice.TranscribeArgs...)
	}
	if c.Voice.SpeakArgs != nil {
		clone.Voice.SpeakArgs = append([]string(nil), c.Voice.SpeakArgs...)
	}
	return &clone
}
