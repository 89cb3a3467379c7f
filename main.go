// voxchat - a voice-enabled terminal chat client for local LLMs.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/voxchat-tui/internal/commands"
	"github.com/jeranaias/voxchat-tui/internal/config"
	"github.com/jeranaias/voxchat-tui/internal/controller"
	"github.com/jeranaias/voxchat-tui/internal/ollama"
	"github.com/jeranaias/voxchat-tui/internal/storage"
	"github.com/jeranaias/voxchat-tui/internal/ui/chat"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
	"github.com/jeranaias/voxchat-tui/internal/voice"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (default ~/.voxchat/config.toml)")
	flag.Parse()

	if *showVersion {
		fmt.Printf("voxchat %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "voxchat needs an interactive terminal")
		os.Exit(1)
	}

	path := *configPath
	if path == "" {
		var err error
		path, err = config.ConfigPath()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot locate config directory: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.LoadFromPath(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v, using defaults\n", err)
		cfg = config.Default()
	}

	if err := run(cfg, path); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, configPath string) error {
	store := storage.Open(cfg.StorageDir())
	store.SetLogger(log.New(os.Stderr, "voxchat: ", log.LstdFlags))

	client := ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
		Model:   cfg.Ollama.Model,
		Timeout: cfg.Ollama.Timeout(),
	})

	ctrl := controller.New(store, client)

	capture, playback := buildVoice(cfg)

	cmdCtx := commands.NewContext(cfg, client, store, ctrl).WithVoice(capture, playback)

	theme := styles.NewTheme(cfg.UI.Theme)
	program := tea.NewProgram(chat.New(theme, cmdCtx), tea.WithAltScreen())

	// Live config reload: edits to the config file reach the UI as a
	// message so voice and display settings apply without a restart.
	watcher, err := config.NewWatcher(configPath, func(next *config.Config) {
		program.Send(chat.ConfigReloadedMsg{Config: next})
	})
	if err == nil {
		if werr := watcher.Watch(); werr == nil {
			defer watcher.Close()
		}
	}

	_, err = program.Run()
	return err
}

// buildVoice constructs the speech adapters from the configured external
// commands. Either adapter may come back disabled when its command is
// not configured.
func buildVoice(cfg *config.Config) (*voice.Capture, *voice.Playback) {
	var rec voice.Recognizer
	if cfg.Voice.TranscribeCommand != "" {
		rec = voice.NewExecTranscriber(cfg.Voice.TranscribeCommand, cfg.Voice.TranscribeArgs...)
	}
	capture := voice.NewCapture(rec)

	var synth voice.Synthesizer
	if cfg.Voice.SpeakCommand != "" {
		synth = voice.NewExecSynthesizer(cfg.Voice.SpeakCommand, cfg.Voice.SpeakArgs...)
	}
	playback := voice.NewPlayback(synth)
	playback.SetEnabled(cfg.Voice.Enabled)
	if cfg.Voice.Rate > 0 {
		playback.SetRate(cfg.Voice.Rate)
	}
	if cfg.Voice.Pitch > 0 {
		playback.SetPitch(cfg.Voice.Pitch)
	}
	if cfg.Voice.Volume > 0 {
		playback.SetVolume(cfg.Voice.Volume)
	}
	if cfg.Voice.Voice != "" {
		playback.SetVoice(cfg.Voice.Voice)
	}

	return capture, playback
}
