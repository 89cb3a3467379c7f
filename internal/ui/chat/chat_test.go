// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/commands"
	"github.com/jeranaias/voxchat-tui/internal/config"
	"github.com/jeranaias/voxchat-tui/internal/controller"
	"github.com/jeranaias/voxchat-tui/internal/storage"
	"github.com/jeranaias/voxchat-tui/internal/ui/components"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
)

type echoEngine struct{}

func (echoEngine) Configure(system string) {}

func (echoEngine) Respond(ctx context.Context, prompt string) (string, error) {
	return "echo: " + prompt, nil
}

func (echoEngine) CheckRunning(ctx context.Context) error { return nil }

func newTestModel(t *testing.T) Model {
	t.Helper()

	store := storage.Open(t.TempDir())
	store.SetLogger(log.New(io.Discard, "", 0))

	ctrl := controller.New(store, echoEngine{})
	ctrl.InitEngine(context.Background())

	cfg := config.Default()
	cmdCtx := commands.NewContext(cfg, nil, store, ctrl)

	m := New(styles.NewTheme("dark"), cmdCtx)
	resized, _ := m.handleResize(tea.WindowSizeMsg{Width: 100, Height: 30})
	return resized.(Model)
}

func TestNewRendersGreeting(t *testing.T) {
	m := newTestModel(t)
	view := m.View()
	if view == "" {
		t.Fatal("view should not be empty")
	}
	if !strings.Contains(view, "voxchat") {
		t.Error("header missing from view")
	}
	if !strings.Contains(view, "help you today") {
		t.Error("greeting missing from transcript")
	}
}

func TestSubmitMessageStartsRoundTrip(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("hello engine")

	updated, cmd := m.submitInput()
	m = updated.(Model)

	if !m.responding {
		t.Error("submit should mark the model as responding")
	}
	if m.pendingUserText != "hello engine" {
		t.Errorf("pendingUserText = %q", m.pendingUserText)
	}
	if cmd == nil {
		t.Fatal("submit should return a command")
	}
}

func TestSubmitWhileRespondingIsRejected(t *testing.T) {
	m := newTestModel(t)
	m.responding = true
	m.input.SetValue("second message")

	updated, _ := m.submitInput()
	m = updated.(Model)

	if m.notice == "" {
		t.Error("a notice should explain the rejection")
	}
	if m.input.Value() != "second message" {
		t.Error("rejected input should stay in the field")
	}
}

func TestResponseRefreshesTranscript(t *testing.T) {
	m := newTestModel(t)
	m.ctrl.SendMessage(context.Background(), "ping")
	m.responding = true
	m.pendingUserText = "ping"

	updated, _ := m.handleResponse()
	m = updated.(Model)

	if m.responding {
		t.Error("responding should clear")
	}
	if m.pendingUserText != "" {
		t.Error("pending text should clear")
	}
	if !strings.Contains(m.viewport.View(), "echo: ping") {
		t.Error("reply missing from transcript")
	}
	if m.statusBar.Status != components.StatusReady {
		t.Error("status should return to ready")
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.dispatch("/bogus")
	m = updated.(Model)

	if !strings.Contains(m.notice, "/bogus") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestDispatchCommandRoundTrip(t *testing.T) {
	m := newTestModel(t)

	updated, cmd := m.dispatch("/new")
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("dispatch should return the handler command")
	}

	// Run the handler and fold its result back in.
	result, _, handled := m.handleCommandResult(cmd())
	if !handled {
		t.Fatal("SessionChangedMsg should be handled")
	}
	m = result.(Model)
	if m.notice == "" {
		t.Error("session change should leave a notice")
	}
}

func TestHandleCommandResultMessages(t *testing.T) {
	m := newTestModel(t)

	updated, _, handled := m.handleCommandResult(commands.InfoMsg{Text: "hi"})
	if !handled {
		t.Fatal("InfoMsg should be handled")
	}
	if updated.(Model).notice != "hi" {
		t.Error("InfoMsg text should become the notice")
	}

	updated, _, handled = m.handleCommandResult(commands.VoiceToggledMsg{Enabled: true})
	if !handled {
		t.Fatal("VoiceToggledMsg should be handled")
	}
	if !updated.(Model).statusBar.VoiceEnabled {
		t.Error("voice badge should enable")
	}

	if _, _, handled = m.handleCommandResult(struct{}{}); handled {
		t.Error("unrelated messages should not be claimed")
	}
}

func TestCompletionLifecycle(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("/se")
	m.updateCompletions()

	if !m.showCompletions {
		t.Fatal("typing a command prefix should show completions")
	}

	updated, _ := m.cycleCompletion()
	m = updated.(Model)
	if !strings.HasPrefix(m.input.Value(), "/se") {
		t.Errorf("completion should extend the prefix, got %q", m.input.Value())
	}

	m.input.SetValue("plain text")
	m.updateCompletions()
	if m.showCompletions {
		t.Error("plain text should not trigger completions")
	}
}

func TestEngineStatusUpdatesBadge(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.Update(EngineStatusMsg{State: controller.EngineUnavailable})
	m = updated.(Model)
	if m.statusBar.Engine != controller.EngineUnavailable {
		t.Error("engine badge should track the probe result")
	}
}

func TestConfigReloadAppliesDisplayOptions(t *testing.T) {
	m := newTestModel(t)

	next := config.Default()
	next.Ollama.Model = "mistral"
	next.UI.ShowTimestamps = true

	updated, _ := m.handleConfigReload(ConfigReloadedMsg{Config: next})
	m = updated.(Model)

	if m.statusBar.ModelName != "mistral" {
		t.Error("model name should follow the reloaded config")
	}
	if m.cfg != next {
		t.Error("config pointer should swap")
	}
}

func TestToggleRecordingWithoutCapture(t *testing.T) {
	m := newTestModel(t)

	updated, _ := m.toggleRecording()
	m = updated.(Model)
	if m.recording {
		t.Error("recording should not start without a capture adapter")
	}
	if m.notice == "" {
		t.Error("a notice should explain the missing adapter")
	}
}
