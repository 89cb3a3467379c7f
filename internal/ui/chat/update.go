// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/commands"
	"github.com/jeranaias/voxchat-tui/internal/ui/components"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EngineStatusMsg:
		m.statusBar.Engine = msg.State
		return m, nil

	case ResponseMsg:
		return m.handleResponse()

	case CaptureTickMsg:
		return m.handleCaptureTick()

	case ConfigReloadedMsg:
		return m.handleConfigReload(msg)

	case spinner.TickMsg:
		if !m.responding {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// Command results
	if mm, cmd, handled := m.handleCommandResult(msg); handled {
		return mm, cmd
	}

	// Everything else goes to the viewport for scroll events.
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	const (
		headerHeight    = 1
		inputAreaHeight = 3
		statusBarHeight = 1
	)

	viewportHeight := m.height - headerHeight - inputAreaHeight - statusBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.Width = m.width
	m.viewport.Height = viewportHeight

	inputWidth := m.width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.theme.SetSize(m.width, m.height)
	m.header.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.renderer.SetWidth(m.width)
	m.refreshTranscript()

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.stopVoice()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Dismiss):
		if m.showCompletions {
			m.clearCompletions()
			return m, nil
		}
		if m.overlay != "" {
			m.overlay = ""
			return m, nil
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Help):
		m.overlay = m.renderHelp()
		return m, nil

	case key.Matches(msg, m.keyMap.NewSession):
		return m.dispatch("/new")

	case key.Matches(msg, m.keyMap.PushToTalk):
		return m.toggleRecording()

	case key.Matches(msg, m.keyMap.StopSpeech):
		if m.playback != nil {
			m.playback.Stop()
			m.statusBar.Speaking = false
		}
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.ScrollDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Complete):
		return m.cycleCompletion()

	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()
	}

	// Any overlay is dismissed by typing.
	m.overlay = ""

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	m.ctrl.SetPendingInput(m.input.Value())
	m.updateCompletions()

	return m, cmd
}

// submitInput sends the typed line: slash commands dispatch through the
// registry, everything else becomes a conversation round-trip.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}

	// Tab-completed selection pending? Accept it on enter.
	m.clearCompletions()

	if commands.IsCommand(text) {
		m.input.Reset()
		m.ctrl.SetPendingInput("")
		return m.dispatch(text)
	}

	if m.responding {
		m.notice = "Still waiting for the previous reply."
		return m, nil
	}

	m.input.Reset()
	m.ctrl.SetPendingInput("")
	m.notice = ""
	m.responding = true
	m.pendingUserText = text
	m.statusBar.Status = components.StatusThinking
	m.viewport.GotoBottom()

	return m, tea.Batch(sendMessageCmd(m.ctrl, text), m.spinner.Tick)
}

// handleResponse folds a finished round-trip back into the view.
func (m Model) handleResponse() (tea.Model, tea.Cmd) {
	m.responding = false
	m.pendingUserText = ""
	m.statusBar.Status = components.StatusReady
	m.refreshTranscript()

	// Speak the reply when voice output is on.
	if m.playback != nil && m.playback.Enabled() {
		if text := m.lastAssistantText(); text != "" {
			m.playback.Speak(text)
			m.statusBar.Speaking = true
		}
	}
	return m, nil
}

// =============================================================================
// VOICE CAPTURE
// =============================================================================

// toggleRecording starts or stops push-to-talk capture. Stopping moves
// the transcript into the input line.
func (m Model) toggleRecording() (tea.Model, tea.Cmd) {
	if m.capture == nil {
		m.notice = "Voice capture is not configured."
		return m, nil
	}

	if m.recording {
		transcript := m.capture.StopRecording()
		m.recording = false
		m.statusBar.Recording = false
		m.statusBar.CaptureLine = ""
		if transcript != "" {
			m.ctrl.AppendTranscript(transcript)
			m.input.SetValue(m.ctrl.PendingInput())
			m.input.CursorEnd()
		}
		return m, nil
	}

	if err := m.capture.StartRecording(context.Background()); err != nil {
		m.notice = "Voice capture failed: " + err.Error()
		return m, nil
	}
	m.recording = true
	m.statusBar.Recording = true
	m.statusBar.CaptureLine = ""
	return m, captureTickCmd()
}

// handleCaptureTick refreshes the live transcript line while recording.
func (m Model) handleCaptureTick() (tea.Model, tea.Cmd) {
	if !m.recording || m.capture == nil {
		return m, nil
	}
	m.statusBar.CaptureLine = m.capture.Transcript()
	if m.playback != nil {
		m.statusBar.Speaking = m.playback.IsSpeaking()
	}
	return m, captureTickCmd()
}

// stopVoice shuts down any in-flight capture or playback.
func (m *Model) stopVoice() {
	if m.capture != nil {
		m.capture.StopRecording()
	}
	if m.playback != nil {
		m.playback.Stop()
	}
}

// =============================================================================
// CONFIG RELOAD
// =============================================================================

// handleConfigReload applies a live config change: voice settings and
// display options take effect immediately.
func (m Model) handleConfigReload(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Config == nil {
		return m, nil
	}
	m.cfg = msg.Config
	m.cmdCtx.Config = msg.Config

	if m.playback != nil {
		v := msg.Config.Voice
		m.playback.SetEnabled(v.Enabled)
		if v.Rate > 0 {
			m.playback.SetRate(v.Rate)
		}
		if v.Pitch > 0 {
			m.playback.SetPitch(v.Pitch)
		}
		if v.Volume > 0 {
			m.playback.SetVolume(v.Volume)
		}
		if v.Voice != "" {
			m.playback.SetVoice(v.Voice)
		}
		m.statusBar.VoiceEnabled = m.playback.Enabled()
	}

	m.renderer.SetShowTimestamps(msg.Config.UI.ShowTimestamps)
	m.statusBar.ModelName = msg.Config.Ollama.Model
	m.refreshTranscript()
	return m, nil
}

// =============================================================================
// COMPLETION
// =============================================================================

// updateCompletions recomputes suggestions as the user types.
func (m *Model) updateCompletions() {
	value := m.input.Value()
	if !strings.HasPrefix(value, "/") {
		m.clearCompletions()
		return
	}
	m.completions = m.completer.Complete(value)
	m.completionIndex = 0
	m.showCompletions = len(m.completions) > 0
}

// cycleCompletion applies the selected suggestion and advances the
// selection for the next tab press.
func (m Model) cycleCompletion() (tea.Model, tea.Cmd) {
	if !m.showCompletions || len(m.completions) == 0 {
		m.updateCompletions()
		if !m.showCompletions {
			return m, nil
		}
	}

	chosen := m.completions[m.completionIndex]
	m.applyCompletion(chosen.Value)
	m.completionIndex = (m.completionIndex + 1) % len(m.completions)
	return m, nil
}

// applyCompletion replaces the token being typed with the suggestion.
func (m *Model) applyCompletion(value string) {
	current := m.input.Value()
	idx := strings.LastIndexAny(current, " \t")
	if idx < 0 {
		m.input.SetValue(value + " ")
	} else {
		m.input.SetValue(current[:idx+1] + value)
	}
	m.input.CursorEnd()
	m.ctrl.SetPendingInput(m.input.Value())
}

func (m *Model) clearCompletions() {
	m.completions = nil
	m.completionIndex = 0
	m.showCompletions = false
}
