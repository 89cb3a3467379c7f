// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/config"
	"github.com/jeranaias/voxchat-tui/internal/controller"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// EngineStatusMsg reports the engine probe result.
type EngineStatusMsg struct {
	State controller.EngineState
}

// ResponseMsg indicates a send round-trip finished; the transcript is
// re-read from the controller.
type ResponseMsg struct{}

// CaptureTickMsg drives the live transcript line while recording.
type CaptureTickMsg time.Time

// ConfigReloadedMsg carries a freshly loaded configuration from the
// file watcher.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// =============================================================================
// COMMANDS
// =============================================================================

// checkEngineCmd probes the engine once and reports its state.
func checkEngineCmd(ctrl *controller.Controller) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		ctrl.InitEngine(ctx)
		return EngineStatusMsg{State: ctrl.EngineState()}
	}
}

// sendMessageCmd runs one conversation round-trip off the UI loop.
func sendMessageCmd(ctrl *controller.Controller, text string) tea.Cmd {
	return func() tea.Msg {
		ctrl.SendMessage(context.Background(), text)
		return ResponseMsg{}
	}
}

// captureTickCmd schedules the next capture status refresh.
func captureTickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return CaptureTickMsg(t)
	})
}
