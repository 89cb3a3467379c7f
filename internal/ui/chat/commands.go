// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/commands"
	"github.com/jeranaias/voxchat-tui/internal/ui/components"
)

// dispatch parses and runs a slash command line.
func (m Model) dispatch(line string) (tea.Model, tea.Cmd) {
	result := m.parser.Parse(line)
	if result.Command == nil {
		m.notice = fmt.Sprintf("Unknown command %s. Try /help.", result.CommandName)
		return m, nil
	}
	if err := commands.ValidateArgs(result.Command, result.Args); err != nil {
		m.notice = err.Error()
		return m, nil
	}
	return m, result.Command.Handler(m.cmdCtx, result.Args)
}

// handleCommandResult folds typed command results into the view. The
// bool reports whether the message was one of ours.
func (m Model) handleCommandResult(msg tea.Msg) (tea.Model, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case commands.ShowHelpMsg:
		m.overlay = m.renderHelp()
		return m, nil, true

	case commands.InfoMsg:
		m.notice = msg.Text
		return m, nil, true

	case commands.ErrorMsg:
		m.notice = components.Truncate("Error: "+msg.Err.Error(), 200)
		m.statusBar.Status = components.StatusError
		return m, nil, true

	case commands.SessionChangedMsg:
		m.overlay = ""
		m.notice = msg.Note
		m.input.SetValue(m.ctrl.PendingInput())
		m.refreshTranscript()
		return m, nil, true

	case commands.SessionListMsg:
		m.overlay = m.theme.SessionList.Render(msg.Body)
		return m, nil, true

	case commands.ChatClearedMsg:
		m.notice = "Conversation cleared."
		m.refreshTranscript()
		return m, nil, true

	case commands.PromptChangedMsg:
		if msg.Reset {
			m.notice = "System prompt reset to default."
		} else {
			m.notice = "System prompt updated."
		}
		return m, nil, true

	case commands.VoiceToggledMsg:
		m.statusBar.VoiceEnabled = msg.Enabled
		if msg.Enabled {
			m.notice = "Voice output on."
		} else {
			m.notice = "Voice output off."
			m.statusBar.Speaking = false
		}
		return m, nil, true

	case commands.ModelListMsg:
		if msg.Err != nil {
			m.notice = "Could not list models: " + msg.Err.Error()
			return m, nil, true
		}
		var b strings.Builder
		b.WriteString("Installed models:\n")
		for _, info := range msg.Models {
			b.WriteString("  " + info.Name + "\n")
		}
		m.overlay = m.theme.SessionList.Render(strings.TrimRight(b.String(), "\n"))
		return m, nil, true
	}

	return m, nil, false
}
