// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/voxchat-tui/internal/controller"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusThinking
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusThinking:
		return "Thinking..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// StatusBar is the bottom status bar showing engine, voice, and session
// state.
type StatusBar struct {
	Engine       controller.EngineState
	ModelName    string
	SessionTitle string
	Status       Status

	VoiceEnabled bool
	Speaking     bool
	Recording    bool
	CaptureLine  string // live transcript line while recording

	Width         int
	ShowShortcuts bool

	theme *styles.Theme
}

// NewStatusBar creates a new status bar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Engine:        controller.EngineInitializing,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// View renders the status bar.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	return s.viewWide()
}

// viewNarrow renders a compact status bar for narrow terminals.
// Format: [engine] voice status
func (s *StatusBar) viewNarrow() string {
	parts := []string{s.renderEngineBadge(true)}

	if voice := s.renderVoiceBadge(); voice != "" {
		parts = append(parts, voice)
	}
	parts = append(parts, s.renderStatus())

	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, " "))
}

// viewWide renders the full status bar.
// Format: engine | model | session | voice ... status | shortcuts
func (s *StatusBar) viewWide() string {
	separator := lipgloss.NewStyle().Foreground(styles.Overlay).Render(" | ")

	left := []string{s.renderEngineBadge(false)}

	if s.ModelName != "" {
		left = append(left, lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Render(Truncate(s.ModelName, 20)))
	}
	if s.SessionTitle != "" {
		left = append(left, s.theme.SessionTitle.Render(Truncate(s.SessionTitle, 24)))
	}
	if voice := s.renderVoiceBadge(); voice != "" {
		left = append(left, voice)
	}
	leftSection := strings.Join(left, separator)

	right := []string{s.renderStatus()}
	if s.ShowShortcuts {
		right = append(right, s.renderShortcuts())
	}
	rightSection := strings.Join(right, " ")

	gap := s.Width - lipgloss.Width(leftSection) - lipgloss.Width(rightSection) - 2
	if gap < 1 {
		gap = 1
	}

	return s.theme.StatusBar.Width(s.Width).Render(
		leftSection + strings.Repeat(" ", gap) + rightSection)
}

// renderEngineBadge shows the language model engine state.
func (s *StatusBar) renderEngineBadge(compact bool) string {
	switch s.Engine {
	case controller.EngineReady:
		text := styles.StatusIndicators.Success
		if !compact {
			text += " engine"
		}
		return s.theme.EngineReady.Render(text)
	case controller.EngineInitializing:
		text := styles.StatusIndicators.Pending
		if !compact {
			text += " loading"
		}
		return s.theme.EngineWaiting.Render(text)
	default:
		text := styles.StatusIndicators.Error
		if !compact {
			text += " offline"
		}
		return s.theme.EngineDown.Render(text)
	}
}

// renderVoiceBadge shows recording or playback activity. The live
// capture transcript wins over everything else.
func (s *StatusBar) renderVoiceBadge() string {
	if s.Recording {
		line := styles.StatusIndicators.Recording
		if s.CaptureLine != "" {
			budget := s.Width/2 - len(line) - 1
			if budget > 8 {
				line += " " + Truncate(s.CaptureLine, budget)
			}
		}
		return s.theme.VoiceRecording.Render(line)
	}
	if s.Speaking {
		return s.theme.VoiceSpeaking.Render(styles.StatusIndicators.Speaking)
	}
	if s.VoiceEnabled {
		return s.theme.VoiceSpeaking.Render("voice")
	}
	return ""
}

func (s *StatusBar) renderStatus() string {
	switch s.Status {
	case StatusThinking:
		return lipgloss.NewStyle().Foreground(styles.InfoHighContrast).Bold(true).Render(s.Status.String())
	case StatusError:
		return lipgloss.NewStyle().Foreground(styles.ErrorHighContrast).Bold(true).Render(s.Status.String())
	default:
		return lipgloss.NewStyle().Foreground(styles.SuccessHighContrast).Render(s.Status.String())
	}
}

func (s *StatusBar) renderShortcuts() string {
	shortcuts := []string{
		s.theme.ShortcutKey.Render("^T") + s.theme.ShortcutDesc.Render("talk"),
		s.theme.ShortcutKey.Render("^N") + s.theme.ShortcutDesc.Render("new"),
		s.theme.ShortcutKey.Render("^Q") + s.theme.ShortcutDesc.Render("quit"),
	}
	return strings.Join(shortcuts, " ")
}
