// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
)

// Header is the one-line application header showing the product name
// and the active session title.
type Header struct {
	Title    string
	Subtitle string
	Width    int

	theme *styles.Theme
}

// NewHeader creates the application header.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "voxchat",
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders the header line.
func (h *Header) View() string {
	title := h.theme.HeaderTitle.Render(h.Title)

	line := title
	if h.Subtitle != "" {
		budget := h.Width - lipgloss.Width(title) - 4
		if budget > 8 {
			line += "  " + h.theme.HeaderSubtitle.Render(Truncate(h.Subtitle, budget))
		}
	}

	return h.theme.Header.Width(h.Width).Render(line)
}
