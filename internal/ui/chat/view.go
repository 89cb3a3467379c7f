// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// renderChat assembles the full screen: header, transcript (or
// overlay), input area, and status bar.
func (m Model) renderChat() string {
	var b strings.Builder

	b.WriteString(m.header.View())
	b.WriteString("\n")

	if m.overlay != "" {
		b.WriteString(m.renderOverlay())
	} else {
		b.WriteString(m.transcriptView())
	}
	b.WriteString("\n")

	b.WriteString(m.renderInputArea())
	b.WriteString("\n")

	b.WriteString(m.statusBar.View())

	return b.String()
}

// transcriptView shows the conversation plus any in-flight user line.
func (m Model) transcriptView() string {
	view := m.viewport.View()
	if m.pendingUserText == "" {
		return view
	}

	pending := m.theme.UserBody.Render(m.pendingUserText) + "\n" +
		m.theme.ThinkingText.Render(m.spinner.View()+" thinking...")

	// Trim from the top so the pending lines stay visible.
	lines := strings.Split(view, "\n")
	extra := lipgloss.Height(pending)
	if len(lines) > extra {
		lines = lines[extra:]
	}
	return strings.Join(lines, "\n") + "\n" + pending
}

// renderOverlay centers overlay content in the transcript area.
func (m Model) renderOverlay() string {
	height := m.viewport.Height
	if height < 1 {
		height = 1
	}
	return lipgloss.Place(m.width, height, lipgloss.Center, lipgloss.Center, m.overlay)
}

// renderInputArea draws the input line, with the completion popup and
// notice line above it when present.
func (m Model) renderInputArea() string {
	var b strings.Builder

	if m.showCompletions {
		if popup := m.completionPopup.View(m.completions, m.completionIndex); popup != "" {
			b.WriteString(popup)
			b.WriteString("\n")
		}
	}

	if m.notice != "" {
		b.WriteString(m.theme.SystemNotice.Render(m.notice))
		b.WriteString("\n")
	}

	b.WriteString(m.theme.InputContainer.Width(m.width).Render(m.input.View()))
	return b.String()
}

// renderHelp builds the help overlay from the key map and the command
// registry.
func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(m.theme.HeaderTitle.Render("Keyboard"))
	b.WriteString("\n")
	for _, binding := range m.keyMap.helpEntries() {
		h := binding.Help()
		b.WriteString(m.theme.HelpKey.Render(h.Key))
		b.WriteString(m.theme.HelpDesc.Render(h.Desc))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HeaderTitle.Render("Commands"))
	b.WriteString("\n")
	byCategory := m.registry.ByCategory()
	categories := make([]string, 0, len(byCategory))
	for category := range byCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	for _, category := range categories {
		cmds := byCategory[category]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })

		b.WriteString(m.theme.HeaderSubtitle.Render(category))
		b.WriteString("\n")
		for _, cmd := range cmds {
			b.WriteString(m.theme.HelpKey.Render(cmd.Name))
			b.WriteString(m.theme.HelpDesc.Render(cmd.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.theme.HeaderSubtitle.Render("esc to close"))

	return m.theme.HelpBox.Render(strings.TrimRight(b.String(), "\n"))
}
