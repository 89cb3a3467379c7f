// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/voxchat-tui/internal/commands"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
)

// maxCompletionRows limits how tall the popup can grow.
const maxCompletionRows = 8

// CompletionPopup renders command completion suggestions above the
// input line.
type CompletionPopup struct {
	theme *styles.Theme
}

// NewCompletionPopup creates a completion popup renderer.
func NewCompletionPopup(theme *styles.Theme) *CompletionPopup {
	return &CompletionPopup{theme: theme}
}

// View renders the suggestions with the selected row highlighted.
// Returns an empty string when there is nothing to show.
func (p *CompletionPopup) View(items []commands.Completion, selected int) string {
	if len(items) == 0 {
		return ""
	}

	// Window the list around the selection.
	start := 0
	if selected >= maxCompletionRows {
		start = selected - maxCompletionRows + 1
	}
	end := start + maxCompletionRows
	if end > len(items) {
		end = len(items)
	}

	valueWidth := 0
	for _, item := range items[start:end] {
		if len(item.Value) > valueWidth {
			valueWidth = len(item.Value)
		}
	}

	var rows []string
	for i := start; i < end; i++ {
		item := items[i]
		row := PadRight(item.Value, valueWidth)
		if item.Description != "" {
			row += "  " + p.theme.CompletionDesc.Render(item.Description)
		}
		if i == selected {
			row = p.theme.CompletionSelected.Render(row)
		} else {
			row = p.theme.CompletionItem.Render(row)
		}
		rows = append(rows, row)
	}

	return p.theme.CompletionPopup.Render(strings.Join(rows, "\n"))
}
