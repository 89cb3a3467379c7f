// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE RENDERER
// =============================================================================

// MessageRenderer turns chat messages into styled transcript text.
// Assistant replies are rendered as Markdown through glamour; user
// messages are shown verbatim.
type MessageRenderer struct {
	theme          *styles.Theme
	width          int
	showTimestamps bool

	markdown *glamour.TermRenderer
}

// NewMessageRenderer creates a renderer for the given theme.
func NewMessageRenderer(theme *styles.Theme, showTimestamps bool) *MessageRenderer {
	r := &MessageRenderer{
		theme:          theme,
		width:          80,
		showTimestamps: showTimestamps,
	}
	r.rebuildMarkdown()
	return r
}

// SetWidth updates the render width and rebuilds the Markdown renderer
// so word wrap follows the terminal.
func (r *MessageRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == r.width {
		return
	}
	r.width = width
	r.rebuildMarkdown()
}

// SetShowTimestamps toggles per-message timestamps.
func (r *MessageRenderer) SetShowTimestamps(show bool) {
	r.showTimestamps = show
}

func (r *MessageRenderer) rebuildMarkdown() {
	wrap := r.width - 4
	if wrap < 16 {
		wrap = 16
	}
	md, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Fall back to plain text rendering.
		md = nil
	}
	r.markdown = md
}

// RenderTranscript renders the whole conversation.
func (r *MessageRenderer) RenderTranscript(messages []model.ChatMessage) string {
	if len(messages) == 0 {
		return r.theme.SystemNotice.Render("No messages yet. Type below, or /help for commands.")
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(r.RenderMessage(msg))
		b.WriteString("\n")
	}
	return b.String()
}

// RenderMessage renders one message with its sender label.
func (r *MessageRenderer) RenderMessage(msg model.ChatMessage) string {
	label := r.renderLabel(msg)

	body := msg.Text
	var bodyStyle = r.theme.UserBody
	if msg.Sender == model.SenderLLM {
		bodyStyle = r.theme.AssistantBody
		if r.markdown != nil {
			if rendered, err := r.markdown.Render(msg.Text); err == nil {
				body = strings.Trim(rendered, "\n")
			}
		}
	}

	return label + "\n" + bodyStyle.Render(body)
}

// RenderNotice renders a one-line system notice for the transcript.
func (r *MessageRenderer) RenderNotice(text string) string {
	return r.theme.SystemNotice.Render(text)
}

func (r *MessageRenderer) renderLabel(msg model.ChatMessage) string {
	labelStyle := r.theme.UserLabel
	if msg.Sender == model.SenderLLM {
		labelStyle = r.theme.AssistantLabel
	}
	label := labelStyle.Render(msg.Sender.DisplayName())

	if r.showTimestamps && !msg.Timestamp.IsZero() {
		label += " " + r.theme.Timestamp.Render(msg.Timestamp.Format("15:04"))
	}
	return label
}
