// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"

	"github.com/jeranaias/voxchat-tui/internal/commands"
	"github.com/jeranaias/voxchat-tui/internal/controller"
	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
)

func testTheme() *styles.Theme {
	return styles.NewTheme("dark")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello world", 8, "hello..."},
		{"hi", 0, ""},
		{"abcdef", 3, "abc"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestPadRight(t *testing.T) {
	if got := PadRight("ab", 5); got != "ab   " {
		t.Errorf("PadRight = %q", got)
	}
	if got := PadRight("abcdefgh", 5); len(got) > 8 {
		t.Errorf("PadRight should truncate, got %q", got)
	}
}

func TestMessageRenderer(t *testing.T) {
	r := NewMessageRenderer(testTheme(), false)
	r.SetWidth(80)

	user := model.NewUserMessage("hello there")
	out := r.RenderMessage(user)
	if !strings.Contains(out, "hello there") {
		t.Errorf("user message text missing from %q", out)
	}
	if !strings.Contains(out, user.Sender.DisplayName()) {
		t.Error("sender label missing")
	}

	llm := model.NewLLMMessage("a reply")
	out = r.RenderMessage(llm)
	if !strings.Contains(out, "a reply") {
		t.Errorf("assistant text missing from %q", out)
	}
}

func TestMessageRenderer_EmptyTranscript(t *testing.T) {
	r := NewMessageRenderer(testTheme(), false)
	out := r.RenderTranscript(nil)
	if !strings.Contains(out, "No messages yet") {
		t.Errorf("empty transcript placeholder missing from %q", out)
	}
}

func TestStatusBar(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(100)
	bar.Engine = controller.EngineReady
	bar.ModelName = "llama3.1"
	bar.SessionTitle = "Groceries"

	out := bar.View()
	if !strings.Contains(out, "llama3.1") {
		t.Error("model name missing from status bar")
	}
	if !strings.Contains(out, "Groceries") {
		t.Error("session title missing from status bar")
	}

	bar.Recording = true
	bar.CaptureLine = "shopping list"
	out = bar.View()
	if !strings.Contains(out, styles.StatusIndicators.Recording) {
		t.Error("recording indicator missing")
	}
}

func TestStatusBar_Narrow(t *testing.T) {
	bar := NewStatusBar(testTheme())
	bar.SetWidth(40)
	if bar.View() == "" {
		t.Error("narrow status bar should still render")
	}
}

func TestHeader(t *testing.T) {
	h := NewHeader(testTheme())
	h.SetWidth(80)
	h.Subtitle = "New Chat"
	out := h.View()
	if !strings.Contains(out, "voxchat") {
		t.Error("header title missing")
	}
	if !strings.Contains(out, "New Chat") {
		t.Error("header subtitle missing")
	}
}

func TestCompletionPopup(t *testing.T) {
	popup := NewCompletionPopup(testTheme())

	if popup.View(nil, 0) != "" {
		t.Error("empty item list should render nothing")
	}

	items := []commands.Completion{
		{Value: "/new", Description: "Start a new chat session"},
		{Value: "/name", Description: "Tell the assistant your name"},
	}
	out := popup.View(items, 1)
	if !strings.Contains(out, "/new") || !strings.Contains(out, "/name") {
		t.Errorf("completion values missing from %q", out)
	}
}
