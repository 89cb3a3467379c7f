// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/ollama"
	"github.com/jeranaias/voxchat-tui/internal/storage"
)

// =============================================================================
// MESSAGE TYPES
// =============================================================================

// These messages are sent by command handlers to update the application state.

// ShowHelpMsg triggers the help display.
type ShowHelpMsg struct{}

// InfoMsg carries a one-line system notice for the transcript.
type InfoMsg struct {
	Text string
}

// ErrorMsg carries a command failure for display.
type ErrorMsg struct {
	Err error
}

// SessionChangedMsg indicates the active session changed (new, switch,
// or delete). The UI re-renders the transcript from the controller.
type SessionChangedMsg struct {
	ID   string
	Note string
}

// SessionListMsg carries a formatted session listing.
type SessionListMsg struct {
	Body string
}

// ChatClearedMsg indicates the conversation was cleared.
type ChatClearedMsg struct{}

// PromptChangedMsg indicates the system prompt was updated or reset.
type PromptChangedMsg struct {
	Prompt string
	Reset  bool
}

// VoiceToggledMsg indicates voice playback was switched on or off.
type VoiceToggledMsg struct {
	Enabled bool
}

// ModelListMsg carries the locally installed models.
type ModelListMsg struct {
	Models []ollama.ModelInfo
	Err    error
}

// =============================================================================
// NAVIGATION HANDLERS
// =============================================================================

// HandleHelp shows the help overlay.
func HandleHelp(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		return ShowHelpMsg{}
	}
}

// HandleQuit exits the application.
func HandleQuit(ctx *Context, args []string) tea.Cmd {
	return tea.Quit
}

// =============================================================================
// SESSION HANDLERS
// =============================================================================

// HandleNew starts a fresh chat session.
func HandleNew(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Controller == nil {
			return ErrorMsg{Err: fmt.Errorf("no active conversation")}
		}
		sess := ctx.Controller.NewSession()
		return SessionChangedMsg{ID: sess.ID, Note: "Started a new chat."}
	}
}

// HandleSessions lists all saved sessions.
func HandleSessions(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Store == nil {
			return ErrorMsg{Err: fmt.Errorf("no session store")}
		}
		currentID := ""
		if ctx.Controller != nil {
			currentID = ctx.Controller.SessionID()
		}
		return SessionListMsg{Body: storage.FormatSessionList(ctx.Store.Sessions(), currentID)}
	}
}

// HandleSwitch switches to another session by id or unique id prefix.
func HandleSwitch(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Store == nil || ctx.Controller == nil {
			return ErrorMsg{Err: fmt.Errorf("no session store")}
		}

		target, err := resolveSession(ctx.Store, args[0])
		if err != nil {
			return ErrorMsg{Err: err}
		}

		ctx.Controller.SwitchToSession(target.ID)
		return SessionChangedMsg{ID: target.ID, Note: "Switched to: " + target.Title}
	}
}

// HandleDelete deletes a session; without an argument it deletes the
// current one. When no sessions remain a fresh one is created.
func HandleDelete(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Store == nil || ctx.Controller == nil {
			return ErrorMsg{Err: fmt.Errorf("no session store")}
		}

		var target model.ChatSession
		if len(args) > 0 {
			t, err := resolveSession(ctx.Store, args[0])
			if err != nil {
				return ErrorMsg{Err: err}
			}
			target = t
		} else {
			cur, ok := ctx.Store.Current()
			if !ok {
				return ErrorMsg{Err: fmt.Errorf("no current session to delete")}
			}
			target = cur
		}

		wasCurrent := target.ID == ctx.Controller.SessionID()
		ctx.Store.Delete(target.ID)

		if !wasCurrent {
			return InfoMsg{Text: "Deleted: " + target.Title}
		}

		if cur, ok := ctx.Store.Current(); ok {
			ctx.Controller.SwitchToSession(cur.ID)
			return SessionChangedMsg{ID: cur.ID, Note: "Deleted: " + target.Title}
		}

		// Last session deleted; start over with a fresh one.
		sess := ctx.Controller.NewSession()
		return SessionChangedMsg{ID: sess.ID, Note: "Deleted: " + target.Title}
	}
}

// HandleSearch searches sessions by title and message text.
func HandleSearch(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Store == nil {
			return ErrorMsg{Err: fmt.Errorf("no session store")}
		}

		query := strings.Join(args, " ")
		results := ctx.Store.Search(query)
		if len(results) == 0 {
			return InfoMsg{Text: fmt.Sprintf("No sessions match %q.", query)}
		}

		currentID := ""
		if ctx.Controller != nil {
			currentID = ctx.Controller.SessionID()
		}
		header := fmt.Sprintf("%d session(s) match %q:\n", len(results), query)
		return SessionListMsg{Body: header + storage.FormatSessionList(results, currentID)}
	}
}

// HandleClear clears the current conversation.
func HandleClear(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Controller == nil {
			return ErrorMsg{Err: fmt.Errorf("no active conversation")}
		}
		ctx.Controller.ClearChat()
		return ChatClearedMsg{}
	}
}

// resolveSession finds a session by exact id or unique id prefix.
func resolveSession(store *storage.SessionStore, ref string) (model.ChatSession, error) {
	sessions := store.Sessions()

	var matches []model.ChatSession
	for _, sess := range sessions {
		if sess.ID == ref {
			return sess, nil
		}
		if strings.HasPrefix(sess.ID, ref) {
			matches = append(matches, sess)
		}
	}

	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return model.ChatSession{}, fmt.Errorf("no session matches %q", ref)
	default:
		return model.ChatSession{}, fmt.Errorf("session id %q is ambiguous (%d matches)", ref, len(matches))
	}
}

// =============================================================================
// MEMORY HANDLERS
// =============================================================================

// HandlePrompt shows, sets, or resets the system prompt.
func HandlePrompt(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Controller == nil || ctx.Store == nil {
			return ErrorMsg{Err: fmt.Errorf("no active conversation")}
		}

		if len(args) == 0 {
			return InfoMsg{Text: "System prompt:\n" + ctx.Store.Memory().SystemPrompt}
		}

		if len(args) == 1 && strings.EqualFold(args[0], "reset") {
			ctx.Controller.ResetSystemPrompt()
			return PromptChangedMsg{Prompt: ctx.Store.Memory().SystemPrompt, Reset: true}
		}

		prompt := strings.Join(args, " ")
		ctx.Controller.UpdateSystemPrompt(prompt)
		return PromptChangedMsg{Prompt: prompt}
	}
}

// HandleRemember stores an important fact in user memory.
func HandleRemember(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Store == nil {
			return ErrorMsg{Err: fmt.Errorf("no session store")}
		}

		fact := strings.Join(args, " ")
		if ctx.Store.AddFact(fact) {
			return InfoMsg{Text: "Remembered."}
		}
		return InfoMsg{Text: "Already knew that."}
	}
}

// HandleName stores the user's name.
func HandleName(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Store == nil {
			return ErrorMsg{Err: fmt.Errorf("no session store")}
		}

		name := strings.Join(args, " ")
		ctx.Store.SetUserName(name)
		return InfoMsg{Text: "Nice to meet you, " + name + "."}
	}
}

// HandlePref shows or sets a preference.
func HandlePref(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Store == nil {
			return ErrorMsg{Err: fmt.Errorf("no session store")}
		}

		key := args[0]
		if len(args) == 1 {
			if value, ok := ctx.Store.Preference(key); ok {
				return InfoMsg{Text: key + " = " + value}
			}
			return InfoMsg{Text: "No preference set for " + key + "."}
		}

		value := strings.Join(args[1:], " ")
		ctx.Store.SetPreference(key, value)
		return InfoMsg{Text: "Set " + key + " = " + value}
	}
}

// =============================================================================
// VOICE HANDLERS
// =============================================================================

// HandleVoice toggles or tunes voice playback.
func HandleVoice(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Playback == nil {
			return ErrorMsg{Err: fmt.Errorf("voice playback is not available")}
		}

		if len(args) == 0 {
			s := ctx.Playback.Settings()
			state := "off"
			if ctx.Playback.Enabled() {
				state = "on"
			}
			return InfoMsg{Text: fmt.Sprintf(
				"Voice: %s (rate %.2f, pitch %.2f, volume %.2f, voice %q)",
				state, s.Rate, s.Pitch, s.Volume, s.Voice)}
		}

		switch strings.ToLower(args[0]) {
		case "on":
			ctx.Playback.SetEnabled(true)
			return VoiceToggledMsg{Enabled: true}
		case "off":
			ctx.Playback.SetEnabled(false)
			return VoiceToggledMsg{Enabled: false}
		case "voice":
			if len(args) < 2 {
				return ErrorMsg{Err: fmt.Errorf("usage: /voice voice <name>")}
			}
			ctx.Playback.SetVoice(strings.Join(args[1:], " "))
			return InfoMsg{Text: "Voice set. Applies to the next utterance."}
		case "rate", "pitch", "volume":
			if len(args) < 2 {
				return ErrorMsg{Err: fmt.Errorf("usage: /voice %s <value>", args[0])}
			}
			value, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return ErrorMsg{Err: fmt.Errorf("invalid value %q", args[1])}
			}
			switch strings.ToLower(args[0]) {
			case "rate":
				ctx.Playback.SetRate(value)
			case "pitch":
				ctx.Playback.SetPitch(value)
			case "volume":
				ctx.Playback.SetVolume(value)
			}
			return InfoMsg{Text: fmt.Sprintf("Voice %s set to %.2f (clamped to valid range).",
				strings.ToLower(args[0]), value)}
		default:
			return ErrorMsg{Err: fmt.Errorf("unknown voice setting %q", args[0])}
		}
	}
}

// HandleSpeak speaks the given text, or the last assistant reply.
func HandleSpeak(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Playback == nil {
			return ErrorMsg{Err: fmt.Errorf("voice playback is not available")}
		}

		text := strings.Join(args, " ")
		if text == "" && ctx.Controller != nil {
			msgs := ctx.Controller.Messages()
			for i := len(msgs) - 1; i >= 0; i-- {
				if msgs[i].Sender == model.SenderLLM {
					text = msgs[i].Text
					break
				}
			}
		}
		if strings.TrimSpace(text) == "" {
			return ErrorMsg{Err: fmt.Errorf("nothing to speak")}
		}

		if !ctx.Playback.Enabled() {
			ctx.Playback.SetEnabled(true)
		}
		ctx.Playback.Speak(text)
		return InfoMsg{Text: "Speaking."}
	}
}

// =============================================================================
// MODEL HANDLERS
// =============================================================================

// HandleModels lists the locally installed models.
func HandleModels(ctx *Context, args []string) tea.Cmd {
	return func() tea.Msg {
		if ctx.Ollama == nil {
			return ModelListMsg{Err: fmt.Errorf("no inference engine configured")}
		}

		reqCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		models, err := ctx.Ollama.ListModels(reqCtx)
		return ModelListMsg{Models: models, Err: err}
	}
}
