// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/commands"
	"github.com/jeranaias/voxchat-tui/internal/config"
	"github.com/jeranaias/voxchat-tui/internal/controller"
	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/ui/components"
	"github.com/jeranaias/voxchat-tui/internal/ui/styles"
	"github.com/jeranaias/voxchat-tui/internal/voice"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Application state
	cfg      *config.Config
	ctrl     *controller.Controller
	capture  *voice.Capture
	playback *voice.Playback

	// Command system
	cmdCtx    *commands.Context
	registry  *commands.Registry
	parser    *commands.Parser
	completer *commands.Completer

	// UI components
	viewport        viewport.Model
	input           textinput.Model
	spinner         spinner.Model
	renderer        *components.MessageRenderer
	header          *components.Header
	statusBar       *components.StatusBar
	completionPopup *components.CompletionPopup

	// Key bindings
	keyMap KeyMap

	// Transient view state
	responding      bool
	pendingUserText string // echoed in the transcript until the round-trip lands
	recording       bool
	overlay         string // session list or help text shown instead of the transcript
	notice          string // one-line notice above the input
	completions     []commands.Completion
	completionIndex int
	showCompletions bool
}

// New creates the chat model. The capture and playback adapters on the
// command context may be nil when voice is not configured.
func New(theme *styles.Theme, cmdCtx *commands.Context) Model {
	cfg := cmdCtx.Config
	if cfg == nil {
		cfg = config.Default()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message, or / for commands..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	registry := commands.NewRegistry()
	completer := commands.NewCompleter(registry)

	m := Model{
		theme:           theme,
		cfg:             cfg,
		ctrl:            cmdCtx.Controller,
		capture:         cmdCtx.Capture,
		playback:        cmdCtx.Playback,
		cmdCtx:          cmdCtx,
		registry:        registry,
		parser:          commands.NewParser(registry),
		completer:       completer,
		viewport:        vp,
		input:           ti,
		spinner:         sp,
		renderer:        components.NewMessageRenderer(theme, cfg.UI.ShowTimestamps),
		header:          components.NewHeader(theme),
		statusBar:       components.NewStatusBar(theme),
		completionPopup: components.NewCompletionPopup(theme),
		keyMap:          DefaultKeyMap(),
	}

	m.statusBar.ModelName = cfg.Ollama.Model
	if m.playback != nil {
		m.statusBar.VoiceEnabled = m.playback.Enabled()
	}
	completer.Sessions = m.sessionCompletions
	m.input.SetValue(m.ctrl.PendingInput())

	m.refreshTranscript()
	return m
}

// sessionCompletions feeds the completer with session ids and titles.
func (m Model) sessionCompletions() []commands.Completion {
	store := m.cmdCtx.Store
	if store == nil {
		return nil
	}
	var out []commands.Completion
	for _, sess := range store.Sessions() {
		id := sess.ID
		if len(id) > 8 {
			id = id[:8]
		}
		out = append(out, commands.Completion{Value: id, Description: sess.Title})
	}
	return out
}

// Init starts the engine probe and the cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, checkEngineCmd(m.ctrl))
}

// View renders the chat view.
func (m Model) View() string {
	return m.renderChat()
}

// refreshTranscript re-renders the conversation into the viewport and
// scrolls to the bottom.
func (m *Model) refreshTranscript() {
	m.viewport.SetContent(m.renderer.RenderTranscript(m.ctrl.Messages()))
	m.viewport.GotoBottom()
	m.syncSessionTitle()
}

// syncSessionTitle mirrors the active session title into the chrome.
func (m *Model) syncSessionTitle() {
	if cur, ok := m.cmdCtx.Store.Current(); ok {
		m.header.Subtitle = cur.Title
		m.statusBar.SessionTitle = cur.Title
	}
}

// lastAssistantText returns the newest assistant reply, if any.
func (m *Model) lastAssistantText() string {
	msgs := m.ctrl.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Sender == model.SenderLLM {
			return msgs[i].Text
		}
	}
	return ""
}
