// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/voxchat-tui/internal/config"
	"github.com/jeranaias/voxchat-tui/internal/controller"
	"github.com/jeranaias/voxchat-tui/internal/ollama"
	"github.com/jeranaias/voxchat-tui/internal/storage"
	"github.com/jeranaias/voxchat-tui/internal/voice"
)

// =============================================================================
// COMMAND DEFINITION
// =============================================================================

// Command represents a slash command that can be executed.
type Command struct {
	// Name is the primary command name (e.g., "/help")
	Name string

	// Aliases are alternative names (e.g., "/h", "/?")
	Aliases []string

	// Description is shown in help and completion
	Description string

	// Usage shows argument syntax (e.g., "/switch <session>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler is the function that executes the command
	Handler func(ctx *Context, args []string) tea.Cmd

	// Hidden commands don't appear in help
	Hidden bool

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	// Name of the argument
	Name string

	// Required indicates if the argument must be provided
	Required bool

	// Type determines completion behavior
	Type ArgType

	// Description explains the argument
	Description string

	// Values for enum types
	Values []string
}

// ArgType indicates what kind of completion to provide.
type ArgType int

const (
	ArgTypeString  ArgType = iota // Free-form string
	ArgTypeModel                  // Model name from Ollama
	ArgTypeSession                // Session ID from the store
	ArgTypeEnum                   // One of predefined values
)

// =============================================================================
// COMMAND REGISTRY
// =============================================================================

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a new command registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command to the registry.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns all registered commands.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	return cmds
}

// ByCategory returns visible commands grouped by category.
func (r *Registry) ByCategory() map[string][]*Command {
	result := make(map[string][]*Command)
	for _, cmd := range r.commands {
		if cmd.Hidden {
			continue
		}
		category := cmd.Category
		if category == "" {
			category = "General"
		}
		result[category] = append(result[category], cmd)
	}
	return result
}

// =============================================================================
// BUILT-IN COMMANDS
// =============================================================================

func (r *Registry) registerBuiltins() {
	// Navigation commands
	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Show help and available commands",
		Category:    "Navigation",
		Handler:     handleHelp,
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "Exit voxchat",
		Category:    "Navigation",
		Handler:     handleQuit,
	})

	// Session commands
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Start a new chat session",
		Category:    "Sessions",
		Handler:     handleNew,
	})

	r.Register(&Command{
		Name:        "/sessions",
		Aliases:     []string{"/ls"},
		Description: "List saved chat sessions",
		Category:    "Sessions",
		Handler:     handleSessions,
	})

	r.Register(&Command{
		Name:        "/switch",
		Aliases:     []string{"/sw"},
		Description: "Switch to another session",
		Usage:       "/switch <session>",
		Args: []ArgDef{
			{Name: "session", Required: true, Type: ArgTypeSession, Description: "Session id (prefix allowed)"},
		},
		Category: "Sessions",
		Handler:  handleSwitch,
	})

	r.Register(&Command{
		Name:        "/delete",
		Aliases:     []string{"/rm"},
		Description: "Delete a session (current one if no id given)",
		Usage:       "/delete [session]",
		Args: []ArgDef{
			{Name: "session", Required: false, Type: ArgTypeSession, Description: "Session id (prefix allowed)"},
		},
		Category: "Sessions",
		Handler:  handleDelete,
	})

	r.Register(&Command{
		Name:        "/search",
		Aliases:     []string{"/find"},
		Description: "Search sessions by title and message text",
		Usage:       "/search <query>",
		Args: []ArgDef{
			{Name: "query", Required: true, Type: ArgTypeString, Description: "Case-insensitive substring"},
		},
		Category: "Sessions",
		Handler:  handleSearch,
	})

	r.Register(&Command{
		Name:        "/clear",
		Aliases:     []string{"/cls"},
		Description: "Clear the current conversation",
		Category:    "Sessions",
		Handler:     handleClear,
	})

	// Memory commands
	r.Register(&Command{
		Name:        "/prompt",
		Description: "Show, set, or reset the system prompt",
		Usage:       "/prompt [text|reset]",
		Args: []ArgDef{
			{Name: "text", Required: false, Type: ArgTypeString, Description: "New prompt, or 'reset'"},
		},
		Category: "Memory",
		Handler:  handlePrompt,
	})

	r.Register(&Command{
		Name:        "/remember",
		Description: "Store an important fact about you",
		Usage:       "/remember <fact>",
		Args: []ArgDef{
			{Name: "fact", Required: true, Type: ArgTypeString, Description: "Fact to remember"},
		},
		Category: "Memory",
		Handler:  handleRemember,
	})

	r.Register(&Command{
		Name:        "/name",
		Description: "Tell the assistant your name",
		Usage:       "/name <name>",
		Args: []ArgDef{
			{Name: "name", Required: true, Type: ArgTypeString, Description: "Your name"},
		},
		Category: "Memory",
		Handler:  handleName,
	})

	r.Register(&Command{
		Name:        "/pref",
		Description: "Show or set a preference",
		Usage:       "/pref <key> [value]",
		Args: []ArgDef{
			{Name: "key", Required: true, Type: ArgTypeString, Description: "Preference key"},
			{Name: "value", Required: false, Type: ArgTypeString, Description: "New value"},
		},
		Category: "Memory",
		Handler:  handlePref,
	})

	// Voice commands
	r.Register(&Command{
		Name:        "/voice",
		Description: "Toggle or tune voice playback",
		Usage:       "/voice [on|off|rate|pitch|volume|voice] [value]",
		Args: []ArgDef{
			{
				Name:        "setting",
				Required:    false,
				Type:        ArgTypeEnum,
				Values:      []string{"on", "off", "rate", "pitch", "volume", "voice"},
				Description: "Setting to change",
			},
			{Name: "value", Required: false, Type: ArgTypeString, Description: "New value"},
		},
		Category: "Voice",
		Handler:  handleVoice,
	})

	r.Register(&Command{
		Name:        "/speak",
		Description: "Speak text aloud (last reply if no text given)",
		Usage:       "/speak [text]",
		Args: []ArgDef{
			{Name: "text", Required: false, Type: ArgTypeString, Description: "Text to speak"},
		},
		Category: "Voice",
		Handler:  handleSpeak,
	})

	// Model commands
	r.Register(&Command{
		Name:        "/models",
		Aliases:     []string{"/m"},
		Description: "List locally installed models",
		Category:    "Model",
		Handler:     handleModels,
	})
}

// =============================================================================
// HANDLER INDIRECTION
// =============================================================================

func handleHelp(ctx *Context, args []string) tea.Cmd     { return HandleHelp(ctx, args) }
func handleQuit(ctx *Context, args []string) tea.Cmd     { return HandleQuit(ctx, args) }
func handleNew(ctx *Context, args []string) tea.Cmd      { return HandleNew(ctx, args) }
func handleSessions(ctx *Context, args []string) tea.Cmd { return HandleSessions(ctx, args) }
func handleSwitch(ctx *Context, args []string) tea.Cmd   { return HandleSwitch(ctx, args) }
func handleDelete(ctx *Context, args []string) tea.Cmd   { return HandleDelete(ctx, args) }
func handleSearch(ctx *Context, args []string) tea.Cmd   { return HandleSearch(ctx, args) }
func handleClear(ctx *Context, args []string) tea.Cmd    { return HandleClear(ctx, args) }
func handlePrompt(ctx *Context, args []string) tea.Cmd   { return HandlePrompt(ctx, args) }
func handleRemember(ctx *Context, args []string) tea.Cmd { return HandleRemember(ctx, args) }
func handleName(ctx *Context, args []string) tea.Cmd     { return HandleName(ctx, args) }
func handlePref(ctx *Context, args []string) tea.Cmd     { return HandlePref(ctx, args) }
func handleVoice(ctx *Context, args []string) tea.Cmd    { return HandleVoice(ctx, args) }
func handleSpeak(ctx *Context, args []string) tea.Cmd    { return HandleSpeak(ctx, args) }
func handleModels(ctx *Context, args []string) tea.Cmd   { return HandleModels(ctx, args) }

// =============================================================================
// CONTEXT TYPE
// =============================================================================

// Context provides access to application state for command handlers.
// It follows the dependency injection pattern, allowing handlers to access
// services without direct coupling to the application structure.
//
// All fields are optional and may be nil - handlers must check before use.
type Context struct {
	// Config provides access to application configuration
	Config *config.Config

	// Ollama is the client for local model operations
	Ollama *ollama.Client

	// Store handles session and memory persistence
	Store *storage.SessionStore

	// Controller owns the active conversation
	Controller *controller.Controller

	// Capture is the speech recognition adapter
	Capture *voice.Capture

	// Playback is the speech synthesis adapter
	Playback *voice.Playback
}

// NewContext creates a new command context with the given dependencies.
// All parameters are optional and can be nil.
func NewContext(cfg *config.Config, client *ollama.Client, store *storage.SessionStore, ctrl *controller.Controller) *Context {
	return &Context{
		Config:     cfg,
		Ollama:     client,
		Store:      store,
		Controller: ctrl,
	}
}

// WithVoice attaches the voice adapters to the context.
func (c *Context) WithVoice(capture *voice.Capture, playback *voice.Playback) *Context {
	c.Capture = capture
	c.Playback = playback
	return c
}

// =============================================================================
// COMPLETION TYPE
// =============================================================================

// Completion represents a completion suggestion.
type Completion struct {
	// Value to insert
	Value string

	// Description shown alongside
	Description string
}
