// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller mediates the active chat session against the inference engine.
package controller

import (
	"context"
	"strings"
	"sync"

	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/storage"
)

// =============================================================================
// ENGINE INTERFACE
// =============================================================================

// Engine is the inference collaborator: an external language model service
// that turns a prompt into response text. It is consumed, never implemented,
// by this package.
type Engine interface {
	// Configure sets the system instructions for subsequent responses.
	Configure(system string)

	// Respond exchanges one prompt for one reply. It may fail with an
	// opaque error; the controller surfaces failures as chat messages.
	Respond(ctx context.Context, prompt string) (string, error)

	// CheckRunning probes whether the engine is reachable.
	CheckRunning(ctx context.Context) error
}

// EngineState tracks the availability of the inference engine.
// Initializing is distinct from Unavailable: a request during
// initialization may succeed moments later, one without an engine never will.
type EngineState int

const (
	EngineInitializing EngineState = iota
	EngineReady
	EngineUnavailable
)

// String returns a human-readable engine state.
func (s EngineState) String() string {
	switch s {
	case EngineInitializing:
		return "initializing"
	case EngineReady:
		return "ready"
	case EngineUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// =============================================================================
// USER-FACING MESSAGES
// =============================================================================

// Fixed assistant-sender texts surfaced for lifecycle events and failures.
// Nothing above the controller boundary throws; failures become chat text.
const (
	GreetingText = "Hello! How can I help you today?"

	errPrefix         = "Sorry, I encountered an error: "
	msgEngineMissing  = "Sorry, the language model is not available on this device."
	msgEngineNotReady = "The language model is still loading. Please try again in a moment."
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller owns the active session's message list and enforces the
// at-most-one in-flight request rule.
//
// State machine: Idle -> AwaitingResponse (user message appended, engine
// invoked) -> Resolving (exactly one assistant message appended) -> Idle.
// IsResponding flips to false only after the assistant append is visible,
// so observers gating on it never race the message list.
//
// The design assumes a single UI-driven caller issuing one operation at a
// time; the internal mutex protects the message list from the engine
// goroutine, not from concurrent public callers.
type Controller struct {
	mu sync.Mutex

	store  *storage.SessionStore
	engine Engine

	engineState EngineState

	sessionID    string
	messages     []model.ChatMessage
	pendingInput string
	isResponding bool

	// bootstrapping suppresses store sync while the initial session loads,
	// so just-loaded data is not written back as if it were new.
	bootstrapping bool

	observers      map[int]func(model.ChatMessage)
	nextObserverID int
}

// New creates a controller bound to the store's current session.
//
// A nil engine means the platform capability is absent; the controller
// starts in the Unavailable state and surfaces that as chat text on send.
// Otherwise the engine is configured with the persisted system prompt and
// the controller starts Initializing until InitEngine resolves it.
//
// A greeting seeded into an empty loaded session lives in memory only until
// the first user mutation persists it; starting the app repeatedly must not
// rewrite the sessions record. NewSession, by contrast, persists its
// greeting immediately.
func New(store *storage.SessionStore, engine Engine) *Controller {
	c := &Controller{
		store:     store,
		engine:    engine,
		observers: make(map[int]func(model.ChatMessage)),
	}

	if engine == nil {
		c.engineState = EngineUnavailable
	} else {
		c.engineState = EngineInitializing
		engine.Configure(store.Memory().SystemPrompt)
	}

	c.bootstrapping = true
	if cur, ok := store.Current(); ok {
		c.sessionID = cur.ID
		c.messages = cur.Messages
		if len(c.messages) == 0 {
			c.appendLocked(model.NewLLMMessage(GreetingText))
		}
	}
	c.bootstrapping = false

	return c
}

// InitEngine probes the engine and resolves the Initializing state.
// Safe to call from a background goroutine at startup.
func (c *Controller) InitEngine(ctx context.Context) {
	c.mu.Lock()
	engine := c.engine
	c.mu.Unlock()

	if engine == nil {
		return
	}

	state := EngineReady
	if err := engine.CheckRunning(ctx); err != nil {
		state = EngineUnavailable
	}

	c.mu.Lock()
	c.engineState = state
	c.mu.Unlock()
}

// EngineState returns the current engine availability.
func (c *Controller) EngineState() EngineState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.engineState
}

// =============================================================================
// OBSERVERS
// =============================================================================

// Subscribe registers a callback fired once per appended assistant message,
// synchronously after the append is visible. Returns an id for Unsubscribe.
func (c *Controller) Subscribe(fn func(model.ChatMessage)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextObserverID
	c.nextObserverID++
	c.observers[id] = fn
	return id
}

// Unsubscribe removes a previously registered callback.
func (c *Controller) Unsubscribe(id int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.observers, id)
}

// =============================================================================
// SEND MESSAGE
// =============================================================================

// SendMessage runs one request round-trip: append the user message, invoke
// the engine, append exactly one assistant message (reply or error text).
//
// It is a no-op when the trimmed input is empty or a request is already in
// flight, both checked before any state change. Without a ready engine it
// appends a fixed assistant message and never enters the responding state.
//
// The call blocks until the request resolves; callers drive it from their
// own goroutine (the TUI wraps it in a tea.Cmd). In-flight requests cannot
// be cancelled beyond ctx expiring inside the engine, which resolves the
// round-trip as a failure.
//
// If the active session changes before the request resolves, the reply is
// persisted into the session that issued the prompt, keeping the round-trip
// in one conversation.
func (c *Controller) SendMessage(ctx context.Context, input string) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return
	}

	c.mu.Lock()
	if c.isResponding {
		c.mu.Unlock()
		return
	}

	switch c.engineState {
	case EngineUnavailable:
		msg := model.NewLLMMessage(msgEngineMissing)
		c.appendLocked(msg)
		observers := c.observerListLocked()
		c.mu.Unlock()
		notify(observers, msg)
		return
	case EngineInitializing:
		msg := model.NewLLMMessage(msgEngineNotReady)
		c.appendLocked(msg)
		observers := c.observerListLocked()
		c.mu.Unlock()
		notify(observers, msg)
		return
	}

	// The user message is visible in the list strictly before the request
	// that will answer it begins.
	c.isResponding = true
	c.appendLocked(model.NewUserMessage(trimmed))
	issuedSession := c.sessionID
	engine := c.engine
	c.mu.Unlock()

	reply, err := engine.Respond(ctx, trimmed)

	c.mu.Lock()
	var msg model.ChatMessage
	if err != nil {
		msg = model.NewLLMMessage(errPrefix + err.Error())
	} else {
		msg = model.NewLLMMessage(reply)
	}
	if c.sessionID == issuedSession {
		c.appendLocked(msg)
	} else {
		// The active session changed while the request was in flight.
		// The reply belongs to the session that issued the prompt, not
		// whichever one happens to be current now.
		c.persistToSession(issuedSession, msg)
	}
	// After the assistant append is visible, and only then.
	c.isResponding = false
	observers := c.observerListLocked()
	c.mu.Unlock()

	notify(observers, msg)
}

// IsResponding reports whether a request is in flight.
func (c *Controller) IsResponding() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.isResponding
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// Messages returns a snapshot of the active session's message list.
func (c *Controller) Messages() []model.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]model.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// SessionID returns the id of the session the controller mirrors.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// SwitchToSession makes another session current and reloads the in-memory
// message list from it. If no session matches, the list becomes empty.
func (c *Controller) SwitchToSession(id string) {
	c.store.SwitchTo(id)

	c.mu.Lock()
	defer c.mu.Unlock()

	cur, ok := c.store.Current()
	if !ok {
		c.sessionID = id
		c.messages = nil
		return
	}
	c.sessionID = cur.ID
	c.messages = cur.Messages
}

// NewSession creates a fresh session, makes it current, and seeds it with
// the assistant greeting.
func (c *Controller) NewSession() model.ChatSession {
	sess := c.store.CreateSession(model.DefaultSessionTitle)

	c.mu.Lock()
	c.sessionID = sess.ID
	c.messages = nil
	msg := model.NewLLMMessage(GreetingText)
	c.appendLocked(msg)
	observers := c.observerListLocked()
	c.mu.Unlock()

	notify(observers, msg)
	return sess
}

// ClearChat empties the message list and the pending-input buffer. It does
// not delete the session and does not reset the in-flight flag.
func (c *Controller) ClearChat() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.pendingInput = ""
	c.syncLocked()
}

// UpdateSystemPrompt persists the new prompt and reconfigures the engine
// with it. Messages already sent are unaffected.
func (c *Controller) UpdateSystemPrompt(prompt string) {
	c.store.UpdateSystemPrompt(prompt)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine != nil {
		c.engine.Configure(prompt)
	}
}

// ResetSystemPrompt restores the default prompt and reconfigures the engine.
func (c *Controller) ResetSystemPrompt() {
	c.store.ResetSystemPrompt()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.engine != nil {
		c.engine.Configure(c.store.Memory().SystemPrompt)
	}
}

// =============================================================================
// PENDING INPUT BUFFER
// =============================================================================

// PendingInput returns the buffered input text.
func (c *Controller) PendingInput() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pendingInput
}

// SetPendingInput replaces the buffered input text. The UI mirrors its
// input field here so ClearChat and transcript merging stay consistent.
func (c *Controller) SetPendingInput(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingInput = text
}

// AppendTranscript merges a final voice transcript into the pending-input
// buffer. Callers invoke this exactly once per recording, when it stops.
func (c *Controller) AppendTranscript(transcript string) {
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingInput == "" {
		c.pendingInput = transcript
	} else {
		c.pendingInput = strings.TrimRight(c.pendingInput, " ") + " " + transcript
	}
}

// =============================================================================
// INTERNAL
// =============================================================================

// appendLocked appends a message and syncs the list to the store.
// Caller must hold the lock.
func (c *Controller) appendLocked(msg model.ChatMessage) {
	c.messages = append(c.messages, msg)
	c.syncLocked()
}

// syncLocked writes the full message list back through the store, except
// during the bootstrap window. Caller must hold the lock.
func (c *Controller) syncLocked() {
	if c.bootstrapping {
		return
	}
	out := make([]model.ChatMessage, len(c.messages))
	copy(out, c.messages)
	c.store.UpdateMessages(c.sessionID, out)
}

// persistToSession appends a message directly to a non-active session in
// the store. If the session was deleted in the meantime the message is
// dropped, matching the store's unknown-id contract.
func (c *Controller) persistToSession(id string, msg model.ChatMessage) {
	for _, sess := range c.store.Sessions() {
		if sess.ID == id {
			c.store.UpdateMessages(id, append(sess.Messages, msg))
			return
		}
	}
}

// observerListLocked snapshots the observers. Caller must hold the lock.
func (c *Controller) observerListLocked() []func(model.ChatMessage) {
	out := make([]func(model.ChatMessage), 0, len(c.observers))
	for _, fn := range c.observers {
		out = append(out, fn)
	}
	return out
}

// notify fires observers outside the lock, after the append is visible.
func notify(observers []func(model.ChatMessage), msg model.ChatMessage) {
	for _, fn := range observers {
		fn(msg)
	}
}
