// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"context"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/jeranaias/voxchat-tui/internal/controller"
	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/storage"
	"github.com/jeranaias/voxchat-tui/internal/voice"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

type echoEngine struct{}

func (echoEngine) Configure(system string) {}

func (echoEngine) Respond(ctx context.Context, prompt string) (string, error) {
	return "echo: " + prompt, nil
}

func (echoEngine) CheckRunning(ctx context.Context) error { return nil }

type recordingSynth struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingSynth) Speak(ctx context.Context, text string, u voice.Utterance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

func (r *recordingSynth) spoken() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.texts...)
}

func newTestContext(t *testing.T) (*Context, *recordingSynth) {
	t.Helper()

	store := storage.Open(t.TempDir())
	store.SetLogger(log.New(io.Discard, "", 0))

	ctrl := controller.New(store, echoEngine{})
	ctrl.InitEngine(context.Background())

	synth := &recordingSynth{}
	playback := voice.NewPlayback(synth)

	ctx := NewContext(nil, nil, store, ctrl).WithVoice(nil, playback)
	return ctx, synth
}

// run executes a handler's tea.Cmd and returns the produced message.
func run(t *testing.T, ctx *Context, name string, args ...string) interface{} {
	t.Helper()
	cmd := NewRegistry().Get(name)
	if cmd == nil {
		t.Fatalf("command %s not registered", name)
	}
	teaCmd := cmd.Handler(ctx, args)
	if teaCmd == nil {
		return nil
	}
	return teaCmd()
}

// =============================================================================
// PARSER TESTS
// =============================================================================

func TestParse(t *testing.T) {
	parser := NewParser(NewRegistry())

	tests := []struct {
		input       string
		isCommand   bool
		commandName string
		args        []string
		found       bool
	}{
		{"hello there", false, "", nil, false},
		{"/help", true, "/help", nil, true},
		{"/h", true, "/h", nil, true},
		{"/switch abc123", true, "/switch", []string{"abc123"}, true},
		{"/pref tone \"dry humor\"", true, "/pref", []string{"tone", "dry humor"}, true},
		{"/bogus", true, "/bogus", nil, false},
		{"  /new  ", true, "/new", nil, true},
		// Multi-byte arguments must survive tokenization intact.
		{"/remember café", true, "/remember", []string{"café"}, true},
		{"/name 中村", true, "/name", []string{"中村"}, true},
		{"/pref greeting \"grüß dich\"", true, "/pref", []string{"greeting", "grüß dich"}, true},
		{"/remember 丠 is rare", true, "/remember", []string{"丠", "is", "rare"}, true},
	}

	for _, tt := range tests {
		result := parser.Parse(tt.input)
		if result.IsCommand != tt.isCommand {
			t.Errorf("Parse(%q).IsCommand = %v", tt.input, result.IsCommand)
		}
		if result.CommandName != tt.commandName {
			t.Errorf("Parse(%q).CommandName = %q", tt.input, result.CommandName)
		}
		if (result.Command != nil) != tt.found {
			t.Errorf("Parse(%q) found = %v", tt.input, result.Command != nil)
		}
		if len(result.Args) != len(tt.args) {
			t.Errorf("Parse(%q).Args = %v, want %v", tt.input, result.Args, tt.args)
			continue
		}
		for i := range tt.args {
			if result.Args[i] != tt.args[i] {
				t.Errorf("Parse(%q).Args[%d] = %q, want %q", tt.input, i, result.Args[i], tt.args[i])
			}
		}
	}
}

func TestValidateArgs(t *testing.T) {
	registry := NewRegistry()

	// /switch requires a session argument.
	if err := ValidateArgs(registry.Get("/switch"), nil); err == nil {
		t.Error("missing required argument should fail validation")
	}
	if err := ValidateArgs(registry.Get("/switch"), []string{"abc"}); err != nil {
		t.Errorf("valid args should pass: %v", err)
	}

	// /voice takes an enum setting.
	if err := ValidateArgs(registry.Get("/voice"), []string{"loudness"}); err == nil {
		t.Error("invalid enum value should fail validation")
	}
	if err := ValidateArgs(registry.Get("/voice"), []string{"rate", "0.7"}); err != nil {
		t.Errorf("valid enum value should pass: %v", err)
	}
}

func TestExtractCommandName(t *testing.T) {
	if got := ExtractCommandName("/switch abc"); got != "/switch" {
		t.Errorf("ExtractCommandName = %q", got)
	}
	if got := ExtractCommandName("not a command"); got != "" {
		t.Errorf("ExtractCommandName = %q, want empty", got)
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestRegistryBuiltins(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{
		"/help", "/quit", "/new", "/sessions", "/switch", "/delete",
		"/search", "/clear", "/prompt", "/remember", "/name", "/pref",
		"/voice", "/speak", "/models",
	} {
		if registry.Get(name) == nil {
			t.Errorf("builtin %s not registered", name)
		}
	}

	// Aliases resolve to the same command.
	if registry.Get("/n") != registry.Get("/new") {
		t.Error("/n should alias /new")
	}
	if registry.Get("/ls") != registry.Get("/sessions") {
		t.Error("/ls should alias /sessions")
	}
}

// =============================================================================
// COMPLETION TESTS
// =============================================================================

func TestCompleter_CommandNames(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	got := completer.Complete("/s")
	values := make(map[string]bool)
	for _, c := range got {
		values[c.Value] = true
	}
	for _, want := range []string{"/sessions", "/switch", "/search", "/speak"} {
		if !values[want] {
			t.Errorf("completion for /s missing %s (got %v)", want, got)
		}
	}

	if got := completer.Complete("plain text"); got != nil {
		t.Errorf("non-command input should not complete, got %v", got)
	}
}

func TestCompleter_SessionArg(t *testing.T) {
	completer := NewCompleter(NewRegistry())
	completer.Sessions = func() []Completion {
		return []Completion{
			{Value: "abc12345", Description: "Groceries"},
			{Value: "abd99999", Description: "Trip plans"},
			{Value: "xyz00000", Description: "New Chat"},
		}
	}

	got := completer.Complete("/switch ab")
	if len(got) != 2 {
		t.Fatalf("completions = %v, want 2 entries", got)
	}

	// Trailing space means a fresh argument: everything matches.
	got = completer.Complete("/switch ")
	if len(got) != 3 {
		t.Errorf("completions = %v, want all 3", got)
	}
}

func TestCompleter_EnumArg(t *testing.T) {
	completer := NewCompleter(NewRegistry())

	got := completer.Complete("/voice r")
	if len(got) != 1 || got[0].Value != "rate" {
		t.Errorf("completions = %v, want [rate]", got)
	}
}

// =============================================================================
// SESSION HANDLER TESTS
// =============================================================================

func TestHandleNew(t *testing.T) {
	ctx, _ := newTestContext(t)
	before := ctx.Controller.SessionID()

	msg, ok := run(t, ctx, "/new").(SessionChangedMsg)
	if !ok {
		t.Fatalf("expected SessionChangedMsg")
	}
	if msg.ID == before {
		t.Error("new session should change the active session")
	}
	if len(ctx.Store.Sessions()) != 2 {
		t.Errorf("sessions = %d, want 2", len(ctx.Store.Sessions()))
	}
}

func TestHandleSwitch(t *testing.T) {
	ctx, _ := newTestContext(t)
	first := ctx.Controller.SessionID()
	run(t, ctx, "/new")

	// Switch back by unique id prefix.
	msg, ok := run(t, ctx, "/switch", first[:8]).(SessionChangedMsg)
	if !ok {
		t.Fatalf("expected SessionChangedMsg")
	}
	if msg.ID != first {
		t.Errorf("switched to %q, want %q", msg.ID, first)
	}
	if ctx.Controller.SessionID() != first {
		t.Error("controller should mirror the switched session")
	}
}

func TestHandleSwitch_Unknown(t *testing.T) {
	ctx, _ := newTestContext(t)

	if _, ok := run(t, ctx, "/switch", "nope").(ErrorMsg); !ok {
		t.Error("unknown session should produce ErrorMsg")
	}
}

func TestHandleDelete_LastSessionStartsFresh(t *testing.T) {
	ctx, _ := newTestContext(t)

	msg, ok := run(t, ctx, "/delete").(SessionChangedMsg)
	if !ok {
		t.Fatalf("expected SessionChangedMsg")
	}
	// The only session was deleted, so a fresh one takes its place.
	if len(ctx.Store.Sessions()) != 1 {
		t.Errorf("sessions = %d, want 1 fresh session", len(ctx.Store.Sessions()))
	}
	if ctx.Controller.SessionID() != msg.ID {
		t.Error("controller should mirror the fresh session")
	}
}

func TestHandleDelete_NonCurrent(t *testing.T) {
	ctx, _ := newTestContext(t)
	first := ctx.Controller.SessionID()
	run(t, ctx, "/new")
	current := ctx.Controller.SessionID()

	if _, ok := run(t, ctx, "/delete", first).(InfoMsg); !ok {
		t.Error("deleting a non-current session should produce InfoMsg")
	}
	if ctx.Controller.SessionID() != current {
		t.Error("current session should be untouched")
	}
}

func TestHandleSearch(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Controller.SendMessage(context.Background(), "let's plan the grocery run")

	msg, ok := run(t, ctx, "/search", "grocery").(SessionListMsg)
	if !ok {
		t.Fatalf("expected SessionListMsg")
	}
	if !strings.Contains(msg.Body, "1 session(s)") {
		t.Errorf("body = %q", msg.Body)
	}

	if _, ok := run(t, ctx, "/search", "zebra").(InfoMsg); !ok {
		t.Error("no matches should produce InfoMsg")
	}
}

func TestHandleClear(t *testing.T) {
	ctx, _ := newTestContext(t)
	ctx.Controller.SendMessage(context.Background(), "soon gone")

	if _, ok := run(t, ctx, "/clear").(ChatClearedMsg); !ok {
		t.Fatal("expected ChatClearedMsg")
	}
	if len(ctx.Controller.Messages()) != 0 {
		t.Error("messages should be cleared")
	}
}

// =============================================================================
// MEMORY HANDLER TESTS
// =============================================================================

func TestHandlePrompt(t *testing.T) {
	ctx, _ := newTestContext(t)

	msg, ok := run(t, ctx, "/prompt", "Answer", "like", "a", "pirate").(PromptChangedMsg)
	if !ok {
		t.Fatalf("expected PromptChangedMsg")
	}
	if msg.Prompt != "Answer like a pirate" {
		t.Errorf("prompt = %q", msg.Prompt)
	}
	if ctx.Store.Memory().SystemPrompt != "Answer like a pirate" {
		t.Error("prompt should persist in memory")
	}

	reset, ok := run(t, ctx, "/prompt", "reset").(PromptChangedMsg)
	if !ok || !reset.Reset {
		t.Fatalf("expected reset PromptChangedMsg, got %#v", reset)
	}
	if ctx.Store.Memory().SystemPrompt != model.DefaultSystemPrompt {
		t.Error("reset should restore the default prompt")
	}

	if _, ok := run(t, ctx, "/prompt").(InfoMsg); !ok {
		t.Error("bare /prompt should show the current prompt")
	}
}

func TestHandleRemember(t *testing.T) {
	ctx, _ := newTestContext(t)

	msg := run(t, ctx, "/remember", "allergic", "to", "peanuts").(InfoMsg)
	if msg.Text != "Remembered." {
		t.Errorf("text = %q", msg.Text)
	}

	// Exact duplicate is acknowledged but not stored twice.
	msg = run(t, ctx, "/remember", "allergic", "to", "peanuts").(InfoMsg)
	if msg.Text != "Already knew that." {
		t.Errorf("text = %q", msg.Text)
	}
	if len(ctx.Store.Memory().ImportantFacts) != 1 {
		t.Errorf("facts = %v", ctx.Store.Memory().ImportantFacts)
	}
}

func TestHandleNameAndPref(t *testing.T) {
	ctx, _ := newTestContext(t)

	run(t, ctx, "/name", "Alex")
	if ctx.Store.Memory().UserName != "Alex" {
		t.Error("name should persist")
	}

	run(t, ctx, "/pref", "tone", "dry")
	if v, _ := ctx.Store.Preference("tone"); v != "dry" {
		t.Errorf("tone = %q", v)
	}

	msg := run(t, ctx, "/pref", "tone").(InfoMsg)
	if !strings.Contains(msg.Text, "dry") {
		t.Errorf("text = %q", msg.Text)
	}
}

// =============================================================================
// VOICE HANDLER TESTS
// =============================================================================

func TestHandleVoice(t *testing.T) {
	ctx, _ := newTestContext(t)

	msg, ok := run(t, ctx, "/voice", "on").(VoiceToggledMsg)
	if !ok || !msg.Enabled {
		t.Fatalf("expected enabled VoiceToggledMsg")
	}
	if !ctx.Playback.Enabled() {
		t.Error("playback should be enabled")
	}

	run(t, ctx, "/voice", "rate", "0.8")
	if ctx.Playback.Settings().Rate != 0.8 {
		t.Errorf("rate = %v", ctx.Playback.Settings().Rate)
	}

	// Out-of-range values clamp rather than fail.
	run(t, ctx, "/voice", "rate", "7")
	if ctx.Playback.Settings().Rate != voice.MaxRate {
		t.Errorf("rate = %v, want clamped to %v", ctx.Playback.Settings().Rate, voice.MaxRate)
	}

	if _, ok := run(t, ctx, "/voice", "rate", "fast").(ErrorMsg); !ok {
		t.Error("non-numeric value should produce ErrorMsg")
	}

	if _, ok := run(t, ctx, "/voice").(InfoMsg); !ok {
		t.Error("bare /voice should show status")
	}
}

func TestHandleSpeak_LastReply(t *testing.T) {
	ctx, synth := newTestContext(t)
	ctx.Controller.SendMessage(context.Background(), "say something")

	run(t, ctx, "/voice", "on")
	if _, ok := run(t, ctx, "/speak").(InfoMsg); !ok {
		t.Fatal("expected InfoMsg")
	}

	ctx.Playback.Stop()
	spoken := synth.spoken()
	if len(spoken) != 1 || spoken[0] != "echo: say something" {
		t.Errorf("spoken = %v", spoken)
	}
}

// =============================================================================
// SESSION RESOLUTION TESTS
// =============================================================================

func TestResolveSession_Ambiguous(t *testing.T) {
	ctx, _ := newTestContext(t)
	run(t, ctx, "/new")

	// The empty prefix matches every session.
	if _, err := resolveSession(ctx.Store, ""); err == nil {
		t.Error("ambiguous prefix should fail")
	}
}
