// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewMessages(t *testing.T) {
	if msg := NewUserMessage("Hello"); msg.Role != "user" || msg.Content != "Hello" {
		t.Errorf("NewUserMessage = %+v", msg)
	}
	if msg := NewAssistantMessage("Hi"); msg.Role != "assistant" {
		t.Errorf("NewAssistantMessage role = %q", msg.Role)
	}
	if msg := NewSystemMessage("Be brief"); msg.Role != "system" {
		t.Errorf("NewSystemMessage role = %q", msg.Role)
	}
}

// =============================================================================
// CLIENT CONFIG TESTS
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	client := NewClientWithConfig(&ClientConfig{})

	if client.config.BaseURL != "http://127.0.0.1:11434" {
		t.Errorf("BaseURL = %q", client.config.BaseURL)
	}
	if client.config.Model != "llama3.1" {
		t.Errorf("Model = %q", client.config.Model)
	}
	if client.config.Timeout == 0 {
		t.Error("Timeout should be defaulted")
	}
}

func TestNewClientWithConfig_Nil(t *testing.T) {
	client := NewClientWithConfig(nil)
	if client.config.BaseURL == "" {
		t.Error("nil config should produce defaults")
	}
}

// =============================================================================
// RESPOND TESTS
// =============================================================================

func newChatServer(t *testing.T, handler func(req ChatRequest) ChatResponse) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			w.WriteHeader(http.StatusOK)
			return
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		json.NewEncoder(w).Encode(handler(req))
	}))
}

func TestRespond(t *testing.T) {
	srv := newChatServer(t, func(req ChatRequest) ChatResponse {
		return ChatResponse{
			Model:   req.Model,
			Message: NewAssistantMessage("Hi there!"),
			Done:    true,
		}
	})
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Model: "test-model"})
	client.Configure("Be helpful.")

	reply, err := client.Respond(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Respond failed: %v", err)
	}
	if reply != "Hi there!" {
		t.Errorf("reply = %q, want 'Hi there!'", reply)
	}
}

func TestRespond_CarriesTranscript(t *testing.T) {
	var lastReq ChatRequest
	srv := newChatServer(t, func(req ChatRequest) ChatResponse {
		lastReq = req
		return ChatResponse{Message: NewAssistantMessage("ok"), Done: true}
	})
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	client.Configure("system prompt")

	client.Respond(context.Background(), "first")
	client.Respond(context.Background(), "second")

	// system + first user + first assistant + second user
	if len(lastReq.Messages) != 4 {
		t.Fatalf("Messages count = %d, want 4", len(lastReq.Messages))
	}
	if lastReq.Messages[0].Role != "system" || lastReq.Messages[0].Content != "system prompt" {
		t.Errorf("first message should be system prompt, got %+v", lastReq.Messages[0])
	}
	if lastReq.Messages[3].Content != "second" {
		t.Errorf("last message = %+v, want second prompt", lastReq.Messages[3])
	}
}

func TestRespond_ConfigureResetsTranscript(t *testing.T) {
	var lastReq ChatRequest
	srv := newChatServer(t, func(req ChatRequest) ChatResponse {
		lastReq = req
		return ChatResponse{Message: NewAssistantMessage("ok"), Done: true}
	})
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	client.Respond(context.Background(), "first")

	client.Configure("new prompt")
	client.Respond(context.Background(), "fresh")

	// system + fresh user only; earlier exchange dropped
	if len(lastReq.Messages) != 2 {
		t.Errorf("Messages count = %d, want 2 after Configure", len(lastReq.Messages))
	}
}

func TestRespond_ErrorRollsBackTranscript(t *testing.T) {
	fail := true
	var lastReq ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		json.NewDecoder(r.Body).Decode(&req)
		lastReq = req
		if fail {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(ErrorResponse{Error: "boom"})
			return
		}
		json.NewEncoder(w).Encode(ChatResponse{Message: NewAssistantMessage("ok"), Done: true})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})

	if _, err := client.Respond(context.Background(), "doomed"); err == nil {
		t.Fatal("expected error")
	}

	fail = false
	client.Respond(context.Background(), "retry")

	// The failed prompt must not linger in the transcript.
	if len(lastReq.Messages) != 1 {
		t.Errorf("Messages count = %d, want 1 (failed prompt rolled back)", len(lastReq.Messages))
	}
}

func TestRespond_ModelNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(ErrorResponse{Error: "model 'missing' not found"})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Model: "missing"})

	_, err := client.Respond(context.Background(), "Hello")
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestRespond_NotRunning(t *testing.T) {
	// Point at a server that has been shut down.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: url})

	_, err := client.Respond(context.Background(), "Hello")
	if !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

// =============================================================================
// HEALTH CHECK TESTS
// =============================================================================

func TestCheckRunning(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	if err := client.CheckRunning(context.Background()); err != nil {
		t.Errorf("CheckRunning failed: %v", err)
	}
}

func TestCheckRunning_Down(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: url})
	if err := client.CheckRunning(context.Background()); !errors.Is(err, ErrNotRunning) {
		t.Errorf("expected ErrNotRunning, got %v", err)
	}
}

// =============================================================================
// MODEL LISTING TESTS
// =============================================================================

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			t.Errorf("path = %q, want /api/tags", r.URL.Path)
		}
		json.NewEncoder(w).Encode(TagsResponse{Models: []ModelInfo{
			{Name: "llama3.1", Size: 4000000000},
			{Name: "mistral", Size: 3800000000},
		}})
	}))
	defer srv.Close()

	client := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	models, err := client.ListModels(context.Background())
	if err != nil {
		t.Fatalf("ListModels failed: %v", err)
	}
	if len(models) != 2 || models[0].Name != "llama3.1" {
		t.Errorf("models = %+v", models)
	}
}
