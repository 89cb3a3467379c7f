// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

// DefaultSystemPrompt configures the inference engine when the user has not
// customized the prompt. ResetSystemPrompt restores this value.
const DefaultSystemPrompt = "You are a helpful assistant. Keep your answers " +
	"concise and conversational, as they may be read aloud."

// =============================================================================
// USER MEMORY TYPE
// =============================================================================

// UserMemory is the process-wide preference and state bag, one instance per
// installation. It is loaded once at startup and mutated through the session
// store's setters, which persist immediately.
type UserMemory struct {
	UserName          string            `json:"userName,omitempty"`
	Preferences       map[string]string `json:"preferences"`
	ImportantFacts    []string          `json:"importantFacts"`
	LastChatSessionID string            `json:"lastChatSessionId,omitempty"`
	SystemPrompt      string            `json:"systemPrompt"`
}

// NewUserMemory creates a UserMemory with default values.
func NewUserMemory() UserMemory {
	return UserMemory{
		Preferences:    make(map[string]string),
		ImportantFacts: make([]string, 0),
		SystemPrompt:   DefaultSystemPrompt,
	}
}

// Normalize fills in nil collections and the default system prompt after
// deserialization, so a record written by an older revision loads cleanly.
func (m *UserMemory) Normalize() {
	if m.Preferences == nil {
		m.Preferences = make(map[string]string)
	}
	if m.ImportantFacts == nil {
		m.ImportantFacts = make([]string, 0)
	}
	if m.SystemPrompt == "" {
		m.SystemPrompt = DefaultSystemPrompt
	}
}

// AddFact appends a fact, deduplicating exact string matches only.
// Returns true if the fact was added, false if it was already present.
func (m *UserMemory) AddFact(fact string) bool {
	for _, f := range m.ImportantFacts {
		if f == fact {
			return false
		}
	}
	m.ImportantFacts = append(m.ImportantFacts, fact)
	return true
}

// Clone creates a deep copy of the memory.
func (m *UserMemory) Clone() UserMemory {
	clone := *m
	clone.Preferences = make(map[string]string, len(m.Preferences))
	for k, v := range m.Preferences {
		clone.Preferences[k] = v
	}
	clone.ImportantFacts = make([]string, len(m.ImportantFacts))
	copy(clone.ImportantFacts, m.ImportantFacts)
	return clone
}
