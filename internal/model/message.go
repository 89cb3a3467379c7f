// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/voxchat-tui/internal/util"
)

// =============================================================================
// SENDER TYPE
// =============================================================================

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderLLM  Sender = "llm"
)

// String returns the string representation of the sender.
func (s Sender) String() string {
	return string(s)
}

// DisplayName returns a human-readable name for the sender.
func (s Sender) DisplayName() string {
	switch s {
	case SenderUser:
		return "You"
	case SenderLLM:
		return "Assistant"
	default:
		return string(s)
	}
}

// =============================================================================
// CHAT MESSAGE TYPE
// =============================================================================

// ChatMessage is one turn in a conversation.
//
// Messages are immutable once created and append-only within a session.
// Insertion order is authoritative; Timestamp is informational only.
type ChatMessage struct {
	ID        string    `json:"id"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a new message with a generated ID.
func NewMessage(sender Sender, text string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		Sender:    sender,
		Text:      text,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(text string) ChatMessage {
	return NewMessage(SenderUser, text)
}

// NewLLMMessage creates a new assistant message.
func NewLLMMessage(text string) ChatMessage {
	return NewMessage(SenderLLM, text)
}

// Preview returns a truncated single-line preview of the message text.
// Uses rune-based truncation to handle Unicode correctly.
func (m ChatMessage) Preview(maxLen int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Text), maxLen)
}

// IsEmpty returns true if the message has no text.
func (m ChatMessage) IsEmpty() bool {
	return len(m.Text) == 0
}
