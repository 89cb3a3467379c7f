// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/voxchat-tui/internal/util"
)

// DefaultSessionTitle is the placeholder title assigned to new sessions.
// A session keeps this title until its first user message arrives, at which
// point the title is derived from that message. Once the title is anything
// other than the default it is never regenerated.
const DefaultSessionTitle = "New Chat"

// titleMaxLen is the number of characters taken from the first user message
// when deriving a session title.
const titleMaxLen = 50

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession is one conversation thread with its own message list and title.
type ChatSession struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Messages     []ChatMessage `json:"messages"`
	CreatedAt    time.Time     `json:"createdAt"`
	LastModified time.Time     `json:"lastModified"`
}

// NewSession creates a new session with a generated ID and empty message list.
func NewSession(title string) ChatSession {
	now := time.Now()
	return ChatSession{
		ID:           uuid.NewString(),
		Title:        title,
		Messages:     make([]ChatMessage, 0),
		CreatedAt:    now,
		LastModified: now,
	}
}

// =============================================================================
// TITLE DERIVATION
// =============================================================================

// DeriveTitle updates the session title from the first user message if the
// title is still the default placeholder. Subsequent calls never change a
// non-default title, even if the message list changes further.
func (s *ChatSession) DeriveTitle() {
	if s.Title != DefaultSessionTitle {
		return
	}

	for _, msg := range s.Messages {
		if msg.Sender == SenderUser {
			title := strings.TrimSpace(util.CollapseWhitespace(msg.Text))
			if title == "" {
				return
			}
			s.Title = util.TruncateRunesNoEllipsis(title, titleMaxLen)
			return
		}
	}
}

// =============================================================================
// MESSAGE ACCESS
// =============================================================================

// LastMessage returns the most recent message and true, or a zero message
// and false if the session is empty.
func (s *ChatSession) LastMessage() (ChatMessage, bool) {
	if len(s.Messages) == 0 {
		return ChatMessage{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// MessageCount returns the number of messages in the session.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// IsEmpty returns true if the session has no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// Preview returns a short single-line preview of the first user message,
// or an empty string if there is none.
func (s *ChatSession) Preview(maxLen int) string {
	for _, msg := range s.Messages {
		if msg.Sender == SenderUser && msg.Text != "" {
			return msg.Preview(maxLen)
		}
	}
	return ""
}

// Clone creates a deep copy of the session.
// The controller works on a clone of the current session's messages and
// syncs changes back through the store.
func (s *ChatSession) Clone() ChatSession {
	clone := *s
	clone.Messages = make([]ChatMessage, len(s.Messages))
	copy(clone.Messages, s.Messages)
	return clone
}

// Matches reports whether the session title or any message text contains
// query as a case-insensitive substring.
func (s *ChatSession) Matches(query string) bool {
	query = strings.ToLower(query)
	if strings.Contains(strings.ToLower(s.Title), query) {
		return true
	}
	for _, msg := range s.Messages {
		if strings.Contains(strings.ToLower(msg.Text), query) {
			return true
		}
	}
	return false
}
