// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable persistence for chat sessions and user memory.
package storage

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jeranaias/voxchat-tui/internal/model"
	"github.com/jeranaias/voxchat-tui/internal/util"
)

// Record file names inside the storage directory. Each record is a
// self-contained serialized blob keyed by a fixed name.
const (
	memoryFile   = "user_memory.json"
	sessionsFile = "chat_sessions.json"
)

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore owns the persisted UserMemory and the ChatSession collection.
// It is the sole writer of persisted storage; the conversation controller
// holds a view of the current session's messages and syncs changes back
// through UpdateMessages.
//
// Persistence is best-effort: write failures are logged and swallowed, and
// the in-memory state stays authoritative for the rest of the process.
// Missing or malformed records load as defaults; Open never fails outward.
type SessionStore struct {
	mu sync.Mutex

	dir       string
	memory    model.UserMemory
	sessions  []model.ChatSession
	currentID string

	logger *log.Logger
}

// DefaultDir returns the default storage directory (~/.voxchat).
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".voxchat"
	}
	return filepath.Join(homeDir, ".voxchat")
}

// Open loads the persisted records from dir, absorbing any corruption into
// defaults. A fresh or unreadable store yields a default UserMemory and a
// single empty session titled "New Chat". The current session is restored
// from lastChatSessionId when it still exists, otherwise the first session
// in storage order is selected.
func Open(dir string) *SessionStore {
	s := &SessionStore{
		dir:    dir,
		logger: log.New(os.Stderr, "storage: ", log.LstdFlags),
	}
	s.load()
	return s
}

// SetLogger replaces the logger used for dropped persistence failures.
func (s *SessionStore) SetLogger(logger *log.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if logger != nil {
		s.logger = logger
	}
}

// load reads both records, replacing missing or malformed data with defaults.
func (s *SessionStore) load() {
	s.memory = model.NewUserMemory()
	if data, err := os.ReadFile(filepath.Join(s.dir, memoryFile)); err == nil {
		var mem model.UserMemory
		if err := json.Unmarshal(data, &mem); err == nil {
			mem.Normalize()
			s.memory = mem
		} else {
			s.logger.Printf("discarding malformed %s: %v", memoryFile, err)
		}
	}

	s.sessions = nil
	if data, err := os.ReadFile(filepath.Join(s.dir, sessionsFile)); err == nil {
		var sessions []model.ChatSession
		if err := json.Unmarshal(data, &sessions); err == nil {
			s.sessions = sessions
		} else {
			s.logger.Printf("discarding malformed %s: %v", sessionsFile, err)
		}
	}

	if len(s.sessions) == 0 {
		s.sessions = []model.ChatSession{model.NewSession(model.DefaultSessionTitle)}
	}

	// Restore the current session from the last used one, falling back to
	// the first in storage order.
	s.currentID = s.sessions[0].ID
	if s.memory.LastChatSessionID != "" {
		if _, ok := s.find(s.memory.LastChatSessionID); ok {
			s.currentID = s.memory.LastChatSessionID
		}
	}
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// Sessions returns a snapshot of all sessions in storage order.
func (s *SessionStore) Sessions() []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.ChatSession, len(s.sessions))
	for i := range s.sessions {
		out[i] = s.sessions[i].Clone()
	}
	return out
}

// CreateSession appends a new session with an empty message list, makes it
// current, records it as the last used session, and persists.
func (s *SessionStore) CreateSession(title string) model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := model.NewSession(title)
	s.sessions = append(s.sessions, sess)
	s.currentID = sess.ID
	s.memory.LastChatSessionID = sess.ID

	s.persistSessions()
	s.persistMemory()
	return sess.Clone()
}

// Current returns the current session, or false if no session is current
// (possible only after the last session was deleted).
func (s *SessionStore) Current() (model.ChatSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.find(s.currentID)
	if !ok {
		return model.ChatSession{}, false
	}
	return sess.Clone(), true
}

// UpdateMessages replaces the named session's message list, bumps its
// lastModified time, derives a title if still at the default, and persists.
//
// An unknown session id is a silent no-op: the session may have been deleted
// while an edit was in flight, and the single-writer-per-process model makes
// that tolerable rather than an error.
func (s *SessionStore) UpdateMessages(sessionID string, messages []model.ChatMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.find(sessionID)
	if !ok {
		return
	}

	sess.Messages = make([]model.ChatMessage, len(messages))
	copy(sess.Messages, messages)
	sess.LastModified = time.Now()
	sess.DeriveTitle()

	s.persistSessions()
}

// SwitchTo sets the current session id and persists the choice. The id is
// not validated; callers must check Current afterward.
func (s *SessionStore) SwitchTo(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentID = sessionID
	s.memory.LastChatSessionID = sessionID
	s.persistMemory()
}

// Delete removes a session. If it was current, the first remaining session
// becomes current, or no session is current when none remain.
func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.sessions {
		if s.sessions[i].ID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}

	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)

	if s.currentID == sessionID {
		s.currentID = ""
		s.memory.LastChatSessionID = ""
		if len(s.sessions) > 0 {
			s.currentID = s.sessions[0].ID
			s.memory.LastChatSessionID = s.currentID
		}
	}

	s.persistSessions()
	s.persistMemory()
}

// Search returns sessions whose title or any message text contains query as
// a case-insensitive substring. Treating an empty query as "no filter" is
// the caller's concern, not the store's.
func (s *SessionStore) Search(query string) []model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	var results []model.ChatSession
	for i := range s.sessions {
		if s.sessions[i].Matches(query) {
			results = append(results, s.sessions[i].Clone())
		}
	}
	return results
}

// =============================================================================
// USER MEMORY OPERATIONS
// =============================================================================

// Memory returns a snapshot of the user memory.
func (s *SessionStore) Memory() model.UserMemory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.memory.Clone()
}

// SetPreference stores a preference and persists.
func (s *SessionStore) SetPreference(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.Preferences[key] = value
	s.persistMemory()
}

// Preference returns a stored preference value.
func (s *SessionStore) Preference(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.memory.Preferences[key]
	return v, ok
}

// AddFact appends a fact (exact-string dedup) and persists.
// Returns true if the fact was new.
func (s *SessionStore) AddFact(fact string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	added := s.memory.AddFact(fact)
	if added {
		s.persistMemory()
	}
	return added
}

// SetUserName stores the user's name and persists.
func (s *SessionStore) SetUserName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.UserName = name
	s.persistMemory()
}

// UpdateSystemPrompt stores a new system prompt and persists.
func (s *SessionStore) UpdateSystemPrompt(prompt string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.SystemPrompt = prompt
	s.persistMemory()
}

// ResetSystemPrompt restores the default system prompt and persists.
func (s *SessionStore) ResetSystemPrompt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memory.SystemPrompt = model.DefaultSystemPrompt
	s.persistMemory()
}

// =============================================================================
// PERSISTENCE
// =============================================================================

// persistSessions writes the sessions record. Caller must hold the lock.
// Failures are logged, never surfaced: storage is local and best-effort,
// and in-memory state stays authoritative.
func (s *SessionStore) persistSessions() {
	data, err := json.MarshalIndent(s.sessions, "", "  ")
	if err != nil {
		s.logger.Printf("failed to encode %s: %v", sessionsFile, err)
		return
	}
	if err := util.AtomicWriteFile(filepath.Join(s.dir, sessionsFile), data, 0644); err != nil {
		s.logger.Printf("failed to write %s: %v", sessionsFile, err)
	}
}

// persistMemory writes the user memory record. Caller must hold the lock.
func (s *SessionStore) persistMemory() {
	data, err := json.MarshalIndent(s.memory, "", "  ")
	if err != nil {
		s.logger.Printf("failed to encode %s: %v", memoryFile, err)
		return
	}
	if err := util.AtomicWriteFile(filepath.Join(s.dir, memoryFile), data, 0644); err != nil {
		s.logger.Printf("failed to write %s: %v", memoryFile, err)
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// find returns a pointer into the sessions slice. Caller must hold the lock.
func (s *SessionStore) find(id string) (*model.ChatSession, bool) {
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return &s.sessions[i], true
		}
	}
	return nil, false
}

// FormatSessionList formats sessions for display in a table layout.
func FormatSessionList(sessions []model.ChatSession, currentID string) string {
	if len(sessions) == 0 {
		return "No sessions found."
	}

	var sb strings.Builder
	sb.WriteString(util.PadRight("ID", 10) + " " + util.PadRight("Modified", 17) + " " + util.PadRight("Msgs", 5) + " Title\n")

	for _, sess := range sessions {
		id := sess.ID
		if len(id) > 8 {
			id = id[:8]
		}
		marker := "  "
		if sess.ID == currentID {
			marker = "* "
		}
		sb.WriteString(marker + util.PadRight(id, 8) + " " +
			util.PadRight(sess.LastModified.Format("2006-01-02 15:04"), 17) + " " +
			util.PadRight(strconv.Itoa(len(sess.Messages)), 5) + " " +
			util.TruncateWidth(sess.Title, 40) + "\n")
	}
	return sb.String()
}
