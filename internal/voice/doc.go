// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice provides the speech capture and playback adapters.
//
// Capture wraps a speech recognizer behind a two-state machine (idle,
// recording) where partial transcripts replace rather than accumulate and
// stopping is idempotent. Playback wraps a speech synthesizer and enforces
// at most one utterance at a time: a new Speak cancels whatever is playing.
//
// Both adapters consume engine interfaces (Recognizer, Synthesizer) so the
// process-backed implementations in exec.go can be swapped for fakes in
// tests or for platform-native engines later.
package voice
