// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller owns the active conversation: the in-memory message
// list, the at-most-one in-flight request rule, and the translation of
// every failure into assistant-sender chat text.
//
// The Controller sits between the session store and the inference engine.
// It mirrors the current session's messages, appends the user's message
// before invoking the engine, resolves each round-trip with exactly one
// assistant message, and syncs every list mutation back to the store.
// Observers subscribe to assistant appends to drive speech playback.
package controller
