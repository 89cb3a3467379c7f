// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable persistence for chat sessions and user memory.
//
// The SessionStore owns two independent JSON records under the storage
// directory: user_memory.json (the per-installation preference bag) and
// chat_sessions.json (the full session collection). Writes are atomic
// (temp file + fsync + rename) and best-effort: a failed write is logged
// and dropped while in-memory state stays authoritative. A missing or
// malformed record is absorbed into defaults at load time, never a fatal
// startup error.
package storage
