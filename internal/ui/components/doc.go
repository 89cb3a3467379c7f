// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the voxchat
// TUI: the header, the transcript message renderer, the status bar, and
// the command completion popup. Components render to strings and carry
// no Bubble Tea state of their own; the chat model owns layout and
// update logic.
package components
