// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the main Bubble Tea model for voxchat.
//
// The model wires the conversation controller, the session store, and
// the voice adapters into one chat view: a scrolling transcript, a
// single-line input with slash command completion, a status bar, and
// push-to-talk voice capture. Slash commands are dispatched through the
// commands package and their typed results are folded back into the
// view in Update.
package chat
