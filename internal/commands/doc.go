// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands provides the slash command system for the TUI.
//
// Commands are registered in a Registry, parsed from user input by the
// Parser, and executed by handlers that return tea.Cmd values. Handlers
// receive a Context carrying the session store, conversation controller,
// Ollama client, and voice adapters, and communicate results back to the
// UI as typed tea.Msg values (InfoMsg, SessionChangedMsg, and so on).
//
// The Completer suggests command names and argument values while typing.
package commands
