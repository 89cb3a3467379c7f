// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions and messages.
//
// This package defines the core domain types used throughout the application
// for representing conversations and persisted user state.
//
// # Key Types
//
//   - ChatMessage: Single message with sender, text, and timestamp
//   - ChatSession: Container for one conversation thread with title derivation
//   - UserMemory: Per-installation preference and state bag
//   - Sender: Message sender enumeration (user, llm)
//
// # Usage
//
// Create a new session and append a message:
//
//	sess := model.NewSession(model.DefaultSessionTitle)
//	sess.Messages = append(sess.Messages, model.NewUserMessage("Hello!"))
//	sess.DeriveTitle()
package model
