// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with the Ollama API.
//
// The Client implements the inference collaborator the conversation
// controller depends on: Configure sets system instructions and resets the
// conversational transcript, Respond exchanges one prompt for one reply.
// Errors are typed (ClientError) and categorized for not-running, timeout,
// model-not-found, connection, and invalid-response conditions.
package ollama
