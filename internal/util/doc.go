// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides utility functions for the voxchat application.
//
// This package contains small, dependency-free helpers shared across
// the codebase:
//
//   - AtomicWriteFile: crash-safe file persistence (temp + fsync + rename)
//   - TruncateRunes / TruncateWidth: Unicode-safe string truncation
package util
