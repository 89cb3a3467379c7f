// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles holds the color palette and Lip Gloss styles shared by
// every voxchat view. Colors are AdaptiveColor pairs so the same theme
// works on light and dark terminals; the Theme struct groups the styles
// by screen area and is built once at startup from the configured theme
// mode.
package styles
