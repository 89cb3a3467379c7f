// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import "testing"

func TestNewTheme(t *testing.T) {
	theme := NewTheme("dark")
	if theme == nil {
		t.Fatal("NewTheme returned nil")
	}
	if !theme.IsDark {
		t.Error("dark mode should force a dark background")
	}

	light := NewTheme("light")
	if light.IsDark {
		t.Error("light mode should force a light background")
	}
}

func TestLayoutMode(t *testing.T) {
	theme := NewTheme("dark")

	theme.SetSize(50, 24)
	if theme.GetLayoutMode() != LayoutNarrow {
		t.Error("width 50 should be narrow")
	}

	theme.SetSize(80, 24)
	if theme.GetLayoutMode() != LayoutMedium {
		t.Error("width 80 should be medium")
	}

	theme.SetSize(120, 40)
	if theme.GetLayoutMode() != LayoutWide {
		t.Error("width 120 should be wide")
	}
}

func TestStatusIndicatorsAreASCII(t *testing.T) {
	for _, s := range []string{
		StatusIndicators.Success,
		StatusIndicators.Error,
		StatusIndicators.Warning,
		StatusIndicators.Info,
		StatusIndicators.Recording,
		StatusIndicators.Speaking,
	} {
		for _, r := range s {
			if r > 127 {
				t.Errorf("indicator %q contains non-ASCII rune", s)
			}
		}
	}
}
