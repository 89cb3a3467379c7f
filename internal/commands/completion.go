// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"
	"unicode"
)

// =============================================================================
// COMPLETER
// =============================================================================

// Completer produces inline suggestions for partially typed commands.
//
// Command names complete from the registry; session and model arguments
// complete through the injected providers so the completer stays decoupled
// from the store and the Ollama client.
type Completer struct {
	registry *Registry

	// Sessions provides completion values for ArgTypeSession arguments.
	Sessions func() []Completion

	// Models provides completion values for ArgTypeModel arguments.
	Models func() []Completion
}

// NewCompleter creates a completer over the given registry.
func NewCompleter(registry *Registry) *Completer {
	return &Completer{registry: registry}
}

// Complete returns suggestions for the current input, or nil when the
// input is not a command or nothing matches.
func (c *Completer) Complete(input string) []Completion {
	if !strings.HasPrefix(input, "/") {
		return nil
	}

	// Still typing the command name.
	if !strings.ContainsFunc(input, unicode.IsSpace) {
		return c.completeCommandName(input)
	}

	parts := splitCommandLine(input)
	if len(parts) == 0 {
		return nil
	}

	cmd := c.registry.Get(parts[0])
	if cmd == nil {
		return nil
	}

	// Which argument is being typed, and how much of it.
	argIndex := len(parts) - 1
	partial := ""
	if !strings.HasSuffix(input, " ") {
		argIndex--
		partial = parts[len(parts)-1]
	}
	if argIndex < 0 || argIndex >= len(cmd.Args) {
		return nil
	}

	return c.completeArg(cmd.Args[argIndex], partial)
}

// completeCommandName matches registered commands and aliases by prefix.
func (c *Completer) completeCommandName(partial string) []Completion {
	var out []Completion
	for _, cmd := range c.registry.All() {
		if cmd.Hidden {
			continue
		}
		if strings.HasPrefix(cmd.Name, partial) {
			out = append(out, Completion{Value: cmd.Name, Description: cmd.Description})
			continue
		}
		for _, alias := range cmd.Aliases {
			if strings.HasPrefix(alias, partial) {
				out = append(out, Completion{Value: alias, Description: cmd.Description})
				break
			}
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// completeArg completes one argument according to its type.
func (c *Completer) completeArg(def ArgDef, partial string) []Completion {
	var candidates []Completion

	switch def.Type {
	case ArgTypeEnum:
		for _, v := range def.Values {
			candidates = append(candidates, Completion{Value: v})
		}
	case ArgTypeSession:
		if c.Sessions != nil {
			candidates = c.Sessions()
		}
	case ArgTypeModel:
		if c.Models != nil {
			candidates = c.Models()
		}
	default:
		return nil
	}

	if partial == "" {
		return candidates
	}

	var out []Completion
	lower := strings.ToLower(partial)
	for _, cand := range candidates {
		if strings.HasPrefix(strings.ToLower(cand.Value), lower) {
			out = append(out, cand)
		}
	}
	return out
}
