// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// =============================================================================
// EXEC-BACKED RECOGNIZER
// =============================================================================

// ExecTranscriber runs an external speech-to-text command and treats each
// line it writes to stdout as a replacing partial transcript. Stopping
// recognition terminates the process.
//
// Any CLI that streams transcription lines works here, for example a
// whisper or vosk wrapper script.
type ExecTranscriber struct {
	command string
	args    []string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewExecTranscriber creates a recognizer backed by the given command.
func NewExecTranscriber(command string, args ...string) *ExecTranscriber {
	return &ExecTranscriber{command: command, args: args}
}

// Authorize verifies the transcription command is installed. Capture maps
// a failure here to its authorization-denied error.
func (e *ExecTranscriber) Authorize(ctx context.Context) error {
	if e.command == "" {
		return fmt.Errorf("no transcription command configured")
	}
	if _, err := exec.LookPath(e.command); err != nil {
		return fmt.Errorf("transcription command %q not found: %w", e.command, err)
	}
	return nil
}

// Start launches the command and streams its stdout lines as replacing
// partial transcripts. The channel closes when the process exits.
func (e *ExecTranscriber) Start(ctx context.Context) (<-chan string, error) {
	runCtx, cancel := context.WithCancel(ctx)

	cmd := exec.CommandContext(runCtx, e.command, e.args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to open transcriber stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start transcriber: %w", err)
	}

	e.mu.Lock()
	e.cancel = cancel
	e.mu.Unlock()

	results := make(chan string)
	go func() {
		defer close(results)
		defer cmd.Wait()

		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			select {
			case results <- line:
			case <-runCtx.Done():
				return
			}
		}
	}()

	return results, nil
}

// Stop terminates the transcription process.
func (e *ExecTranscriber) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// =============================================================================
// EXEC-BACKED SYNTHESIZER
// =============================================================================

// ExecSynthesizer speaks by running an external text-to-speech command once
// per utterance, feeding the text on stdin. Delivery settings are passed as
// flags when flag names are configured; engines that take no flags simply
// leave them empty.
//
// Works with common TTS CLIs such as espeak-ng, say, or piper wrappers.
type ExecSynthesizer struct {
	command string
	args    []string

	// Optional flag names for delivery settings, e.g. "--rate".
	RateFlag   string
	PitchFlag  string
	VolumeFlag string
	VoiceFlag  string

	// formatValue renders a setting for the engine's flag syntax.
	// Defaults to two-decimal fixed point.
	formatValue func(float64) string
}

// NewExecSynthesizer creates a synthesizer backed by the given command.
func NewExecSynthesizer(command string, args ...string) *ExecSynthesizer {
	return &ExecSynthesizer{command: command, args: args}
}

// Speak runs the command for one utterance, blocking until it exits.
// Context cancellation kills the process, which reads as a cancelled
// utterance upstream.
func (e *ExecSynthesizer) Speak(ctx context.Context, text string, u Utterance) error {
	if e.command == "" {
		return fmt.Errorf("no synthesis command configured")
	}

	args := append([]string(nil), e.args...)
	format := e.formatValue
	if format == nil {
		format = func(v float64) string { return fmt.Sprintf("%.2f", v) }
	}
	if e.RateFlag != "" {
		args = append(args, e.RateFlag, format(u.Rate))
	}
	if e.PitchFlag != "" {
		args = append(args, e.PitchFlag, format(u.Pitch))
	}
	if e.VolumeFlag != "" {
		args = append(args, e.VolumeFlag, format(u.Volume))
	}
	if e.VoiceFlag != "" && u.Voice != "" {
		args = append(args, e.VoiceFlag, u.Voice)
	}

	cmd := exec.CommandContext(ctx, e.command, args...)
	cmd.Stdin = strings.NewReader(text)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("synthesis command failed: %w", err)
	}
	return nil
}
