// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"fmt"
	"sync"
)

// =============================================================================
// ERRORS
// =============================================================================

// CaptureError represents a failure in the capture adapter.
type CaptureError struct {
	Message string
	Cause   error
}

func (e *CaptureError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}

// Is matches capture errors by message so sentinels work with errors.Is.
func (e *CaptureError) Is(target error) bool {
	t, ok := target.(*CaptureError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// Sentinel errors for easy checking.
var (
	ErrAuthorizationDenied = &CaptureError{Message: "speech recognition authorization denied"}
	ErrAlreadyRecording    = &CaptureError{Message: "already recording"}
	ErrNoRecognizer        = &CaptureError{Message: "no speech recognizer available"}
)

// =============================================================================
// RECOGNIZER INTERFACE
// =============================================================================

// Recognizer is the speech recognition engine consumed by Capture.
type Recognizer interface {
	// Authorize verifies permission to capture and transcribe audio.
	Authorize(ctx context.Context) error

	// Start begins recognition. Each value on the returned channel is a
	// replacing partial transcript (the engine's current best guess for the
	// whole recording, not a fragment to append). The channel closes when
	// recognition ends.
	Start(ctx context.Context) (<-chan string, error)

	// Stop ends recognition, causing the transcript channel to close.
	Stop()
}

// =============================================================================
// CAPTURE STATE
// =============================================================================

// CaptureState is the capture adapter's lifecycle state.
type CaptureState int

const (
	CaptureIdle CaptureState = iota
	CaptureRecording
)

// String returns a human-readable capture state.
func (s CaptureState) String() string {
	switch s {
	case CaptureIdle:
		return "idle"
	case CaptureRecording:
		return "recording"
	default:
		return "unknown"
	}
}

// =============================================================================
// CAPTURE ADAPTER
// =============================================================================

// Capture turns a Recognizer into a push-to-talk style recording session.
//
// The adapter holds a single best transcript that each partial result
// replaces wholesale. StopRecording returns the final transcript exactly
// once; repeated stops are harmless and yield an empty string.
type Capture struct {
	mu sync.Mutex

	rec   Recognizer
	state CaptureState

	transcript string
	cancel     context.CancelFunc
	done       chan struct{}

	// onPartial, when set, receives each replacing partial transcript.
	// Fired from the recognition goroutine.
	onPartial func(string)
}

// NewCapture creates a capture adapter around a recognizer.
// A nil recognizer yields an adapter whose StartRecording always fails
// with ErrNoRecognizer.
func NewCapture(rec Recognizer) *Capture {
	return &Capture{rec: rec}
}

// OnPartial registers a callback for replacing partial transcripts.
// Must be set before StartRecording.
func (c *Capture) OnPartial(fn func(string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPartial = fn
}

// State returns the adapter's current state.
func (c *Capture) State() CaptureState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Transcript returns the current best transcript of the recording in
// progress. Empty when idle.
func (c *Capture) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transcript
}

// StartRecording checks authorization and begins a recognition session.
// Fails with ErrAuthorizationDenied when the recognizer refuses access and
// with ErrAlreadyRecording when a session is already in progress; in both
// cases the adapter's state is unchanged.
func (c *Capture) StartRecording(ctx context.Context) error {
	c.mu.Lock()
	if c.rec == nil {
		c.mu.Unlock()
		return ErrNoRecognizer
	}
	if c.state == CaptureRecording {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}
	rec := c.rec
	c.mu.Unlock()

	if err := rec.Authorize(ctx); err != nil {
		return &CaptureError{Message: ErrAuthorizationDenied.Message, Cause: err}
	}

	recCtx, cancel := context.WithCancel(context.Background())
	results, err := rec.Start(recCtx)
	if err != nil {
		cancel()
		return &CaptureError{Message: "failed to start recognition", Cause: err}
	}

	done := make(chan struct{})

	c.mu.Lock()
	c.state = CaptureRecording
	c.transcript = ""
	c.cancel = cancel
	c.done = done
	onPartial := c.onPartial
	c.mu.Unlock()

	go func() {
		defer close(done)
		for partial := range results {
			c.mu.Lock()
			c.transcript = partial
			c.mu.Unlock()
			if onPartial != nil {
				onPartial(partial)
			}
		}
	}()

	return nil
}

// StopRecording ends the session and returns the final transcript.
// Idempotent: stopping while idle returns an empty string. The transcript
// is consumed by the first stop; it is not returned again.
func (c *Capture) StopRecording() string {
	c.mu.Lock()
	if c.state != CaptureRecording {
		c.mu.Unlock()
		return ""
	}
	rec := c.rec
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	rec.Stop()
	cancel()
	if done != nil {
		<-done
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	final := c.transcript
	c.transcript = ""
	c.state = CaptureIdle
	c.cancel = nil
	c.done = nil
	return final
}

// =============================================================================
// DISPLAY HELPERS
// =============================================================================

// StatusLine formats the capture state for the status bar.
func (c *Capture) StatusLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != CaptureRecording {
		return ""
	}
	if c.transcript == "" {
		return "● listening..."
	}
	return fmt.Sprintf("● %s", c.transcript)
}
