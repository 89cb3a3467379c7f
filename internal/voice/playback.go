// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"strings"
	"sync"
)

// =============================================================================
// SYNTHESIZER INTERFACE
// =============================================================================

// Utterance holds the delivery settings applied to one spoken text.
type Utterance struct {
	// Rate is the speaking rate in [0, 1]; 0.5 is the natural rate.
	Rate float64
	// Pitch is the pitch multiplier in [0.5, 2.0].
	Pitch float64
	// Volume is the output volume in [0, 1].
	Volume float64
	// Voice names the synthesis voice; empty selects the engine default.
	Voice string
}

// Delivery setting bounds and defaults.
const (
	MinRate     = 0.0
	MaxRate     = 1.0
	DefaultRate = 0.5

	MinPitch     = 0.5
	MaxPitch     = 2.0
	DefaultPitch = 1.0

	MinVolume     = 0.0
	MaxVolume     = 1.0
	DefaultVolume = 1.0
)

// DefaultUtterance returns the natural delivery settings.
func DefaultUtterance() Utterance {
	return Utterance{Rate: DefaultRate, Pitch: DefaultPitch, Volume: DefaultVolume}
}

// Synthesizer is the speech synthesis engine consumed by Playback.
type Synthesizer interface {
	// Speak renders text aloud, blocking until playback finishes or ctx is
	// cancelled. A cancelled ctx is a cancelled utterance, not a failure.
	Speak(ctx context.Context, text string, u Utterance) error
}

// =============================================================================
// PLAYBACK EVENTS
// =============================================================================

// EventType identifies a playback lifecycle event.
type EventType int

const (
	EventStarted EventType = iota
	EventFinished
	EventCancelled
)

// String returns a human-readable event type.
func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventFinished:
		return "finished"
	case EventCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Event describes a change in playback state for one utterance.
type Event struct {
	Type EventType
	Text string
}

// =============================================================================
// PLAYBACK ADAPTER
// =============================================================================

// Playback turns a Synthesizer into an at-most-one-utterance speaker.
//
// Speak preempts: starting a new utterance cancels the current one before
// the new one begins. Delivery settings are snapshotted per utterance, so
// changing them mid-playback affects the next Speak, not the current one.
type Playback struct {
	mu sync.Mutex

	synth    Synthesizer
	enabled  bool
	settings Utterance

	speaking bool
	current  string
	cancel   context.CancelFunc
	done     chan struct{}
	gen      int

	// onEvent, when set, receives lifecycle events. Fired from the
	// playback goroutine except for cancellations, which fire from the
	// caller that preempted.
	onEvent func(Event)
}

// NewPlayback creates a playback adapter around a synthesizer.
// A nil synthesizer yields a permanently disabled adapter.
func NewPlayback(synth Synthesizer) *Playback {
	return &Playback{
		synth:    synth,
		enabled:  synth != nil,
		settings: DefaultUtterance(),
	}
}

// OnEvent registers a callback for playback lifecycle events.
func (p *Playback) OnEvent(fn func(Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onEvent = fn
}

// SetEnabled toggles playback. Disabling stops the current utterance.
func (p *Playback) SetEnabled(enabled bool) {
	p.mu.Lock()
	if p.synth == nil {
		p.mu.Unlock()
		return
	}
	p.enabled = enabled
	p.mu.Unlock()

	if !enabled {
		p.Stop()
	}
}

// Enabled reports whether playback is active.
func (p *Playback) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// IsSpeaking reports whether an utterance is currently playing.
func (p *Playback) IsSpeaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.speaking
}

// =============================================================================
// DELIVERY SETTINGS
// =============================================================================

// SetRate sets the speaking rate, clamped to [MinRate, MaxRate].
// Applies from the next Speak.
func (p *Playback) SetRate(rate float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings.Rate = clamp(rate, MinRate, MaxRate)
}

// SetPitch sets the pitch multiplier, clamped to [MinPitch, MaxPitch].
// Applies from the next Speak.
func (p *Playback) SetPitch(pitch float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings.Pitch = clamp(pitch, MinPitch, MaxPitch)
}

// SetVolume sets the volume, clamped to [MinVolume, MaxVolume].
// Applies from the next Speak.
func (p *Playback) SetVolume(volume float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings.Volume = clamp(volume, MinVolume, MaxVolume)
}

// SetVoice selects the synthesis voice. Applies from the next Speak.
// The name is not validated here; unknown voices fall back to the engine
// default at synthesis time.
func (p *Playback) SetVoice(voice string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.settings.Voice = voice
}

// Settings returns the delivery settings the next Speak will use.
func (p *Playback) Settings() Utterance {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.settings
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// =============================================================================
// SPEAK / STOP
// =============================================================================

// Speak starts speaking text, cancelling any utterance in progress first.
// A no-op when playback is disabled or the trimmed text is empty.
func (p *Playback) Speak(text string) {
	text = strings.TrimSpace(text)

	p.mu.Lock()
	if !p.enabled || text == "" {
		p.mu.Unlock()
		return
	}
	p.cancelCurrentLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.gen++
	gen := p.gen
	p.speaking = true
	p.current = text
	p.cancel = cancel
	p.done = done
	settings := p.settings
	synth := p.synth
	onEvent := p.onEvent
	p.mu.Unlock()

	if onEvent != nil {
		onEvent(Event{Type: EventStarted, Text: text})
	}

	go func() {
		defer close(done)
		err := synth.Speak(ctx, text, settings)

		p.mu.Lock()
		// A newer utterance may already own the adapter state.
		if p.gen == gen {
			p.speaking = false
			p.current = ""
			p.cancel = nil
			p.done = nil
		}
		fn := p.onEvent
		p.mu.Unlock()

		if fn == nil {
			return
		}
		if err != nil || ctx.Err() != nil {
			fn(Event{Type: EventCancelled, Text: text})
		} else {
			fn(Event{Type: EventFinished, Text: text})
		}
	}()
}

// Stop cancels the current utterance, if any.
func (p *Playback) Stop() {
	p.mu.Lock()
	done := p.done
	p.cancelCurrentLocked()
	p.mu.Unlock()

	if done != nil {
		<-done
	}
}

// cancelCurrentLocked cancels the in-flight utterance without waiting for
// its goroutine to finish. Caller must hold the lock.
func (p *Playback) cancelCurrentLocked() {
	if p.cancel != nil {
		p.cancel()
	}
	p.speaking = false
	p.current = ""
	p.cancel = nil
}
