//  Copyright 2019 Marius Ackerman
//
//  Licensed under the Apache License, Version 2.0 (the "License");
//  you may not use this file except in compliance with the License.
//  You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.

/*
Package tempo estimates a tempo in beats per minute from a stream of taps
and derives the per-frame constants an animation loop needs to stay in
phase with it.

The caller supplies both the tap time in milliseconds and the current value
of its frame clock. An Estimator never reads a clock itself and is not safe
for concurrent use.
*/
package tempo

import (
	"errors"
	"math"
)

const (
	// ResetMs is the largest gap between two taps of the same run.
	// A tap arriving later than this starts a new run.
	ResetMs = 1000

	msPerMinute = 60000
)

var (
	ErrFrameRate = errors.New("frame rate must be positive")
	ErrBpm       = errors.New("initial bpm must not be negative")
)

// TapOutcome reports what a call to Tap did.
type TapOutcome int

const (
	// TapIgnored means the tap changed nothing: the estimator is paused or
	// the timestamp is not later than the previous tap.
	TapIgnored TapOutcome = iota
	// TapRunStarted means the tap is the first of a new run.
	TapRunStarted
	// TapCounted means the tap extended the current run and updated the bpm.
	TapCounted
)

func (o TapOutcome) String() string {
	switch o {
	case TapIgnored:
		return "ignored"
	case TapRunStarted:
		return "run-started"
	case TapCounted:
		return "counted"
	}
	return "unknown"
}

// Estimator holds all tempo and tap timing state.
type Estimator struct {
	frameRate int
	bpm       int
	offset    int

	tapCount    int
	tapFirst    int64
	tapPrevious int64
	tapped      bool

	paused      bool
	pausedBpm   int
	pausedFrame int
}

// State is a copy of the observable fields of an Estimator.
type State struct {
	FrameRate   int
	Bpm         int
	Offset      int
	TapCount    int
	TapFirst    int64
	TapPrevious int64
	Paused      bool
	PausedBpm   int
	PausedFrame int
}

// New returns an Estimator for an animation running at frameRate frames per
// second, starting at initialBpm (0 for no tempo).
func New(frameRate, initialBpm int) (*Estimator, error) {
	if frameRate <= 0 {
		return nil, ErrFrameRate
	}
	if initialBpm < 0 {
		return nil, ErrBpm
	}
	return &Estimator{
		frameRate: frameRate,
		bpm:       initialBpm,
		pausedBpm: initialBpm,
	}, nil
}

/*
Tap records one tap at nowMs with the frame clock at frame.

The bpm is the average over the whole run, anchored on its first tap:

	bpm = round(60000 * (n-1) / (t_n - t_1))

Taps while paused and taps that are not later than the previous tap are
ignored.
*/
func (e *Estimator) Tap(nowMs int64, frame int) TapOutcome {
	if e.paused {
		return TapIgnored
	}
	if e.tapped && nowMs <= e.tapPrevious {
		return TapIgnored
	}

	// nowMs > tapPrevious >= tapFirst here, so the unsigned gaps cannot wrap.
	if !e.tapped || uint64(nowMs-e.tapPrevious) > ResetMs {
		e.tapCount = 0
		e.offset = frame
	}
	e.tapped = true
	e.tapPrevious = nowMs

	if e.tapCount == 0 {
		e.tapCount = 1
		e.tapFirst = nowMs
		e.bpm = 0
		return TapRunStarted
	}

	avg := float64(msPerMinute*int64(e.tapCount)) / float64(uint64(nowMs-e.tapFirst))
	e.tapCount++
	e.bpm = int(math.Round(avg))
	return TapCounted
}

// Pause halts tempo driven animation. It returns false if already paused.
func (e *Estimator) Pause(frame int) bool {
	if e.paused {
		return false
	}
	e.pausedBpm = e.bpm
	e.pausedFrame = frame
	e.bpm = 0
	e.paused = true
	return true
}

// Resume restores the bpm saved by Pause and re-anchors the phase offset on
// frame. It returns false if not paused.
func (e *Estimator) Resume(frame int) bool {
	if !e.paused {
		return false
	}
	e.bpm = e.pausedBpm
	e.offset = frame
	e.paused = false
	return true
}

// Toggle pauses a running estimator or resumes a paused one and returns the
// new paused state.
func (e *Estimator) Toggle(frame int) bool {
	if e.paused {
		e.Resume(frame)
	} else {
		e.Pause(frame)
	}
	return e.paused
}

// Bpm returns the current tempo, 0 when idle or paused.
func (e *Estimator) Bpm() int {
	return e.bpm
}

// Offset returns the frame on which beat phase is anchored.
func (e *Estimator) Offset() int {
	return e.offset
}

func (e *Estimator) FrameRate() int {
	return e.frameRate
}

func (e *Estimator) TapCount() int {
	return e.tapCount
}

func (e *Estimator) Paused() bool {
	return e.paused
}

// FramesPerBeat returns round(frameRate*60/bpm). ok is false when there is
// no tempo or the tempo is faster than one beat per frame.
func (e *Estimator) FramesPerBeat() (fpb int, ok bool) {
	if e.bpm <= 0 {
		return 0, false
	}
	fpb = int(math.Round(float64(e.frameRate*60) / float64(e.bpm)))
	if fpb < 1 {
		return 0, false
	}
	return fpb, true
}

// TransitionSpeed returns the per frame angle step for a half cycle of
// oscillation per beat.
func (e *Estimator) TransitionSpeed() (float64, bool) {
	fpb, ok := e.FramesPerBeat()
	if !ok {
		return 0, false
	}
	return (math.Pi / 2) / float64(fpb) * 2, true
}

// Phase returns the position of frame within the current beat, in [0, fpb).
func (e *Estimator) Phase(frame int) (int, bool) {
	fpb, ok := e.FramesPerBeat()
	if !ok {
		return 0, false
	}
	p := (frame - e.offset) % fpb
	if p < 0 {
		p += fpb
	}
	return p, true
}

// OnBeat reports whether frame falls on a beat.
func (e *Estimator) OnBeat(frame int) bool {
	p, ok := e.Phase(frame)
	return ok && p == 0
}

func (e *Estimator) Snapshot() State {
	return State{
		FrameRate:   e.frameRate,
		Bpm:         e.bpm,
		Offset:      e.offset,
		TapCount:    e.tapCount,
		TapFirst:    e.tapFirst,
		TapPrevious: e.tapPrevious,
		Paused:      e.paused,
		PausedBpm:   e.pausedBpm,
		PausedFrame: e.pausedFrame,
	}
}
