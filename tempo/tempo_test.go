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

package tempo

import (
	"errors"
	"math"
	"testing"
)

func newEstimator(t *testing.T, frameRate, bpm int) *Estimator {
	t.Helper()
	e, err := New(frameRate, bpm)
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", frameRate, bpm, err)
	}
	return e
}

func TestNewRejectsBadParams(t *testing.T) {
	if _, err := New(0, 0); !errors.Is(err, ErrFrameRate) {
		t.Errorf("New(0, 0) err = %v, want ErrFrameRate", err)
	}
	if _, err := New(-30, 0); !errors.Is(err, ErrFrameRate) {
		t.Errorf("New(-30, 0) err = %v, want ErrFrameRate", err)
	}
	if _, err := New(60, -1); !errors.Is(err, ErrBpm) {
		t.Errorf("New(60, -1) err = %v, want ErrBpm", err)
	}
}

func TestInitialBpm(t *testing.T) {
	e := newEstimator(t, 60, 90)
	if e.Bpm() != 90 {
		t.Errorf("Bpm() = %d, want 90", e.Bpm())
	}
	if fpb, ok := e.FramesPerBeat(); !ok || fpb != 40 {
		t.Errorf("FramesPerBeat() = %d, %v, want 40, true", fpb, ok)
	}
	if e.TapCount() != 0 {
		t.Errorf("TapCount() = %d, want 0", e.TapCount())
	}
}

func TestSteadyTaps(t *testing.T) {
	e := newEstimator(t, 60, 0)

	taps := []struct {
		ms      int64
		frame   int
		outcome TapOutcome
		bpm     int
	}{
		{0, 3, TapRunStarted, 0},
		{500, 33, TapCounted, 120},
		{1000, 63, TapCounted, 120},
		{1500, 93, TapCounted, 120},
	}
	for i, tp := range taps {
		if got := e.Tap(tp.ms, tp.frame); got != tp.outcome {
			t.Errorf("tap %d: outcome %v, want %v", i+1, got, tp.outcome)
		}
		if e.Bpm() != tp.bpm {
			t.Errorf("tap %d: bpm %d, want %d", i+1, e.Bpm(), tp.bpm)
		}
	}
	if e.Offset() != 3 {
		t.Errorf("Offset() = %d, want 3", e.Offset())
	}
	if e.TapCount() != 4 {
		t.Errorf("TapCount() = %d, want 4", e.TapCount())
	}
}

func TestBpmIsAverageFromFirstTap(t *testing.T) {
	e := newEstimator(t, 60, 0)
	times := []int64{10000, 10480, 10990, 11600, 12150, 13100}
	for n, ms := range times {
		e.Tap(ms, n)
		if n == 0 {
			if e.Bpm() != 0 {
				t.Fatalf("first tap bpm = %d, want 0", e.Bpm())
			}
			continue
		}
		want := int(math.Round(60000 * float64(n) / float64(ms-times[0])))
		if e.Bpm() != want {
			t.Errorf("after %d taps: bpm %d, want %d", n+1, e.Bpm(), want)
		}
	}
}

func TestGapResetsRun(t *testing.T) {
	e := newEstimator(t, 60, 0)
	e.Tap(0, 0)
	if got := e.Tap(2000, 120); got != TapRunStarted {
		t.Fatalf("tap after gap: outcome %v, want %v", got, TapRunStarted)
	}
	if e.Bpm() != 0 {
		t.Errorf("Bpm() = %d, want 0", e.Bpm())
	}
	if e.Offset() != 120 {
		t.Errorf("Offset() = %d, want 120", e.Offset())
	}
	if e.TapCount() != 1 {
		t.Errorf("TapCount() = %d, want 1", e.TapCount())
	}

	e.Tap(2600, 156)
	if e.Bpm() != 100 {
		t.Errorf("Bpm() after new run = %d, want 100", e.Bpm())
	}
}

func TestResetBoundary(t *testing.T) {
	tests := []struct {
		name    string
		gap     int64
		outcome TapOutcome
		bpm     int
	}{
		{"exactly one second", 1000, TapCounted, 60},
		{"just over one second", 1001, TapRunStarted, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEstimator(t, 60, 0)
			e.Tap(5000, 1)
			if got := e.Tap(5000+tt.gap, 61); got != tt.outcome {
				t.Errorf("outcome %v, want %v", got, tt.outcome)
			}
			if e.Bpm() != tt.bpm {
				t.Errorf("bpm %d, want %d", e.Bpm(), tt.bpm)
			}
		})
	}
}

func TestFirstTapEverAnchorsOffset(t *testing.T) {
	e := newEstimator(t, 60, 120)
	e.Tap(0, 42)
	if e.Offset() != 42 {
		t.Errorf("Offset() = %d, want 42", e.Offset())
	}
	if e.Bpm() != 0 {
		t.Errorf("Bpm() = %d, want 0", e.Bpm())
	}
}

func TestNonMonotonicTapsIgnored(t *testing.T) {
	e := newEstimator(t, 60, 0)
	e.Tap(1000, 0)
	e.Tap(1500, 30)
	before := e.Snapshot()

	if got := e.Tap(1500, 31); got != TapIgnored {
		t.Errorf("duplicate tap: outcome %v, want %v", got, TapIgnored)
	}
	if got := e.Tap(1200, 32); got != TapIgnored {
		t.Errorf("backwards tap: outcome %v, want %v", got, TapIgnored)
	}
	if after := e.Snapshot(); after != before {
		t.Errorf("state changed: %+v, want %+v", after, before)
	}
}

func TestPauseResume(t *testing.T) {
	e := newEstimator(t, 60, 0)
	e.Tap(0, 0)
	e.Tap(400, 24)
	e.Tap(800, 48)
	bpm := e.Bpm()
	if bpm != 150 {
		t.Fatalf("Bpm() = %d, want 150", bpm)
	}

	if !e.Pause(50) {
		t.Fatal("Pause() = false, want true")
	}
	if e.Bpm() != 0 || !e.Paused() {
		t.Errorf("paused: bpm %d paused %v, want 0 true", e.Bpm(), e.Paused())
	}
	if _, ok := e.FramesPerBeat(); ok {
		t.Error("FramesPerBeat() ok while paused")
	}

	if !e.Resume(200) {
		t.Fatal("Resume() = false, want true")
	}
	if e.Bpm() != bpm {
		t.Errorf("Bpm() after resume = %d, want %d", e.Bpm(), bpm)
	}
	if e.Offset() != 200 {
		t.Errorf("Offset() after resume = %d, want 200", e.Offset())
	}
	if e.TapCount() != 3 {
		t.Errorf("TapCount() after resume = %d, want 3", e.TapCount())
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	e := newEstimator(t, 60, 0)
	e.Tap(0, 0)
	e.Tap(500, 30)

	e.Pause(40)
	once := e.Snapshot()
	if e.Pause(41) {
		t.Error("second Pause() = true, want false")
	}
	if twice := e.Snapshot(); twice != once {
		t.Errorf("second Pause changed state: %+v, want %+v", twice, once)
	}

	e.Resume(50)
	once = e.Snapshot()
	if e.Resume(51) {
		t.Error("second Resume() = true, want false")
	}
	if twice := e.Snapshot(); twice != once {
		t.Errorf("second Resume changed state: %+v, want %+v", twice, once)
	}
}

func TestTapWhilePausedIgnored(t *testing.T) {
	e := newEstimator(t, 60, 0)
	e.Tap(0, 0)
	e.Tap(500, 30)
	e.Pause(31)
	before := e.Snapshot()

	if got := e.Tap(700, 42); got != TapIgnored {
		t.Errorf("outcome %v, want %v", got, TapIgnored)
	}
	if after := e.Snapshot(); after != before {
		t.Errorf("state changed: %+v, want %+v", after, before)
	}
}

func TestToggle(t *testing.T) {
	e := newEstimator(t, 30, 100)
	if !e.Toggle(5) {
		t.Error("Toggle() = false, want true (paused)")
	}
	if e.Toggle(9) {
		t.Error("Toggle() = true, want false (running)")
	}
	if e.Bpm() != 100 || e.Offset() != 9 {
		t.Errorf("bpm %d offset %d, want 100 9", e.Bpm(), e.Offset())
	}
}

func TestDerivedConstants(t *testing.T) {
	e := newEstimator(t, 60, 0)
	if _, ok := e.FramesPerBeat(); ok {
		t.Error("FramesPerBeat() ok with no tempo")
	}
	if _, ok := e.TransitionSpeed(); ok {
		t.Error("TransitionSpeed() ok with no tempo")
	}
	if _, ok := e.Phase(10); ok {
		t.Error("Phase() ok with no tempo")
	}

	e.Tap(0, 10)
	e.Tap(500, 40)
	fpb, ok := e.FramesPerBeat()
	if !ok || fpb != 30 {
		t.Fatalf("FramesPerBeat() = %d, %v, want 30, true", fpb, ok)
	}
	speed, ok := e.TransitionSpeed()
	if !ok || math.Abs(speed-math.Pi/30) > 1e-12 {
		t.Errorf("TransitionSpeed() = %v, %v, want %v, true", speed, ok, math.Pi/30)
	}

	phases := []struct {
		frame int
		phase int
	}{
		{10, 0},
		{25, 15},
		{45, 5},
		{70, 0},
		{5, 25},
	}
	for _, p := range phases {
		got, ok := e.Phase(p.frame)
		if !ok || got != p.phase {
			t.Errorf("Phase(%d) = %d, %v, want %d, true", p.frame, got, ok, p.phase)
		}
	}
	if !e.OnBeat(40) || e.OnBeat(41) {
		t.Error("OnBeat(40) should be true and OnBeat(41) false")
	}
}

func TestFramesPerBeatTooFast(t *testing.T) {
	e := newEstimator(t, 1, 0)
	e.Tap(0, 0)
	e.Tap(1, 0)
	if e.Bpm() != 60000 {
		t.Fatalf("Bpm() = %d, want 60000", e.Bpm())
	}
	if _, ok := e.FramesPerBeat(); ok {
		t.Error("FramesPerBeat() ok for tempo above frame rate")
	}
	if _, ok := e.TransitionSpeed(); ok {
		t.Error("TransitionSpeed() ok for tempo above frame rate")
	}
}

func TestExtremeTimestampsKeepBpmNonNegative(t *testing.T) {
	e := newEstimator(t, 60, 0)
	e.Tap(math.MinInt64+10, 0)
	if got := e.Tap(math.MaxInt64-10, 99); got != TapRunStarted {
		t.Errorf("outcome %v, want %v", got, TapRunStarted)
	}
	if e.Bpm() != 0 || e.Offset() != 99 || e.TapCount() != 1 {
		t.Errorf("bpm %d offset %d count %d, want 0 99 1", e.Bpm(), e.Offset(), e.TapCount())
	}

	e = newEstimator(t, 60, 0)
	e.Tap(math.MaxInt64-1500, 0)
	e.Tap(math.MaxInt64-1000, 30)
	e.Tap(math.MaxInt64-500, 60)
	if e.Bpm() != 120 {
		t.Errorf("bpm near MaxInt64 = %d, want 120", e.Bpm())
	}
}
