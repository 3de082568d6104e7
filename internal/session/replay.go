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

package session

import (
	"fmt"

	"github.com/goccmack/taptempo/tempo"
)

// Recorder forwards host input to an estimator and appends each event to a
// log.
type Recorder struct {
	est *tempo.Estimator
	log *Log
}

// NewRecorder creates an estimator from the log header.
func NewRecorder(l *Log) (*Recorder, error) {
	est, err := tempo.New(int(l.FrameRate), int(l.InitialBpm))
	if err != nil {
		return nil, err
	}
	return &Recorder{est: est, log: l}, nil
}

func (r *Recorder) Estimator() *tempo.Estimator { return r.est }

func (r *Recorder) Log() *Log { return r.log }

func (r *Recorder) Tap(nowMs int64, frame int) tempo.TapOutcome {
	r.log.Append(KindTap, nowMs, frame)
	return r.est.Tap(nowMs, frame)
}

func (r *Recorder) Pause(nowMs int64, frame int) bool {
	r.log.Append(KindPause, nowMs, frame)
	return r.est.Pause(frame)
}

func (r *Recorder) Resume(nowMs int64, frame int) bool {
	r.log.Append(KindResume, nowMs, frame)
	return r.est.Resume(frame)
}

// Toggle pauses or resumes and returns the new paused state.
func (r *Recorder) Toggle(nowMs int64, frame int) bool {
	r.log.Append(KindToggle, nowMs, frame)
	return r.est.Toggle(frame)
}

// Step is the estimator state after one replayed event.
type Step struct {
	Event Event

	// Outcome is only meaningful when Event.Kind is KindTap. Other steps
	// leave it at its zero value.
	Outcome tempo.TapOutcome
	// Changed is set by pause, resume and toggle steps that changed the
	// paused state. It is always false for taps.
	Changed bool

	Bpm           int
	FramesPerBeat int // 0 when there is no tempo
	Offset        int
	Paused        bool
}

/*
Replay applies the events of l in order to a new estimator built from the
log header. It returns the state after every event and the final
estimator.
*/
func Replay(l *Log) ([]Step, *tempo.Estimator, error) {
	est, err := tempo.New(int(l.FrameRate), int(l.InitialBpm))
	if err != nil {
		return nil, nil, fmt.Errorf("session %s: %w", l.ID, err)
	}
	steps := make([]Step, 0, len(l.Events))
	for i, ev := range l.Events {
		st := Step{Event: *ev}
		frame := int(ev.Frame)
		switch ev.Kind {
		case KindTap:
			st.Outcome = est.Tap(ev.AtMs, frame)
		case KindPause:
			st.Changed = est.Pause(frame)
		case KindResume:
			st.Changed = est.Resume(frame)
		case KindToggle:
			est.Toggle(frame)
			st.Changed = true
		default:
			return nil, nil, fmt.Errorf("event %d: %w: %d", i, ErrKind, int32(ev.Kind))
		}
		st.Bpm = est.Bpm()
		st.FramesPerBeat, _ = est.FramesPerBeat()
		st.Offset = est.Offset()
		st.Paused = est.Paused()
		steps = append(steps, st)
	}
	return steps, est, nil
}
