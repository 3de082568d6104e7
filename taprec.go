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

package main

import (
	"github.com/goccmack/taptempo/internal/session"
	"github.com/goccmack/taptempo/tempo"
)

// tapRecord is the replayed state after one session event
type tapRecord struct {
	stepNo        int
	kind          session.Kind
	atMs          int64
	frame         int
	outcome       tempo.TapOutcome
	bpm           int
	framesPerBeat int
	offset        int
	paused        bool
	intervalMs    int64 // since the previous counted tap of the run; 0 for the first
}

func newTapRecords(steps []session.Step) []*tapRecord {
	recs := make([]*tapRecord, len(steps))
	var prevMs int64
	for i, st := range steps {
		rec := &tapRecord{
			stepNo:        i,
			kind:          st.Event.Kind,
			atMs:          st.Event.AtMs,
			frame:         int(st.Event.Frame),
			outcome:       st.Outcome,
			bpm:           st.Bpm,
			framesPerBeat: st.FramesPerBeat,
			offset:        st.Offset,
			paused:        st.Paused,
		}
		if rec.kind == session.KindTap {
			switch rec.outcome {
			case tempo.TapRunStarted:
				prevMs = rec.atMs
			case tempo.TapCounted:
				rec.intervalMs = rec.atMs - prevMs
				prevMs = rec.atMs
			}
		}
		recs[i] = rec
	}
	return recs
}

// counted reports whether the record is a tap that updated the bpm
func (r *tapRecord) counted() bool {
	return r.kind == session.KindTap && r.outcome == tempo.TapCounted
}
