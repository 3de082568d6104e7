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
	"encoding/json"

	"github.com/goccmack/godsp"
	"github.com/goccmack/godsp/ioutil"
	"github.com/goccmack/taptempo/internal/session"
	"github.com/goccmack/taptempo/tempo"
)

type OutRecord struct {
	FileName       string  // Input file
	SessionID      string  // Recorded session id
	FrameRate      int     // Animation frames per second
	FinalBpm       int     // 0 if no tempo at the end of the session
	FramesPerBeat  int     // 0 if no tempo
	TransitionRate float64 // Radians per frame, 0 if no tempo
	Offset         int     // Frame on which beat phase is anchored
	Paused         bool
	MeanIntervalMs float64 // Average of counted tap intervals
	MaxBpm         float64 // Largest bpm seen after any counted tap
	Steps          []*OutStep
}

type OutStep struct {
	StepNo        int
	Kind          string
	AtMs          int64
	Frame         int
	Outcome       string `json:",omitempty"` // taps only
	Bpm           int
	FramesPerBeat int
	Offset        int
	Paused        bool
	IntervalMs    int64 `json:",omitempty"`
}

func newOutRecord(sess *session.Log, est *tempo.Estimator, recs []*tapRecord) *OutRecord {
	or := &OutRecord{
		FileName:  inFileName,
		SessionID: sess.ID,
		FrameRate: est.FrameRate(),
		FinalBpm:  est.Bpm(),
		Offset:    est.Offset(),
		Paused:    est.Paused(),
	}
	or.FramesPerBeat, _ = est.FramesPerBeat()
	or.TransitionRate, _ = est.TransitionSpeed()
	if bpms, intervals := series(recs); len(bpms) > 0 {
		or.MeanIntervalMs = godsp.Average(intervals)
		or.MaxBpm = godsp.Max(bpms)
	}
	for _, rec := range recs {
		or.Steps = append(or.Steps, getOutStep(rec))
	}
	return or
}

// Write the JSON output file
func writeOutput(sess *session.Log, est *tempo.Estimator, recs []*tapRecord) {
	buf, err := json.Marshal(newOutRecord(sess, est, recs))
	if err != nil {
		panic(err)
	}
	if err := ioutil.WriteFile(outFileName, buf); err != nil {
		panic(err)
	}
}

func getOutStep(rec *tapRecord) *OutStep {
	st := &OutStep{
		StepNo:        rec.stepNo,
		Kind:          rec.kind.String(),
		AtMs:          rec.atMs,
		Frame:         rec.frame,
		Bpm:           rec.bpm,
		FramesPerBeat: rec.framesPerBeat,
		Offset:        rec.offset,
		Paused:        rec.paused,
		IntervalMs:    rec.intervalMs,
	}
	if rec.kind == session.KindTap {
		st.Outcome = rec.outcome.String()
	}
	return st
}
