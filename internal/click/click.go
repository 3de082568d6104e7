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

// Package click renders a metronome click track at a fixed tempo.
package click

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	bitDepth  = 16
	amplitude = 0.8 * math.MaxInt16

	// wavPCM is the WAVE_FORMAT_PCM audio format tag.
	wavPCM = 1
)

var (
	ErrNoTempo = errors.New("no tempo to render")
	ErrClick   = errors.New("click does not fit in a beat")
)

// Options describes the rendered track.
type Options struct {
	SampleRate  int
	ClickMs     int
	FrequencyHz float64
	Beats       int
}

func (o Options) validate(bpm int) (beatLen, clickLen int, err error) {
	if bpm <= 0 {
		return 0, 0, ErrNoTempo
	}
	if o.SampleRate <= 0 || o.ClickMs <= 0 || o.FrequencyHz <= 0 || o.Beats <= 0 {
		return 0, 0, fmt.Errorf("invalid click options %+v", o)
	}
	beatLen = int(math.Round(float64(o.SampleRate) * 60 / float64(bpm)))
	clickLen = o.SampleRate * o.ClickMs / 1000
	if clickLen < 1 || clickLen > beatLen {
		return 0, 0, fmt.Errorf("%w: %d samples click, %d samples beat", ErrClick, clickLen, beatLen)
	}
	return beatLen, clickLen, nil
}

/*
Samples returns o.Beats beats of 16 bit mono audio at bpm. Every beat
starts with a sine burst of o.ClickMs that decays linearly to silence.
*/
func Samples(bpm int, o Options) ([]int, error) {
	beatLen, clickLen, err := o.validate(bpm)
	if err != nil {
		return nil, err
	}
	burst := make([]int, clickLen)
	w := 2 * math.Pi * o.FrequencyHz / float64(o.SampleRate)
	for i := range burst {
		env := 1 - float64(i)/float64(clickLen)
		burst[i] = int(amplitude * env * math.Sin(w*float64(i)))
	}

	data := make([]int, beatLen*o.Beats)
	for b := 0; b < o.Beats; b++ {
		copy(data[b*beatLen:], burst)
	}
	return data, nil
}

// Write encodes the click track for bpm as a WAV stream.
func Write(w io.WriteSeeker, bpm int, o Options) error {
	data, err := Samples(bpm, o)
	if err != nil {
		return err
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  o.SampleRate,
		},
		Data:           data,
		SourceBitDepth: bitDepth,
	}
	enc := wav.NewEncoder(w, o.SampleRate, bitDepth, 1, wavPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to write click track: %w", err)
	}
	return enc.Close()
}
