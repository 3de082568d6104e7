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
Package session records the input events a host fed to a tempo estimator
so they can be stored and replayed later.

Logs are encoded either as protocol buffers or as JSON. The protobuf
messages are declared by hand below and marshalled by gogo/protobuf through
their struct tags:

	message Event {
	  int32 kind   = 1;
	  int64 at_ms  = 2;
	  int64 frame  = 3;
	}
	message Log {
	  string id             = 1;
	  int32 frame_rate      = 2;
	  int32 initial_bpm     = 3;
	  repeated Event events = 4;
	}
*/
package session

import (
	"fmt"

	"github.com/gogo/protobuf/proto"
	"github.com/google/uuid"
)

// Kind is the type of a recorded event.
type Kind int32

const (
	KindTap Kind = iota
	KindPause
	KindResume
	KindToggle
)

var kindNames = map[Kind]string{
	KindTap:    "tap",
	KindPause:  "pause",
	KindResume: "resume",
	KindToggle: "toggle",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int32(k))
}

// MarshalText encodes the kind by name for JSON logs.
func (k Kind) MarshalText() ([]byte, error) {
	s, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrKind, int32(k))
	}
	return []byte(s), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrKind, string(b))
}

// Event is one host input: a tap or a pause control, with the tap clock
// in milliseconds and the frame clock at that moment.
type Event struct {
	Kind  Kind  `protobuf:"varint,1,opt,name=kind,proto3" json:"kind"`
	AtMs  int64 `protobuf:"varint,2,opt,name=at_ms,json=atMs,proto3" json:"at_ms"`
	Frame int64 `protobuf:"varint,3,opt,name=frame,proto3" json:"frame"`
}

func (m *Event) Reset()         { *m = Event{} }
func (m *Event) String() string { return proto.CompactTextString(m) }
func (*Event) ProtoMessage()    {}

// Log is a recorded session.
type Log struct {
	ID         string   `protobuf:"bytes,1,opt,name=id,proto3" json:"id"`
	FrameRate  int32    `protobuf:"varint,2,opt,name=frame_rate,json=frameRate,proto3" json:"frame_rate"`
	InitialBpm int32    `protobuf:"varint,3,opt,name=initial_bpm,json=initialBpm,proto3" json:"initial_bpm"`
	Events     []*Event `protobuf:"bytes,4,rep,name=events,proto3" json:"events"`
}

func (m *Log) Reset()         { *m = Log{} }
func (m *Log) String() string { return proto.CompactTextString(m) }
func (*Log) ProtoMessage()    {}

// NewLog returns an empty log with a fresh session id.
func NewLog(frameRate, initialBpm int) *Log {
	return &Log{
		ID:         uuid.NewString(),
		FrameRate:  int32(frameRate),
		InitialBpm: int32(initialBpm),
	}
}

// Append adds an event to the log.
func (m *Log) Append(kind Kind, atMs int64, frame int) {
	m.Events = append(m.Events, &Event{Kind: kind, AtMs: atMs, Frame: int64(frame)})
}
