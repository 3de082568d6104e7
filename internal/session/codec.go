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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogo/protobuf/proto"
)

// Formats
const (
	FormatProto = "pb"
	FormatJSON  = "json"
)

var (
	ErrFormat = errors.New("unknown session format")
	ErrKind   = errors.New("unknown event kind")
)

// FormatOf returns the format implied by a file name: ".json" is JSON,
// anything else is protobuf.
func FormatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatProto
}

// Encode writes l to w in format.
func Encode(w io.Writer, l *Log, format string) error {
	var buf []byte
	var err error
	switch format {
	case FormatProto:
		buf, err = proto.Marshal(l)
	case FormatJSON:
		buf, err = json.MarshalIndent(l, "", "  ")
	default:
		return fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	_, err = w.Write(buf)
	return err
}

// Decode reads a log in format from r.
func Decode(r io.Reader, format string) (*Log, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	l := &Log{}
	switch format {
	case FormatProto:
		err = proto.Unmarshal(buf, l)
	case FormatJSON:
		err = json.Unmarshal(buf, l)
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	for i, ev := range l.Events {
		if ev == nil {
			return nil, fmt.Errorf("event %d is empty", i)
		}
		if _, ok := kindNames[ev.Kind]; !ok {
			return nil, fmt.Errorf("event %d: %w: %d", i, ErrKind, int32(ev.Kind))
		}
	}
	return l, nil
}

// ReadFile decodes the session stored at path.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, FormatOf(path))
}

// WriteFile stores l at path in the format implied by its name.
func WriteFile(path string, l *Log) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, l, FormatOf(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
