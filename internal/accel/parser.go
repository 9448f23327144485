// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package accel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Marker is the literal text that makes a line a candidate telemetry record.
const Marker = "Accel: X="

// ErrNotApplicable is returned for lines that do not carry the marker. Callers
// drop these silently.
var ErrNotApplicable = errors.New("not an acceleration record")

var labels = [3]string{"X", "Y", "Z"}

// ParseError reports a candidate record whose numeric payload is missing or
// malformed.
type ParseError struct {
	Line  string
	Label string
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("missing %s= field in %q", e.Label, e.Line)
	}
	return fmt.Sprintf("invalid %s value %q: %v", e.Label, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseLine extracts a Sample from a line such as
//
//	Accel: X=12 Y=-40 Z=1003
//
// Fields are located by their X=, Y= and Z= labels, so extra or reordered
// tokens are tolerated. The first occurrence of each label wins.
func ParseLine(line string) (Sample, error) {
	if !strings.Contains(line, Marker) {
		return Sample{}, ErrNotApplicable
	}

	var (
		values [3]int
		found  [3]bool
	)
	for _, tok := range strings.Fields(line) {
		key, raw, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		for i, label := range labels {
			if key != label || found[i] {
				continue
			}
			raw = strings.TrimSpace(raw)
			v, err := strconv.Atoi(raw)
			if err != nil {
				return Sample{}, &ParseError{Line: line, Label: label, Value: raw, Err: err}
			}
			values[i] = v
			found[i] = true
		}
	}

	for i, ok := range found {
		if !ok {
			return Sample{}, &ParseError{Line: line, Label: labels[i]}
		}
	}

	return Sample{X: values[0], Y: values[1], Z: values[2]}, nil
}
