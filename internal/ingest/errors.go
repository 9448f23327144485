// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package ingest

import (
	"errors"
	"fmt"
)

// ErrLineTooLong is returned by LineReader for a line exceeding the
// configured maximum. The rest of that line has been discarded.
var ErrLineTooLong = errors.New("line too long")

// IOError is a failure of the sensor link. It is the only error that ends the
// ingest loop.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *IOError) Unwrap() error { return e.Err }

// DisplayError is a failed redraw. The sample stays in the buffer and the
// loop keeps going.
type DisplayError struct {
	Err error
}

func (e *DisplayError) Error() string { return fmt.Sprintf("display: %v", e.Err) }

func (e *DisplayError) Unwrap() error { return e.Err }

// SinkError is a failed hand-off of an accepted sample to a sink.
type SinkError struct {
	Err error
}

func (e *SinkError) Error() string { return fmt.Sprintf("sink: %v", e.Err) }

func (e *SinkError) Unwrap() error { return e.Err }
