// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package ingest reads accelerometer records from the sensor link and feeds
// them into the rolling window and the display.
package ingest

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"sync"

	"github.com/relabs-tech/accel_plotter/internal/accel"
	"github.com/relabs-tech/accel_plotter/internal/metrics"
	"github.com/relabs-tech/accel_plotter/internal/window"
)

// State is the position of the loop in its per-line state machine.
type State int

const (
	WaitingForData State = iota
	LineReceived
	SampleAccepted
	SampleRejected
	LineIgnored
	ConnectionClosed
)

func (s State) String() string {
	switch s {
	case WaitingForData:
		return "waiting_for_data"
	case LineReceived:
		return "line_received"
	case SampleAccepted:
		return "sample_accepted"
	case SampleRejected:
		return "sample_rejected"
	case LineIgnored:
		return "line_ignored"
	case ConnectionClosed:
		return "connection_closed"
	default:
		return "unknown"
	}
}

// Redrawer is the display side of the loop. Redraw must return quickly.
type Redrawer interface {
	Redraw(snap window.Snapshot) error
}

// SampleSink receives every accepted sample after the display.
type SampleSink interface {
	Publish(s accel.Sample) error
}

// Observer is told about the outcome of every line.
type Observer interface {
	ObserveLine(result string)
	ObserveDisplayError()
}

// Stats counts what the loop has seen so far.
type Stats struct {
	Lines         uint64 `json:"lines"`
	Accepted      uint64 `json:"accepted"`
	Rejected      uint64 `json:"rejected"`
	Ignored       uint64 `json:"ignored"`
	DisplayErrors uint64 `json:"display_errors"`
	SinkErrors    uint64 `json:"sink_errors"`
}

// LoopOptions configures a Loop. Zero values are usable.
type LoopOptions struct {
	MaxLineLength int
	Display       Redrawer
	Sinks         []SampleSink
	Observer      Observer
	Logger        *log.Logger
}

// Loop owns the read side of one sensor stream.
type Loop struct {
	lines    *LineReader
	buffer   *window.Buffer
	display  Redrawer
	sinks    []SampleSink
	observer Observer
	logger   *log.Logger

	mu    sync.Mutex
	state State
	stats Stats
}

// NewLoop creates a loop reading records from r into buf.
func NewLoop(r io.Reader, buf *window.Buffer, opts LoopOptions) *Loop {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "", log.LstdFlags)
	}
	return &Loop{
		lines:    NewLineReader(r, opts.MaxLineLength),
		buffer:   buf,
		display:  opts.Display,
		sinks:    opts.Sinks,
		observer: opts.Observer,
		logger:   logger,
	}
}

// Run processes lines until the stream ends. A peer close returns nil, a
// cancelled context returns ctx.Err(), and any other read failure returns an
// *IOError. Bad records and display failures never stop the loop.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.setState(WaitingForData)
		if err := ctx.Err(); err != nil {
			l.setState(ConnectionClosed)
			return err
		}

		line, err := l.lines.ReadLine()
		switch {
		case err == nil:
			l.ProcessLine(line)

		case errors.Is(err, ErrLineTooLong):
			l.count(func(s *Stats) { s.Lines++; s.Rejected++ })
			l.observe(metrics.ResultRejected)
			l.setState(SampleRejected)
			l.logger.Printf("warning: could not parse acceleration data: %v", err)

		case errors.Is(err, io.EOF):
			l.setState(ConnectionClosed)
			l.logger.Println("ingest: connection closed by peer")
			return nil

		default:
			l.setState(ConnectionClosed)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			ioErr := &IOError{Op: "read", Err: err}
			l.logger.Printf("error: %v", ioErr)
			return ioErr
		}
	}
}

// ProcessLine runs one record through parse, buffer, display and sinks. It
// returns the resulting state and, for rejected samples or failed redraws,
// the error that was logged.
func (l *Loop) ProcessLine(line string) (State, error) {
	l.setState(LineReceived)
	l.count(func(s *Stats) { s.Lines++ })
	if line != "" {
		l.logger.Printf("received: %s", line)
	}

	sample, err := accel.ParseLine(line)
	if errors.Is(err, accel.ErrNotApplicable) {
		l.count(func(s *Stats) { s.Ignored++ })
		l.observe(metrics.ResultIgnored)
		l.setState(LineIgnored)
		return LineIgnored, nil
	}
	if err != nil {
		l.count(func(s *Stats) { s.Rejected++ })
		l.observe(metrics.ResultRejected)
		l.setState(SampleRejected)
		l.logger.Printf("warning: could not parse acceleration data: %v", err)
		return SampleRejected, err
	}

	l.buffer.Push(sample)
	l.count(func(s *Stats) { s.Accepted++ })
	l.observe(metrics.ResultAccepted)
	l.setState(SampleAccepted)

	var result error
	if l.display != nil {
		if err := l.display.Redraw(l.buffer.Snapshot()); err != nil {
			result = &DisplayError{Err: err}
			l.count(func(s *Stats) { s.DisplayErrors++ })
			if l.observer != nil {
				l.observer.ObserveDisplayError()
			}
			l.logger.Printf("warning: %v", result)
		}
	}

	for _, sink := range l.sinks {
		if err := sink.Publish(sample); err != nil {
			l.count(func(s *Stats) { s.SinkErrors++ })
			l.logger.Printf("warning: %v", &SinkError{Err: err})
			if result == nil {
				result = &SinkError{Err: err}
			}
		}
	}

	return SampleAccepted, result
}

// State returns the current state.
func (l *Loop) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Stats returns a copy of the counters.
func (l *Loop) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

func (l *Loop) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *Loop) count(fn func(*Stats)) {
	l.mu.Lock()
	fn(&l.stats)
	l.mu.Unlock()
}

func (l *Loop) observe(result string) {
	if l.observer != nil {
		l.observer.ObserveLine(result)
	}
}
