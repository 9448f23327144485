// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package display renders the rolling window: a full-screen terminal chart,
// a browser view, a small OLED panel, and a PNG export of the final window.
package display

import (
	"context"
	"time"

	"github.com/relabs-tech/accel_plotter/internal/window"
)

// Display shows the three acceleration series. Redraw hands over a full
// snapshot and must not block the caller; only the newest snapshot matters.
type Display interface {
	Init() error
	Redraw(snap window.Snapshot) error
	Close() error
}

// Holder is implemented by displays that can stay on screen after the stream
// ends. Hold blocks until the user dismisses the display or ctx ends.
type Holder interface {
	Hold(ctx context.Context) error
}

// Options are shared by all displays.
type Options struct {
	Title      string
	YMin, YMax int // milli-g; values outside are clamped when drawn
	Autoscale  bool
	MinRefresh time.Duration
}

// NewDefaultOptions returns a fixed ±1500 mg axis.
func NewDefaultOptions() Options {
	return Options{
		Title:      "Real-time Accelerometer Data",
		YMin:       -1500,
		YMax:       1500,
		MinRefresh: 20 * time.Millisecond,
	}
}

// Nop discards everything. Used when no display is configured.
type Nop struct{}

func (Nop) Init() error                   { return nil }
func (Nop) Redraw(_ window.Snapshot) error { return nil }
func (Nop) Close() error                  { return nil }
