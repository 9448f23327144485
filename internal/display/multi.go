// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"context"
	"errors"
	"fmt"

	"github.com/relabs-tech/accel_plotter/internal/window"
)

// Multi drives several displays as one.
type Multi []Display

// Init initializes every display in order. If one fails, those already
// initialized are closed again.
func (m Multi) Init() error {
	for i, d := range m {
		if err := d.Init(); err != nil {
			for j := i - 1; j >= 0; j-- {
				m[j].Close()
			}
			return fmt.Errorf("display %d: %w", i, err)
		}
	}
	return nil
}

// Redraw hands snap to every display, even if an earlier one fails.
func (m Multi) Redraw(snap window.Snapshot) error {
	var errs []error
	for _, d := range m {
		if err := d.Redraw(snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for i := len(m) - 1; i >= 0; i-- {
		if err := m[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Hold blocks until the first holding display is dismissed, then releases
// the others. It returns immediately when no display can hold.
func (m Multi) Hold(ctx context.Context) error {
	var holders []Holder
	for _, d := range m {
		if h, ok := d.(Holder); ok {
			holders = append(holders, h)
		}
	}
	if len(holders) == 0 {
		return nil
	}

	holdCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan error, len(holders))
	for _, h := range holders {
		h := h
		go func() { results <- h.Hold(holdCtx) }()
	}

	first := <-results
	cancel()
	for i := 0; i < len(holders)-1; i++ {
		<-results
	}

	if first != nil && ctx.Err() == nil && errors.Is(first, context.Canceled) {
		return nil
	}
	return first
}
