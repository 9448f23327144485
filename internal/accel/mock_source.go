// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package accel

import (
	"math"
	"time"
)

type mockSource struct {
	start time.Time
	now   func() time.Time
}

// NewMockSource creates a mock sample source that generates smooth changing
// values, roughly what a board being tilted by hand looks like.
func NewMockSource() Source {
	return &mockSource{start: time.Now(), now: time.Now}
}

func (m *mockSource) Next() (Sample, error) {
	elapsed := m.now().Sub(m.start).Seconds()

	return Sample{
		X: int(math.Round(800 * math.Sin(elapsed))),
		Y: int(math.Round(600 * math.Cos(elapsed*0.7))),
		Z: int(math.Round(1000 - 150*math.Sin(elapsed*1.3))),
	}, nil
}
