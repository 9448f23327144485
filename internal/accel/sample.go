// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package accel

import "fmt"

// Sample represents a single accelerometer reading in milli-g.
type Sample struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Line renders the sample the way the sensor firmware sends it, without the
// trailing newline.
func (s Sample) Line() string {
	return fmt.Sprintf("Accel: X=%d Y=%d Z=%d", s.X, s.Y, s.Z)
}

// Source is anything that can provide samples over time.
type Source interface {
	Next() (Sample, error)
}
