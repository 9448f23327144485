// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package window keeps the fixed-width rolling window of samples that drives
// the scrolling chart.
package window

import (
	"fmt"
	"sync"

	"github.com/relabs-tech/accel_plotter/internal/accel"
)

// DefaultSize is the number of samples kept per channel.
const DefaultSize = 100

// Channel identifies one accelerometer axis.
type Channel int

const (
	X Channel = iota
	Y
	Z
)

// Channels lists all channels in display order.
var Channels = []Channel{X, Y, Z}

func (c Channel) String() string {
	switch c {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	default:
		return fmt.Sprintf("channel(%d)", int(c))
	}
}

// Snapshot is a consistent copy of the buffer contents. Series are ordered
// oldest first and always have the buffer's full length.
type Snapshot struct {
	X      []int        `json:"x"`
	Y      []int        `json:"y"`
	Z      []int        `json:"z"`
	Pushed uint64       `json:"pushed"`
	Latest accel.Sample `json:"latest"`
}

// Series returns the values of one channel.
func (s Snapshot) Series(ch Channel) []int {
	switch ch {
	case X:
		return s.X
	case Y:
		return s.Y
	case Z:
		return s.Z
	default:
		return nil
	}
}

// Len returns the window length.
func (s Snapshot) Len() int { return len(s.X) }

// Buffer holds three parallel ring buffers of equal capacity. All three are
// shifted together under one lock, so readers never see a half-applied sample.
type Buffer struct {
	mu     sync.RWMutex
	size   int
	head   int // index of the oldest value
	series [3][]int
	pushed uint64
	latest accel.Sample
}

// NewBuffer creates a zero-filled buffer holding size values per channel.
func NewBuffer(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("window size must be positive, got %d", size)
	}
	b := &Buffer{size: size}
	for i := range b.series {
		b.series[i] = make([]int, size)
	}
	return b, nil
}

// Push appends one sample to every channel and drops the oldest value.
func (b *Buffer) Push(s accel.Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.series[X][b.head] = s.X
	b.series[Y][b.head] = s.Y
	b.series[Z][b.head] = s.Z
	b.head = (b.head + 1) % b.size
	b.pushed++
	b.latest = s
}

// Snapshot copies the current window contents, oldest first.
func (b *Buffer) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return Snapshot{
		X:      b.unroll(X),
		Y:      b.unroll(Y),
		Z:      b.unroll(Z),
		Pushed: b.pushed,
		Latest: b.latest,
	}
}

// Series copies one channel, oldest first.
func (b *Buffer) Series(ch Channel) []int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.unroll(ch)
}

// Len returns the fixed number of values per channel.
func (b *Buffer) Len() int { return b.size }

// Pushed returns how many samples have been pushed since creation.
func (b *Buffer) Pushed() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.pushed
}

// unroll must be called with b.mu held.
func (b *Buffer) unroll(ch Channel) []int {
	src := b.series[ch]
	out := make([]int, 0, b.size)
	out = append(out, src[b.head:]...)
	return append(out, src[:b.head]...)
}
