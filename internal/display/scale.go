// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import "github.com/relabs-tech/accel_plotter/internal/window"

// bounds returns the y range to draw. With autoscale it follows the data
// plus a 5% margin, otherwise it is the fixed YMin..YMax.
func (o Options) bounds(snap window.Snapshot) (lo, hi int) {
	lo, hi = o.YMin, o.YMax
	if !o.Autoscale || snap.Len() == 0 {
		return lo, hi
	}

	lo, hi = snap.X[0], snap.X[0]
	for _, ch := range window.Channels {
		for _, v := range snap.Series(ch) {
			lo = min(lo, v)
			hi = max(hi, v)
		}
	}
	pad := (hi - lo) / 20
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}

// project maps v onto rows 0..rows-1, row 0 being hi.
func project(v, lo, hi, rows int) int {
	if rows <= 1 || hi <= lo {
		return 0
	}
	v = clamp(v, lo, hi)
	return (hi - v) * (rows - 1) / (hi - lo)
}

// resample stretches or squeezes series to exactly width points by linear
// interpolation.
func resample(series []int, width int) []int {
	out := make([]int, width)
	n := len(series)
	if n == 0 || width == 0 {
		return out
	}
	if n == 1 || width == 1 {
		for i := range out {
			out[i] = series[n-1]
		}
		return out
	}
	for i := range out {
		pos := float64(i) * float64(n-1) / float64(width-1)
		j := int(pos)
		if j >= n-1 {
			out[i] = series[n-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = series[j] + int(frac*float64(series[j+1]-series[j]))
	}
	return out
}
