// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"io"
	"os"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/relabs-tech/accel_plotter/internal/window"
)

const (
	exportWidth  = 1024
	exportHeight = 512
)

var exportColors = [3]drawing.Color{
	{R: 220, G: 40, B: 40, A: 255},
	{R: 40, G: 160, B: 40, A: 255},
	{R: 40, G: 80, B: 220, A: 255},
}

// ExportPNG renders snap as a line chart with the same axes as the live view.
func ExportPNG(w io.Writer, snap window.Snapshot, opts Options) error {
	n := snap.Len()
	if n < 2 {
		return fmt.Errorf("need at least 2 samples to plot, have %d", n)
	}

	xs := make([]float64, n)
	for i := range xs {
		xs[i] = float64(i)
	}

	series := make([]chart.Series, 0, len(window.Channels))
	for _, ch := range window.Channels {
		ys := make([]float64, n)
		for i, v := range snap.Series(ch) {
			ys[i] = float64(v)
		}
		series = append(series, chart.ContinuousSeries{
			Name:    channelLabels[ch],
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: exportColors[ch],
				StrokeWidth: 2,
			},
		})
	}

	lo, hi := opts.bounds(snap)
	graph := chart.Chart{
		Title:      opts.Title,
		Width:      exportWidth,
		Height:     exportHeight,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 16}},
		XAxis:      chart.XAxis{Name: "Time (samples)"},
		YAxis: chart.YAxis{
			Name:  "Acceleration (mg)",
			Range: &chart.ContinuousRange{Min: float64(lo), Max: float64(hi)},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

// ExportPNGFile writes ExportPNG output to path.
func ExportPNGFile(path string, snap window.Snapshot, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := ExportPNG(f, snap, opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
