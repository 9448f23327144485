// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"

	"github.com/relabs-tech/accel_plotter/internal/window"
)

const (
	minDisplayHeight = 10
	minDisplayWidth  = 30

	axisWidth   = 7 // "-1500 ┤"
	maxLogLines = 3
)

var channelStyles = [3]tcell.Style{
	tcell.StyleDefault.Foreground(tcell.ColorRed),
	tcell.StyleDefault.Foreground(tcell.ColorGreen),
	tcell.StyleDefault.Foreground(tcell.ColorBlue),
}

var channelLabels = [3]string{"Accel X", "Accel Y", "Accel Z"}

// Terminal draws a scrolling line chart on the local terminal. tcell takes
// over the terminal, so log output meant for the user should be written to
// the Terminal itself; the last lines are shown under the chart.
type Terminal struct {
	opts      Options
	newScreen func() (tcell.Screen, error)
	screen    tcell.Screen

	snapCh    chan window.Snapshot
	wakeCh    chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	dismissCh chan struct{}

	stopOnce    sync.Once
	dismissOnce sync.Once

	mu       sync.Mutex
	current  window.Snapshot
	logLines []string
	status   string

	drawDeadline time.Time
}

// NewTerminal creates a terminal display. Call Init before use.
func NewTerminal(opts Options) *Terminal {
	return &Terminal{
		opts:      opts,
		newScreen: tcell.NewScreen,
		snapCh:    make(chan window.Snapshot, 1),
		wakeCh:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
		dismissCh: make(chan struct{}),
	}
}

func (t *Terminal) Init() error {
	tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)

	screen, err := t.newScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}

	width, height := screen.Size()
	if width < minDisplayWidth || height < minDisplayHeight {
		screen.Fini()
		return ErrDisplayTooSmall{width: width, height: height}
	}
	t.screen = screen

	go t.pollLoop()
	go t.drawLoop()
	t.wake()

	return nil
}

// Redraw queues snap for drawing, replacing any snapshot not drawn yet.
func (t *Terminal) Redraw(snap window.Snapshot) error {
	if t.screen == nil {
		return ErrDisplayNotInitialized{}
	}
	select {
	case <-t.doneCh:
		return ErrDisplayClosed{}
	case <-t.dismissCh:
		return ErrDisplayInterrupt{}
	default:
	}

	for {
		select {
		case t.snapCh <- snap:
			return nil
		default:
		}
		select {
		case <-t.snapCh:
		default:
		}
	}
}

// Write keeps the last few log lines for the footer. It satisfies io.Writer
// so it can be handed to a log.Logger.
func (t *Terminal) Write(p []byte) (int, error) {
	t.mu.Lock()
	for _, line := range strings.Split(strings.TrimRight(string(p), "\n"), "\n") {
		t.logLines = append(t.logLines, line)
	}
	if len(t.logLines) > maxLogLines {
		t.logLines = t.logLines[len(t.logLines)-maxLogLines:]
	}
	t.mu.Unlock()

	t.wake()
	return len(p), nil
}

// Dismissed is closed when the user presses Esc, q or Ctrl-C.
func (t *Terminal) Dismissed() <-chan struct{} {
	return t.dismissCh
}

// Hold keeps the final chart on screen until the user dismisses it.
func (t *Terminal) Hold(ctx context.Context) error {
	t.mu.Lock()
	t.status = "connection closed, press Esc or q to exit"
	t.mu.Unlock()
	t.wake()

	select {
	case <-t.dismissCh:
		return nil
	case <-t.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *Terminal) Close() error {
	if t.screen == nil {
		return nil
	}
	t.stopOnce.Do(func() { close(t.stopCh) })
	<-t.doneCh
	return nil
}

func (t *Terminal) wake() {
	select {
	case t.wakeCh <- struct{}{}:
	default:
	}
}

func (t *Terminal) dismiss() {
	t.dismissOnce.Do(func() { close(t.dismissCh) })
}

// NOTE: tcell puts the terminal in raw mode, so Ctrl-C arrives here as a key
// event rather than as SIGINT.
func (t *Terminal) pollLoop() {
	for {
		event := t.screen.PollEvent()
		if event == nil {
			return
		}

		switch event := event.(type) {
		case *tcell.EventKey:
			switch {
			case event.Key() == tcell.KeyEscape, event.Key() == tcell.KeyCtrlC:
				t.dismiss()
			case event.Key() == tcell.KeyRune && (event.Rune() == 'q' || event.Rune() == 'Q'):
				t.dismiss()
			}
		case *tcell.EventResize:
			t.screen.Sync()
			t.wake()
		}
	}
}

func (t *Terminal) drawLoop() {
	defer close(t.doneCh)
	defer t.screen.Fini()

	for {
		select {
		case <-t.stopCh:
			return
		case <-t.wakeCh:
			t.draw()
		case snap := <-t.snapCh:
			t.mu.Lock()
			t.current = snap
			t.mu.Unlock()
			if !t.waitDeadline() {
				return
			}
			t.draw()
		}
	}
}

// waitDeadline enforces MinRefresh between frames. It reports false if the
// display was stopped while waiting.
func (t *Terminal) waitDeadline() bool {
	if t.opts.MinRefresh <= 0 {
		return true
	}
	defer func() {
		t.drawDeadline = time.Now().Add(t.opts.MinRefresh)
	}()

	wait := time.Until(t.drawDeadline)
	if wait <= 0 {
		return true
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-t.stopCh:
		return false
	}

	// Pick up anything that arrived while we waited.
	select {
	case snap := <-t.snapCh:
		t.mu.Lock()
		t.current = snap
		t.mu.Unlock()
	default:
	}
	return true
}

func (t *Terminal) draw() {
	t.mu.Lock()
	snap := t.current
	footer := append([]string(nil), t.logLines...)
	if t.status != "" {
		footer = append(footer, t.status)
	}
	t.mu.Unlock()

	drawChart(t.screen, t.opts, snap, footer)
	t.screen.Show()
}

// drawChart renders one full frame onto screen without showing it.
func drawChart(screen tcell.Screen, opts Options, snap window.Snapshot, footer []string) {
	screen.Clear()
	width, height := screen.Size()

	bold := tcell.StyleDefault.Bold(true)
	dim := tcell.StyleDefault.Dim(true)

	// Title and legend.
	title := opts.Title
	putString(screen, max(0, (width-runewidth.StringWidth(title))/2), 0, title, bold)

	x := axisWidth
	for i, label := range channelLabels {
		putString(screen, x, 1, "━━ "+label, channelStyles[i])
		x += runewidth.StringWidth(label) + 5
	}
	if snap.Pushed > 0 {
		latest := fmt.Sprintf("X=%d Y=%d Z=%d mg  n=%d", snap.Latest.X, snap.Latest.Y, snap.Latest.Z, snap.Pushed)
		putString(screen, max(x, width-runewidth.StringWidth(latest)-1), 1, latest, dim)
	}

	// Plot area.
	top := 2
	bottom := height - 3 - len(footer)
	rows := bottom - top + 1
	plotW := width - axisWidth - 1
	if rows < 3 || plotW < 2 {
		return
	}

	lo, hi := opts.bounds(snap)

	for _, v := range []int{hi, (hi + lo) / 2, lo} {
		row := top + project(v, lo, hi, rows)
		putString(screen, 0, row, fmt.Sprintf("%5d", v), dim)
	}
	for row := top; row <= bottom; row++ {
		screen.SetContent(axisWidth-1, row, '┤', nil, dim)
	}
	if lo < 0 && hi > 0 {
		zero := top + project(0, lo, hi, rows)
		for col := axisWidth; col < axisWidth+plotW; col++ {
			screen.SetContent(col, zero, '┈', nil, dim)
		}
	}

	for _, ch := range window.Channels {
		points := resample(snap.Series(ch), plotW)
		prev := -1
		for i, v := range points {
			row := project(v, lo, hi, rows)
			from, to := row, row
			if prev >= 0 {
				from, to = min(prev, row), max(prev, row)
			}
			for r := from; r <= to; r++ {
				screen.SetContent(axisWidth+i, top+r, '•', nil, channelStyles[ch])
			}
			prev = row
		}
	}

	// X axis.
	axisRow := bottom + 1
	for col := axisWidth; col < axisWidth+plotW; col++ {
		screen.SetContent(col, axisRow, '─', nil, dim)
	}
	putString(screen, axisWidth, axisRow+1, "0", dim)
	n := fmt.Sprintf("%d", snap.Len())
	putString(screen, axisWidth+plotW-runewidth.StringWidth(n), axisRow+1, n, dim)
	label := "Time (samples)   Acceleration (mg)"
	putString(screen, max(axisWidth, (width-runewidth.StringWidth(label))/2), axisRow+1, label, dim)

	for i, line := range footer {
		putString(screen, 0, axisRow+2+i, line, tcell.StyleDefault)
	}
}

func putString(screen tcell.Screen, x, y int, s string, style tcell.Style) {
	width, _ := screen.Size()
	for _, r := range s {
		if x >= width {
			return
		}
		screen.SetContent(x, y, r, nil, style)
		x += runewidth.RuneWidth(r)
	}
}
