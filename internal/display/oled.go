// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package display

import (
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/devices/v3/ssd1306"
	"periph.io/x/devices/v3/ssd1306/image1bit"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/accel_plotter/internal/window"
)

const (
	oledWidth  = 128
	oledHeight = 64

	// Rows 0..sparkTop-1 hold text, the rest is the Z sparkline.
	sparkTop = 40
)

// OLED mirrors the latest sample and a sparkline of the Z channel on an
// SSD1306 128x64 panel over I2C.
type OLED struct {
	opts    Options
	busName string
	period  time.Duration

	bus i2c.BusCloser
	dev *ssd1306.Dev

	mu    sync.Mutex
	snap  window.Snapshot
	dirty bool

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

// NewOLED creates an OLED display on busName ("" for the first bus). The
// panel is refreshed at most once per period.
func NewOLED(opts Options, busName string, period time.Duration) *OLED {
	if period <= 0 {
		period = 500 * time.Millisecond
	}
	return &OLED{
		opts:    opts,
		busName: busName,
		period:  period,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (o *OLED) Init() error {
	if _, err := host.Init(); err != nil {
		return fmt.Errorf("failed to initialize periph: %w", err)
	}

	bus, err := i2creg.Open(o.busName)
	if err != nil {
		return fmt.Errorf("failed to open I2C bus: %w", err)
	}

	dev, err := ssd1306.NewI2C(bus, &ssd1306.DefaultOpts)
	if err != nil {
		bus.Close()
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	log.Printf("display: oled initialized on %s", bus)

	o.bus = bus
	o.dev = dev

	if err := dev.Draw(dev.Bounds(), renderOLED(window.Snapshot{}, o.opts), image.Point{}); err != nil {
		log.Printf("display: error showing splash: %v", err)
	}

	go o.run()
	return nil
}

// Redraw records snap; the panel picks it up on its next tick.
func (o *OLED) Redraw(snap window.Snapshot) error {
	if o.dev == nil {
		return ErrDisplayNotInitialized{}
	}
	select {
	case <-o.done:
		return ErrDisplayClosed{}
	default:
	}

	o.mu.Lock()
	o.snap = snap
	o.dirty = true
	o.mu.Unlock()
	return nil
}

func (o *OLED) Close() error {
	if o.dev == nil {
		return nil
	}
	o.once.Do(func() { close(o.stop) })
	<-o.done

	err := o.dev.Halt()
	if cerr := o.bus.Close(); err == nil {
		err = cerr
	}
	return err
}

func (o *OLED) run() {
	defer close(o.done)

	ticker := time.NewTicker(o.period)
	defer ticker.Stop()

	for {
		select {
		case <-o.stop:
			return
		case <-ticker.C:
		}

		o.mu.Lock()
		snap, dirty := o.snap, o.dirty
		o.dirty = false
		o.mu.Unlock()
		if !dirty {
			continue
		}

		if err := o.dev.Draw(o.dev.Bounds(), renderOLED(snap, o.opts), image.Point{}); err != nil {
			log.Printf("display: error updating oled: %v", err)
		}
	}
}

// renderOLED draws one frame for the panel.
func renderOLED(snap window.Snapshot, opts Options) *image1bit.VerticalLSB {
	img := image1bit.NewVerticalLSB(image.Rect(0, 0, oledWidth, oledHeight))

	drawer := &font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{image1bit.On},
		Face: basicfont.Face7x13,
	}

	if snap.Pushed == 0 {
		drawer.Dot = fixed.P(10, 26)
		drawer.DrawBytes([]byte("Accel Plotter"))
		drawer.Dot = fixed.P(5, 43)
		drawer.DrawBytes([]byte("Waiting..."))
		return img
	}

	drawer.Dot = fixed.P(0, 12)
	drawer.DrawBytes([]byte(fmt.Sprintf("X:%5d Y:%5d", snap.Latest.X, snap.Latest.Y)))
	drawer.Dot = fixed.P(0, 26)
	drawer.DrawBytes([]byte(fmt.Sprintf("Z:%5d mg", snap.Latest.Z)))
	drawer.Dot = fixed.P(0, 38)
	drawer.DrawBytes([]byte(fmt.Sprintf("n=%d", snap.Pushed)))

	lo, hi := opts.bounds(snap)
	rows := oledHeight - sparkTop
	for x, v := range resample(snap.Series(window.Z), oledWidth) {
		img.SetBit(x, sparkTop+project(v, lo, hi, rows), image1bit.On)
	}
	return img
}
