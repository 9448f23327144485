// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/tebeka/atexit"

	"github.com/relabs-tech/accel_plotter/internal/config"
	"github.com/relabs-tech/accel_plotter/internal/display"
	"github.com/relabs-tech/accel_plotter/internal/ingest"
	"github.com/relabs-tech/accel_plotter/internal/metrics"
	"github.com/relabs-tech/accel_plotter/internal/publish"
	"github.com/relabs-tech/accel_plotter/internal/window"
)

// I2C at 400kHz cannot push a full frame much faster than this.
const oledMinPeriod = 250 * time.Millisecond

// RunPlotter receives one sensor stream and plots it until the stream ends
// and the user dismisses the chart, or ctx is cancelled.
func RunPlotter(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}
	return runPlotter(ctx, cfg, nil)
}

// runPlotter does the work of RunPlotter. ready, if set, is called with the
// sensor listener address once it is bound.
func runPlotter(ctx context.Context, cfg *config.Config, ready func(net.Addr)) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	buf, err := window.NewBuffer(cfg.WindowSize)
	if err != nil {
		return err
	}
	collector := metrics.New()

	opts := displayOptions(cfg)
	disp, term := buildDisplays(cfg, opts, collector)
	if err := disp.Init(); err != nil {
		return fmt.Errorf("failed to initialize display: %w", err)
	}
	defer func() {
		if err := disp.Close(); err != nil {
			log.Printf("display: close error: %v", err)
		}
	}()

	logger := log.New(os.Stdout, "", log.LstdFlags)
	if term != nil {
		// tcell owns the terminal now.
		logger = log.New(term, "", log.Ltime)
		log.SetOutput(term)
		defer log.SetOutput(os.Stderr)

		go func() {
			select {
			case <-term.Dismissed():
				cancel()
			case <-ctx.Done():
			}
		}()
	}

	sinks := []ingest.SampleSink{collector}
	if cfg.MQTTBroker != "" {
		client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDPlotter)
		if err != nil {
			return fmt.Errorf("failed to connect to MQTT broker: %w", err)
		}
		pub := publish.NewPublisher(client, cfg.TopicAccel)
		atexit.Register(pub.Close)
		logger.Printf("publish: session %s on %s", pub.Session(), cfg.TopicAccel)
		sinks = append(sinks, pub)
	}

	loopOpts := ingest.LoopOptions{
		MaxLineLength: cfg.MaxLineLength,
		Display:       disp,
		Sinks:         sinks,
		Observer:      collector,
		Logger:        logger,
	}

	var (
		stats  ingest.Stats
		runErr error
	)
	switch cfg.Input {
	case config.InputSerial:
		port, err := ingest.OpenSerial(cfg.SerialPort, cfg.SerialBaudRate)
		if err != nil {
			return err
		}
		logger.Printf("ingest: reading %s at %d baud", cfg.SerialPort, cfg.SerialBaudRate)
		if ready != nil {
			ready(nil)
		}
		stats, runErr = ingest.ServeStream(ctx, port, buf, loopOpts)

	default:
		session := ingest.NewSession(cfg.ListenAddr(), buf, loopOpts)
		if err := session.Listen(ctx); err != nil {
			return err
		}
		if ready != nil {
			ready(session.Addr())
		}
		runErr = session.Serve(ctx)
		stats = session.Stats()
	}

	logger.Printf("ingest: %d lines, %d accepted, %d rejected, %d ignored, %d display errors",
		stats.Lines, stats.Accepted, stats.Rejected, stats.Ignored, stats.DisplayErrors)

	if cfg.ChartExportPath != "" {
		if err := display.ExportPNGFile(cfg.ChartExportPath, buf.Snapshot(), opts); err != nil {
			logger.Printf("display: chart export failed: %v", err)
		} else {
			logger.Printf("display: chart written to %s", cfg.ChartExportPath)
		}
	}

	if errors.Is(runErr, context.Canceled) {
		return nil
	}

	// Keep the final window visible, whatever ended the stream.
	if err := disp.Hold(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Printf("display: hold: %v", err)
	}
	return runErr
}

func displayOptions(cfg *config.Config) display.Options {
	opts := display.NewDefaultOptions()
	opts.YMin = cfg.YMin
	opts.YMax = cfg.YMax
	opts.Autoscale = cfg.YAutoscale
	opts.MinRefresh = time.Duration(cfg.DisplayUpdateInterval) * time.Millisecond
	return opts
}

// buildDisplays returns the configured displays and, if one of them is the
// terminal, that terminal.
func buildDisplays(cfg *config.Config, opts display.Options, collector *metrics.Collector) (display.Multi, *display.Terminal) {
	var (
		multi display.Multi
		term  *display.Terminal
	)
	for _, kind := range cfg.Displays {
		switch kind {
		case config.DisplayTerminal:
			term = display.NewTerminal(opts)
			multi = append(multi, term)
		case config.DisplayWeb:
			addr := net.JoinHostPort("", strconv.Itoa(cfg.WebServerPort))
			multi = append(multi, display.NewWeb(addr, opts, collector.Handler()))
		case config.DisplayOLED:
			multi = append(multi, display.NewOLED(opts, cfg.DisplayI2CBus, max(opts.MinRefresh, oledMinPeriod)))
		}
	}
	if len(multi) == 0 {
		multi = display.Multi{display.Nop{}}
	}
	return multi, term
}
