// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"github.com/relabs-tech/accel_plotter/internal/accel"
)

// MockSensorOptions configures RunMockSensor.
type MockSensorOptions struct {
	Addr     string
	Interval time.Duration
	Count    int // 0 streams until ctx ends
	Source   accel.Source
}

// RunMockSensor connects to the plotter like the STM32 would and streams
// generated samples, one record per line.
func RunMockSensor(ctx context.Context, opts MockSensorOptions) error {
	src := opts.Source
	if src == nil {
		src = accel.NewMockSource()
	}
	interval := opts.Interval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", opts.Addr, err)
	}
	defer conn.Close()
	log.Printf("mock: connected to %s", opts.Addr)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for sent := 0; opts.Count == 0 || sent < opts.Count; sent++ {
		s, err := src.Next()
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(conn, "%s\n", s.Line()); err != nil {
			return fmt.Errorf("failed to send sample: %w", err)
		}

		select {
		case <-ctx.Done():
			log.Printf("mock: stopping after %d samples", sent+1)
			return nil
		case <-ticker.C:
		}
	}

	log.Printf("mock: sent %d samples", opts.Count)
	return nil
}
