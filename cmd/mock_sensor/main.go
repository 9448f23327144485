// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/relabs-tech/accel_plotter/internal/app"
	"github.com/relabs-tech/accel_plotter/internal/config"
)

var (
	configPath string
	host       string
	count      int
)

var rootCmd = &cobra.Command{
	Use:   "mock_sensor",
	Short: "Stream generated accelerometer records to accel_plotter",
	Long: `mock_sensor stands in for the STM32: it connects to the plotter's ` +
		`listen port and sends one "Accel: X=.. Y=.. Z=.." line per interval.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		if err := config.InitGlobal(configPath); err != nil {
			return err
		}
		cfg := config.Get()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return app.RunMockSensor(ctx, app.MockSensorOptions{
			Addr:     net.JoinHostPort(host, strconv.Itoa(cfg.ListenPort)),
			Interval: time.Duration(cfg.MockSampleInterval) * time.Millisecond,
			Count:    count,
		})
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "KEY=VALUE configuration file")
	rootCmd.Flags().StringVar(&host, "host", "127.0.0.1", "plotter host to connect to")
	rootCmd.Flags().IntVarP(&count, "count", "n", 0, "number of samples to send, 0 for no limit")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("fatal: %v", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
