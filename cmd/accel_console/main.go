// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/relabs-tech/accel_plotter/internal/app"
	"github.com/relabs-tech/accel_plotter/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "accel_console",
	Short: "Print samples published by accel_plotter over MQTT",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cmd.SilenceUsage = true

		log.Println("starting accel console (MQTT subscriber)")
		if err := config.InitGlobal(configPath); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return app.RunConsoleMQTT(ctx)
	},
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "KEY=VALUE configuration file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("fatal: %v", err)
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
