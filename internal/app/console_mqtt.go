// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/accel_plotter/internal/config"
	"github.com/relabs-tech/accel_plotter/internal/publish"
)

// RunConsoleMQTT prints every sample the plotter publishes until ctx ends.
func RunConsoleMQTT(ctx context.Context) error {
	cfg := config.Get()
	if cfg == nil {
		return errors.New("config not initialized")
	}
	if cfg.MQTTBroker == "" {
		return errors.New("MQTT_BROKER is not set")
	}

	client, err := publish.Connect(cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	token := client.Subscribe(cfg.TopicAccel, 0, consoleHandler(os.Stdout))
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicAccel)

	<-ctx.Done()
	log.Println("console: shutting down")
	return nil
}

func consoleHandler(w io.Writer) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		line, err := formatMessage(msg.Payload())
		if err != nil {
			log.Printf("console: accel unmarshal error: %v", err)
			return
		}
		fmt.Fprintln(w, line)
	}
}

func formatMessage(payload []byte) (string, error) {
	var m publish.Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return "", err
	}
	return fmt.Sprintf(
		"[ACCEL %s #%d]  X=%6d  Y=%6d  Z=%6d mg",
		m.Session, m.Seq, m.X, m.Y, m.Z,
	), nil
}
