// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package publish forwards accepted samples to an MQTT broker.
package publish

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/xid"

	"github.com/relabs-tech/accel_plotter/internal/accel"
)

const publishTimeout = 2 * time.Second

var ErrPublishTimeout = errors.New("mqtt publish timed out")

// Message is the JSON payload sent for every sample.
type Message struct {
	Session string `json:"session"`
	Seq     uint64 `json:"seq"`
	accel.Sample
	Time time.Time `json:"time"`
}

// Publisher sends samples to one topic, retained so late subscribers see
// the latest value.
type Publisher struct {
	client  mqtt.Client
	topic   string
	session string
	seq     atomic.Uint64
	now     func() time.Time
}

// NewPublisher wraps a connected client. Every Publisher gets its own
// session id so subscribers can tell sensor runs apart.
func NewPublisher(client mqtt.Client, topic string) *Publisher {
	return &Publisher{
		client:  client,
		topic:   topic,
		session: xid.New().String(),
		now:     time.Now,
	}
}

// Session returns the id stamped on every message.
func (p *Publisher) Session() string {
	return p.session
}

func (p *Publisher) Publish(s accel.Sample) error {
	payload, err := json.Marshal(Message{
		Session: p.session,
		Seq:     p.seq.Add(1),
		Sample:  s,
		Time:    p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal sample: %w", err)
	}

	token := p.client.Publish(p.topic, 0, true, payload)
	if !token.WaitTimeout(publishTimeout) {
		return ErrPublishTimeout
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", p.topic, err)
	}
	return nil
}

// Close disconnects the underlying client.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}

// Connect opens a client to broker.
func Connect(broker, clientID string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	log.Printf("publish: connected to MQTT broker at %s", broker)
	return client, nil
}
