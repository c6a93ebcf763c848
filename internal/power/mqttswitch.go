// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package power

import (
	"context"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

const mqttOpTimeout = 5 * time.Second

// MQTTSwitch drives a smart plug over MQTT: commands are published to the
// command topic, state is tracked from retained messages on the state
// topic.
type MQTTSwitch struct {
	client       paho.Client
	commandTopic string
	stateTopic   string
	payloadOn    string
	payloadOff   string

	mu      sync.RWMutex
	state   string
	haveOne bool
}

// NewMQTTSwitch subscribes to the state topic. The client must already be
// connected.
func NewMQTTSwitch(client paho.Client, commandTopic, stateTopic, payloadOn, payloadOff string) (*MQTTSwitch, error) {
	s := &MQTTSwitch{
		client:       client,
		commandTopic: commandTopic,
		stateTopic:   stateTopic,
		payloadOn:    payloadOn,
		payloadOff:   payloadOff,
	}

	token := client.Subscribe(stateTopic, 0, func(_ paho.Client, msg paho.Message) {
		s.mu.Lock()
		s.state = string(msg.Payload())
		s.haveOne = true
		s.mu.Unlock()
	})
	if !token.WaitTimeout(mqttOpTimeout) {
		return nil, fmt.Errorf("timeout subscribing to %s", stateTopic)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", stateTopic, token.Error())
	}
	return s, nil
}

// State returns the last state seen on the state topic. Retained messages
// usually deliver one immediately after subscribe; until then State waits
// briefly rather than guessing.
func (s *MQTTSwitch) State(ctx context.Context) (bool, error) {
	deadline := time.After(mqttOpTimeout)
	for {
		s.mu.RLock()
		state, have := s.state, s.haveOne
		s.mu.RUnlock()
		if have {
			return state == s.payloadOn, nil
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline:
			return false, fmt.Errorf("no state received on %s", s.stateTopic)
		case <-time.After(50 * time.Millisecond):
		}
	}
}

func (s *MQTTSwitch) TurnOn(ctx context.Context) error {
	return s.publish(ctx, s.payloadOn)
}

func (s *MQTTSwitch) TurnOff(ctx context.Context) error {
	return s.publish(ctx, s.payloadOff)
}

func (s *MQTTSwitch) publish(ctx context.Context, payload string) error {
	token := s.client.Publish(s.commandTopic, 0, false, payload)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-token.Done():
		return token.Error()
	case <-time.After(mqttOpTimeout):
		return fmt.Errorf("timeout publishing to %s", s.commandTopic)
	}
}

// Close unsubscribes from the state topic.
func (s *MQTTSwitch) Close() error {
	token := s.client.Unsubscribe(s.stateTopic)
	token.WaitTimeout(mqttOpTimeout)
	return token.Error()
}
