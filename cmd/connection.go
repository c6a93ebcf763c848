// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2025 Fanlink Authors

package cmd

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"syscall"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"
	"go.bug.st/serial"
	"golang.org/x/term"

	"github.com/tr198a/fanlink/internal/config"
	"github.com/tr198a/fanlink/pkg/tr198a"
)

// Transmitter delivers an encoded packet to a blaster or bridge.
type Transmitter interface {
	Transmit(packet []byte) error
	io.Closer
}

// SerialTransmitter writes raw packet bytes to a TTY-attached blaster.
type SerialTransmitter struct {
	port serial.Port
}

func (s *SerialTransmitter) Transmit(packet []byte) error {
	_, err := s.port.Write(packet)
	return err
}

func (s *SerialTransmitter) Close() error {
	return s.port.Close()
}

// WebSocketTransmitter sends packets as binary frames to a bridge.
type WebSocketTransmitter struct {
	conn *websocket.Conn
}

func (w *WebSocketTransmitter) Transmit(packet []byte) error {
	return w.conn.WriteMessage(websocket.BinaryMessage, packet)
}

func (w *WebSocketTransmitter) Close() error {
	return w.conn.Close()
}

// MQTTTransmitter publishes the b64: text form to a command topic, for
// OpenMQTTGateway-style RF bridges.
type MQTTTransmitter struct {
	client paho.Client
	topic  string
}

func (m *MQTTTransmitter) Transmit(packet []byte) error {
	token := m.client.Publish(m.topic, 0, false, tr198a.WrapBase64(packet))
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("timeout publishing to %s", m.topic)
	}
	return token.Error()
}

func (m *MQTTTransmitter) Close() error {
	m.client.Disconnect(250)
	return nil
}

// OpenSerialTransmitter opens a serial port transmitter
func OpenSerialTransmitter(portName string, baudRate int) (Transmitter, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %v", portName, err)
	}

	return &SerialTransmitter{port: port}, nil
}

// OpenWebSocketTransmitter opens a WebSocket connection with HTTP Basic auth
func OpenWebSocketTransmitter(wsURL, username, password string, skipSSLVerify bool) (Transmitter, error) {
	u, err := url.Parse(wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %v", err)
	}

	switch u.Scheme {
	case "ws", "wss":
		// OK
	default:
		return nil, fmt.Errorf("unsupported URL scheme: %s (use ws:// or wss://)", u.Scheme)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	if u.Scheme == "wss" {
		dialer.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: skipSSLVerify,
		}
	}

	headers := http.Header{}
	if username != "" && password != "" {
		credentials := base64.StdEncoding.EncodeToString([]byte(username + ":" + password))
		headers.Set("Authorization", "Basic "+credentials)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	conn, resp, err := dialer.DialContext(ctx, wsURL, headers)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("WebSocket connection failed (HTTP %d): %v", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("WebSocket connection failed: %v", err)
	}

	return &WebSocketTransmitter{conn: conn}, nil
}

// ConnectMQTT connects a paho client to the broker.
func ConnectMQTT(broker, clientID string) (paho.Client, error) {
	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(10 * time.Second)

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("timeout connecting to MQTT broker %s", broker)
	}
	if token.Error() != nil {
		return nil, fmt.Errorf("MQTT connection failed: %v", token.Error())
	}
	return client, nil
}

// OpenMQTTTransmitter connects to the broker and publishes to the command
// topic.
func OpenMQTTTransmitter(broker, clientID, topic string) (Transmitter, error) {
	client, err := ConnectMQTT(broker, clientID)
	if err != nil {
		return nil, err
	}
	return &MQTTTransmitter{client: client, topic: topic}, nil
}

// GetPassword retrieves password from environment or prompts user
func GetPassword() (string, error) {
	// First check environment variable
	if pw := os.Getenv("FANLINK_PASSWORD"); pw != "" {
		return pw, nil
	}

	// Prompt user for password (hide input)
	fmt.Fprint(os.Stderr, "Password: ")

	passwordBytes, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fallback to regular input if terminal functions fail
		reader := bufio.NewReader(os.Stdin)
		password, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read password: %v", err)
		}
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(password), nil
	}

	fmt.Fprintln(os.Stderr)
	return string(passwordBytes), nil
}

// OpenTransmitter opens a transmitter based on the effective settings,
// trying serial, then WebSocket, then MQTT.
func OpenTransmitter(cfg *config.Config) (Transmitter, string, error) {
	if cfg.Serial.Port != "" {
		tx, err := OpenSerialTransmitter(cfg.Serial.Port, cfg.Serial.Baud)
		if err != nil {
			return nil, "", err
		}
		return tx, fmt.Sprintf("Serial: %s @ %d baud", cfg.Serial.Port, cfg.Serial.Baud), nil
	}

	if cfg.WebSocket.URL != "" {
		password := ""
		if cfg.WebSocket.Username != "" {
			var err error
			password, err = GetPassword()
			if err != nil {
				return nil, "", err
			}
		}

		tx, err := OpenWebSocketTransmitter(cfg.WebSocket.URL, cfg.WebSocket.Username, password, cfg.WebSocket.NoSSLVerify)
		if err != nil {
			return nil, "", err
		}
		return tx, fmt.Sprintf("WebSocket: %s", cfg.WebSocket.URL), nil
	}

	if cfg.MQTT.Broker != "" {
		tx, err := OpenMQTTTransmitter(cfg.MQTT.Broker, cfg.MQTT.ClientID, cfg.MQTT.CommandTopic)
		if err != nil {
			return nil, "", err
		}
		return tx, fmt.Sprintf("MQTT: %s topic %s", cfg.MQTT.Broker, cfg.MQTT.CommandTopic), nil
	}

	return nil, "", fmt.Errorf("no transmitter: use --port, --url or --broker (or the config file)")
}
