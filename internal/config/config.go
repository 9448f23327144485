// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package config

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// Input kinds.
const (
	InputTCP    = "tcp"
	InputSerial = "serial"
)

// Display kinds accepted in DISPLAYS.
const (
	DisplayTerminal = "terminal"
	DisplayWeb      = "web"
	DisplayOLED     = "oled"
	DisplayNone     = "none"
)

// Config holds all application configuration values.
type Config struct {
	// Sensor link
	ListenHost     string
	ListenPort     int
	Input          string // "tcp" or "serial"
	SerialPort     string
	SerialBaudRate int
	MaxLineLength  int // bytes, longer lines are discarded

	// Rolling window
	WindowSize int
	YMin       int // milli-g, visual clamp only
	YMax       int
	YAutoscale bool

	// Display
	Displays              []string
	DisplayUpdateInterval int // milliseconds
	DisplayI2CBus         string
	WebServerPort         int
	ChartExportPath       string

	// MQTT
	MQTTBroker          string // empty disables publishing
	MQTTClientIDPlotter string
	MQTTClientIDConsole string
	TopicAccel          string

	// Mock sensor
	MockSampleInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: only reachable through Get().
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: write lock for initialization, read lock for Get().
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Default returns the configuration used when no file is given. It matches
// the STM32 firmware defaults (port 8002, 100 samples, ±1500 mg).
func Default() *Config {
	return &Config{
		ListenHost:     "0.0.0.0",
		ListenPort:     8002,
		Input:          InputTCP,
		SerialPort:     "/dev/ttyACM0",
		SerialBaudRate: 115200,
		MaxLineLength:  4096,

		WindowSize: 100,
		YMin:       -1500,
		YMax:       1500,

		Displays:              []string{DisplayTerminal},
		DisplayUpdateInterval: 20,
		WebServerPort:         8080,

		MQTTClientIDPlotter: "accel-plotter",
		MQTTClientIDConsole: "accel-console",
		TopicAccel:          "accel/samples",

		MockSampleInterval: 100,
	}
}

// Load reads a KEY=VALUE configuration file on top of Default(). An empty
// path returns the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	values, err := godotenv.Read(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := cfg.setValue(key, strings.TrimSpace(values[key])); err != nil {
			return nil, fmt.Errorf("config %s: %w", configPath, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ListenAddr returns the host:port the sensor listener binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.ListenPort))
}

// HasDisplay reports whether kind is listed in DISPLAYS.
func (c *Config) HasDisplay(kind string) bool {
	for _, d := range c.Displays {
		if d == kind {
			return true
		}
	}
	return false
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Sensor link
	case "LISTEN_HOST":
		c.ListenHost = value
	case "LISTEN_PORT":
		port, err := parsePort(value)
		if err != nil {
			return fmt.Errorf("invalid LISTEN_PORT %q: %w", value, err)
		}
		c.ListenPort = port
	case "INPUT":
		v := strings.ToLower(value)
		if v != InputTCP && v != InputSerial {
			return fmt.Errorf("INPUT must be %q or %q, got %q", InputTCP, InputSerial, value)
		}
		c.Input = v
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD_RATE":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD_RATE %q: %w", value, err)
		}
		c.SerialBaudRate = rate
	case "MAX_LINE_LENGTH":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MAX_LINE_LENGTH %q: %w", value, err)
		}
		if n < 64 {
			return fmt.Errorf("MAX_LINE_LENGTH must be at least 64, got %d", n)
		}
		c.MaxLineLength = n

	// Rolling window
	case "WINDOW_SIZE":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid WINDOW_SIZE %q: %w", value, err)
		}
		if n <= 0 {
			return fmt.Errorf("WINDOW_SIZE must be positive, got %d", n)
		}
		c.WindowSize = n
	case "Y_MIN":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid Y_MIN %q: %w", value, err)
		}
		c.YMin = v
	case "Y_MAX":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid Y_MAX %q: %w", value, err)
		}
		c.YMax = v
	case "Y_AUTOSCALE":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid Y_AUTOSCALE %q: %w", value, err)
		}
		c.YAutoscale = v

	// Display
	case "DISPLAYS":
		displays, err := parseDisplays(value)
		if err != nil {
			return err
		}
		c.Displays = displays
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		if interval < 0 {
			return fmt.Errorf("DISPLAY_UPDATE_INTERVAL must not be negative, got %d", interval)
		}
		c.DisplayUpdateInterval = interval
	case "DISPLAY_I2C_BUS":
		c.DisplayI2CBus = value
	case "WEB_SERVER_PORT":
		port, err := parsePort(value)
		if err != nil {
			return fmt.Errorf("invalid WEB_SERVER_PORT %q: %w", value, err)
		}
		c.WebServerPort = port
	case "CHART_EXPORT_PATH":
		c.ChartExportPath = value

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PLOTTER":
		c.MQTTClientIDPlotter = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "TOPIC_ACCEL":
		c.TopicAccel = value

	// Mock sensor
	case "MOCK_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid MOCK_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.MockSampleInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks cross-field constraints.
func (c *Config) validate() error {
	if c.YMin >= c.YMax {
		return fmt.Errorf("Y_MIN (%d) must be below Y_MAX (%d)", c.YMin, c.YMax)
	}
	if c.Input == InputSerial {
		if c.SerialPort == "" {
			return fmt.Errorf("SERIAL_PORT is required when INPUT=serial")
		}
		if c.SerialBaudRate <= 0 {
			return fmt.Errorf("SERIAL_BAUD_RATE is required when INPUT=serial")
		}
	}
	if c.MQTTBroker != "" && c.TopicAccel == "" {
		return fmt.Errorf("TOPIC_ACCEL is required when MQTT_BROKER is set")
	}
	if c.MockSampleInterval <= 0 {
		return fmt.Errorf("MOCK_SAMPLE_INTERVAL must be positive, got %d", c.MockSampleInterval)
	}
	return nil
}

func parsePort(value string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("port out of range")
	}
	return port, nil
}

func parseDisplays(value string) ([]string, error) {
	var out []string
	for _, part := range strings.Split(value, ",") {
		d := strings.ToLower(strings.TrimSpace(part))
		switch d {
		case "":
			continue
		case DisplayNone:
			return nil, nil
		case DisplayTerminal, DisplayWeb, DisplayOLED:
			out = append(out, d)
		default:
			return nil, fmt.Errorf("unknown display %q in DISPLAYS", d)
		}
	}
	return out, nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
