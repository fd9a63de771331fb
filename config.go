package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MQTTConfig holds the optional MQTT bridge settings
type MQTTConfig struct {
	// Broker is the broker URL (e.g. "tcp://localhost:1883"); empty disables the bridge
	Broker string `yaml:"broker"`
	// ClientID identifies this daemon to the broker
	ClientID string `yaml:"client_id"`
	// Topic is the prefix readings are published under
	Topic string `yaml:"topic"`
	// Username and Password are the broker credentials (optional)
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Config holds the application configuration
type Config struct {
	// BindAddress is the address the server listens on (e.g. "0.0.0.0:8080")
	BindAddress string `yaml:"bind_address"`
	// SerialPort is the path to the adapter's serial port (e.g. "/dev/ttyUSB0")
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the baud rate for serial communication with the adapter (e.g. 38400)
	BaudRate int `yaml:"baud_rate"`
	// LogLevel sets the logging level (e.g. "debug", "info", "warn", "error")
	LogLevel string `yaml:"log_level"`
	// Protocol is the OBD protocol selector, a digit '0'-'9' ('0' = automatic)
	Protocol string `yaml:"protocol"`
	// PollSensors lists the sensor names polled continuously
	PollSensors []string `yaml:"poll_sensors"`
	// PollIntervalMs is the poll sweep period in milliseconds (0 = derived default)
	PollIntervalMs int `yaml:"poll_interval_ms"`
	// MQTT configures the optional readings bridge
	MQTT MQTTConfig `yaml:"mqtt"`
}

// ConfigOption is a function that modifies a Config
type ConfigOption func(*Config) error

// LoadConfig creates a new config by applying the given options in order
func LoadConfig(opts ...ConfigOption) (*Config, error) {
	config := &Config{}

	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	return config, nil
}

// WithDefaults applies default configuration values
func WithDefaults() ConfigOption {
	return func(c *Config) error {
		c.BindAddress = "0.0.0.0:8080"
		c.SerialPort = "/dev/ttyUSB0"
		c.BaudRate = 38400
		c.LogLevel = "info"
		c.Protocol = "0"
		c.PollSensors = []string{"rpm", "vss", "temp"}
		return nil
	}
}

// WithFile loads configuration from a YAML file; a missing path is skipped
func WithFile(path string) ConfigOption {
	return func(c *Config) error {
		if path == "" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse config file %s: %w", path, err)
		}
		return nil
	}
}

// WithEnv loads configuration from environment variables
func WithEnv() ConfigOption {
	return func(c *Config) error {
		if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
			c.BindAddress = addr
		}

		if serial := os.Getenv("SERIAL_PORT"); serial != "" {
			c.SerialPort = serial
		}

		if baud := os.Getenv("BAUD_RATE"); baud != "" {
			if b, err := strconv.Atoi(baud); err == nil {
				c.BaudRate = b
			}
		}

		if level := os.Getenv("LOG_LEVEL"); level != "" {
			c.LogLevel = level
		}

		if proto := os.Getenv("OBD_PROTOCOL"); proto != "" {
			c.Protocol = proto
		}

		if sensors := os.Getenv("POLL_SENSORS"); sensors != "" {
			c.PollSensors = splitSensors(sensors)
		}

		if broker := os.Getenv("MQTT_BROKER"); broker != "" {
			c.MQTT.Broker = broker
		}

		return nil
	}
}

// WithFlags loads configuration from command-line flags
func WithFlags(fSet *flag.FlagSet) ConfigOption {
	return func(c *Config) error {
		fSet.Visit(func(f *flag.Flag) {
			switch f.Name {
			case "bind-address":
				c.BindAddress = f.Value.String()
			case "serial-port":
				c.SerialPort = f.Value.String()
			case "baud-rate":
				if b, err := strconv.Atoi(f.Value.String()); err == nil {
					c.BaudRate = b
				}
			case "log-level":
				c.LogLevel = f.Value.String()
			case "protocol":
				c.Protocol = f.Value.String()
			case "poll-sensors":
				c.PollSensors = splitSensors(f.Value.String())
			case "mqtt-broker":
				c.MQTT.Broker = f.Value.String()
			}

		})
		return nil
	}

}

func splitSensors(s string) []string {
	var out []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
