package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/openvehiclelab/elmlink/reader"
)

// Gateway bridges the reader to an MQTT broker: decoded readings are
// published one topic per sensor name under the configured prefix, and
// poll-set commands are accepted on the prefix's "pollers" topic.
type Gateway struct {
	logger *slog.Logger
	client mqtt.Client
	topic  string
}

// NewGateway connects to the broker described by cfg. A nil Gateway is
// returned when no broker is configured; its methods are no-ops.
func NewGateway(cfg MQTTConfig, r *reader.Reader, logger *slog.Logger) (*Gateway, error) {
	if cfg.Broker == "" {
		return nil, nil
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "obd"
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetOrderMatters(false)
	opts.SetAutoReconnect(true)
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT connection lost", "error", err)
	})
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		logger.Info("MQTT connected", "broker", cfg.Broker)
		cmdTopic := topic + "/pollers"
		token := c.Subscribe(cmdTopic, 0, func(_ mqtt.Client, m mqtt.Message) {
			handlePollerCommand(r, logger, m.Payload())
		})
		if token.Wait() && token.Error() != nil {
			logger.Warn("MQTT subscribe failed", "error", token.Error(), "topic", cmdTopic)
		}
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect MQTT broker: %w", token.Error())
	}

	return &Gateway{logger: logger, client: client, topic: topic}, nil
}

// handlePollerCommand applies one poll-set command received over MQTT,
// e.g. {"action":"add","name":"rpm"}.
func handlePollerCommand(r *reader.Reader, logger *slog.Logger, payload []byte) {
	var cmd struct {
		Action string `json:"action"`
		Name   string `json:"name"`
	}
	if err := json.Unmarshal(payload, &cmd); err != nil {
		logger.Warn("Bad poller command payload", "error", err)
		return
	}

	var err error
	switch cmd.Action {
	case "add":
		err = r.AddPoller(cmd.Name)
	case "remove":
		err = r.RemovePoller(cmd.Name)
	default:
		logger.Warn("Unknown poller command action", "action", cmd.Action)
		return
	}
	if err != nil {
		logger.Warn("Poller command failed", "error", err, "action", cmd.Action, "name", cmd.Name)
		return
	}
	logger.Info("Poller command applied", "action", cmd.Action, "name", cmd.Name)
}

// Publish forwards one decoded reading. Only sensor readings and trouble
// code replies are bridged; status and unparsed frames stay local.
func (g *Gateway) Publish(reply reader.Reply) {
	if g == nil {
		return
	}

	var name string
	switch reply.Kind {
	case reader.KindSensor:
		name = reply.Name
	case reader.KindDTC:
		name = "dtc"
	default:
		return
	}

	payload, err := json.Marshal(reply)
	if err != nil {
		g.logger.Error("Failed to encode reading", "error", err)
		return
	}

	topic := g.topic + "/" + name
	if token := g.client.Publish(topic, 0, false, payload); token.Wait() && token.Error() != nil {
		g.logger.Warn("Failed to publish reading", "error", token.Error(), "topic", topic)
	}
}

// Close disconnects from the broker.
func (g *Gateway) Close() {
	if g == nil {
		return
	}
	g.client.Disconnect(500)
}
