package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openvehiclelab/elmlink/reader"
)

func main() {
	flag.String("serial-port", "/dev/ttyUSB0", "Serial port to connect to the adapter")
	flag.Int("baud-rate", 38400, "Baud rate for serial communication")
	flag.String("bind-address", "0.0.0.0:8080", "Bind address for the HTTP server")
	flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.String("protocol", "0", "OBD protocol selector, a digit 0-9 (0 = automatic)")
	flag.String("poll-sensors", "", "Comma-separated sensor names to poll continuously")
	flag.String("mqtt-broker", "", "MQTT broker URL for publishing readings (optional)")
	configFile := flag.String("config", "", "Path to YAML configuration file")
	flag.Parse()

	config, err := LoadConfig(WithDefaults(), WithFile(*configFile), WithEnv(), WithFlags(flag.CommandLine))
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logLevel := slog.LevelInfo
	switch config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	readerConfig, err := reader.NewConfigBuilder().
		WithProtocol(config.Protocol).
		WithDialer(reader.SerialDialer{
			PortName: config.SerialPort,
			BaudRate: config.BaudRate,
		}).
		Build()
	if err != nil {
		logger.Error("Failed to create reader config", "error", err)
		os.Exit(1)
	}

	r, err := reader.New(readerConfig)
	if err != nil {
		logger.Error("Failed to create reader", "error", err)
		os.Exit(1)
	}

	gateway, err := NewGateway(config.MQTT, r, logger.With("component", "mqtt"))
	if err != nil {
		logger.Error("Failed to connect MQTT broker", "error", err)
		os.Exit(1)
	}

	logger.Info("Starting OBD gateway", "port", config.SerialPort, "protocol", config.Protocol)

	if err := r.Connect(context.Background()); err != nil {
		logger.Error("Failed to connect to adapter", "error", err)
		os.Exit(1)
	}

	for _, name := range config.PollSensors {
		if err := r.AddPoller(name); err != nil {
			logger.Warn("Skipping unknown poll sensor", "name", name, "error", err)
		}
	}
	if len(r.Pollers()) > 0 {
		interval := time.Duration(config.PollIntervalMs) * time.Millisecond
		if err := r.StartPolling(interval); err != nil {
			logger.Error("Failed to start polling", "error", err)
			os.Exit(1)
		}
	}

	// Pump reader events into the log and the MQTT bridge.
	pumpCtx, stopPump := context.WithCancel(context.Background())
	go func() {
		for {
			select {
			case <-pumpCtx.Done():
				return
			case reply := <-r.Data():
				logger.Debug("Reading", "name", reply.Name, "value", reply.Value, "unit", reply.Unit)
				gateway.Publish(reply)
			case err := <-r.Errors():
				logger.Warn("Reader error", "error", err)
			case <-r.Connected():
				logger.Info("Adapter connection established")
			case msg := <-r.Debug():
				logger.Debug("Adapter trace", "message", msg)
			}
		}
	}()

	httpServer := &http.Server{
		Addr: config.BindAddress,
		Handler: &Server{
			Logger: logger.With("component", "server"),
			Reader: r,
		},
	}

	// Channel to listen for interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	sig := <-sigChan
	logger.Info("Received shutdown signal", "signal", sig)

	logger.Info("Closing adapter connection")
	if err := r.Close(); err != nil {
		logger.Error("Failed to close reader", "error", err)
	}
	stopPump()
	gateway.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Closing HTTP server")
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to gracefully shutdown server", "error", err)
		os.Exit(1)
	}
}
