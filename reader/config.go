package reader

import (
	"fmt"
	"time"

	"github.com/openvehiclelab/elmlink/elm"
	"github.com/openvehiclelab/elmlink/pid"
)

const (
	defaultDrainInterval     = 50 * time.Millisecond
	defaultQueueDepth        = 256
	defaultWriteFailureLimit = 3
	defaultProtocol          = "0" // automatic protocol detection
)

// Config holds the Reader configuration settings.
type Config struct {
	// Dialer opens the adapter transport on every Connect.
	Dialer Dialer
	// Table is the parameter metadata consulted for requests and decoding.
	Table pid.Table
	// Protocol is the initial protocol selector, a digit '0'-'9'.
	Protocol string
	// DrainInterval is the period of the queue drain timer. One command is
	// written per tick, which bounds the outbound rate regardless of how
	// fast the application enqueues.
	DrainInterval time.Duration
	// QueueDepth is the command queue capacity.
	QueueDepth int
	// WriteFailureLimit is how many consecutive write failures are treated
	// as connection loss.
	WriteFailureLimit int
}

func (c *Config) validate() error {
	if c.Dialer == nil {
		return ErrNoDialer
	}
	if !elm.IsProtocol(c.Protocol) {
		return fmt.Errorf("%w: %q", ErrInvalidProtocol, c.Protocol)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Table == nil {
		c.Table = pid.Default()
	}
	if c.Protocol == "" {
		c.Protocol = defaultProtocol
	}
	if c.DrainInterval == 0 {
		c.DrainInterval = defaultDrainInterval
	}
	if c.QueueDepth == 0 {
		c.QueueDepth = defaultQueueDepth
	}
	if c.WriteFailureLimit == 0 {
		c.WriteFailureLimit = defaultWriteFailureLimit
	}
}

// ConfigBuilder assembles a Config with defaults applied and validation
// performed at Build time.
type ConfigBuilder struct {
	cfg Config
}

func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{}
}

func (b *ConfigBuilder) WithDialer(d Dialer) *ConfigBuilder {
	b.cfg.Dialer = d
	return b
}

func (b *ConfigBuilder) WithTable(t pid.Table) *ConfigBuilder {
	b.cfg.Table = t
	return b
}

func (b *ConfigBuilder) WithProtocol(p string) *ConfigBuilder {
	b.cfg.Protocol = p
	return b
}

func (b *ConfigBuilder) WithDrainInterval(d time.Duration) *ConfigBuilder {
	b.cfg.DrainInterval = d
	return b
}

func (b *ConfigBuilder) WithQueueDepth(n int) *ConfigBuilder {
	b.cfg.QueueDepth = n
	return b
}

func (b *ConfigBuilder) WithWriteFailureLimit(n int) *ConfigBuilder {
	b.cfg.WriteFailureLimit = n
	return b
}

func (b *ConfigBuilder) Build() (Config, error) {
	cfg := b.cfg
	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
