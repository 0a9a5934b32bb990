package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/clawinfra/herald/internal/config"
	"github.com/clawinfra/herald/internal/types"
)

const publishTimeout = 10 * time.Second

// PushChannel delivers notifications by publishing them to an MQTT topic.
// Without a broker URL it runs in console-only mode.
type PushChannel struct {
	cfg    *config.PushConfig
	logger *slog.Logger
	client MQTTClient
	out    io.Writer
}

// NewPush creates a new push channel adapter. The broker connection is
// established lazily on the first send.
func NewPush(cfg *config.PushConfig, logger *slog.Logger) *PushChannel {
	var client MQTTClient
	if cfg != nil && cfg.BrokerURL != "" {
		opts := mqtt.NewClientOptions()
		opts.AddBroker(cfg.BrokerURL)
		opts.SetClientID(cfg.ClientID)
		opts.SetConnectTimeout(publishTimeout)
		opts.SetAutoReconnect(true)
		client = &DefaultMQTTClient{client: mqtt.NewClient(opts)}
	}
	return NewPushWithClient(cfg, logger, client)
}

// NewPushWithClient creates a push channel with a custom MQTT client (for testing)
func NewPushWithClient(cfg *config.PushConfig, logger *slog.Logger, client MQTTClient) *PushChannel {
	if cfg == nil {
		cfg = &config.PushConfig{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PushChannel{
		cfg:    cfg,
		logger: logger.With("channel", "push"),
		client: client,
		out:    os.Stdout,
	}
}

// SetOutput redirects the observable delivery line (tests).
func (c *PushChannel) SetOutput(w io.Writer) { c.out = w }

func (c *PushChannel) Name() string { return "push" }

func (c *PushChannel) Kind() types.Kind { return types.KindPush }

func (c *PushChannel) Send(ctx context.Context, n types.Notification) error {
	emit(c.out, types.KindPush, n.Body)

	if c.client == nil {
		c.logger.Debug("no broker configured, console only", "to", n.To)
		return nil
	}

	if !c.client.IsConnected() {
		token := c.client.Connect()
		if !token.WaitTimeout(publishTimeout) {
			return fmt.Errorf("mqtt connect timeout after %v", publishTimeout)
		}
		if err := token.Error(); err != nil {
			return fmt.Errorf("mqtt connect: %w", err)
		}
	}

	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	topic := c.cfg.Topic
	if topic == "" {
		topic = "herald/push"
	}

	token := c.client.Publish(topic, byte(c.cfg.QoS), false, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("mqtt publish timeout after %v", publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish: %w", err)
	}

	c.logger.Debug("push published", "topic", topic, "qos", c.cfg.QoS)
	return nil
}

func (c *PushChannel) Close() error {
	if c.client != nil && c.client.IsConnected() {
		c.client.Disconnect(250)
	}
	return nil
}
