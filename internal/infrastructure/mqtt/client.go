package mqtt

import (
	"context"
	"fmt"
	"sync"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/akuaponik-iot/gateway/internal/infrastructure/config"
)

// Client wraps paho.mqtt.golang for the gateway.
//
// The broker is an external collaborator the gateway must survive without:
// an unreachable broker at startup, a dropped connection, or a reconnect
// storm are logged and never returned as fatal errors. paho's auto-reconnect
// governs retry and backoff.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
//   - Subscriptions are applied on every (re)connect.
type Client struct {
	client pahomqtt.Client
	cfg    config.MQTTConfig
	logger Logger

	// subscriptions tracks wanted subscriptions so they can be applied on connect.
	subscriptions map[string]subscription
	subMu         sync.RWMutex

	// connected tracks current connection state.
	connected bool
	connMu    sync.RWMutex
}

// Logger is the subset of logging.Logger the client needs.
type Logger interface {
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// subscription holds subscription details for re-subscription on reconnect.
type subscription struct {
	topic   string
	qos     byte
	handler MessageHandler
}

// MessageHandler is the callback signature for received messages.
//
// Handlers are invoked in separate goroutines by the paho library.
// A returned error is logged; the message is not redelivered.
type MessageHandler func(topic string, payload []byte) error

// Connect creates a client and starts connecting to the broker.
//
// It waits up to defaultConnectTimeout for the first connection. If the
// broker is not reachable in that window the client is still returned and
// keeps retrying in the background; Subscribe calls made meanwhile are
// applied once the connection comes up.
//
// Parameters:
//   - cfg: MQTT configuration from config.yaml
//   - logger: Destination for connection lifecycle events
//
// Returns:
//   - *Client: Client that is connected or retrying
//   - error: Only if the configuration cannot describe a broker
func Connect(cfg config.MQTTConfig, logger Logger) (*Client, error) {
	if cfg.Broker.Host == "" {
		return nil, fmt.Errorf("%w: broker host is required", ErrConnectionFailed)
	}

	c := newClient(cfg, logger)

	opts := buildClientOptions(cfg)
	opts.SetOnConnectHandler(func(_ pahomqtt.Client) {
		c.handleConnect()
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		c.handleDisconnect(err)
	})
	opts.SetReconnectingHandler(func(_ pahomqtt.Client, _ *pahomqtt.ClientOptions) {
		c.logger.Info("reconnecting to MQTT broker", "broker", brokerURL(cfg))
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(defaultConnectTimeout) {
		c.logger.Warn("MQTT broker not reachable yet, retrying in background",
			"broker", brokerURL(cfg),
			"waited", defaultConnectTimeout,
		)
		return c, nil
	}
	if err := token.Error(); err != nil {
		c.logger.Warn("MQTT initial connection failed, retrying in background",
			"broker", brokerURL(cfg),
			"error", err,
		)
		return c, nil
	}

	// The OnConnect handler runs asynchronously, so record the state here
	// for callers that check IsConnected straight after Connect.
	c.setConnected(true)

	return c, nil
}

func newClient(cfg config.MQTTConfig, logger Logger) *Client {
	return &Client{
		cfg:           cfg,
		logger:        logger,
		subscriptions: make(map[string]subscription),
	}
}

// handleConnect is called on the initial connection and on every reconnect.
func (c *Client) handleConnect() {
	c.setConnected(true)
	c.logger.Info("connected to MQTT broker", "broker", brokerURL(c.cfg))

	c.restoreSubscriptions()
}

// handleDisconnect is called when the connection is lost.
func (c *Client) handleDisconnect(err error) {
	c.setConnected(false)
	c.logger.Warn("MQTT connection lost, client offline", "error", err)
}

// restoreSubscriptions applies every tracked subscription and logs the outcome.
func (c *Client) restoreSubscriptions() {
	c.subMu.RLock()
	subs := make([]subscription, 0, len(c.subscriptions))
	for _, sub := range c.subscriptions {
		subs = append(subs, sub)
	}
	c.subMu.RUnlock()

	for _, sub := range subs {
		if err := c.subscribe(sub); err != nil {
			c.logger.Error("MQTT subscription failed", "topic", sub.topic, "error", err)
			continue
		}
		c.logger.Info("subscribed to MQTT topic", "topic", sub.topic, "qos", sub.qos)
	}
}

// Close disconnects from the broker, allowing pending operations to finish
// within the quiesce period. Calling Close on a client that never connected
// is safe.
func (c *Client) Close() error {
	if c.client == nil {
		return nil
	}

	c.client.Disconnect(defaultDisconnectQuiesce)
	c.setConnected(false)

	return nil
}

// HealthCheck reports whether the broker connection is up.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: nil if healthy, error describing the issue otherwise
func (c *Client) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("mqtt health check: %w", ctx.Err())
	default:
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	return nil
}

// IsConnected returns the current connection state.
func (c *Client) IsConnected() bool {
	c.connMu.RLock()
	defer c.connMu.RUnlock()
	return c.connected && c.client != nil && c.client.IsConnected()
}

func (c *Client) setConnected(v bool) {
	c.connMu.Lock()
	c.connected = v
	c.connMu.Unlock()
}

// wrapHandler wraps a MessageHandler with panic recovery and error logging.
func (c *Client) wrapHandler(handler MessageHandler) pahomqtt.MessageHandler {
	return func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("MQTT handler panic recovered",
					"topic", msg.Topic(),
					"panic", r,
				)
			}
		}()

		if err := handler(msg.Topic(), msg.Payload()); err != nil {
			c.logger.Warn("MQTT handler returned error",
				"topic", msg.Topic(),
				"error", err,
			)
		}
	}
}
