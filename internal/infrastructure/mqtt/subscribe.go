package mqtt

import (
	"fmt"
)

// Subscribe registers a handler for messages on the specified topic.
//
// The subscription is tracked and applied on every connect, so it survives
// reconnects. When the client is offline the call succeeds immediately and
// the subscription is applied once the broker is reachable.
//
// Parameters:
//   - topic: The topic pattern to subscribe to
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//   - handler: Callback function invoked for each message
//
// Returns:
//   - error: for invalid arguments, or if a live subscribe is rejected
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	sub := subscription{topic: topic, qos: qos, handler: handler}

	c.subMu.Lock()
	c.subscriptions[topic] = sub
	c.subMu.Unlock()

	if !c.IsConnected() {
		c.logger.Info("MQTT subscription deferred until connected", "topic", topic)
		return nil
	}

	if err := c.subscribe(sub); err != nil {
		c.subMu.Lock()
		delete(c.subscriptions, topic)
		c.subMu.Unlock()
		return err
	}

	c.logger.Info("subscribed to MQTT topic", "topic", topic, "qos", qos)
	return nil
}

// subscribe sends one SUBSCRIBE and waits for the acknowledgement.
func (c *Client) subscribe(sub subscription) error {
	token := c.client.Subscribe(sub.topic, sub.qos, c.wrapHandler(sub.handler))
	if !token.WaitTimeout(defaultOperationTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultOperationTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}
