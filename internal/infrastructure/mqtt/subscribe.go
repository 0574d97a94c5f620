package mqtt

import (
	"fmt"
	"strings"
)

// Subscribe registers a handler for messages matching a topic filter.
//
// Filters may use MQTT wildcards, each occupying a whole level:
//   - `+` matches one level: "lumenweave/show/+/section/+/compiled"
//   - `#` matches any tail and must be the final level: "lumenweave/#"
//
// The handler runs on the client's message goroutine; long work should
// be handed off so a slow consumer cannot stall section delivery.
// Subscriptions are tracked and restored automatically after a
// reconnect.
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := validateFilter(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	// Track first so a reconnect during the subscribe call still
	// restores it.
	c.subMu.Lock()
	c.subscriptions[topic] = subscription{
		topic:   topic,
		qos:     qos,
		handler: handler,
	}
	c.subMu.Unlock()

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultPublishTimeout) {
		c.dropSubscription(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		c.dropSubscription(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	return nil
}

// Unsubscribe removes a subscription and stops receiving messages for
// a filter. Messages already in flight may still be delivered.
func (c *Client) Unsubscribe(topic string) error {
	if err := validateFilter(topic); err != nil {
		return err
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.dropSubscription(topic)

	token := c.client.Unsubscribe(topic)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrUnsubscribeFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrUnsubscribeFailed, err)
	}

	return nil
}

// SubscriptionCount returns the number of active subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	return len(c.subscriptions)
}

// HasSubscription checks whether an exact filter string is subscribed.
// No pattern matching is performed.
func (c *Client) HasSubscription(topic string) bool {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	_, exists := c.subscriptions[topic]
	return exists
}

func (c *Client) dropSubscription(topic string) {
	c.subMu.Lock()
	delete(c.subscriptions, topic)
	c.subMu.Unlock()
}

// validateFilter checks MQTT filter syntax: wildcards must occupy a
// whole level, and `#` may only terminate the filter. A typo like
// "lumenweave/show#" would otherwise subscribe to nothing, silently.
func validateFilter(filter string) error {
	if filter == "" {
		return fmt.Errorf("%w: filter is empty", ErrInvalidTopic)
	}

	levels := strings.Split(filter, "/")
	for i, level := range levels {
		switch {
		case level == "#":
			if i != len(levels)-1 {
				return fmt.Errorf("%w: %q has levels after the # wildcard", ErrInvalidTopic, filter)
			}
		case strings.Contains(level, "#"), strings.Contains(level, "+") && level != "+":
			return fmt.Errorf("%w: wildcard in %q must occupy a whole level", ErrInvalidTopic, filter)
		}
	}
	return nil
}
