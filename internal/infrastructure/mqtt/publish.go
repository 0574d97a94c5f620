package mqtt

import (
	"fmt"
	"strings"
)

// maxPayloadSize bounds a published message at 1MB. A compiled section
// of a large rig serialises well under this; anything bigger points at
// a bug upstream, and typical broker limits sit near the same mark.
const maxPayloadSize = 1 << 20

// Publish sends a message to a concrete topic.
//
// Publication topics must name exact levels: the wildcard characters
// `+` and `#` are subscription syntax and are rejected here, since a
// renderer listening on `lumenweave/show/+/section/+/compiled` must
// never see a literal wildcard echoed back.
//
// Retained messages are for state topics (system status) where a late
// subscriber needs the current value; compiled-section and transition
// events are fire-and-forget and publish unretained.
//
// Example:
//
//	topic := mqtt.Topics{}.SectionCompiled("summer-tour", "chorus-1")
//	err := client.Publish(topic, payload, 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := validateTopic(topic); err != nil {
		return err
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultPublishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultPublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	return nil
}

// PublishString is a convenience method that publishes a string payload.
func (c *Client) PublishString(topic string, payload string, qos byte, retained bool) error {
	return c.Publish(topic, []byte(payload), qos, retained)
}

// PublishRetained publishes a retained message with the configured
// default QoS. Use for state topics where new subscribers should
// receive the current value immediately.
func (c *Client) PublishRetained(topic string, payload []byte) error {
	return c.Publish(topic, payload, byte(c.cfg.QoS), true)
}

// validateTopic rejects topics that are empty or carry subscription
// wildcards.
func validateTopic(topic string) error {
	if topic == "" {
		return fmt.Errorf("%w: topic is empty", ErrInvalidTopic)
	}
	if strings.ContainsAny(topic, "+#") {
		return fmt.Errorf("%w: wildcards are not allowed in publication topic %q", ErrInvalidTopic, topic)
	}
	return nil
}
