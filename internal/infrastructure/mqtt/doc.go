// Package mqtt provides MQTT client connectivity for Lumenweave Core.
//
// This package manages:
//   - Connection to Mosquitto broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// Lumenweave uses MQTT as the outbound message bus carrying compiled
// section segments and planned transitions toward renderers, and
// catalogue events toward operator UIs. The broker (Mosquitto)
// decouples the compiler from whatever consumes its output.
//
//	Lumenweave Core ↔ MQTT Broker ↔ Renderers / Operator UIs
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//   - Message payloads are not encrypted beyond TLS transport
//
// # Performance Characteristics
//
//   - Connection: <1 second to local broker
//   - Publish latency: <10ms for QoS 1 to local broker
//   - Reconnect: Exponential backoff 1s-60s with jitter
//   - Message throughput: Broker-limited (typically 10K+ msg/sec)
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to every compiled section of a show
//	err = client.Subscribe(mqtt.Topics{}.AllSectionsCompiled("summer-tour"), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
//
//	// Publish a compiled section
//	topic := mqtt.Topics{}.SectionCompiled("summer-tour", "chorus-1")
//	client.Publish(topic, payload, 1, true)
package mqtt
