// Package mqtt provides MQTT client connectivity for midibridge.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// midibridge uses MQTT as the ingress bus for control-value producers.
// Any producer (gesture trackers, sensor daemons, test tools) publishes
// control values to midibridge/control/{source}; the bridge subscribes
// with a wildcard and feeds the delivery pipeline.
//
//	Producers → MQTT Broker → midibridge → MIDI endpoint
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Credentials are validated against broker ACL
//   - Anonymous access is only for local development
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Subscribe to all control-value producers
//	err = client.Subscribe(mqtt.Topics{}.AllControls(), 1,
//	    func(topic string, payload []byte) {
//	        log.Printf("Received: %s = %s", topic, payload)
//	    })
package mqtt
