package mqtt

import "fmt"

// Topic prefixes for midibridge MQTT topics.
//
// All topics use the flat scheme: midibridge/{category}[/{source}]
// This matches the midi bridge's messages.go and all runtime subscribers.
const (
	// TopicPrefix is the base for all midibridge topics.
	TopicPrefix = "midibridge"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "midibridge/system"
)

// Topics provides builders for midibridge MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	controlTopic := topics.Control("leap-palm-y")
//	// Returns: "midibridge/control/leap-palm-y"
type Topics struct{}

// Control returns the publish topic for control values from a named producer.
//
// Example: midibridge/control/leap-palm-y
func (Topics) Control(source string) string {
	return fmt.Sprintf("%s/control/%s", TopicPrefix, source)
}

// AllControls returns the wildcard subscription topic matching every
// control-value producer.
//
// Example: midibridge/control/#
func (Topics) AllControls() string {
	return TopicPrefix + "/control/#"
}

// Health returns the topic for bridge health status.
//
// Example: midibridge/health
func (Topics) Health() string {
	return TopicPrefix + "/health"
}

// SystemStatus returns the topic for bridge online/offline status (LWT).
//
// Example: midibridge/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
