// Package publisher maintains a live MQTT session and emits the
// current Unix timestamp to the broker on a fixed cadence, so a clock
// device can use the broker as its time source instead of NTP.
//
// The Publisher owns the whole connection lifecycle: it dials the
// broker, waits (bounded) for the CONNACK, publishes one tick per
// interval while connected, and recovers from disconnects with a fixed
// cooldown between reconnect attempts. Paho's background I/O
// goroutines process inbound protocol frames independently of the
// publish timer; their disconnect callbacks only flip the shared state
// cell, never perform I/O themselves.
//
// A will message ensures the availability topic transitions to
// "offline" if the process dies unexpectedly; a birth message
// ("online") is published on every successful connect.
package publisher
