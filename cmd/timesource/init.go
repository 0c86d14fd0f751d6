package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// defaultConfigYAML is written by `timesource init`. Values mirror the
// defaults applied by config.Default; everything except broker.host
// may be deleted without changing behavior.
const defaultConfigYAML = `# timesource configuration
#
# Environment variables are expanded before parsing, so secrets can be
# referenced as ${VAR_NAME}.

broker:
  host: 192.168.1.100
  port: 1883
  tls: false
  # username: mqtt-user
  # password: ${MQTT_PASSWORD}

publish:
  # Timestamps are published to {topic_prefix}/time, availability to
  # {topic_prefix}/time/availability. Must match the clock firmware.
  topic_prefix: tc001
  interval_sec: 60
  connect_timeout_sec: 10
  retry_cooldown_sec: 30
  # client_id: tc001-time-publisher   # generated and persisted if unset

# Directory for the persisted client identity.
data_dir: .

log_level: info    # debug, info, warn, error
log_format: text   # text or json
`

// runInit initializes a timesource working directory. It creates the
// directory and writes a commented default config. Existing files are
// never overwritten.
func runInit(w io.Writer, dir string) error {
	fmt.Fprintf(w, "Initializing timesource workspace in %s\n", dir)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := writeIfMissing(configPath, []byte(defaultConfigYAML)); err != nil {
		return err
	}
	fmt.Fprintf(w, "  ✓ %s\n", configPath)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Edit config.yaml to point at your broker, then run: timesource run")
	return nil
}

// writeIfMissing writes content to path only if the file does not already
// exist. This ensures init never overwrites user customizations.
func writeIfMissing(path string, content []byte) error {
	if _, err := os.Stat(path); err == nil {
		return nil // already exists, skip
	}
	return os.WriteFile(path, content, 0o644)
}
