package publisher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LoadOrCreateClientID reads the MQTT client ID from a file in dataDir,
// or generates a new one and persists it if the file does not exist.
// A stable client ID makes broker session takeover on restart
// predictable: the broker drops the stale half-open session from the
// previous process instead of keeping two.
func LoadOrCreateClientID(dataDir string) (string, error) {
	path := filepath.Join(dataDir, "client_id")

	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate client ID: %w", err)
	}

	clientID := "timesource-" + id.String()
	if err := os.WriteFile(path, []byte(clientID+"\n"), 0644); err != nil {
		return "", fmt.Errorf("persist client ID to %s: %w", path, err)
	}

	return clientID, nil
}
