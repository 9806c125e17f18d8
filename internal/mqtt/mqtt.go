// Package mqtt publishes station status to a broker and ingests ambient
// light readings from it.
//
// Topics live under a configurable prefix:
//
//	<prefix>/status  retained JSON snapshot, published on every change
//	<prefix>/system  retained "online"/"offline" lifecycle marker
//	<prefix>/lux     inbound lux readings, a bare number or {"lux": n}
package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/cstation/internal/domain/station"
)

// Topic suffixes under the configured prefix.
const (
	TopicStatus = "status"
	TopicSystem = "system"
	TopicLux    = "lux"
)

// Lifecycle payloads on TopicSystem.
const (
	SystemOnline  = "online"
	SystemOffline = "offline"
)

// errBadLux is returned for lux payloads that carry no number.
var errBadLux = errors.New("malformed lux payload")

// Publisher sends status snapshots to the broker.
type Publisher interface {
	// PublishStatus sends a snapshot; failures must not stop the station.
	PublishStatus(s station.Snapshot) error
	// Close disconnects from the broker.
	Close() error
}

// LuxHandler receives lux readings from the broker.
type LuxHandler func(lux float64)

// ConnectionIndicator shows the broker link state.
type ConnectionIndicator interface {
	ConnectState(level int)
}

// Broker link levels passed to ConnectionIndicator.
const (
	ConnectLevelUp         = 0
	ConnectLevelConnecting = 1
)

// Topic joins the prefix and a suffix.
func Topic(prefix, suffix string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + suffix
}

// FormatStatus creates the JSON payload for a snapshot.
func FormatStatus(s station.Snapshot) ([]byte, error) {
	payload, err := json.Marshal(s.Fields())
	if err != nil {
		return nil, fmt.Errorf("marshal status: %w", err)
	}

	return payload, nil
}

// luxPayload is the object form of a lux reading.
type luxPayload struct {
	Lux *float64 `json:"lux"`
}

// ParseLux decodes a lux reading from a bare number or a {"lux": n} object.
func ParseLux(payload []byte) (float64, error) {
	text := strings.TrimSpace(string(payload))

	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return v, nil
	}

	var p luxPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return 0, fmt.Errorf("%w: %w", errBadLux, err)
	}

	if p.Lux == nil {
		return 0, errBadLux
	}

	return *p.Lux, nil
}
