package server

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/oshokin/cstation/internal/repository/eeprom"
)

// rememberStationName keeps the MQTT client id in the image so a renamed
// station shows up in the log on its next start.
func rememberStationName(ctx context.Context, store *eeprom.Store, name string, log *zap.SugaredLogger) error {
	previous := store.ReadString(eeprom.AddrStationName, eeprom.StationNameLen)

	// Names are truncated to the cell, so compare what would be stored.
	stored := name
	if len(stored) > eeprom.StationNameLen-1 {
		stored = stored[:eeprom.StationNameLen-1]
	}

	if previous == stored {
		return nil
	}

	if previous != "" {
		log.Infow("station renamed", "from", previous, "to", stored)
	}

	if err := store.WriteString(ctx, eeprom.AddrStationName, stored, eeprom.StationNameLen); err != nil {
		return fmt.Errorf("store station name: %w", err)
	}

	return nil
}
