package server

import (
	"github.com/oshokin/cstation/internal/config"
	"github.com/oshokin/cstation/internal/hardware/gpio"
)

// openBoard returns the board selected by the hardware driver.
func openBoard(hw config.Hardware) (gpio.Board, error) {
	if hw.Driver == config.DriverGPIOCDev {
		return gpio.NewChip(hw)
	}

	return gpio.NewSimulated(), nil
}
