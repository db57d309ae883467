//go:build cgo

package cmd

import (
	"log"

	"github.com/vsariola/vpiano/gomidi"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

func NewMIDIContext(target gomidi.Target, logger *log.Logger) *gomidi.MIDIContext {
	driver, err := rtmididrv.New()
	if err != nil {
		if logger != nil {
			logger.Printf("MIDI is not available: %v", err)
		}
		return gomidi.NewContext(nil, target, logger)
	}
	return gomidi.NewContext(driver, target, logger)
}
