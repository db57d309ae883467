//go:build !cgo

package cmd

import (
	"log"

	"github.com/vsariola/vpiano/gomidi"
)

func NewMIDIContext(target gomidi.Target, logger *log.Logger) *gomidi.MIDIContext {
	// with no cgo, we cannot use rtmidi, so the context has no devices
	return gomidi.NewContext(nil, target, logger)
}
