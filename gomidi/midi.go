// Package gomidi connects MIDI keyboards to a piano using
// gitlab.com/gomidi/midi/v2, and converts recordings to and from Standard MIDI
// Files.
package gomidi

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/vsariola/vpiano"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

const sustainPedal = 64 // MIDI controller number of the damper pedal

type (
	// Target is what the MIDI input plays. vpiano.Piano implements it.
	Target interface {
		vpiano.InputBridge
		SetSustain(on bool)
	}

	// MIDIContext listens to one MIDI input device at a time and forwards its
	// notes and sustain pedal to the target. Keys outside the range of the
	// piano are ignored.
	MIDIContext struct {
		mu        sync.Mutex
		driver    drivers.Driver
		currentIn drivers.In
		stop      func()
		target    Target
		logger    *log.Logger
	}

	MIDIDevice struct {
		context *MIDIContext
		in      drivers.In
	}
)

var ErrNoDriver = errors.New("no MIDI driver available")

// NewContext returns a context using the driver. A nil driver is allowed and
// means that no devices are available.
func NewContext(driver drivers.Driver, target Target, logger *log.Logger) *MIDIContext {
	if logger == nil {
		logger = log.Default()
	}
	return &MIDIContext{driver: driver, target: target, logger: logger}
}

func (c *MIDIContext) InputDevices(yield func(MIDIDevice) bool) {
	if c.driver == nil {
		return
	}
	ins, err := c.driver.Ins()
	if err != nil {
		c.logger.Printf("listing MIDI inputs failed: %v", err)
		return
	}
	for _, in := range ins {
		if !yield(MIDIDevice{context: c, in: in}) {
			break
		}
	}
}

// Open starts listening to the device, closing the currently open device if
// necessary.
func (d MIDIDevice) Open() error {
	c := d.context
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.currentIn == d.in {
		return nil
	}
	if c.driver == nil {
		return ErrNoDriver
	}
	c.closeCurrent()
	if err := d.in.Open(); err != nil {
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	stop, err := midi.ListenTo(d.in, c.HandleMessage)
	if err != nil {
		d.in.Close()
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	c.currentIn, c.stop = d.in, stop
	return nil
}

func (d MIDIDevice) String() string {
	return d.in.String()
}

// TryToOpenBy opens the first device whose name starts with the prefix, or
// just the first device if takeFirst is true.
func (c *MIDIContext) TryToOpenBy(namePrefix string, takeFirst bool) error {
	if namePrefix == "" && !takeFirst {
		return nil
	}
	for input := range c.InputDevices {
		if takeFirst || strings.HasPrefix(input.String(), namePrefix) {
			return input.Open()
		}
	}
	if takeFirst {
		return errors.New("could not find any MIDI input")
	}
	return fmt.Errorf("could not find any MIDI input starting with %q", namePrefix)
}

func (c *MIDIContext) HasDeviceOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentIn != nil && c.currentIn.IsOpen()
}

// HandleMessage forwards a MIDI message to the target. Note-ons with zero
// velocity are note-offs.
func (c *MIDIContext) HandleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity, controller, value uint8
	switch {
	case msg.GetNoteOn(&channel, &key, &velocity):
		if velocity == 0 {
			c.noteUp(key)
			return
		}
		c.noteDown(key)
	case msg.GetNoteOff(&channel, &key, &velocity):
		c.noteUp(key)
	case msg.GetControlChange(&channel, &controller, &value):
		if controller == sustainPedal {
			c.target.SetSustain(value >= 64)
		}
	}
}

func (c *MIDIContext) noteDown(key uint8) {
	if n, ok := vpiano.NoteByMIDI(key); ok {
		if err := c.target.Down(n.Name); err != nil {
			c.logger.Printf("MIDI note %v: %v", key, err)
		}
	}
}

func (c *MIDIContext) noteUp(key uint8) {
	if n, ok := vpiano.NoteByMIDI(key); ok {
		if err := c.target.Up(n.Name); err != nil {
			c.logger.Printf("MIDI note %v: %v", key, err)
		}
	}
}

func (c *MIDIContext) closeCurrent() {
	if c.stop != nil {
		c.stop()
		c.stop = nil
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.currentIn = nil
}

func (c *MIDIContext) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.driver == nil {
		return
	}
	c.closeCurrent()
	c.driver.Close()
}
