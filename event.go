package vpiano

import (
	"errors"
	"fmt"
	"io"
	"math"

	"gopkg.in/yaml.v3"
)

type (
	EventType string

	// Event is a recorded note-on or note-off. Time is the offset from the
	// start of the recording, in milliseconds.
	Event struct {
		Type EventType `yaml:"type"`
		Name string    `yaml:"name"`
		Time float64   `yaml:"time"`
	}

	// EventLog is a recording: events in the order they happened.
	EventLog []Event

	recordingFile struct {
		Events EventLog `yaml:"events"`
	}
)

const (
	NoteStart EventType = "start"
	NoteStop  EventType = "stop"
)

var (
	ErrUnknownNote = errors.New("unknown note")
	ErrInvalidLog  = errors.New("invalid event log")
)

func (l EventLog) Copy() EventLog {
	ret := make(EventLog, len(l))
	copy(ret, l)
	return ret
}

// Duration is the time of the last event, in milliseconds.
func (l EventLog) Duration() float64 {
	if len(l) == 0 {
		return 0
	}
	return l[len(l)-1].Time
}

// Validate checks that the events are in time order, have a known type and
// refer to notes that exist.
func (l EventLog) Validate() error {
	prev := 0.0
	for i, e := range l {
		if e.Type != NoteStart && e.Type != NoteStop {
			return fmt.Errorf("%w: event %d has type %q", ErrInvalidLog, i, e.Type)
		}
		if _, ok := NoteByName(e.Name); !ok {
			return fmt.Errorf("%w: event %d: %w %q", ErrInvalidLog, i, ErrUnknownNote, e.Name)
		}
		if math.IsNaN(e.Time) || math.IsInf(e.Time, 0) {
			return fmt.Errorf("%w: event %d has time %v", ErrInvalidLog, i, e.Time)
		}
		if e.Time < prev {
			return fmt.Errorf("%w: event %d at %vms is before the previous event at %vms", ErrInvalidLog, i, e.Time, prev)
		}
		prev = e.Time
	}
	return nil
}

// ReadEventLog reads a recording saved with EventLog.Write and validates it.
func ReadEventLog(r io.Reader) (EventLog, error) {
	var f recordingFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("could not decode recording: %w", err)
	}
	if err := f.Events.Validate(); err != nil {
		return nil, err
	}
	return f.Events, nil
}

func (l EventLog) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(recordingFile{Events: l}); err != nil {
		return fmt.Errorf("could not encode recording: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not encode recording: %w", err)
	}
	return nil
}
