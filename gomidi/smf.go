package gomidi

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/vsariola/vpiano"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	ticksPerQuarter = 960
	defaultBPM      = 120
	noteVelocity    = 100
)

var ErrSMPTE = errors.New("SMPTE time codes are not supported")

// WriteSMF writes the recording as a single track Standard MIDI File at 120
// BPM, all notes on channel 1.
func WriteSMF(w io.Writer, events vpiano.EventLog) error {
	if err := events.Validate(); err != nil {
		return err
	}
	ticks := smf.MetricTicks(ticksPerQuarter)
	s := smf.New()
	s.TimeFormat = ticks
	var track smf.Track
	track.Add(0, smf.MetaTempo(defaultBPM))
	var last uint32
	for _, e := range events {
		note, _ := vpiano.NoteByName(e.Name)
		abs := ticks.Ticks(defaultBPM, time.Duration(e.Time*float64(time.Millisecond)))
		delta := abs - last
		last = abs
		if e.Type == vpiano.NoteStart {
			track.Add(delta, midi.NoteOn(0, note.MIDI, noteVelocity))
		} else {
			track.Add(delta, midi.NoteOff(0, note.MIDI))
		}
	}
	track.Close(0)
	if err := s.Add(track); err != nil {
		return fmt.Errorf("error adding track: %w", err)
	}
	if _, err := s.WriteTo(w); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}

// ReadSMF reads the notes of all tracks and channels of a Standard MIDI File
// into a recording. Notes outside the range of the piano are dropped. Only
// the first tempo of the file is used for timing.
func ReadSMF(r io.Reader) (vpiano.EventLog, error) {
	s, err := smf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("error reading MIDI file: %w", err)
	}
	ticks, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, ErrSMPTE
	}
	bpm := float64(defaultBPM)
	if tc := s.TempoChanges(); len(tc) > 0 {
		bpm = tc[0].BPM
	}
	events := make(vpiano.EventLog, 0)
	for _, track := range s.Tracks {
		var abs uint32
		for _, ev := range track {
			abs += ev.Delta
			var channel, key, velocity uint8
			var typ vpiano.EventType
			switch {
			case ev.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
				typ = vpiano.NoteStart
			case ev.Message.GetNoteOn(&channel, &key, &velocity), ev.Message.GetNoteOff(&channel, &key, &velocity):
				typ = vpiano.NoteStop
			default:
				continue
			}
			note, ok := vpiano.NoteByMIDI(key)
			if !ok {
				continue
			}
			events = append(events, vpiano.Event{
				Type: typ,
				Name: note.Name,
				Time: float64(ticks.Duration(bpm, abs)) / float64(time.Millisecond),
			})
		}
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].Time < events[j].Time })
	return events, nil
}
