package vpiano

import (
	"context"
	"fmt"
	"log"
)

type (
	// InputBridge is what input sources (computer keyboards, MIDI devices,
	// on-screen keys) drive: a key of a note goes down or up.
	InputBridge interface {
		Down(name string) error
		Up(name string) error
	}

	// Piano is one piano session. It owns the voices, the recorder and the
	// player; pianos sharing nothing can be created side by side.
	Piano struct {
		graph    AudioGraph
		voices   *VoiceManager
		recorder *Recorder
		player   *Player
	}

	Option func(*pianoOptions)

	pianoOptions struct {
		envelope Envelope
		clock    Clock
		sleep    SleepFunc
		logger   *log.Logger
	}
)

func WithEnvelope(env Envelope) Option {
	return func(o *pianoOptions) { o.envelope = env }
}

// WithClock sets the wall clock used for recording and playback timing.
func WithClock(clock Clock, sleep SleepFunc) Option {
	return func(o *pianoOptions) {
		o.clock = clock
		o.sleep = sleep
	}
}

func WithLogger(logger *log.Logger) Option {
	return func(o *pianoOptions) { o.logger = logger }
}

func NewPiano(graph AudioGraph, opts ...Option) *Piano {
	o := pianoOptions{envelope: DefaultEnvelope}
	for _, opt := range opts {
		opt(&o)
	}
	voices := NewVoiceManager(graph, o.envelope, o.logger)
	return &Piano{
		graph:    graph,
		voices:   voices,
		recorder: NewRecorder(o.clock),
		player:   NewPlayer(voices, o.clock, o.sleep),
	}
}

// Down starts the note and records it if the recorder is armed.
func (p *Piano) Down(name string) error {
	note, ok := NoteByName(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownNote, name)
	}
	p.voices.NoteOn(note.Name, note.Frequency)
	p.recorder.Record(NoteStart, note.Name)
	return nil
}

// Up releases the note and records it if the recorder is armed.
func (p *Piano) Up(name string) error {
	note, ok := NoteByName(name)
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownNote, name)
	}
	p.voices.NoteOff(note.Name)
	p.recorder.Record(NoteStop, note.Name)
	return nil
}

// ToggleRecord arms the recorder if it is disarmed and vice versa. It returns
// true if the recorder is now armed.
func (p *Piano) ToggleRecord() bool {
	if p.recorder.Armed() {
		p.recorder.Disarm()
		return false
	}
	p.recorder.Arm()
	return true
}

func (p *Piano) Recording() bool { return p.recorder.Armed() }

// Play replays the current recording. The replayed notes go straight to the
// voices and are never recorded again, even if the recorder is armed.
func (p *Piano) Play(ctx context.Context) error {
	return p.player.Play(ctx, p.recorder.Events())
}

func (p *Piano) Playing() bool { return p.player.Playing() }

func (p *Piano) Clear() { p.recorder.Clear() }

func (p *Piano) SetSustain(on bool) { p.voices.SetSustain(on) }

func (p *Piano) Sustain() bool { return p.voices.Sustain() }

func (p *Piano) SetVolume(volume float64) { p.graph.SetVolume(volume) }

func (p *Piano) Volume() float64 { return p.graph.Volume() }

// Panic silences every voice, including the ones held by the sustain pedal.
func (p *Piano) Panic() { p.voices.AllNotesOff() }

func (p *Piano) EventCount() int { return p.recorder.Len() }

func (p *Piano) Events() EventLog { return p.recorder.Events() }

// LoadEvents replaces the current recording.
func (p *Piano) LoadEvents(events EventLog) error {
	if err := p.recorder.Load(events); err != nil {
		return fmt.Errorf("could not load recording: %w", err)
	}
	return nil
}

func (p *Piano) Voices() *VoiceManager { return p.voices }
