package vpiano

import (
	"log"
	"sort"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type (
	// Voice is one sounding instance of a note: an oscillator and the gain
	// node shaping its envelope. A voice marked pending has been released
	// while the sustain pedal was down and keeps sounding until the pedal is
	// lifted.
	Voice struct {
		osc     Oscillator
		gain    Gain
		pending bool
	}

	// VoiceManager starts and stops voices per note name. Retriggering a note
	// that is still sounding adds another voice for it: the voices of a note
	// are kept in trigger order, and a voice belongs only to the list of its
	// own note until it is removed. VoiceManager is safe for concurrent use.
	VoiceManager struct {
		mu      sync.Mutex
		graph   AudioGraph
		env     Envelope
		voices  map[string][]*Voice
		sustain bool

		logger *log.Logger
		warn   rate.Sometimes
	}
)

func NewVoiceManager(graph AudioGraph, env Envelope, logger *log.Logger) *VoiceManager {
	if logger == nil {
		logger = log.Default()
	}
	return &VoiceManager{
		graph:  graph,
		env:    env,
		voices: make(map[string][]*Voice),
		logger: logger,
		warn:   rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

// NoteOn starts a new voice for the note. If the audio graph cannot be resumed
// the voice is still created; it just will not be heard.
func (m *VoiceManager) NoteOn(name string, frequency float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.graph.Resume(); err != nil {
		m.warn.Do(func() { m.logger.Printf("note %s: %v", name, err) })
	}
	v := &Voice{osc: m.graph.NewOscillator(frequency), gain: m.graph.NewGain()}
	v.osc.Connect(v.gain)
	v.gain.Connect(m.graph.Destination())
	now := m.graph.CurrentTime()
	m.env.Start(v.gain.Gain(), now)
	v.osc.Start(now)
	m.voices[name] = append(m.voices[name], v)
}

// NoteOff releases all voices of the note. With sustain on, the voices are
// only marked pending.
func (m *VoiceManager) NoteOff(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	voices, ok := m.voices[name]
	if !ok {
		return
	}
	if m.sustain {
		for _, v := range voices {
			v.pending = true
		}
		return
	}
	now := m.graph.CurrentTime()
	for _, v := range voices {
		m.release(v, now)
	}
	delete(m.voices, name)
}

func (m *VoiceManager) SetSustain(on bool) {
	m.mu.Lock()
	m.sustain = on
	m.mu.Unlock()
	if !on {
		m.ReleaseSustainNotes()
	}
}

func (m *VoiceManager) Sustain() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sustain
}

// ReleaseSustainNotes releases every pending voice. Voices whose keys are
// still held are left sounding.
func (m *VoiceManager) ReleaseSustainNotes() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.graph.CurrentTime()
	for name, voices := range m.voices {
		kept := voices[:0]
		for _, v := range voices {
			if v.pending {
				m.release(v, now)
				continue
			}
			kept = append(kept, v)
		}
		if len(kept) == 0 {
			delete(m.voices, name)
			continue
		}
		m.voices[name] = kept
	}
}

// AllNotesOff releases every voice, regardless of the sustain pedal.
func (m *VoiceManager) AllNotesOff() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.graph.CurrentTime()
	for name, voices := range m.voices {
		for _, v := range voices {
			m.release(v, now)
		}
		delete(m.voices, name)
	}
}

func (m *VoiceManager) release(v *Voice, now float64) {
	v.osc.Stop(m.env.Stop(v.gain.Gain(), now))
}

// Voices returns the number of voices sounding for the note, pending or not.
func (m *VoiceManager) Voices(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices[name])
}

// PendingVoices returns the number of voices of the note waiting for the
// sustain pedal to be lifted.
func (m *VoiceManager) PendingVoices(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := 0
	for _, v := range m.voices[name] {
		if v.pending {
			ret++
		}
	}
	return ret
}

// ActiveNotes returns the names of the notes with at least one voice, in
// chromatic order.
func (m *VoiceManager) ActiveNotes() []string {
	m.mu.Lock()
	ret := make([]string, 0, len(m.voices))
	for name := range m.voices {
		ret = append(ret, name)
	}
	m.mu.Unlock()
	sort.Slice(ret, func(i, j int) bool { return noteIndex(ret[i]) < noteIndex(ret[j]) })
	return ret
}
