package vpiano

import (
	"sync"
	"time"
)

type (
	// Clock returns the current wall-clock time.
	Clock func() time.Time

	// Recorder captures note events with their time offsets from the moment
	// the recording was armed. Events are appended in arrival order, so their
	// times never decrease. Recorder is safe for concurrent use.
	Recorder struct {
		mu     sync.Mutex
		clock  Clock
		armed  bool
		start  time.Time
		events EventLog
	}
)

// NewRecorder returns a disarmed recorder. A nil clock means time.Now.
func NewRecorder(clock Clock) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	return &Recorder{clock: clock}
}

// Arm starts a new recording, discarding the previous one.
func (r *Recorder) Arm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
	r.armed = true
	r.start = r.clock()
}

// Disarm stops recording; the captured events are kept.
func (r *Recorder) Disarm() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.armed = false
}

func (r *Recorder) Armed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.armed
}

// Record appends an event if the recorder is armed, and does nothing
// otherwise.
func (r *Recorder) Record(typ EventType, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.armed {
		return
	}
	elapsed := r.clock().Sub(r.start)
	r.events = append(r.events, Event{
		Type: typ,
		Name: name,
		Time: float64(elapsed) / float64(time.Millisecond),
	})
}

// Clear empties the recording, armed or not.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Load replaces the recording with the given events, e.g. read from a file.
// The events are copied.
func (r *Recorder) Load(events EventLog) error {
	if err := events.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = events.Copy()
	return nil
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() EventLog {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events.Copy()
}

func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
