package vpiano_test

import (
	"context"
	"testing"
	"time"

	"github.com/vsariola/vpiano/synth"
)

// fakeClock is a wall clock that only moves when someone sleeps on it.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

type noteCall struct {
	on        bool
	name      string
	frequency float64
	at        time.Time
}

// recordingTarget is a NoteTarget remembering every call and when it
// happened on the clock.
type recordingTarget struct {
	clock *fakeClock
	calls []noteCall
}

func (r *recordingTarget) NoteOn(name string, frequency float64) {
	r.calls = append(r.calls, noteCall{on: true, name: name, frequency: frequency, at: r.clock.now})
}

func (r *recordingTarget) NoteOff(name string) {
	r.calls = append(r.calls, noteCall{on: false, name: name, at: r.clock.now})
}

// render advances the audio clock of the graph by the given number of
// seconds.
func render(t *testing.T, ctx *synth.Context, seconds float64) {
	t.Helper()
	buf := make([]float32, int(seconds*synth.SampleRate)*2)
	if err := ctx.Render(buf); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
}
