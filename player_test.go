package vpiano_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vsariola/vpiano"
)

var noteAndRelease = vpiano.EventLog{
	{Type: vpiano.NoteStart, Name: "C4", Time: 0},
	{Type: vpiano.NoteStop, Name: "C4", Time: 500},
}

func TestPlayReproducesTiming(t *testing.T) {
	clock := newFakeClock()
	target := &recordingTarget{clock: clock}
	p := vpiano.NewPlayer(target, clock.Now, clock.Sleep)
	start := clock.Now()
	if err := p.Play(context.Background(), noteAndRelease); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(target.calls) != 2 {
		t.Fatalf("calls = %+v, want 2", target.calls)
	}
	on, off := target.calls[0], target.calls[1]
	if !on.on || on.name != "C4" || on.frequency != 261.63 || !on.at.Equal(start) {
		t.Fatalf("first call = %+v, want C4 on at the start", on)
	}
	if off.on || off.name != "C4" {
		t.Fatalf("second call = %+v, want C4 off", off)
	}
	if d := off.at.Sub(on.at); d != 500*time.Millisecond {
		t.Fatalf("delay between calls = %v, want 500ms", d)
	}
}

func TestPlayEmptyLog(t *testing.T) {
	clock := newFakeClock()
	target := &recordingTarget{clock: clock}
	p := vpiano.NewPlayer(target, clock.Now, clock.Sleep)
	if err := p.Play(context.Background(), nil); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(target.calls) != 0 || len(clock.sleeps) != 0 {
		t.Fatalf("empty playback made calls %v and slept %v", target.calls, clock.sleeps)
	}
}

func TestPlayDoesNotWaitForPastEvents(t *testing.T) {
	clock := newFakeClock()
	target := &recordingTarget{clock: clock}
	// the target takes 300ms to handle each note, so the second event is
	// already 100ms late when its turn comes
	slow := vpiano.NewPlayer(noteTargetFunc{
		on: func(name string, f float64) {
			target.NoteOn(name, f)
			clock.Advance(300 * time.Millisecond)
		},
		off: target.NoteOff,
	}, clock.Now, clock.Sleep)
	events := vpiano.EventLog{
		{Type: vpiano.NoteStart, Name: "C4", Time: 0},
		{Type: vpiano.NoteStart, Name: "E4", Time: 200},
		{Type: vpiano.NoteStop, Name: "C4", Time: 1000},
	}
	if err := slow.Play(context.Background(), events); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(clock.sleeps) != 1 || clock.sleeps[0] != 400*time.Millisecond {
		t.Fatalf("sleeps = %v, want [400ms]", clock.sleeps)
	}
}

func TestPlayAbortsOnUnknownNote(t *testing.T) {
	clock := newFakeClock()
	target := &recordingTarget{clock: clock}
	p := vpiano.NewPlayer(target, clock.Now, clock.Sleep)
	events := vpiano.EventLog{
		{Type: vpiano.NoteStart, Name: "C4", Time: 0},
		{Type: vpiano.NoteStart, Name: "H9", Time: 10},
		{Type: vpiano.NoteStop, Name: "C4", Time: 20},
	}
	err := p.Play(context.Background(), events)
	if !errors.Is(err, vpiano.ErrUnknownNote) {
		t.Fatalf("Play = %v, want ErrUnknownNote", err)
	}
	if len(target.calls) != 1 {
		t.Fatalf("calls = %+v, want only the first note", target.calls)
	}
}

func TestPlayCancel(t *testing.T) {
	clock := newFakeClock()
	target := &recordingTarget{clock: clock}
	ctx, cancel := context.WithCancel(context.Background())
	p := vpiano.NewPlayer(noteTargetFunc{
		on: func(name string, f float64) {
			target.NoteOn(name, f)
			cancel()
		},
		off: target.NoteOff,
	}, clock.Now, clock.Sleep)
	err := p.Play(ctx, noteAndRelease)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Play = %v, want context.Canceled", err)
	}
	if len(target.calls) != 1 {
		t.Fatalf("calls = %+v, want only the first note", target.calls)
	}
	if p.Playing() {
		t.Fatalf("player should not be playing after Play returned")
	}
}

func TestPlayRealTime(t *testing.T) {
	var calls []time.Time
	p := vpiano.NewPlayer(noteTargetFunc{
		on:  func(string, float64) { calls = append(calls, time.Now()) },
		off: func(string) { calls = append(calls, time.Now()) },
	}, nil, nil)
	events := vpiano.EventLog{
		{Type: vpiano.NoteStart, Name: "A4", Time: 0},
		{Type: vpiano.NoteStop, Name: "A4", Time: 50},
	}
	if err := p.Play(context.Background(), events); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v, want 2", len(calls))
	}
	if d := calls[1].Sub(calls[0]); d < 45*time.Millisecond || d > time.Second {
		t.Fatalf("delay between calls = %v, want about 50ms", d)
	}
}

type noteTargetFunc struct {
	on  func(name string, frequency float64)
	off func(name string)
}

func (f noteTargetFunc) NoteOn(name string, frequency float64) { f.on(name, frequency) }
func (f noteTargetFunc) NoteOff(name string)                   { f.off(name) }
