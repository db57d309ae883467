package vpiano

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

type (
	// NoteTarget receives the notes of a playback. VoiceManager implements
	// it.
	NoteTarget interface {
		NoteOn(name string, frequency float64)
		NoteOff(name string)
	}

	// SleepFunc suspends for d, returning early with the context's error if
	// the context is done.
	SleepFunc func(ctx context.Context, d time.Duration) error

	// Player replays recordings, reconstructing the timing of the events from
	// their time offsets.
	Player struct {
		target  NoteTarget
		clock   Clock
		sleep   SleepFunc
		playing atomic.Int32
	}
)

// NewPlayer returns a player sending the notes to target. A nil clock means
// time.Now and a nil sleep means Sleep.
func NewPlayer(target NoteTarget, clock Clock, sleep SleepFunc) *Player {
	if clock == nil {
		clock = time.Now
	}
	if sleep == nil {
		sleep = Sleep
	}
	return &Player{target: target, clock: clock, sleep: sleep}
}

// Sleep is a SleepFunc using a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Play replays the events in order, waiting before each event until its time
// offset from the start of the playback has passed. It returns when the last
// event has been sent, when the context is done, or when an event refers to
// a note that does not exist; in the last two cases, the rest of the events
// are not played. Notes started before an abort are left to the caller to
// release.
func (p *Player) Play(ctx context.Context, events EventLog) error {
	if len(events) == 0 {
		return nil
	}
	p.playing.Add(1)
	defer p.playing.Add(-1)
	start := p.clock()
	for i, e := range events {
		elapsed := p.clock().Sub(start)
		wait := time.Duration(e.Time*float64(time.Millisecond)) - elapsed
		if wait > 0 {
			if err := p.sleep(ctx, wait); err != nil {
				return fmt.Errorf("playback stopped at event %d: %w", i, err)
			}
		} else if err := ctx.Err(); err != nil {
			return fmt.Errorf("playback stopped at event %d: %w", i, err)
		}
		note, ok := NoteByName(e.Name)
		if !ok {
			return fmt.Errorf("playback event %d: %w %q", i, ErrUnknownNote, e.Name)
		}
		switch e.Type {
		case NoteStart:
			p.target.NoteOn(note.Name, note.Frequency)
		case NoteStop:
			p.target.NoteOff(note.Name)
		default:
			return fmt.Errorf("playback event %d: %w: type %q", i, ErrInvalidLog, e.Type)
		}
	}
	return nil
}

// Playing reports if any playback is in progress.
func (p *Player) Playing() bool {
	return p.playing.Load() > 0
}
