package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hako/durafmt"
	"github.com/vsariola/vpiano"
	"github.com/vsariola/vpiano/cmd"
)

const (
	volumeStep = 0.1
	meterWidth = 10
)

// session maps the keys of the terminal to the controls of a piano.
type session struct {
	piano  *vpiano.Piano
	keys   *heldKeys
	output string
	level  func() float32
	logger *log.Logger

	cancelPlay context.CancelFunc
	playDone   chan struct{}
}

func newSession(piano *vpiano.Piano, prefs vpiano.Preferences, output string, level func() float32, logger *log.Logger) *session {
	if level == nil {
		level = func() float32 { return 0 }
	}
	return &session{
		piano:  piano,
		keys:   newHeldKeys(piano, prefs.RuneKeyMap(), prefs.HoldTimeout()),
		output: output,
		level:  level,
		logger: logger,
	}
}

// HandleRune reacts to a pressed key. Note keys take precedence over the
// control keys.
func (s *session) HandleRune(r rune, now time.Time) {
	if ok, err := s.keys.Press(r, now); ok {
		if err != nil {
			s.logger.Printf("key %q: %v", r, err)
		}
		return
	}
	switch r {
	case '1':
		s.piano.ToggleRecord()
	case '2':
		s.togglePlay()
	case '3':
		s.piano.Clear()
	case ' ':
		s.piano.SetSustain(!s.piano.Sustain())
	case '+', '=':
		s.piano.SetVolume(math.Min(s.piano.Volume()+volumeStep, 1))
	case '-':
		s.piano.SetVolume(math.Max(s.piano.Volume()-volumeStep, 0))
	case '0':
		s.releaseKeys()
		s.piano.Panic()
	case '5':
		s.save()
	}
}

// Tick releases the keys that are no longer held.
func (s *session) Tick(now time.Time) {
	if err := s.keys.Expire(now); err != nil {
		s.logger.Printf("releasing keys: %v", err)
	}
}

func (s *session) playing() bool {
	if s.playDone == nil {
		return false
	}
	select {
	case <-s.playDone:
		return false
	default:
		return true
	}
}

func (s *session) togglePlay() {
	if s.playing() {
		s.cancelPlay()
		<-s.playDone
		s.piano.Panic() // release the notes left on by the playback
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.cancelPlay, s.playDone = cancel, done
	go func() {
		defer close(done)
		if err := s.piano.Play(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Printf("playback failed: %v", err)
		}
	}()
}

// Wait blocks until the current playback, if any, has finished.
func (s *session) Wait() {
	if s.playDone != nil {
		<-s.playDone
	}
}

func (s *session) save() {
	if s.output == "" {
		s.logger.Printf("no output file given, use -o to save recordings")
		return
	}
	if err := cmd.WriteRecording(s.output, s.piano.Events()); err != nil {
		s.logger.Printf("saving failed: %v", err)
		return
	}
	s.logger.Printf("saved %s events to %s", humanize.Comma(int64(s.piano.EventCount())), s.output)
}

// Close stops playback and releases all notes.
func (s *session) Close() {
	if s.playing() {
		s.cancelPlay()
	}
	s.Wait()
	s.releaseKeys()
	s.piano.Panic()
}

func (s *session) releaseKeys() {
	if err := s.keys.ReleaseAll(); err != nil {
		s.logger.Printf("releasing keys: %v", err)
	}
}

func (s *session) Status() string {
	var b strings.Builder
	mode := "    "
	switch {
	case s.playing():
		mode = "PLAY"
	case s.piano.Recording():
		mode = "REC "
	}
	b.WriteString(mode)
	if s.piano.Sustain() {
		b.WriteString(" SUS")
	} else {
		b.WriteString("    ")
	}
	length := time.Duration(s.piano.Events().Duration() * float64(time.Millisecond))
	fmt.Fprintf(&b, " | %s events, %s", humanize.Comma(int64(s.piano.EventCount())), durafmt.Parse(length).LimitFirstN(2))
	fmt.Fprintf(&b, " | vol %3.0f%% [%s]", s.piano.Volume()*100, meter(s.level()))
	return b.String()
}

func meter(level float32) string {
	n := int(math.Round(float64(level) * meterWidth))
	n = max(0, min(n, meterWidth))
	return strings.Repeat("#", n) + strings.Repeat(" ", meterWidth-n)
}
