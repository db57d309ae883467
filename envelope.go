package vpiano

import (
	"errors"
	"fmt"
)

// Envelope is an attack-decay-sustain-release amplitude envelope. Times are in
// seconds; Sustain is a level in [0,1].
type Envelope struct {
	Attack  float64
	Decay   float64
	Sustain float64
	Release float64
}

var DefaultEnvelope = Envelope{Attack: 0.01, Decay: 0.2, Sustain: 0.7, Release: 0.3}

const (
	envelopePeak  = 1.0
	envelopeFloor = 0.001 // exponential ramps cannot reach zero
	stopMargin    = 0.05  // the oscillator is stopped this long after the release ends
)

var ErrInvalidEnvelope = errors.New("invalid envelope")

func (e Envelope) Validate() error {
	if e.Attack < 0 || e.Decay < 0 || e.Release < 0 {
		return fmt.Errorf("%w: negative time in %+v", ErrInvalidEnvelope, e)
	}
	if e.Sustain < 0 || e.Sustain > 1 {
		return fmt.Errorf("%w: sustain level %v outside [0,1]", ErrInvalidEnvelope, e.Sustain)
	}
	return nil
}

// Start schedules the attack and decay stages on the gain parameter, ending
// at the sustain level.
func (e Envelope) Start(gain Param, now float64) {
	gain.SetValueAtTime(0, now)
	gain.LinearRampToValueAtTime(envelopePeak, now+e.Attack)
	gain.LinearRampToValueAtTime(e.Sustain, now+e.Attack+e.Decay)
}

// Stop replaces whatever is scheduled on the gain parameter with the release
// stage, starting from the current value. It returns the time after which the
// voice is silent and its source can be stopped.
func (e Envelope) Stop(gain Param, now float64) (stopAt float64) {
	current := gain.Value()
	gain.CancelScheduledValues(now)
	gain.SetValueAtTime(current, now)
	gain.ExponentialRampToValueAtTime(envelopeFloor, now+e.Release)
	return now + e.Release + stopMargin
}
