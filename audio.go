package vpiano

import "errors"

type (
	// AudioGraph is the audio platform the piano plays through: a graph of
	// oscillators and gain nodes, mixed into a destination, driven by a
	// monotonic audio clock. All times are in seconds on that clock. Changes
	// to node parameters are scheduled at future timestamps and forgotten;
	// the graph applies them as its clock advances.
	AudioGraph interface {
		CurrentTime() float64
		NewOscillator(frequency float64) Oscillator
		NewGain() Gain
		Destination() Node
		SetVolume(volume float64) // master volume, clamped to [0,1]
		Volume() float64
		// Resume resumes a suspended graph. It returns ErrAudioUnavailable if
		// the graph cannot produce sound anymore.
		Resume() error
	}

	Node interface {
		Connect(dst Node)
	}

	// Oscillator is a sine wave source.
	Oscillator interface {
		Node
		Start(at float64)
		Stop(at float64)
	}

	Gain interface {
		Node
		Gain() Param
	}

	// Param is a node value that can be set or ramped at scheduled times.
	Param interface {
		SetValueAtTime(value, at float64)
		LinearRampToValueAtTime(value, at float64)
		ExponentialRampToValueAtTime(value, at float64)
		// CancelScheduledValues removes all scheduled changes at or after at.
		CancelScheduledValues(at float64)
		// Value is the value of the parameter at the current time.
		Value() float64
	}

	// AudioSource fills the buffer with interleaved stereo samples.
	AudioSource func(buf []float32) error

	// AudioContext plays audio sources on an output device.
	AudioContext interface {
		Play(f AudioSource) CloserWaiter
		Close() error
	}

	// CloserWaiter is a handle to a playing source. Wait blocks until the
	// source stops producing audio, either because it returned an error or
	// because Close was called.
	CloserWaiter interface {
		Close() error
		Wait()
	}
)

var ErrAudioUnavailable = errors.New("audio is unavailable")
