package oto

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/vpiano"
)

const (
	sampleRate     = 44100
	channelCount   = 2
	bytesPerSample = 2
	bufferSize     = 50 * time.Millisecond
)

type (
	OtoContext struct {
		context *oto.Context
	}

	// OtoOutput is a source playing on an OtoContext.
	OtoOutput struct {
		player *oto.Player
		reader *sourceReader
	}

	// sourceReader pulls audio from a vpiano.AudioSource as 16-bit stereo
	// bytes for the oto player. It reports io.EOF once the source fails or
	// the output is closed.
	sourceReader struct {
		mu       sync.Mutex
		source   vpiano.AudioSource
		buf      []float32
		err      error
		done     chan struct{}
		doneOnce sync.Once
	}
)

// NewContext opens the default audio device: 44100 Hz, stereo, 16-bit.
func NewContext() (*OtoContext, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   bufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

func (c *OtoContext) Play(f vpiano.AudioSource) vpiano.CloserWaiter {
	r := newSourceReader(f)
	p := c.context.NewPlayer(r)
	p.Play()
	return &OtoOutput{player: p, reader: r}
}

// Close suspends the device; oto contexts cannot be reopened in the same
// process.
func (c *OtoContext) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *OtoOutput) Close() error {
	o.reader.finish(nil)
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

func (o *OtoOutput) Wait() {
	<-o.reader.done
}

func newSourceReader(f vpiano.AudioSource) *sourceReader {
	return &sourceReader{source: f, done: make(chan struct{})}
}

func (r *sourceReader) Read(b []byte) (int, error) {
	select {
	case <-r.done:
		return 0, io.EOF
	default:
	}
	frames := len(b) / (channelCount * bytesPerSample)
	if frames == 0 {
		return 0, nil
	}
	r.mu.Lock()
	if cap(r.buf) < frames*channelCount {
		r.buf = make([]float32, frames*channelCount)
	}
	r.buf = r.buf[:frames*channelCount]
	err := r.source(r.buf)
	r.mu.Unlock()
	if err != nil {
		r.finish(err)
		return 0, io.EOF
	}
	return len(FloatBufferTo16BitLE(r.buf, b[:0])), nil
}

func (r *sourceReader) finish(err error) {
	r.doneOnce.Do(func() {
		r.mu.Lock()
		r.err = err
		r.mu.Unlock()
		close(r.done)
	})
}
