package synth

import (
	"math"

	"github.com/vsariola/vpiano"
)

const (
	bounceBlock = 4096 // frames rendered at a time
	bounceTail  = 0.1  // seconds of silence after the last release
)

// Bounce renders a recording offline and returns interleaved stereo samples.
// Notes still held at the end of the recording are released, and the
// rendering continues until their release has faded out.
func Bounce(events vpiano.EventLog, env vpiano.Envelope, sampleRate int) ([]float32, error) {
	if err := events.Validate(); err != nil {
		return nil, err
	}
	if err := env.Validate(); err != nil {
		return nil, err
	}
	c := NewContext(sampleRate)
	voices := vpiano.NewVoiceManager(c, env, nil)
	var out []float32
	frames := 0
	renderUntil := func(t float64) {
		end := int(math.Round(t * float64(c.sampleRate)))
		for frames < end {
			n := min(end-frames, bounceBlock)
			start := len(out)
			out = append(out, make([]float32, 2*n)...)
			c.Render(out[start:])
			frames += n
		}
	}
	for _, e := range events {
		renderUntil(e.Time / 1000)
		note, _ := vpiano.NoteByName(e.Name)
		if e.Type == vpiano.NoteStart {
			voices.NoteOn(note.Name, note.Frequency)
		} else {
			voices.NoteOff(note.Name)
		}
	}
	voices.AllNotesOff()
	renderUntil(events.Duration()/1000 + env.Release + bounceTail)
	return out, nil
}
