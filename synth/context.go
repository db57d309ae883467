// Package synth implements vpiano.AudioGraph in software: sine oscillators
// and gain nodes rendered sample by sample against a clock that advances with
// the rendered audio.
package synth

import (
	"math"
	"sync"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/vpiano"
)

const SampleRate = 44100

// maxChain limits how many gain nodes a signal can pass through, so that a
// cyclic graph cannot hang the renderer.
const maxChain = 16

type (
	// Context is a software audio graph. Its clock is the number of rendered
	// frames; it does not advance while nothing is rendered or while the
	// context is suspended. Context is safe for concurrent use: Render is
	// typically called from the audio thread while notes are scheduled from
	// elsewhere.
	Context struct {
		mu          sync.Mutex
		sampleRate  int
		frame       int64
		volume      float64
		suspended   bool
		closed      bool
		oscillators []*Oscillator
		destination *destination
		level       float32

		mix, block, gains, squares []float32
	}

	Oscillator struct {
		ctx       *Context
		frequency float64
		phase     float64
		start     float64
		stop      float64
		started   bool
		stopped   bool
		out       vpiano.Node
	}

	Gain struct {
		ctx   *Context
		param Param
		out   vpiano.Node
	}

	destination struct{}
)

// NewContext returns a running graph at the given sample rate, with master
// volume 1.
func NewContext(sampleRate int) *Context {
	if sampleRate <= 0 {
		sampleRate = SampleRate
	}
	return &Context{sampleRate: sampleRate, volume: 1, destination: &destination{}}
}

func (c *Context) CurrentTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now()
}

func (c *Context) now() float64 {
	return float64(c.frame) / float64(c.sampleRate)
}

// NewOscillator returns a sine oscillator. Oscillators of a closed context are
// never rendered and are not kept by the context.
func (c *Context) NewOscillator(frequency float64) vpiano.Oscillator {
	o := &Oscillator{ctx: c, frequency: frequency}
	c.mu.Lock()
	if !c.closed {
		c.oscillators = append(c.oscillators, o)
	}
	c.mu.Unlock()
	return o
}

func (c *Context) NewGain() vpiano.Gain {
	g := &Gain{ctx: c}
	g.param = Param{ctx: c, value: 1}
	return g
}

func (c *Context) Destination() vpiano.Node { return c.destination }

func (c *Context) SetVolume(volume float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.volume = math.Max(0, math.Min(1, volume))
}

func (c *Context) Volume() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.volume
}

// Suspend pauses the clock; Render produces silence until Resume.
func (c *Context) Suspend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.suspended = true
}

func (c *Context) Resume() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return vpiano.ErrAudioUnavailable
	}
	c.suspended = false
	return nil
}

// Close stops the graph for good: Render produces silence and Resume fails.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.oscillators = nil
	return nil
}

// Oscillators returns the number of oscillators that have not finished yet.
func (c *Context) Oscillators() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.oscillators)
}

// Level returns the RMS level of the last rendered buffer.
func (c *Context) Level() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.level
}

// Render fills buf with interleaved stereo samples and advances the clock by
// len(buf)/2 frames. It implements vpiano.AudioSource.
func (c *Context) Render(buf []float32) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := len(buf) / 2
	if frames == 0 {
		return nil
	}
	if c.suspended || c.closed {
		clear(buf)
		c.level = 0
		return nil
	}
	c.mix = resize(c.mix, frames)
	c.block = resize(c.block, frames)
	c.gains = resize(c.gains, frames)
	clear(c.mix)
	start := c.now()
	dt := 1 / float64(c.sampleRate)
	for _, o := range c.oscillators {
		if !o.render(c.block, start, dt) {
			continue
		}
		if c.route(o.out, c.block, start, dt) {
			vek32.Add_Inplace(c.mix, c.block)
		}
	}
	vek32.MulNumber_Inplace(c.mix, float32(c.volume))
	for i, v := range c.mix {
		buf[2*i] = v
		buf[2*i+1] = v
	}
	c.squares = resize(c.squares, frames)
	c.level = float32(math.Sqrt(float64(vek32.Mean(vek32.Mul_Into(c.squares, c.mix, c.mix)))))
	c.frame += int64(frames)
	c.prune(c.now())
	return nil
}

// route applies the gains between a node and the destination to the block.
// It returns false if the chain does not end at the destination.
func (c *Context) route(n vpiano.Node, block []float32, start, dt float64) bool {
	for i := 0; i < maxChain; i++ {
		switch node := n.(type) {
		case *Gain:
			for j := range c.gains {
				c.gains[j] = float32(node.param.valueAt(start + float64(j)*dt))
			}
			vek32.Mul_Inplace(block, c.gains)
			n = node.out
		case *destination:
			return true
		default:
			return false
		}
	}
	return false
}

func (c *Context) prune(t float64) {
	kept := c.oscillators[:0]
	for _, o := range c.oscillators {
		if o.stopped && o.stop <= t {
			continue
		}
		kept = append(kept, o)
		for n, i := o.out, 0; i < maxChain; i++ {
			g, ok := n.(*Gain)
			if !ok {
				break
			}
			g.param.prune(t)
			n = g.out
		}
	}
	clear(c.oscillators[len(kept):])
	c.oscillators = kept
}

func (o *Oscillator) Connect(dst vpiano.Node) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.out = dst
}

func (o *Oscillator) Start(at float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	if o.started {
		return
	}
	o.started, o.start = true, at
}

func (o *Oscillator) Stop(at float64) {
	o.ctx.mu.Lock()
	defer o.ctx.mu.Unlock()
	o.stopped, o.stop = true, at
}

// render writes the oscillator's output for the block starting at time start.
// It returns false if the oscillator is silent for the whole block.
func (o *Oscillator) render(block []float32, start, dt float64) bool {
	if !o.started {
		return false
	}
	end := start + float64(len(block))*dt
	if o.start >= end || (o.stopped && o.stop <= start) {
		return false
	}
	step := 2 * math.Pi * o.frequency * dt
	for i := range block {
		t := start + float64(i)*dt
		if t < o.start || (o.stopped && t >= o.stop) {
			block[i] = 0
			continue
		}
		block[i] = float32(math.Sin(o.phase))
		o.phase += step
		if o.phase > 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
	return true
}

func (g *Gain) Connect(dst vpiano.Node) {
	g.ctx.mu.Lock()
	defer g.ctx.mu.Unlock()
	g.out = dst
}

func (g *Gain) Gain() vpiano.Param { return &g.param }

func (d *destination) Connect(vpiano.Node) {}

func resize(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}
