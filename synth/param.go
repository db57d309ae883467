package synth

import (
	"math"
	"sort"
)

type (
	// Param is an automated node value. It keeps a timeline of scheduled
	// events sorted by time; the value at any time is the value of the last
	// event before it, or the interpolation towards the next event if that
	// event is a ramp.
	Param struct {
		ctx    *Context
		value  float64 // value before the first event
		events []paramEvent
	}

	paramEvent struct {
		kind  eventKind
		value float64
		time  float64
	}

	eventKind int
)

const (
	setValue eventKind = iota
	linearRamp
	exponentialRamp
)

func (p *Param) SetValueAtTime(value, at float64) {
	p.schedule(paramEvent{setValue, value, at})
}

func (p *Param) LinearRampToValueAtTime(value, at float64) {
	p.schedule(paramEvent{linearRamp, value, at})
}

// ExponentialRampToValueAtTime ramps exponentially to the value. Exponential
// curves cannot start or end at zero or cross it; in those cases the ramp is
// linear instead.
func (p *Param) ExponentialRampToValueAtTime(value, at float64) {
	p.schedule(paramEvent{exponentialRamp, value, at})
}

func (p *Param) CancelScheduledValues(at float64) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time >= at })
	p.events = p.events[:i]
}

func (p *Param) Value() float64 {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	return p.valueAt(p.ctx.now())
}

func (p *Param) schedule(e paramEvent) {
	p.ctx.mu.Lock()
	defer p.ctx.mu.Unlock()
	// events at the same time are kept in the order they were scheduled
	i := sort.Search(len(p.events), func(i int) bool { return p.events[i].time > e.time })
	p.events = append(p.events, paramEvent{})
	copy(p.events[i+1:], p.events[i:])
	p.events[i] = e
}

func (p *Param) valueAt(t float64) float64 {
	v, vt := p.value, 0.0
	for _, e := range p.events {
		if e.time <= t {
			v, vt = e.value, e.time
			continue
		}
		pos := (t - vt) / (e.time - vt)
		switch e.kind {
		case linearRamp:
			return v + (e.value-v)*pos
		case exponentialRamp:
			if v*e.value <= 0 {
				return v + (e.value-v)*pos
			}
			return v * math.Pow(e.value/v, pos)
		}
		return v
	}
	return v
}

// prune drops the events that no longer affect values at or after time t,
// folding them into the initial value.
func (p *Param) prune(t float64) {
	i := 0
	for i < len(p.events)-1 && p.events[i+1].time <= t {
		i++
	}
	if i > 0 {
		p.value = p.events[i-1].value
		p.events = p.events[i:]
	}
}
