package main

import (
	"testing"
	"time"
)

type bridgeCall struct {
	down bool
	name string
}

type fakeBridge struct {
	calls []bridgeCall
}

func (f *fakeBridge) Down(name string) error {
	f.calls = append(f.calls, bridgeCall{true, name})
	return nil
}

func (f *fakeBridge) Up(name string) error {
	f.calls = append(f.calls, bridgeCall{false, name})
	return nil
}

func TestHeldKeys(t *testing.T) {
	bridge := &fakeBridge{}
	h := newHeldKeys(bridge, map[rune]string{'a': "C4", 's': "D4"}, 100*time.Millisecond)
	t0 := time.Unix(0, 0)
	at := func(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }
	if ok, err := h.Press('x', at(0)); ok || err != nil {
		t.Fatalf("Press of an unmapped key = %v, %v; want false, nil", ok, err)
	}
	h.Press('a', at(0))
	h.Press('a', at(60)) // auto-repeat
	h.Press('s', at(90))
	if err := h.Expire(at(120)); err != nil {
		t.Fatal(err)
	}
	if len(bridge.calls) != 2 {
		t.Fatalf("repeated key should not retrigger or release yet: %+v", bridge.calls)
	}
	h.Expire(at(160))
	if h.Held() != 1 {
		t.Fatalf("Held() = %v, want 1", h.Held())
	}
	h.Expire(at(190))
	want := []bridgeCall{{true, "C4"}, {true, "D4"}, {false, "C4"}, {false, "D4"}}
	if len(bridge.calls) != len(want) {
		t.Fatalf("calls = %+v, want %+v", bridge.calls, want)
	}
	for i := range want {
		if bridge.calls[i] != want[i] {
			t.Fatalf("call %d = %+v, want %+v", i, bridge.calls[i], want[i])
		}
	}
	h.Press('a', at(200))
	if err := h.ReleaseAll(); err != nil {
		t.Fatal(err)
	}
	if h.Held() != 0 || len(bridge.calls) != 6 {
		t.Fatalf("ReleaseAll should release the held key: %+v", bridge.calls)
	}
}
