package main

import (
	"errors"
	"time"

	"github.com/vsariola/vpiano"
)

// heldKeys plays a vpiano.Keyboard from a terminal. Terminals report only
// key presses, repeated by auto-repeat while the key is held down, so a key
// is released once it has not been repeated for the hold timeout.
type heldKeys struct {
	keyboard vpiano.Keyboard[rune]
	timeout  time.Duration
	lastSeen map[rune]time.Time
}

func newHeldKeys(bridge vpiano.InputBridge, keys map[rune]string, timeout time.Duration) *heldKeys {
	return &heldKeys{
		keyboard: vpiano.MakeKeyboard(bridge, keys),
		timeout:  timeout,
		lastSeen: make(map[rune]time.Time),
	}
}

// Press returns false if the key does not play a note.
func (h *heldKeys) Press(key rune, now time.Time) (bool, error) {
	if !h.keyboard.Mapped(key) {
		return false, nil
	}
	h.lastSeen[key] = now
	_, err := h.keyboard.Press(key)
	return true, err
}

// Expire releases the keys not seen within the timeout before now.
func (h *heldKeys) Expire(now time.Time) error {
	var errs []error
	for key, seen := range h.lastSeen {
		if now.Sub(seen) < h.timeout {
			continue
		}
		delete(h.lastSeen, key)
		if err := h.keyboard.Release(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (h *heldKeys) ReleaseAll() error {
	clear(h.lastSeen)
	return h.keyboard.ReleaseAll()
}

func (h *heldKeys) Held() int { return len(h.lastSeen) }
