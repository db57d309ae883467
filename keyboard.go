package vpiano

import "errors"

type (
	// Keyboard associates the keys of a keyboard (e.g. a computer keyboard)
	// to the notes they are playing. You can use any comparable type T to
	// identify each key. A key that is already down does not trigger its
	// note again, which filters out the repeated presses of auto-repeat.
	Keyboard[T comparable] struct {
		bridge  InputBridge
		keys    map[T]string
		pressed map[T]string
	}
)

func MakeKeyboard[T comparable](bridge InputBridge, keys map[T]string) Keyboard[T] {
	return Keyboard[T]{
		bridge:  bridge,
		keys:    keys,
		pressed: make(map[T]string),
	}
}

// Press sends the note of the key down. It returns false if the key is not
// mapped to a note or is already down.
func (k *Keyboard[T]) Press(key T) (bool, error) {
	if _, ok := k.pressed[key]; ok {
		return false, nil // already playing a note with this key
	}
	name, ok := k.keys[key]
	if !ok {
		return false, nil
	}
	if err := k.bridge.Down(name); err != nil {
		return false, err
	}
	k.pressed[key] = name
	return true, nil
}

// Release sends the note of the key up, if the key is down.
func (k *Keyboard[T]) Release(key T) error {
	name, ok := k.pressed[key]
	if !ok {
		return nil
	}
	delete(k.pressed, key)
	return k.bridge.Up(name)
}

// ReleaseAll releases every key that is down, even if releasing some of them
// fails.
func (k *Keyboard[T]) ReleaseAll() error {
	var errs []error
	for key := range k.pressed {
		if err := k.Release(key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (k *Keyboard[T]) Pressed(key T) bool {
	_, ok := k.pressed[key]
	return ok
}

// Mapped reports if the key plays a note.
func (k *Keyboard[T]) Mapped(key T) bool {
	_, ok := k.keys[key]
	return ok
}
