package vpiano

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"
)

type Preferences struct {
	Envelope      Envelope
	Volume        float64
	HoldTimeoutMs int
	MIDIInput     string `yaml:"midiinput"`
	KeyMap        map[string]string
}

//go:embed preferences.yml
var defaultPreferencesYaml []byte

func LoadDefaultPreferences() Preferences {
	var preferences Preferences
	err := yaml.UnmarshalStrict(defaultPreferencesYaml, &preferences)
	if err != nil {
		panic(fmt.Errorf("failed to unmarshal preferences: %w", err))
	}
	return preferences
}

// PreferencesPath is where the user's preferences are read from, if the
// file exists.
func PreferencesPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "vpiano", "preferences.yml"), nil
}

// ReadPreferences reads the preferences file at path on top of the defaults.
// A missing file is not an error; the defaults are returned. A keymap in the
// file replaces the whole default keymap, so keys can also be unbound.
func ReadPreferences(path string) (Preferences, error) {
	preferences := LoadDefaultPreferences()
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return preferences, nil
	}
	if err != nil {
		return preferences, fmt.Errorf("could not read preferences: %w", err)
	}
	defaultKeyMap := preferences.KeyMap
	preferences.KeyMap = nil // a keymap in the file replaces the default one
	if err := yaml.UnmarshalStrict(bytes, &preferences); err != nil {
		return LoadDefaultPreferences(), fmt.Errorf("could not parse preferences %v: %w", path, err)
	}
	if preferences.KeyMap == nil {
		preferences.KeyMap = defaultKeyMap
	}
	if err := preferences.Validate(); err != nil {
		return LoadDefaultPreferences(), fmt.Errorf("invalid preferences %v: %w", path, err)
	}
	return preferences, nil
}

func (p Preferences) Validate() error {
	if err := p.Envelope.Validate(); err != nil {
		return err
	}
	if p.Volume < 0 || p.Volume > 1 {
		return fmt.Errorf("volume %v outside [0,1]", p.Volume)
	}
	if p.HoldTimeoutMs <= 0 {
		return fmt.Errorf("hold timeout must be positive, got %vms", p.HoldTimeoutMs)
	}
	for key, name := range p.KeyMap {
		if len([]rune(key)) != 1 {
			return fmt.Errorf("key %q in keymap is not a single character", key)
		}
		if _, ok := NoteByName(name); !ok {
			return fmt.Errorf("key %q: %w %q", key, ErrUnknownNote, name)
		}
	}
	return nil
}

func (p Preferences) HoldTimeout() time.Duration {
	return time.Duration(p.HoldTimeoutMs) * time.Millisecond
}

// RuneKeyMap returns the keymap keyed by characters, for terminal input.
func (p Preferences) RuneKeyMap() map[rune]string {
	ret := make(map[rune]string, len(p.KeyMap))
	for key, name := range p.KeyMap {
		r := []rune(key)
		if len(r) == 1 {
			ret[r[0]] = name
		}
	}
	return ret
}
