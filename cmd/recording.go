package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vsariola/vpiano"
	"github.com/vsariola/vpiano/gomidi"
)

func isMIDIFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".mid" || ext == ".midi"
}

// ReadRecording reads a recording from a .yml file or, judging by the file
// extension, a Standard MIDI File.
func ReadRecording(path string) (vpiano.EventLog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open recording: %w", err)
	}
	defer f.Close()
	if isMIDIFile(path) {
		return gomidi.ReadSMF(f)
	}
	return vpiano.ReadEventLog(f)
}

// WriteRecording saves the recording, as a Standard MIDI File if the path
// ends with .mid or .midi and as yaml otherwise.
func WriteRecording(path string, events vpiano.EventLog) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file %v: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("could not close file %v: %w", path, cerr)
		}
	}()
	if isMIDIFile(path) {
		return gomidi.WriteSMF(f, events)
	}
	return events.Write(f)
}
