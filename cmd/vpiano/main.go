package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/vsariola/vpiano"
	"github.com/vsariola/vpiano/cmd"
	"github.com/vsariola/vpiano/listing"
	"github.com/vsariola/vpiano/oto"
	"github.com/vsariola/vpiano/synth"
	"github.com/vsariola/vpiano/version"
)

const tickInterval = 50 * time.Millisecond

func main() {
	versionFlag := flag.Bool("v", false, "Print version.")
	midiInput := flag.String("midi-input", "", "Connect MIDI input to matching device name prefix. Overrides the preferences.")
	list := flag.Bool("list", false, "Print the recording and exit.")
	export := flag.String("export", "", "Convert the recording to a Standard MIDI File and exit.")
	wavOut := flag.String("wav", "", "Render the recording to a .wav file and exit.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when rendering a .wav file.")
	volume := flag.Float64("volume", 0.8, "Master volume between 0 and 1. Overrides the preferences.")
	config := flag.String("config", "", "Preferences file. By default, vpiano/preferences.yml in the user config directory.")
	output := flag.String("o", "", "File where key 5 saves the recording, .yml or .mid.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	logger := log.New(os.Stderr, "vpiano: ", log.LstdFlags)
	var recording vpiano.EventLog
	if flag.NArg() > 0 {
		var err error
		recording, err = cmd.ReadRecording(flag.Arg(0))
		if err != nil {
			logger.Fatalf("could not read %v: %v", flag.Arg(0), err)
		}
	}
	if *list || *export != "" || *wavOut != "" {
		if flag.NArg() == 0 {
			fmt.Fprintln(os.Stderr, "-list, -export and -wav need a recording file")
			os.Exit(1)
		}
		if *list {
			lister, err := listing.New()
			if err != nil {
				logger.Fatal(err)
			}
			if err := lister.Render(os.Stdout, filepath.Base(flag.Arg(0)), recording); err != nil {
				logger.Fatal(err)
			}
		}
		if *export != "" {
			if err := cmd.WriteRecording(*export, recording); err != nil {
				logger.Fatal(err)
			}
		}
		if *wavOut != "" {
			prefs := readPreferences(*config, logger)
			if err := writeWav(*wavOut, recording, prefs.Envelope, *pcm); err != nil {
				logger.Fatal(err)
			}
		}
		os.Exit(0)
	}

	prefs := readPreferences(*config, logger)
	if isFlagPassed("volume") {
		prefs.Volume = *volume
	}
	if isFlagPassed("midi-input") {
		prefs.MIDIInput = *midiInput
	}

	graph := synth.NewContext(synth.SampleRate)
	graph.SetVolume(prefs.Volume)
	graph.Suspend() // the first note resumes the graph
	audioContext, err := oto.NewContext()
	if err != nil {
		logger.Printf("%v; playing without sound", err)
		graph.Close()
	} else {
		audioCloser := audioContext.Play(graph.Render)
		defer audioContext.Close()
		defer audioCloser.Close()
	}
	piano := vpiano.NewPiano(graph, vpiano.WithEnvelope(prefs.Envelope), vpiano.WithLogger(logger))
	if recording != nil {
		if err := piano.LoadEvents(recording); err != nil {
			logger.Fatal(err)
		}
	}
	midiContext := cmd.NewMIDIContext(piano, logger)
	defer midiContext.Close()
	if err := midiContext.TryToOpenBy(prefs.MIDIInput, false); err != nil {
		logger.Printf("failed to open MIDI input: %v", err)
	}

	s := newSession(piano, prefs, *output, graph.Level, logger)
	if err := run(s); err != nil {
		logger.Print(err)
	}
}

func run(s *session) error {
	keys, err := keyboard.GetKeys(10)
	if err != nil {
		return fmt.Errorf("could not read the terminal: %w", err)
	}
	defer keyboard.Close()
	defer s.Close()
	fmt.Println("keys a-k play notes; 1 record, 2 play, 3 clear, 5 save, space sustain, +/- volume, 0 panic, esc quit")
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-keys:
			if ev.Err != nil {
				return ev.Err
			}
			switch ev.Key {
			case keyboard.KeyEsc, keyboard.KeyCtrlC:
				fmt.Println()
				return nil
			case keyboard.KeySpace:
				s.HandleRune(' ', time.Now())
			default:
				s.HandleRune(ev.Rune, time.Now())
			}
		case now := <-ticker.C:
			s.Tick(now)
		}
		fmt.Printf("\r%s  ", s.Status())
	}
}

// readPreferences falls back to the defaults, logging why, if the
// preferences cannot be read.
func readPreferences(path string, logger *log.Logger) vpiano.Preferences {
	if path == "" {
		var err error
		if path, err = vpiano.PreferencesPath(); err != nil {
			logger.Printf("using default preferences: %v", err)
			return vpiano.LoadDefaultPreferences()
		}
	}
	prefs, err := vpiano.ReadPreferences(path)
	if err != nil {
		logger.Printf("using default preferences: %v", err)
	}
	return prefs
}

func writeWav(path string, events vpiano.EventLog, env vpiano.Envelope, pcm16 bool) error {
	buffer, err := synth.Bounce(events, env, synth.SampleRate)
	if err != nil {
		return fmt.Errorf("could not render the recording: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file %v: %w", path, err)
	}
	if err := vpiano.WriteWav(f, buffer, synth.SampleRate, pcm16); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func isFlagPassed(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "vpiano plays a one octave piano from the terminal and MIDI keyboards.\nUsage: %s [flags] [recording.yml|recording.mid]\n", os.Args[0])
	flag.PrintDefaults()
}
