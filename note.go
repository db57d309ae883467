package vpiano

// Note is one key of the piano. Notes are immutable; the table of all notes is
// defined at startup and never changes.
type Note struct {
	Name       string  // unique identifier, e.g. "C#4"
	Frequency  float64 // Hz
	Accidental bool    // true for the black keys
	MIDI       byte    // MIDI key number, C4 = 60
}

// noteTable lists the notes chromatically from C4 to C5.
var noteTable = [...]Note{
	{Name: "C4", Frequency: 261.63, MIDI: 60},
	{Name: "C#4", Frequency: 277.18, Accidental: true, MIDI: 61},
	{Name: "D4", Frequency: 293.66, MIDI: 62},
	{Name: "D#4", Frequency: 311.13, Accidental: true, MIDI: 63},
	{Name: "E4", Frequency: 329.63, MIDI: 64},
	{Name: "F4", Frequency: 349.23, MIDI: 65},
	{Name: "F#4", Frequency: 369.99, Accidental: true, MIDI: 66},
	{Name: "G4", Frequency: 392.00, MIDI: 67},
	{Name: "G#4", Frequency: 415.30, Accidental: true, MIDI: 68},
	{Name: "A4", Frequency: 440.00, MIDI: 69},
	{Name: "A#4", Frequency: 466.16, Accidental: true, MIDI: 70},
	{Name: "B4", Frequency: 493.88, MIDI: 71},
	{Name: "C5", Frequency: 523.25, MIDI: 72},
}

// Notes returns a copy of the note table, in chromatic order.
func Notes() []Note {
	ret := make([]Note, len(noteTable))
	copy(ret, noteTable[:])
	return ret
}

// NoteByName finds a note by its name. The table is small enough that a
// linear search is fine.
func NoteByName(name string) (Note, bool) {
	for _, n := range noteTable {
		if n.Name == name {
			return n, true
		}
	}
	return Note{}, false
}

// NoteByMIDI finds a note by its MIDI key number. Keys outside the range of
// the piano are not found.
func NoteByMIDI(key byte) (Note, bool) {
	first := noteTable[0].MIDI
	if key < first || int(key-first) >= len(noteTable) {
		return Note{}, false
	}
	return noteTable[key-first], true
}

// noteIndex returns the position of the note in the chromatic table, or -1.
func noteIndex(name string) int {
	for i, n := range noteTable {
		if n.Name == name {
			return i
		}
	}
	return -1
}
