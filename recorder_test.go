package vpiano_test

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/vsariola/vpiano"
)

func TestRecordNoteAndRelease(t *testing.T) {
	clock := newFakeClock()
	r := vpiano.NewRecorder(clock.Now)
	r.Arm()
	r.Record(vpiano.NoteStart, "C4")
	clock.Advance(500 * time.Millisecond)
	r.Record(vpiano.NoteStop, "C4")
	r.Disarm()
	got := r.Events()
	want := vpiano.EventLog{
		{Type: vpiano.NoteStart, Name: "C4", Time: 0},
		{Type: vpiano.NoteStop, Name: "C4", Time: 500},
	}
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("event %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("recorded log is invalid: %v", err)
	}
}

func TestRecordOnlyWhenArmed(t *testing.T) {
	r := vpiano.NewRecorder(nil)
	r.Record(vpiano.NoteStart, "C4")
	if got := r.Len(); got != 0 {
		t.Fatalf("events recorded while disarmed = %v, want 0", got)
	}
	r.Disarm() // disarming a disarmed recorder is fine
	r.Arm()
	r.Record(vpiano.NoteStart, "C4")
	r.Disarm()
	r.Record(vpiano.NoteStop, "C4")
	if got := r.Len(); got != 1 {
		t.Fatalf("events = %v, want 1", got)
	}
}

func TestArmDiscardsPreviousRecording(t *testing.T) {
	clock := newFakeClock()
	r := vpiano.NewRecorder(clock.Now)
	r.Arm()
	r.Record(vpiano.NoteStart, "C4")
	clock.Advance(time.Second)
	r.Disarm()
	r.Arm()
	r.Record(vpiano.NoteStart, "D4")
	got := r.Events()
	if len(got) != 1 || got[0].Name != "D4" || got[0].Time != 0 {
		t.Fatalf("events after re-arming = %v, want a single D4 at 0ms", got)
	}
}

func TestClearRegardlessOfArmed(t *testing.T) {
	for _, armed := range []bool{false, true} {
		r := vpiano.NewRecorder(nil)
		r.Arm()
		r.Record(vpiano.NoteStart, "C4")
		if !armed {
			r.Disarm()
		}
		r.Clear()
		if got := r.Len(); got != 0 {
			t.Fatalf("armed=%v: events after clear = %v, want 0", armed, got)
		}
		if got := r.Armed(); got != armed {
			t.Fatalf("Clear changed armed state to %v", got)
		}
	}
}

func TestEventsReturnsCopy(t *testing.T) {
	r := vpiano.NewRecorder(nil)
	r.Arm()
	r.Record(vpiano.NoteStart, "C4")
	events := r.Events()
	events[0].Name = "D4"
	if got := r.Events()[0].Name; got != "C4" {
		t.Fatalf("modifying the returned events changed the recording: %v", got)
	}
}

func TestEventLogValidate(t *testing.T) {
	tests := []struct {
		name   string
		events vpiano.EventLog
		ok     bool
	}{
		{"Empty", nil, true},
		{"Ordered", vpiano.EventLog{{"start", "C4", 0}, {"start", "E4", 0}, {"stop", "C4", 10}}, true},
		{"OutOfOrder", vpiano.EventLog{{"start", "C4", 10}, {"stop", "C4", 5}}, false},
		{"UnknownNote", vpiano.EventLog{{"start", "H4", 0}}, false},
		{"UnknownType", vpiano.EventLog{{"hold", "C4", 0}}, false},
		{"NegativeTime", vpiano.EventLog{{"start", "C4", -1}}, false},
		{"NaNTime", vpiano.EventLog{{"start", "C4", math.NaN()}}, false},
		{"BackwardsAfterNaN", vpiano.EventLog{{"start", "C4", 100}, {"stop", "C4", math.NaN()}, {"start", "D4", 5}}, false},
		{"InfiniteTime", vpiano.EventLog{{"start", "C4", math.Inf(1)}}, false},
		{"NegativeInfiniteTime", vpiano.EventLog{{"start", "C4", math.Inf(-1)}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.events.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if !tt.ok && !errors.Is(err, vpiano.ErrInvalidLog) {
				t.Fatalf("Validate = %v, want ErrInvalidLog", err)
			}
		})
	}
}

func TestEventLogFile(t *testing.T) {
	events := vpiano.EventLog{
		{Type: vpiano.NoteStart, Name: "C#4", Time: 0},
		{Type: vpiano.NoteStop, Name: "C#4", Time: 512.5},
	}
	var buf bytes.Buffer
	if err := events.Write(&buf); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(buf.String(), "name: C#4") {
		t.Fatalf("unexpected file contents:\n%s", buf.String())
	}
	got, err := vpiano.ReadEventLog(&buf)
	if err != nil {
		t.Fatalf("ReadEventLog failed: %v", err)
	}
	if len(got) != 2 || got[1] != events[1] {
		t.Fatalf("read %v, want %v", got, events)
	}
}

func TestReadEventLogRejectsInvalid(t *testing.T) {
	in := "events:\n  - {type: start, name: C4, time: 100}\n  - {type: stop, name: C4, time: 50}\n"
	if _, err := vpiano.ReadEventLog(strings.NewReader(in)); !errors.Is(err, vpiano.ErrInvalidLog) {
		t.Fatalf("ReadEventLog = %v, want ErrInvalidLog", err)
	}
	for _, v := range []string{".nan", ".inf", "-.inf"} {
		in := "events:\n  - {type: start, name: C4, time: 100}\n  - {type: stop, name: C4, time: " + v + "}\n  - {type: start, name: D4, time: 5}\n"
		if _, err := vpiano.ReadEventLog(strings.NewReader(in)); !errors.Is(err, vpiano.ErrInvalidLog) {
			t.Fatalf("ReadEventLog with time %v = %v, want ErrInvalidLog", v, err)
		}
	}
	if _, err := vpiano.ReadEventLog(strings.NewReader("events: [")); err == nil {
		t.Fatalf("ReadEventLog should fail on malformed yaml")
	}
}
