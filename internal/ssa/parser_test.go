package ssa_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"subparse/internal/ssa"
)

const tenFieldFormat = "Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text"

func feed(t *testing.T, st *ssa.State, lines ...string) []string {
	t.Helper()
	var out []string
	for _, line := range lines {
		text, ok, err := st.ParseLine(line)
		if err != nil && !ok {
			t.Fatalf("ParseLine(%q) failed: %v", line, err)
		}
		if ok {
			out = append(out, text)
		}
	}
	return out
}

func TestStateTransitions(t *testing.T) {
	var st ssa.State
	if st.Phase != ssa.PhasePreamble {
		t.Fatalf("zero state should be in preamble, got %s", st.Phase)
	}

	out := feed(t, &st,
		"[Script Info]",
		"Title: demo",
		"[V4+ Styles]",
		"Format: Name, Fontname, Fontsize",
		"Style: Default,Arial,20",
	)
	if len(out) != 0 {
		t.Fatalf("preamble produced output: %v", out)
	}
	if st.Phase != ssa.PhasePreamble || st.FieldCount != 0 {
		t.Fatalf("styles format line must not be learned, got %s/%d", st.Phase, st.FieldCount)
	}

	feed(t, &st, "", "[Events]")
	if st.Phase != ssa.PhaseInEvents {
		t.Fatalf("expected in_events, got %s", st.Phase)
	}
	feed(t, &st, tenFieldFormat)
	if st.Phase != ssa.PhaseFormatKnown || st.FieldCount != 10 {
		t.Fatalf("expected format_known with 10 fields, got %s/%d", st.Phase, st.FieldCount)
	}

	feed(t, &st, "[Events]", "Format: Layer, Start, End, Text")
	if st.FieldCount != 4 {
		t.Fatalf("expected re-learned field count 4, got %d", st.FieldCount)
	}
}

func TestParseLineTenFieldText(t *testing.T) {
	var st ssa.State
	feed(t, &st, "[Events]", tenFieldFormat)

	line := "Dialogue: 0,0:00:01.00,0:00:02.50,Default,Bob,0,0,0,,Well, hello, there"
	text, ok, err := st.ParseLine(line)
	if err != nil || !ok {
		t.Fatalf("ParseLine failed: ok=%v err=%v", ok, err)
	}
	idx := 0
	for i := 0; i < 9; i++ {
		idx += strings.IndexByte(line[idx:], ',') + 1
	}
	if text != line[idx:] || text != "Well, hello, there" {
		t.Fatalf("unexpected text %q", text)
	}
	if st.Start != time.Second || st.Duration != 1500*time.Millisecond {
		t.Fatalf("unexpected timing start=%v duration=%v", st.Start, st.Duration)
	}
}

func TestParseLineFourFields(t *testing.T) {
	var st ssa.State
	out := feed(t, &st,
		"[Script Info]",
		"[Events]",
		"Format: Layer, Start, End, Text",
		"Dialogue: 0,0:00:01.00,0:00:03.00,Hello",
	)
	if len(out) != 1 || out[0] != "Hello" {
		t.Fatalf("unexpected output %v", out)
	}
	if st.Start != time.Second || st.Duration != 2*time.Second {
		t.Fatalf("unexpected timing start=%v duration=%v", st.Start, st.Duration)
	}
}

func TestParseLinePermissiveMatching(t *testing.T) {
	var st ssa.State
	feed(t, &st, "[Events]", "Format: Layer, Start, End, Text")

	// Once the layout is known any line carrying a marker is a record.
	text, ok, err := st.ParseLine("Comment: 0,0:00:04.00,0:00:05.00,Format notes")
	if !ok || err != nil || text != "Format notes" {
		t.Fatalf("expected permissive record, got %q ok=%v err=%v", text, ok, err)
	}

	// "Dialogue" anywhere on the line qualifies, even before the layout.
	var fresh ssa.State
	text, ok, _ = fresh.ParseLine("x,0:00:01.00,0:00:02.00,Dialogue text")
	if !ok || text != "Dialogue text" {
		t.Fatalf("expected record before format, got %q ok=%v", text, ok)
	}
}

func TestParseLineEventsMarkerWinsOverDialogue(t *testing.T) {
	var st ssa.State
	feed(t, &st, "[Events]", "Format: Layer, Start, End, Text")

	text, ok, err := st.ParseLine("Dialogue: 0,0:00:01.00,0:00:02.00,Current Events tonight")
	if ok || err != nil || text != "" {
		t.Fatalf("expected line naming Events to be consumed, got %q ok=%v err=%v", text, ok, err)
	}
	if st.Phase != ssa.PhaseInEvents {
		t.Fatalf("expected phase %s, got %s", ssa.PhaseInEvents, st.Phase)
	}
}

func TestParseLineFormatMarkerWinsOverDialogue(t *testing.T) {
	var st ssa.State
	feed(t, &st, "[Events]")

	text, ok, err := st.ParseLine("Dialogue: 0,0:00:01.00,0:00:02.00,Format the disk")
	if ok || err != nil || text != "" {
		t.Fatalf("expected line naming Format to declare the layout, got %q ok=%v err=%v", text, ok, err)
	}
	if st.Phase != ssa.PhaseFormatKnown || st.FieldCount != 4 {
		t.Fatalf("expected format_known with 4 fields, got %s/%d", st.Phase, st.FieldCount)
	}
}

func TestParseLineBadTimestampKeepsText(t *testing.T) {
	var st ssa.State
	feed(t, &st, "[Events]", "Format: Layer, Start, End, Text")

	text, ok, err := st.ParseLine("Dialogue: 0,garbage,0:00:03.00,Still here")
	if !ok || text != "Still here" {
		t.Fatalf("expected text despite bad timestamp, got %q ok=%v", text, ok)
	}
	if !errors.Is(err, ssa.ErrTimestamp) {
		t.Fatalf("expected timestamp error, got %v", err)
	}
	if st.Start != ssa.TimeNone || st.Duration != ssa.TimeNone {
		t.Fatalf("expected unknown times, got start=%v duration=%v", st.Start, st.Duration)
	}
}

func TestParseLineTooFewColumns(t *testing.T) {
	var st ssa.State
	feed(t, &st, "[Events]", tenFieldFormat)

	text, ok, err := st.ParseLine("Dialogue: 0,0:00:01.00,0:00:02.00,Default,Oops")
	if ok || text != "" {
		t.Fatalf("expected no output, got %q", text)
	}
	var recErr *ssa.RecordError
	if !errors.As(err, &recErr) || !errors.Is(err, ssa.ErrRecord) {
		t.Fatalf("expected RecordError, got %v", err)
	}
	if recErr.Commas != 4 || recErr.Want != 9 {
		t.Fatalf("unexpected comma counts %d/%d", recErr.Commas, recErr.Want)
	}
}

func TestStateResetAndAdvance(t *testing.T) {
	st := ssa.State{MaxDuration: time.Second, Segment: ssa.NewSegment()}
	feed(t, &st, "[Events]", "Format: Layer, Start, End, Text", "Dialogue: 0,0:00:01.00,0:00:04.00,Long")

	if got := st.EmitDuration(); got != time.Second {
		t.Fatalf("expected clamp to 1s, got %v", got)
	}
	st.Advance()
	if st.Start != 4*time.Second || st.Duration != 0 {
		t.Fatalf("unexpected cursor after advance: start=%v duration=%v", st.Start, st.Duration)
	}

	st.Reset()
	if st.Phase != ssa.PhasePreamble || st.FieldCount != 0 || st.Start != 0 {
		t.Fatalf("reset left state behind: %+v", st)
	}
	if st.MaxDuration != time.Second || st.Segment == nil {
		t.Fatal("reset must keep configuration")
	}
}

func TestAdvanceSkipsUnknownDuration(t *testing.T) {
	st := ssa.State{Start: 2 * time.Second, Duration: ssa.TimeNone}
	if got := st.EmitDuration(); got != ssa.TimeNone {
		t.Fatalf("unknown duration must not be clamped, got %v", got)
	}
	st.Advance()
	if st.Start != 2*time.Second {
		t.Fatalf("cursor moved by unknown duration: %v", st.Start)
	}
}

func TestParseRecordDuration(t *testing.T) {
	rec, err := ssa.ParseRecord("Dialogue: 0,0:00:01.00,bad,Hi", 4)
	if err == nil {
		t.Fatal("expected end timestamp error")
	}
	if rec.Text != "Hi" || rec.Start != time.Second || rec.Duration() != ssa.TimeNone {
		t.Fatalf("unexpected record %+v", rec)
	}
}

func TestPhaseString(t *testing.T) {
	if ssa.PhaseFormatKnown.String() != "format_known" || ssa.Phase(9).String() != "phase(9)" {
		t.Fatal("unexpected phase names")
	}
}
