package ssa

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Phase is the position of a State within a script.
type Phase int

const (
	// PhasePreamble covers everything before the [Events] section.
	PhasePreamble Phase = iota
	// PhaseInEvents is entered by the [Events] header.
	PhaseInEvents
	// PhaseFormatKnown is entered once the events Format line declared its
	// columns. Every qualifying line after it is a dialogue record.
	PhaseFormatKnown
)

func (p Phase) String() string {
	switch p {
	case PhasePreamble:
		return "preamble"
	case PhaseInEvents:
		return "in_events"
	case PhaseFormatKnown:
		return "format_known"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// minTextComma is the earliest comma the text column can follow: Layer,
// Start and End always precede it.
const minTextComma = 3

const (
	markerDialogue = "Dialogue"
	markerEvents   = "Events"
	markerFormat   = "Format"
)

// ErrRecord is matched by every *RecordError.
var ErrRecord = errors.New("malformed dialogue record")

// RecordError reports a dialogue line with fewer columns than the text
// column requires.
type RecordError struct {
	Line   string
	Commas int
	Want   int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("dialogue record has %d commas, need %d: %q", e.Commas, e.Want, e.Line)
}

func (e *RecordError) Unwrap() error { return ErrRecord }

// Record is one parsed dialogue line.
type Record struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Duration returns End-Start, or TimeNone when either bound is unknown.
func (r Record) Duration() time.Duration {
	if r.Start == TimeNone || r.End == TimeNone {
		return TimeNone
	}
	return r.End - r.Start
}

// ParseRecord splits a dialogue line declared with fieldCount columns. Start
// and End are the second and third columns; the text is everything after the
// comma that ends the second-to-last column, verbatim.
//
// A line with too few commas yields a *RecordError and no record. Unparseable
// timestamps do not: the record is returned with TimeNone in their place,
// together with the timestamp errors.
func ParseRecord(line string, fieldCount int) (Record, error) {
	want := max(fieldCount-1, minTextComma)
	commas := make([]int, 0, want)
	for i := 0; i < len(line) && len(commas) < want; i++ {
		if line[i] == ',' {
			commas = append(commas, i)
		}
	}
	if len(commas) < want {
		return Record{}, &RecordError{Line: line, Commas: len(commas), Want: want}
	}

	rec := Record{Text: line[commas[want-1]+1:]}
	var errs []error
	var err error
	if rec.Start, err = ParseTimestamp(line[commas[0]+1 : commas[1]]); err != nil {
		errs = append(errs, fmt.Errorf("start: %w", err))
	}
	if rec.End, err = ParseTimestamp(line[commas[1]+1 : commas[2]]); err != nil {
		errs = append(errs, fmt.Errorf("end: %w", err))
	}
	return rec, errors.Join(errs...)
}

// Segment is the playback window chunks are emitted into. Position follows
// the start of the most recently emitted chunk.
type Segment struct {
	Start    time.Duration
	Stop     time.Duration
	Rate     float64
	Position time.Duration
}

// NewSegment returns an open-ended segment at normal rate.
func NewSegment() *Segment {
	return &Segment{Stop: TimeNone, Rate: 1}
}

// State is the dialogue parser state for one stream.
type State struct {
	Phase      Phase
	FieldCount int

	// Start is the cursor time of the current record and Duration its
	// length, TimeNone when unknown.
	Start    time.Duration
	Duration time.Duration

	// MaxDuration caps emitted durations when positive.
	MaxDuration time.Duration
	Segment     *Segment
}

// Reset returns the state to the preamble with the field count and times
// cleared. MaxDuration and Segment are configuration and survive.
func (s *State) Reset() {
	s.Phase = PhasePreamble
	s.FieldCount = 0
	s.Start = 0
	s.Duration = 0
}

// ParseLine feeds one decoded line through the state machine. It reports the
// dialogue text and true when the line is a data record. A non-nil error with
// ok set describes a recoverable timestamp defect; with ok unset it is a
// *RecordError and the line produced nothing.
//
// Markers are matched as substrings, Events before Format before Dialogue.
func (s *State) ParseLine(line string) (string, bool, error) {
	dialogue := strings.Contains(line, markerDialogue)
	events := strings.Contains(line, markerEvents)
	format := strings.Contains(line, markerFormat)

	switch {
	case !dialogue && !events && !format:
		return "", false, nil
	case events:
		s.Phase = PhaseInEvents
		return "", false, nil
	case format && s.Phase == PhaseInEvents:
		s.Phase = PhaseFormatKnown
		s.FieldCount = strings.Count(line, ",") + 1
		return "", false, nil
	case dialogue || s.Phase == PhaseFormatKnown:
		rec, err := ParseRecord(line, s.FieldCount)
		if errors.Is(err, ErrRecord) {
			return "", false, err
		}
		s.Start = rec.Start
		s.Duration = rec.Duration()
		return rec.Text, true, err
	default:
		return "", false, nil
	}
}

// EmitDuration is the duration to attach to the current record: Duration
// capped at MaxDuration when both are known.
func (s *State) EmitDuration() time.Duration {
	if s.MaxDuration > 0 && s.Duration != TimeNone && s.Duration > s.MaxDuration {
		return s.MaxDuration
	}
	return s.Duration
}

// Advance moves the cursor past the current record when its duration is
// known and clears the per-record duration.
func (s *State) Advance() {
	if s.Duration != TimeNone && s.Start != TimeNone {
		s.Start += s.Duration
	}
	s.Duration = 0
}
