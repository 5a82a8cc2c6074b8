package ssa

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ScriptInfoMarker must appear in every init section.
const ScriptInfoMarker = "[Script Info]"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

//go:embed default_header.ass
var defaultHeader []byte

// DefaultHeader returns a minimal init section declaring the standard ten
// column events layout, for streams whose container supplies none.
func DefaultHeader() []byte {
	return bytes.Clone(defaultHeader)
}

// ErrMalformedHeader is matched by every *HeaderError.
var ErrMalformedHeader = errors.New("malformed init section")

// HeaderError reports an init section that cannot belong to an SSA/ASS
// script.
type HeaderError struct {
	Reason string
}

func (e *HeaderError) Error() string {
	return fmt.Sprintf("init section: %s", e.Reason)
}

func (e *HeaderError) Unwrap() error { return ErrMalformedHeader }

// Header is a validated init section.
type Header struct {
	Text string
	// Truncated is set when the section contained invalid UTF-8; Text then
	// ends just before BadOffset.
	Truncated bool
	BadOffset int
}

// ValidateHeader checks that data looks like an SSA/ASS init section. A
// leading UTF-8 byte-order mark is skipped and the text is cut at the first
// invalid UTF-8 byte.
func ValidateHeader(data []byte) (Header, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return Header{}, &HeaderError{Reason: "empty"}
	}
	if !bytes.Contains(data, []byte(ScriptInfoMarker)) {
		return Header{}, &HeaderError{Reason: "missing " + ScriptInfoMarker + " marker"}
	}

	var h Header
	if !utf8.Valid(data) {
		h.Truncated = true
		h.BadOffset = firstInvalidUTF8(data)
		data = data[:h.BadOffset]
	}
	h.Text = string(data)
	return h, nil
}

func firstInvalidUTF8(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(data)
}

// Prime runs the lines of an init section through the state so the events
// Format line declared there applies to the records that follow.
func (s *State) Prime(h Header) {
	for _, line := range strings.Split(h.Text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.Contains(line, markerDialogue) {
			continue
		}
		_, _, _ = s.ParseLine(line)
	}
}
