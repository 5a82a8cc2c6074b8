package charset

import (
	"log/slog"
	"os"
	"strings"
)

// Source records why an encoding was chosen.
type Source int

const (
	SourceNone Source = iota
	SourceBOM
	SourceUTF8
	SourceConfigured
	SourceEnvironment
	SourceLocale
	SourceDefault
	SourceFloor
)

func (s Source) String() string {
	switch s {
	case SourceBOM:
		return "byte-order mark"
	case SourceUTF8:
		return "valid UTF-8"
	case SourceConfigured:
		return "configured fallback"
	case SourceEnvironment:
		return "environment fallback"
	case SourceLocale:
		return "locale fallback"
	case SourceDefault:
		return "default fallback"
	case SourceFloor:
		return "forced fallback"
	default:
		return "undetermined"
	}
}

// Selection is the encoding a Ladder used for its most recent conversion.
type Selection struct {
	Encoding string
	Source   Source
}

// String renders the selection for humans, e.g. "UTF-16LE (byte-order mark)".
func (s Selection) String() string {
	if s.Encoding == "" {
		return "unknown"
	}
	if s.Source == SourceUTF8 {
		return string(UTF8)
	}
	return s.Encoding + " (" + s.Source.String() + ")"
}

// LadderOptions configure the fallback encodings of a Ladder.
type LadderOptions struct {
	// Fallback is an explicitly configured encoding, tried before anything
	// from the environment.
	Fallback string
	// EnvVar names an environment variable holding a fallback encoding. Empty
	// disables the lookup.
	EnvVar string
	// DisableLocale skips the process locale when picking a fallback.
	DisableLocale bool
	Logger        *slog.Logger
}

// Ladder converts bytes to UTF-8 for one stream. It remembers a detected BOM
// encoding until that encoding fails, and stops assuming UTF-8 for good the
// first time the input is not valid UTF-8.
type Ladder struct {
	opts      LadderOptions
	logger    *slog.Logger
	getenv    func(string) string
	detected  Encoding
	utf8Valid bool
	last      Selection
}

// NewLadder returns a Ladder in its initial state.
func NewLadder(opts LadderOptions) *Ladder {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Ladder{
		opts:      opts,
		logger:    logger,
		getenv:    os.Getenv,
		utf8Valid: true,
	}
}

// Reset returns the ladder to its initial state: no detected encoding and
// UTF-8 assumed again.
func (l *Ladder) Reset() {
	l.detected = ""
	l.utf8Valid = true
	l.last = Selection{}
}

// SetDetected records the encoding announced by a byte-order mark.
func (l *Ladder) SetDetected(enc Encoding) {
	l.detected = enc
}

// Detected returns the recorded BOM encoding, if any.
func (l *Ladder) Detected() Encoding {
	return l.detected
}

// UTF8Valid reports whether the input is still believed to be UTF-8.
func (l *Ladder) UTF8Valid() bool {
	return l.utf8Valid
}

// Selection returns the encoding used by the most recent conversion.
func (l *Ladder) Selection() Selection {
	return l.last
}

// Describe returns a human readable description of the current encoding.
func (l *Ladder) Describe() string {
	if l.last.Encoding != "" {
		return l.last.String()
	}
	switch {
	case l.detected != "":
		return Selection{Encoding: string(l.detected), Source: SourceBOM}.String()
	case l.utf8Valid:
		return string(UTF8)
	default:
		return l.Fallback().String()
	}
}

// Fallback returns the encoding step three of the ladder would use.
func (l *Ladder) Fallback() Selection {
	if name := strings.TrimSpace(l.opts.Fallback); name != "" {
		return Selection{Encoding: name, Source: SourceConfigured}
	}
	if l.opts.EnvVar != "" {
		if name := strings.TrimSpace(l.getenv(l.opts.EnvVar)); name != "" {
			return Selection{Encoding: name, Source: SourceEnvironment}
		}
	}
	if !l.opts.DisableLocale {
		if name := localeCodeset(l.getenv); name != "" && !IsUTF8(name) {
			return Selection{Encoding: name, Source: SourceLocale}
		}
	}
	return Selection{Encoding: string(Floor), Source: SourceDefault}
}

// Convert decodes as much of data as can be cleanly converted and reports
// how many bytes were consumed. It never fails: the last resort decodes any
// byte sequence.
func (l *Ladder) Convert(data []byte) (string, int) {
	if l.detected != "" {
		text, consumed, err := Convert(data, string(l.detected))
		if err == nil {
			l.last = Selection{Encoding: string(l.detected), Source: SourceBOM}
			return text, consumed
		}
		l.logger.Warn("detected encoding failed; dropping it for this stream",
			slog.String("event_type", "charset_detected_failed"),
			slog.String("encoding", string(l.detected)),
			slog.Any("error", err),
		)
		l.detected = ""
	}

	if l.utf8Valid {
		n, ok := validUTF8Prefix(data)
		if ok {
			l.last = Selection{Encoding: string(UTF8), Source: SourceUTF8}
			return string(data[:n]), n
		}
		l.logger.Info("input is not valid UTF-8; switching to fallback encoding",
			slog.String("event_type", "charset_utf8_invalid"),
		)
		l.utf8Valid = false
	}

	choice := l.Fallback()
	text, consumed, err := Convert(data, choice.Encoding)
	if err == nil {
		l.last = choice
		l.logger.Debug("converted input",
			slog.String("encoding", choice.Encoding),
			slog.String("encoding_source", choice.Source.String()),
			slog.Int("bytes", consumed),
		)
		return text, consumed
	}
	l.logger.Warn("fallback encoding failed; using forced fallback",
		slog.String("event_type", "charset_fallback_failed"),
		slog.String("encoding", choice.Encoding),
		slog.String("forced_encoding", string(Floor)),
		slog.Any("error", err),
	)
	text, consumed, _ = Convert(data, string(Floor))
	l.last = Selection{Encoding: string(Floor), Source: SourceFloor}
	return text, consumed
}
