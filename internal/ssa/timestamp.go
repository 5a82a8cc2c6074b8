package ssa

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeNone marks a timestamp or duration that could not be determined.
const TimeNone time.Duration = math.MinInt64

// ErrTimestamp is matched by every *TimestampError.
var ErrTimestamp = errors.New("invalid timestamp")

// TimestampError describes a Start or End field that does not follow the
// H:MM:SS.fraction grammar.
type TimestampError struct {
	Input  string
	Reason string
}

func (e *TimestampError) Error() string {
	return fmt.Sprintf("parse timestamp %q: %s", e.Input, e.Reason)
}

func (e *TimestampError) Unwrap() error { return ErrTimestamp }

// maxSeconds keeps whole seconds plus a millisecond fraction inside time.Duration.
const maxSeconds = uint64(math.MaxInt64/int64(time.Second)) - 1

// ParseTimestamp converts a dialogue timestamp such as "0:00:01.50" into a
// duration. Both '.' and ',' separate seconds from the fraction. The fraction
// is read as milliseconds: "5" and "50" mean 500ms, while a space-padded
// fraction such as " 5" is right-aligned and means 5ms.
func ParseTimestamp(field string) (time.Duration, error) {
	s := strings.TrimRight(strings.TrimLeft(field, " "), " \t\r\n\v\f")
	sep := strings.IndexAny(s, ".,")
	if sep < 0 {
		return TimeNone, &TimestampError{Input: field, Reason: "missing fractional separator"}
	}

	millis, err := parseFraction(s[sep+1:])
	if err != nil {
		return TimeNone, &TimestampError{Input: field, Reason: err.Error()}
	}

	parts := strings.Split(strings.ReplaceAll(s[:sep], " ", "0"), ":")
	if len(parts) != 3 {
		return TimeNone, &TimestampError{Input: field, Reason: "expected H:MM:SS"}
	}
	var hms [3]uint64
	for i, part := range parts {
		if part == "" {
			return TimeNone, &TimestampError{Input: field, Reason: "empty clock component"}
		}
		value, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return TimeNone, &TimestampError{Input: field, Reason: fmt.Sprintf("clock component %q is not a number", part)}
		}
		hms[i] = value
	}
	if hms[0] > maxSeconds/3600 || hms[1] > maxSeconds/60 || hms[2] > maxSeconds {
		return TimeNone, &TimestampError{Input: field, Reason: "value out of range"}
	}
	seconds := hms[0]*3600 + hms[1]*60 + hms[2]
	if seconds > maxSeconds {
		return TimeNone, &TimestampError{Input: field, Reason: "value out of range"}
	}

	total := time.Duration(seconds)*time.Second + time.Duration(millis)*time.Millisecond
	return total, nil
}

func parseFraction(frac string) (int, error) {
	padded := strings.HasPrefix(frac, " ")
	frac = strings.ReplaceAll(frac, " ", "0")
	if padded {
		for len(frac) < 3 {
			frac = "0" + frac
		}
	}
	if len(frac) > 3 {
		frac = frac[:3]
	}
	for len(frac) < 3 {
		frac += "0"
	}
	for i := 0; i < len(frac); i++ {
		if frac[i] < '0' || frac[i] > '9' {
			return 0, fmt.Errorf("fraction %q is not a number", frac)
		}
	}
	return strconv.Atoi(frac)
}

// FormatTimestamp renders d as H:MM:SS.mmm, or "-" for TimeNone.
func FormatTimestamp(d time.Duration) string {
	if d == TimeNone {
		return "-"
	}
	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}
	ms := d / time.Millisecond
	return fmt.Sprintf("%s%d:%02d:%02d.%03d", sign,
		ms/3600000, (ms/60000)%60, (ms/1000)%60, ms%1000)
}
