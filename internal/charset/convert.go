package charset

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

const byteOrderMark = "\ufeff"

// Convert decodes the longest cleanly convertible prefix of data from the
// named encoding into UTF-8. It returns the text and the number of input
// bytes consumed; a trailing incomplete multi-byte sequence is not consumed.
// Bytes with no mapping become U+FFFD rather than failing. A byte-order mark
// at the start of the result is removed.
func Convert(data []byte, name string) (string, int, error) {
	enc, err := Lookup(name)
	if err != nil {
		return "", 0, err
	}
	text, consumed, err := decodePrefix(enc.NewDecoder(), data)
	if err != nil {
		return "", 0, &ConversionError{Encoding: name, Err: err}
	}
	return strings.TrimPrefix(text, byteOrderMark), consumed, nil
}

func decodePrefix(t transform.Transformer, src []byte) (string, int, error) {
	if len(src) == 0 {
		return "", 0, nil
	}
	t.Reset()
	dst := make([]byte, len(src)*3+utf8.UTFMax)
	var nDst, nSrc int
	for {
		n, m, err := t.Transform(dst[nDst:], src[nSrc:], false)
		nDst += n
		nSrc += m
		switch {
		case err == nil:
			return string(dst[:nDst]), nSrc, nil
		case errors.Is(err, transform.ErrShortSrc):
			return string(dst[:nDst]), nSrc, nil
		case errors.Is(err, transform.ErrShortDst):
			grown := make([]byte, len(dst)*2)
			copy(grown, dst[:nDst])
			dst = grown
		default:
			return "", 0, err
		}
	}
}

// validUTF8Prefix returns the length of data without a trailing, so far
// valid but incomplete UTF-8 sequence, and whether that prefix is valid.
func validUTF8Prefix(data []byte) (int, bool) {
	n := len(data) - incompleteTail(data)
	return n, utf8.Valid(data[:n])
}

func incompleteTail(data []byte) int {
	limit := len(data) - utf8.UTFMax + 1
	if limit < 0 {
		limit = 0
	}
	for i := len(data) - 1; i >= limit; i-- {
		if !utf8.RuneStart(data[i]) {
			continue
		}
		if !utf8.FullRune(data[i:]) {
			return len(data) - i
		}
		return 0
	}
	return 0
}
