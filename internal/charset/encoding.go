package charset

import (
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// Encoding is a canonical encoding name.
type Encoding string

const (
	UTF8      Encoding = "UTF-8"
	UTF16BE   Encoding = "UTF-16BE"
	UTF16LE   Encoding = "UTF-16LE"
	UTF32BE   Encoding = "UTF-32BE"
	UTF32LE   Encoding = "UTF-32LE"
	ISO885915 Encoding = "ISO-8859-15"
)

// Floor is the encoding used when everything else fails. Every byte maps to a
// character, so decoding with it cannot fail.
const Floor = ISO885915

func (e Encoding) String() string { return string(e) }

// Lookup resolves an encoding name to a decoder factory.
func Lookup(name string) (encoding.Encoding, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, &ConversionError{Encoding: name, Err: errUnknownEncoding}
	}
	switch canonicalKey(trimmed) {
	case "UTF8":
		return unicode.UTF8, nil
	case "UTF16BE":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM), nil
	case "UTF16LE":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM), nil
	case "UTF16":
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM), nil
	case "UTF32BE":
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM), nil
	case "UTF32LE":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), nil
	case "UTF32":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM), nil
	case "ISO885915", "LATIN9", "LATIN0":
		return charmap.ISO8859_15, nil
	}
	if enc, err := ianaindex.IANA.Encoding(trimmed); err == nil && enc != nil {
		return enc, nil
	}
	if enc, err := htmlindex.Get(trimmed); err == nil && enc != nil {
		return enc, nil
	}
	return nil, &ConversionError{Encoding: name, Err: errUnknownEncoding}
}

// Supported reports whether name resolves to a decoder.
func Supported(name string) bool {
	_, err := Lookup(name)
	return err == nil
}

// IsUTF8 reports whether name spells UTF-8.
func IsUTF8(name string) bool {
	return canonicalKey(name) == "UTF8"
}

func canonicalKey(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToUpper(strings.TrimSpace(name)) {
		if r == '-' || r == '_' || r == ' ' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
