// Package charset turns raw subtitle bytes into UTF-8 text.
//
// DetectBOM sniffs a byte-order mark on the first buffer of a stream, Convert
// decodes the longest cleanly convertible prefix of a byte slice with a named
// encoding, and Ladder layers the per-stream fallback policy on top: a
// detected BOM encoding first, then UTF-8 validation, then a configured,
// environment or locale encoding, and finally ISO-8859-15, which accepts any
// byte sequence.
//
// Decoders come from golang.org/x/text. Names are resolved against a small
// table of canonical names, then the IANA registry, then the WHATWG index, so
// both "latin1" and "windows-1252" style spellings work.
package charset
