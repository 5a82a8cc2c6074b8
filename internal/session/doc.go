// Package session drives one SSA/ASS subtitle stream from raw bytes to timed
// text chunks.
//
// A Session owns every piece of per-stream state: undecoded bytes, the
// charset fallback ladder, decoded text waiting for a line terminator, and the
// dialogue parser. Callers feed it Buffers in stream order with HandleBuffer
// (or hand it an io.Reader via Pump) and receive TextChunks through a Sink.
// A Session is not safe for concurrent use, except for SetFlushing.
package session
