package session

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrStop is returned by a Sink that accepted a chunk but wants no more for
// now. The session stops draining and keeps the remaining lines buffered.
var ErrStop = errors.New("sink stopped accepting chunks")

// CodecName is reported in the Tags of every session.
const CodecName = "SubStation Alpha"

// TextChunk is one dialogue line ready for display. Start and Duration are
// ssa.TimeNone when the record carried an unparseable timestamp.
type TextChunk struct {
	Start     time.Duration
	Duration  time.Duration
	Text      string
	Seq       int
	SessionID string
}

// Tags describe a stream; they are delivered once per session before its
// first chunk.
type Tags struct {
	Codec    string
	Encoding string
}

// Sink receives chunks in input order.
type Sink interface {
	Push(ctx context.Context, chunk TextChunk) error
}

// TagSink is implemented by sinks that want stream tags.
type TagSink interface {
	Tags(ctx context.Context, tags Tags) error
}

// FuncSink adapts a function to Sink.
type FuncSink func(ctx context.Context, chunk TextChunk) error

func (f FuncSink) Push(ctx context.Context, chunk TextChunk) error {
	return f(ctx, chunk)
}

// SliceSink collects chunks in memory. With a positive Capacity it returns
// ErrStop from the Push that fills it.
type SliceSink struct {
	Capacity int
	Chunks   []TextChunk
	Received []Tags
}

func (s *SliceSink) Push(_ context.Context, chunk TextChunk) error {
	s.Chunks = append(s.Chunks, chunk)
	if s.Capacity > 0 && len(s.Chunks) >= s.Capacity {
		return ErrStop
	}
	return nil
}

func (s *SliceSink) Tags(_ context.Context, tags Tags) error {
	s.Received = append(s.Received, tags)
	return nil
}

// Texts returns the text of every collected chunk.
func (s *SliceSink) Texts() []string {
	out := make([]string, len(s.Chunks))
	for i, chunk := range s.Chunks {
		out[i] = chunk.Text
	}
	return out
}

// MultiSink delivers every chunk to each of its sinks. A hard error from one
// sink stops delivery; ErrStop from any sink is reported after all sinks have
// seen the chunk.
type MultiSink []Sink

func (m MultiSink) Push(ctx context.Context, chunk TextChunk) error {
	stop := false
	for _, sink := range m {
		err := sink.Push(ctx, chunk)
		switch {
		case err == nil:
		case errors.Is(err, ErrStop):
			stop = true
		default:
			return err
		}
	}
	if stop {
		return ErrStop
	}
	return nil
}

func (m MultiSink) Tags(ctx context.Context, tags Tags) error {
	for _, sink := range m {
		if ts, ok := sink.(TagSink); ok {
			if err := ts.Tags(ctx, tags); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m MultiSink) Close() error {
	var errs []error
	for _, sink := range m {
		if closer, ok := sink.(io.Closer); ok {
			errs = append(errs, closer.Close())
		}
	}
	return errors.Join(errs...)
}
