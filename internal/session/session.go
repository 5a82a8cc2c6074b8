package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"subparse/internal/bytequeue"
	"subparse/internal/charset"
	"subparse/internal/linebuf"
	"subparse/internal/logging"
	"subparse/internal/ssa"
)

// ErrClosed is returned by calls on a closed Session.
var ErrClosed = errors.New("session closed")

// Options configure a Session.
type Options struct {
	Sink Sink
	// Charset configures the fallback encodings. Its Logger is ignored; the
	// session logger is used.
	Charset     charset.LadderOptions
	MaxDuration time.Duration
	Segment     *ssa.Segment
	// PrimeFromHeader applies the events Format line of a header given to
	// SetHeader to the dialogue state, after every reset as well. Without it
	// the header is only validated.
	PrimeFromHeader bool
	// SessionID defaults to a random UUID.
	SessionID string
	Logger    *slog.Logger
}

// Buffer is one piece of input. Offset is the position of Data in the
// stream and is only checked when HasOffset is set.
type Buffer struct {
	Data      []byte
	Offset    int64
	HasOffset bool
	Discont   bool
}

// Result summarizes one HandleBuffer or Drain call.
type Result struct {
	// Consumed counts input bytes converted to text; Pending the bytes still
	// waiting for the rest of a multi-byte sequence.
	Consumed int
	Pending  int
	Lines    int
	Emitted  int
	// Reset is set when the buffer started a new discontinuous run.
	Reset bool
	// Stopped is set when the sink returned ErrStop; complete lines may remain
	// buffered for the next call.
	Stopped bool
}

func (r *Result) add(other Result) {
	r.Consumed += other.Consumed
	r.Pending = other.Pending
	r.Lines += other.Lines
	r.Emitted += other.Emitted
	r.Reset = r.Reset || other.Reset
	r.Stopped = other.Stopped
}

// Stats accumulate over the life of a Session.
type Stats struct {
	Buffers         int
	Bytes           int64
	Lines           int
	Chunks          int
	Resets          int
	TimestampErrors int
	RecordErrors    int
}

// Session decodes one subtitle stream.
type Session struct {
	id     string
	sink   Sink
	logger *slog.Logger

	pending *bytequeue.Queue
	text    *linebuf.Buffer
	ladder  *charset.Ladder
	state   ssa.State

	nextOffset  int64
	firstBuffer bool
	tagsSent    bool
	seq         int
	flushing    atomic.Bool
	header      *ssa.Header
	headerErr   error
	primeHeader bool
	closed      bool
	stats       Stats
}

// New returns a Session delivering chunks to opts.Sink.
func New(opts Options) (*Session, error) {
	if opts.Sink == nil {
		return nil, errors.New("session: sink is required")
	}
	if opts.MaxDuration < 0 {
		return nil, fmt.Errorf("session: max duration %v must not be negative", opts.MaxDuration)
	}
	id := opts.SessionID
	if id == "" {
		id = uuid.NewString()
	}
	base := opts.Logger
	if base == nil {
		base = logging.NewNop()
	}
	base = base.With(logging.String(logging.FieldSessionID, id))

	ladderOpts := opts.Charset
	ladderOpts.Logger = logging.NewComponentLogger(base, "charset")

	segment := opts.Segment
	if segment == nil {
		segment = ssa.NewSegment()
	}

	s := &Session{
		id:          id,
		sink:        opts.Sink,
		logger:      logging.NewComponentLogger(base, "session"),
		pending:     bytequeue.New(),
		text:        linebuf.New(),
		ladder:      charset.NewLadder(ladderOpts),
		firstBuffer: true,
		primeHeader: opts.PrimeFromHeader,
	}
	s.state.MaxDuration = opts.MaxDuration
	s.state.Segment = segment
	return s, nil
}

// ID returns the session identifier attached to every chunk.
func (s *Session) ID() string { return s.id }

// Stats returns the counters accumulated so far.
func (s *Session) Stats() Stats { return s.stats }

// Phase reports where the dialogue parser is in the script.
func (s *Session) Phase() ssa.Phase { return s.state.Phase }

// Segment returns the playback segment; its Position follows emitted chunks.
func (s *Session) Segment() *ssa.Segment { return s.state.Segment }

// Encoding describes the text encoding in use.
func (s *Session) Encoding() string { return s.ladder.Describe() }

// SetFlushing toggles flushing. While set, HandleBuffer and Drain buffer
// input but emit nothing. Safe to call from another goroutine.
func (s *Session) SetFlushing(flushing bool) {
	s.flushing.Store(flushing)
}

// Flushing reports the flushing flag.
func (s *Session) Flushing() bool { return s.flushing.Load() }

// SetHeader validates the init section supplied by a container. With
// PrimeFromHeader set, the events layout it declares also applies to the
// stream, including after discontinuities. A header without a [Script Info]
// marker fails the session: every later HandleBuffer returns the same error.
func (s *Session) SetHeader(data []byte) error {
	h, err := ssa.ValidateHeader(data)
	if err != nil {
		s.headerErr = err
		logging.ErrorWithContext(s.logger, "init section rejected", "header_invalid",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "the stream does not look like SSA/ASS; check the container track type"),
		)
		return err
	}
	if h.Truncated {
		logging.WarnWithContext(s.logger, "init section is not valid UTF-8", "header_truncated",
			logging.Int(logging.FieldOffset, h.BadOffset),
			logging.String(logging.FieldImpact, "header text after the offset is ignored"),
		)
	}
	s.headerErr = nil
	if s.primeHeader {
		s.header = &h
		s.state.Prime(h)
	}
	return nil
}

// Reset clears buffered bytes, buffered text and the dialogue state, which
// returns to the preamble unless a header primes it. The charset ladder keeps
// what it learned about the stream.
func (s *Session) Reset() {
	s.pending.Clear()
	s.text.Reset()
	s.state.Reset()
	if s.header != nil {
		s.state.Prime(*s.header)
	}
	s.stats.Resets++
}

// Restart prepares the session for a new stream from offset zero: state is
// reset, byte-order mark detection re-armed and the ladder forgets the
// encoding it settled on.
func (s *Session) Restart() {
	s.Reset()
	s.ladder.Reset()
	s.nextOffset = 0
	s.firstBuffer = true
	s.tagsSent = false
}

// HandleBuffer feeds one buffer and emits every complete dialogue line.
func (s *Session) HandleBuffer(ctx context.Context, buf Buffer) (Result, error) {
	var res Result
	if s.closed {
		return res, ErrClosed
	}
	if s.headerErr != nil {
		return res, s.headerErr
	}
	s.stats.Buffers++
	s.stats.Bytes += int64(len(buf.Data))

	if s.firstBuffer {
		s.firstBuffer = false
		if enc := charset.DetectBOM(buf.Data); enc != "" {
			s.ladder.SetDetected(enc)
			s.logger.Debug("byte-order mark detected", logging.String(logging.FieldEncoding, enc.String()))
		}
	}

	discont := buf.Discont
	if buf.HasOffset && buf.Offset != s.nextOffset {
		s.logger.Debug("offset jump",
			logging.Int64("expected", s.nextOffset),
			logging.Int64(logging.FieldOffset, buf.Offset),
		)
		s.nextOffset = buf.Offset
		discont = true
	}
	if discont {
		s.logger.Info("discontinuity; dropping partial input",
			logging.String(logging.FieldEventType, "stream_discontinuity"),
			logging.Int64(logging.FieldOffset, s.nextOffset),
			logging.Int("dropped_bytes", s.pending.Len()),
			logging.Int("dropped_text", s.text.Len()),
		)
		s.Reset()
		res.Reset = true
	}
	s.nextOffset += int64(len(buf.Data))

	s.pending.Push(buf.Data)
	if s.pending.Len() > 0 {
		text, consumed := s.ladder.Convert(s.pending.Bytes())
		if consumed > 0 {
			s.text.Push(text)
			s.pending.Flush(consumed)
			res.Consumed = consumed
		}
	}
	res.Pending = s.pending.Len()

	if err := s.sendTags(ctx); err != nil {
		return res, err
	}

	drained, err := s.drain(ctx)
	res.add(drained)
	res.Pending = s.pending.Len()
	return res, err
}

// Drain emits complete lines left buffered by an earlier ErrStop or while
// flushing, without new input.
func (s *Session) Drain(ctx context.Context) (Result, error) {
	if s.closed {
		return Result{}, ErrClosed
	}
	res, err := s.drain(ctx)
	res.Pending = s.pending.Len()
	return res, err
}

// Finish ends the stream: an unterminated last line is completed and every
// buffered line drained. Bytes still waiting for a multi-byte sequence are
// discarded.
func (s *Session) Finish(ctx context.Context) (Result, error) {
	if s.closed {
		return Result{}, ErrClosed
	}
	if n := s.pending.Len(); n > 0 {
		logging.WarnWithContext(s.logger, "stream ended inside a multi-byte sequence", "charset_truncated_tail",
			logging.Int("bytes", n),
			logging.String(logging.FieldImpact, "trailing bytes dropped"),
		)
		s.pending.Clear()
	}
	if s.text.Len() > 0 {
		s.text.Push("\n")
	}
	return s.Drain(ctx)
}

// Close releases the sink when it implements io.Closer.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if closer, ok := s.sink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return fmt.Errorf("close sink: %w", err)
		}
	}
	return nil
}

func (s *Session) sendTags(ctx context.Context) error {
	if s.tagsSent || s.ladder.Selection().Encoding == "" {
		return nil
	}
	s.tagsSent = true
	ts, ok := s.sink.(TagSink)
	if !ok {
		return nil
	}
	tags := Tags{Codec: CodecName, Encoding: s.ladder.Describe()}
	s.logger.Info("stream tags", logging.String(logging.FieldEncoding, tags.Encoding))
	if err := ts.Tags(ctx, tags); err != nil && !errors.Is(err, ErrStop) {
		return fmt.Errorf("deliver tags: %w", err)
	}
	return nil
}

func (s *Session) drain(ctx context.Context) (Result, error) {
	var res Result
	for !s.flushing.Load() {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		line, ok := s.text.PopLine()
		if !ok {
			break
		}
		res.Lines++
		s.stats.Lines++

		text, ok, err := s.state.ParseLine(line)
		if err != nil {
			s.reportLineError(line, err)
		}
		if !ok {
			continue
		}

		chunk := TextChunk{
			Start:     s.state.Start,
			Duration:  s.state.EmitDuration(),
			Text:      text,
			Seq:       s.seq,
			SessionID: s.id,
		}
		if chunk.Start != ssa.TimeNone {
			s.state.Segment.Position = chunk.Start
		}
		s.logger.Debug("emitting chunk",
			logging.Int("seq", chunk.Seq),
			logging.String("start", ssa.FormatTimestamp(chunk.Start)),
			logging.String("duration", ssa.FormatTimestamp(chunk.Duration)),
		)
		pushErr := s.sink.Push(ctx, chunk)
		s.state.Advance()
		if pushErr != nil && !errors.Is(pushErr, ErrStop) {
			return res, fmt.Errorf("push chunk %d: %w", chunk.Seq, pushErr)
		}
		s.seq++
		res.Emitted++
		s.stats.Chunks++
		if pushErr != nil {
			s.logger.Debug("sink requested stop", logging.Int("buffered_text", s.text.Len()))
			res.Stopped = true
			return res, nil
		}
	}
	return res, nil
}

func (s *Session) reportLineError(line string, err error) {
	if errors.Is(err, ssa.ErrRecord) {
		s.stats.RecordErrors++
		logging.WarnWithContext(s.logger, "dialogue record has too few columns", "record_malformed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the events Format line against the record"),
			logging.String(logging.FieldImpact, "line skipped"),
		)
		return
	}
	s.stats.TimestampErrors++
	logging.WarnWithContext(s.logger, "dialogue timestamp unreadable", "timestamp_invalid",
		logging.Error(err),
		logging.String("line", line),
		logging.String(logging.FieldImpact, "chunk emitted with unknown timing"),
	)
}
