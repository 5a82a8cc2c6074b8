package session

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"subparse/internal/ssa"
)

// SRTSink writes chunks as SubRip cues. Override tags are stripped and line
// breaks expanded. Chunks with an unknown start cannot be placed and are
// skipped; an unknown duration yields a zero length cue.
type SRTSink struct {
	w       *bufio.Writer
	index   int
	skipped int
}

// NewSRTSink returns a sink writing SubRip to w. Call Close to flush.
func NewSRTSink(w io.Writer) *SRTSink {
	return &SRTSink{w: bufio.NewWriter(w)}
}

func (s *SRTSink) Push(_ context.Context, chunk TextChunk) error {
	if chunk.Start == ssa.TimeNone {
		s.skipped++
		return nil
	}
	end := chunk.Start
	if chunk.Duration != ssa.TimeNone && chunk.Duration > 0 {
		end += chunk.Duration
	}
	s.index++
	_, err := fmt.Fprintf(s.w, "%d\n%s --> %s\n%s\n\n",
		s.index, formatSRTTime(chunk.Start), formatSRTTime(end), ssa.PlainText(chunk.Text))
	return err
}

// Skipped reports how many chunks had no usable start time.
func (s *SRTSink) Skipped() int { return s.skipped }

func (s *SRTSink) Close() error {
	return s.w.Flush()
}

func formatSRTTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	ms := d / time.Millisecond
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3600000, (ms/60000)%60, (ms/1000)%60, ms%1000)
}

// JSONLinesSink writes one JSON object per line: a "tags" record followed by
// "chunk" records. Unknown times are omitted.
type JSONLinesSink struct {
	enc *json.Encoder
}

// NewJSONLinesSink returns a sink writing JSON lines to w.
func NewJSONLinesSink(w io.Writer) *JSONLinesSink {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &JSONLinesSink{enc: enc}
}

type jsonRecord struct {
	Type       string `json:"type"`
	Seq        *int   `json:"seq,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	StartMS    *int64 `json:"start_ms,omitempty"`
	DurationMS *int64 `json:"duration_ms,omitempty"`
	Text       string `json:"text,omitempty"`
	Codec      string `json:"codec,omitempty"`
	Encoding   string `json:"encoding,omitempty"`
}

func (s *JSONLinesSink) Push(_ context.Context, chunk TextChunk) error {
	seq := chunk.Seq
	return s.enc.Encode(jsonRecord{
		Type:       "chunk",
		Seq:        &seq,
		SessionID:  chunk.SessionID,
		StartMS:    Millis(chunk.Start),
		DurationMS: Millis(chunk.Duration),
		Text:       chunk.Text,
	})
}

func (s *JSONLinesSink) Tags(_ context.Context, tags Tags) error {
	return s.enc.Encode(jsonRecord{Type: "tags", Codec: tags.Codec, Encoding: tags.Encoding})
}

// Millis converts d to whole milliseconds, or nil when d is ssa.TimeNone.
func Millis(d time.Duration) *int64 {
	if d == ssa.TimeNone {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}
