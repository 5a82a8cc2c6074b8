package linebuf

import "bytes"

// Buffer accumulates decoded text and hands it back one terminated line at a
// time. A line ends at '\n'; a '\r' directly before it is not part of the
// line. Text after the last '\n' stays buffered until more input arrives.
type Buffer struct {
	data []byte
	head int
	// scanned is the number of bytes past head known to contain no '\n'.
	scanned int
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Push appends decoded text.
func (b *Buffer) Push(text string) {
	if text == "" {
		return
	}
	if b.head > 0 && b.head == len(b.data) {
		b.data = b.data[:0]
		b.head = 0
		b.scanned = 0
	}
	b.data = append(b.data, text...)
}

// PopLine removes and returns the first complete line. It reports false when
// no terminator is buffered yet.
func (b *Buffer) PopLine() (string, bool) {
	pending := b.data[b.head:]
	idx := bytes.IndexByte(pending[b.scanned:], '\n')
	if idx < 0 {
		b.scanned = len(pending)
		return "", false
	}
	end := b.scanned + idx
	lineEnd := end
	if lineEnd > 0 && pending[lineEnd-1] == '\r' {
		lineEnd--
	}
	line := string(pending[:lineEnd])

	b.head += end + 1
	b.scanned = 0
	if b.head == len(b.data) {
		b.data = b.data[:0]
		b.head = 0
	} else if b.head > len(b.data)/2 {
		n := copy(b.data, b.data[b.head:])
		b.data = b.data[:n]
		b.head = 0
	}
	return line, true
}

// Len reports the number of buffered bytes, including any partial line.
func (b *Buffer) Len() int {
	return len(b.data) - b.head
}

// String returns the buffered text without consuming it.
func (b *Buffer) String() string {
	return string(b.data[b.head:])
}

// Reset discards everything, including a partial line.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
	b.head = 0
	b.scanned = 0
}
