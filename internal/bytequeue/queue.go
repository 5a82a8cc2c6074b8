package bytequeue

// compactThreshold is the dead prefix size after which Flush moves the
// remaining bytes to the front of the backing array.
const compactThreshold = 4096

// Queue accumulates bytes across input buffers.
type Queue struct {
	buf  []byte
	head int
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// Push appends data to the back of the queue. The queue keeps its own copy.
func (q *Queue) Push(data []byte) {
	if len(data) == 0 {
		return
	}
	q.buf = append(q.buf, data...)
}

// Len reports the number of bytes available.
func (q *Queue) Len() int {
	return len(q.buf) - q.head
}

// Bytes returns the available bytes. The slice aliases the queue and is only
// valid until the next Push, Flush or Clear.
func (q *Queue) Bytes() []byte {
	return q.buf[q.head:]
}

// Flush discards n bytes from the front of the queue. Flushing more than Len
// empties the queue.
func (q *Queue) Flush(n int) {
	if n <= 0 {
		return
	}
	if n >= q.Len() {
		q.Clear()
		return
	}
	q.head += n
	if q.head >= compactThreshold && q.head*2 >= len(q.buf) {
		remaining := copy(q.buf, q.buf[q.head:])
		q.buf = q.buf[:remaining]
		q.head = 0
	}
}

// Clear drops every buffered byte but keeps the allocation.
func (q *Queue) Clear() {
	q.buf = q.buf[:0]
	q.head = 0
}
