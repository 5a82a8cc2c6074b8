package session

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is used by Pump when chunkSize is not positive.
const DefaultChunkSize = 4096

// Pump reads r in chunkSize pieces and feeds them to s with running offsets,
// then finishes the stream. It returns early, with Stopped set, when the sink
// asks to stop; the caller may Drain later and call Pump again to continue.
func Pump(ctx context.Context, r io.Reader, s *Session, chunkSize int) (Result, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	var total Result
	buf := make([]byte, chunkSize)
	offset := s.nextOffset
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			res, err := s.HandleBuffer(ctx, Buffer{Data: buf[:n], Offset: offset, HasOffset: true})
			total.add(res)
			if err != nil {
				return total, err
			}
			offset += int64(n)
			if res.Stopped {
				return total, nil
			}
		}
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return total, fmt.Errorf("read input: %w", readErr)
		}
	}

	res, err := s.Finish(ctx)
	total.add(res)
	return total, err
}
