// Package bytequeue holds raw subtitle bytes that have been received but not
// yet decoded.
//
// A Queue is append-only at the back and consumed in prefix chunks from the
// front, which lets the charset converter leave an incomplete multi-byte
// sequence behind for the next input buffer without copying it around.
package bytequeue
