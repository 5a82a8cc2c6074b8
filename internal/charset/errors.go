package charset

import (
	"errors"
	"fmt"
)

// ErrConversion marks failures where bytes cannot be interpreted in the
// requested encoding at all.
var ErrConversion = errors.New("charset conversion failed")

var errUnknownEncoding = errors.New("unknown encoding")

// ConversionError reports the encoding that could not be used.
type ConversionError struct {
	Encoding string
	Err      error
}

func (e *ConversionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("convert from %q to UTF-8", e.Encoding)
	}
	return fmt.Sprintf("convert from %q to UTF-8: %v", e.Encoding, e.Err)
}

func (e *ConversionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrConversion}
	}
	return []error{ErrConversion, e.Err}
}
