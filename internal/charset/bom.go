package charset

import (
	"bytes"

	"github.com/dimchansky/utfbom"
)

// DetectBOM inspects up to the first four bytes of data for a byte-order
// mark. It returns the empty Encoding when none is present, which does not
// mean the data is not UTF-8.
func DetectBOM(data []byte) Encoding {
	if len(data) > 4 {
		data = data[:4]
	}
	_, enc := utfbom.Skip(bytes.NewReader(data))
	switch enc {
	case utfbom.UTF8:
		return UTF8
	case utfbom.UTF16BigEndian:
		return UTF16BE
	case utfbom.UTF16LittleEndian:
		return UTF16LE
	case utfbom.UTF32BigEndian:
		return UTF32BE
	case utfbom.UTF32LittleEndian:
		return UTF32LE
	default:
		return ""
	}
}
