package hid

import (
	"unsafe"

	"github.com/pkg/errors"
)

// The native library represents strings as null-terminated sequences of
// platform-width wide characters. All conversion lives here; the
// platform files supply wcharSize and the matching x/text encoding.

var hostLittleEndian = func() bool {
	var x uint16 = 1
	return *(*byte)(unsafe.Pointer(&x)) == 1
}()

// newWideBuffer allocates space for maxChars wide characters, including
// the terminator the native string getters write.
func newWideBuffer(maxChars int) []byte {
	return make([]byte, maxChars*wcharSize)
}

// encodeSerial converts a serial number filter to the native open-call
// convention. An absent serial means "match any serial" and encodes to
// nil, never to an empty wide string.
func encodeSerial(serial string) ([]byte, error) {
	if serial == "" {
		return nil, nil
	}
	return encodeWide(serial)
}

// encodeWide converts s to a null-terminated wide-character buffer.
func encodeWide(s string) ([]byte, error) {
	out, err := wideEncoding().NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return append(out, make([]byte, wcharSize)...), nil
}

// decodeWide converts a wide-character buffer to a string, stopping at
// the first wide null or at the end of the buffer, whichever comes
// first. Termination is not assumed.
func decodeWide(wide []byte) (string, error) {
	out, err := wideEncoding().NewDecoder().Bytes(wide[:wideTerminator(wide)])
	if err != nil {
		return "", errors.WithStack(err)
	}
	return string(out), nil
}

// decodeWidePtr decodes a raw native wide string, reading at most
// maxChars characters and never touching memory past the terminator.
func decodeWidePtr(p unsafe.Pointer, maxChars int) (string, error) {
	if p == nil {
		return "", nil
	}
	raw := make([]byte, 0, 64)
	for i := 0; i < maxChars; i++ {
		unit := unsafe.Slice((*byte)(unsafe.Add(p, i*wcharSize)), wcharSize)
		if wideIsNull(unit) {
			break
		}
		raw = append(raw, unit...)
	}
	return decodeWide(raw)
}

// wideTerminator returns the byte offset of the first wide null, or the
// largest whole-character length when none is present.
func wideTerminator(wide []byte) int {
	limit := len(wide) - len(wide)%wcharSize
	for i := 0; i < limit; i += wcharSize {
		if wideIsNull(wide[i : i+wcharSize]) {
			return i
		}
	}
	return limit
}

func wideIsNull(unit []byte) bool {
	for _, b := range unit {
		if b != 0 {
			return false
		}
	}
	return true
}
