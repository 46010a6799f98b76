//go:build windows

package hid

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Windows wchar_t is two bytes, UTF-16. Every Windows target Go
// supports is little endian.
const wcharSize = 2

func wideEncoding() encoding.Encoding {
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}
