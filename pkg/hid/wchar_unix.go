//go:build !windows

package hid

import (
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode/utf32"
)

// wchar_t is four bytes everywhere except Windows; the native library
// stores UTF-32 in host byte order.
const wcharSize = 4

func wideEncoding() encoding.Encoding {
	if hostLittleEndian {
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	}
	return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
}
