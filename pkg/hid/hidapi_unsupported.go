//go:build !linux && !darwin && !freebsd && !windows

package hid

import "github.com/pkg/errors"

func loadNativeLibrary() (uintptr, error) {
	return 0, errors.New("hid: no native library loader for this platform")
}

func symbolAddress(lib uintptr, name string) (uintptr, error) {
	return 0, errors.New("hid: no native library loader for this platform")
}
