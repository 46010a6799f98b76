//go:build linux || darwin || freebsd

package hid

import (
	"runtime"

	"github.com/ebitengine/purego"
)

// Candidate sonames, most specific first. Linux distributions ship
// separate hidraw and libusb flavours; either serves this package.
func nativeLibraryNames() []string {
	if runtime.GOOS == "darwin" {
		return []string{"libhidapi.dylib", "libhidapi.0.dylib"}
	}
	return []string{
		"libhidapi-hidraw.so.0",
		"libhidapi-libusb.so.0",
		"libhidapi-hidraw.so",
		"libhidapi-libusb.so",
		"libhidapi.so",
	}
}

func loadNativeLibrary() (uintptr, error) {
	var firstErr error
	for _, name := range nativeLibraryNames() {
		lib, err := purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil {
			return lib, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return 0, firstErr
}

func symbolAddress(lib uintptr, name string) (uintptr, error) {
	return purego.Dlsym(lib, name)
}
