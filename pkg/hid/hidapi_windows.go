//go:build windows

package hid

import "golang.org/x/sys/windows"

func loadNativeLibrary() (uintptr, error) {
	lib, err := windows.LoadLibrary("hidapi.dll")
	if err != nil {
		return 0, err
	}
	return uintptr(lib), nil
}

func symbolAddress(lib uintptr, name string) (uintptr, error) {
	return windows.GetProcAddress(windows.Handle(lib), name)
}
