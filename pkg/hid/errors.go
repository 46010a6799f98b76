package hid

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDeviceClosed is returned for any operation issued after Close.
var ErrDeviceClosed = errors.New("hid: device closed")

// ValidationError reports a caller-supplied argument violating a
// documented precondition. It is raised before any native call is made.
type ValidationError struct {
	Param string
	Value int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("hid: invalid %s: %d", e.Param, e.Value)
}

// DeviceError carries the native library's last error message for a
// failed call. Native failures are terminal for that call; there is no
// retry.
type DeviceError struct {
	Op      string
	Message string
}

func (e *DeviceError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("hid: %s failed", e.Op)
	}
	return fmt.Sprintf("hid: %s: %s", e.Op, e.Message)
}

func validationErr(param string, value int) error {
	return errors.WithStack(&ValidationError{Param: param, Value: value})
}

func deviceErr(op, message string) error {
	return errors.WithStack(&DeviceError{Op: op, Message: message})
}
