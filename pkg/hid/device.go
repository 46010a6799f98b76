// Package hid exchanges reports with Human Interface Devices through
// the hidapi shared library, with the resource lifetime, buffer bounds
// and string encoding managed on this side of the boundary.
package hid

import (
	"sync"

	"github.com/pkg/errors"
)

const (
	// DefaultStringLength is the customary wide-character capacity for
	// descriptive device strings.
	DefaultStringLength = 128
	// DefaultReportDescriptorSize fits any legal report descriptor.
	DefaultReportDescriptorSize = 4096
)

// Device is an open HID device. It owns exactly one native handle,
// released once by Close, and it serializes every native call on that
// handle; the native library is not reentrant per handle.
type Device struct {
	mu     sync.Mutex
	native Native
	handle Handle
}

// Open opens the first device matching vendor and product id, with any
// serial number.
func Open(vendorID, productID uint16) (*Device, error) {
	n, err := Surface()
	if err != nil {
		return nil, err
	}
	return openDevice(n, func(n Native) Handle {
		return n.Open(vendorID, productID, nil)
	})
}

// OpenSerial opens the device matching vendor id, product id and serial
// number. An empty serial behaves like Open.
func OpenSerial(vendorID, productID uint16, serial string) (*Device, error) {
	n, err := Surface()
	if err != nil {
		return nil, err
	}
	wide, err := encodeSerial(serial)
	if err != nil {
		return nil, err
	}
	return openDevice(n, func(n Native) Handle {
		return n.Open(vendorID, productID, wide)
	})
}

// OpenPath opens a device by its platform-specific path, as reported by
// enumeration.
func OpenPath(path string) (*Device, error) {
	n, err := Surface()
	if err != nil {
		return nil, err
	}
	return openDevice(n, func(n Native) Handle {
		return n.OpenPath(path)
	})
}

func openDevice(n Native, open func(Native) Handle) (*Device, error) {
	h := open(n)
	if !h.Valid() {
		// No handle exists to query, but the library keeps a global
		// error string for exactly this case.
		msg := n.Error(0)
		if msg == "" {
			msg = "no matching device"
		}
		return nil, deviceErr("open", msg)
	}
	return &Device{native: n, handle: h}, nil
}

// Close releases the native handle. It is safe to call more than once;
// every other operation fails with ErrDeviceClosed afterwards.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.handle.Valid() {
		d.native.Close(d.handle)
		d.handle = 0
	}
	return nil
}

// raise builds the device error for a failed native call. Callers hold
// d.mu.
func (d *Device) raise(op string) error {
	return deviceErr(op, d.native.Error(d.handle))
}

// Write sends an output report. data[0] carries the report id, 0x00 if
// the device uses only one report. It returns the number of bytes
// written, including the report id.
func (d *Device) Write(data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return 0, errors.WithStack(ErrDeviceClosed)
	}
	n := d.native.Write(d.handle, data)
	if n == -1 {
		return 0, d.raise("write")
	}
	return n, nil
}

// Read reads an input report of up to maxLength bytes, blocking until
// one arrives unless the device is in nonblocking mode.
func (d *Device) Read(maxLength int) ([]byte, error) {
	if maxLength < 0 {
		return nil, validationErr("maxLength", maxLength)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return nil, errors.WithStack(ErrDeviceClosed)
	}
	buf := newReportBuffer(maxLength)
	n := d.native.Read(d.handle, buf.bytes())
	if n == -1 {
		return nil, d.raise("read")
	}
	return buf.take(n), nil
}

// ReadTimeout reads an input report, waiting at most millis
// milliseconds; -1 blocks indefinitely. A timeout with no data returns
// an empty slice, not an error.
func (d *Device) ReadTimeout(maxLength, millis int) ([]byte, error) {
	if maxLength < 0 {
		return nil, validationErr("maxLength", maxLength)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return nil, errors.WithStack(ErrDeviceClosed)
	}
	buf := newReportBuffer(maxLength)
	n := d.native.ReadTimeout(d.handle, buf.bytes(), millis)
	if n == -1 {
		return nil, d.raise("read")
	}
	return buf.take(n), nil
}

// SetNonblocking switches Read between returning immediately and
// blocking until a report arrives.
func (d *Device) SetNonblocking(enabled bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return errors.WithStack(ErrDeviceClosed)
	}
	flag := 0
	if enabled {
		flag = 1
	}
	if d.native.SetNonblocking(d.handle, flag) == -1 {
		return d.raise("set nonblocking")
	}
	return nil
}

// SendFeatureReport sends a feature report. data[0] carries the report
// id, as with Write.
func (d *Device) SendFeatureReport(data []byte) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return 0, errors.WithStack(ErrDeviceClosed)
	}
	n := d.native.SendFeatureReport(d.handle, data)
	if n == -1 {
		return 0, d.raise("send feature report")
	}
	return n, nil
}

// GetFeatureReport reads the feature report with the given id into a
// buffer of maxLength bytes. maxLength must be at least 1: byte 0
// carries the report id in both directions.
func (d *Device) GetFeatureReport(reportID byte, maxLength int) ([]byte, error) {
	return d.getReport("get feature report", reportID, maxLength, d.native.GetFeatureReport)
}

// GetInputReport reads the input report with the given id, following
// the same buffer convention as GetFeatureReport.
func (d *Device) GetInputReport(reportID byte, maxLength int) ([]byte, error) {
	return d.getReport("get input report", reportID, maxLength, d.native.GetInputReport)
}

func (d *Device) getReport(op string, reportID byte, maxLength int, get func(Handle, []byte) int) ([]byte, error) {
	if maxLength < 1 {
		return nil, validationErr("maxLength", maxLength)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return nil, errors.WithStack(ErrDeviceClosed)
	}
	buf := newReportIDBuffer(reportID, maxLength)
	n := get(d.handle, buf.bytes())
	if n == -1 {
		return nil, d.raise(op)
	}
	return buf.take(n), nil
}

// ManufacturerString returns the manufacturer string, reading at most
// maxLength wide characters (DefaultStringLength is customary).
func (d *Device) ManufacturerString(maxLength int) (string, error) {
	return d.getString("get manufacturer string", maxLength, d.native.GetManufacturerString)
}

// ProductString returns the product string.
func (d *Device) ProductString(maxLength int) (string, error) {
	return d.getString("get product string", maxLength, d.native.GetProductString)
}

// SerialNumberString returns the serial number string.
func (d *Device) SerialNumberString(maxLength int) (string, error) {
	return d.getString("get serial number string", maxLength, d.native.GetSerialNumberString)
}

// IndexedString returns the string descriptor at the given index.
func (d *Device) IndexedString(index, maxLength int) (string, error) {
	if index < 0 {
		return "", validationErr("index", index)
	}
	return d.getString("get indexed string", maxLength, func(h Handle, wide []byte) int {
		return d.native.GetIndexedString(h, index, wide)
	})
}

func (d *Device) getString(op string, maxLength int, get func(Handle, []byte) int) (string, error) {
	if maxLength < 0 {
		return "", validationErr("maxLength", maxLength)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return "", errors.WithStack(ErrDeviceClosed)
	}
	wide := newWideBuffer(maxLength)
	if get(d.handle, wide) == -1 {
		return "", d.raise(op)
	}
	return decodeWide(wide)
}

// ReportDescriptor returns the raw report descriptor, reading at most
// bufSize bytes (DefaultReportDescriptorSize fits any legal one).
func (d *Device) ReportDescriptor(bufSize int) ([]byte, error) {
	if bufSize < 0 {
		return nil, validationErr("bufSize", bufSize)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return nil, errors.WithStack(ErrDeviceClosed)
	}
	buf := newReportBuffer(bufSize)
	n := d.native.GetReportDescriptor(d.handle, buf.bytes())
	if n == -1 {
		return nil, d.raise("get report descriptor")
	}
	return buf.take(n), nil
}

// Info returns the native library's description of the device.
func (d *Device) Info() (*DeviceInfo, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.handle.Valid() {
		return nil, errors.WithStack(ErrDeviceClosed)
	}
	info := d.native.DeviceInfo(d.handle)
	if info == nil {
		return nil, d.raise("get device info")
	}
	return info, nil
}
