package hid

// Handle identifies one open native device. The zero value is invalid.
type Handle uintptr

// Valid reports whether h refers to a native device.
func (h Handle) Valid() bool { return h != 0 }

// Native is the call surface of the underlying HID library, kept with
// the library's own sentinel convention: handle-producing calls return
// an invalid handle on failure, I/O calls return a byte count or -1.
// The surface performs no bounds checking and is not reentrant for the
// same handle; Device enforces both.
type Native interface {
	// Open opens the first device matching vendor and product id. A
	// nil serial matches any serial number; otherwise serial is a
	// null-terminated wide-character buffer.
	Open(vendorID, productID uint16, serial []byte) Handle
	OpenPath(path string) Handle
	Close(h Handle)

	Write(h Handle, data []byte) int
	Read(h Handle, buf []byte) int
	// ReadTimeout returns 0 when the timeout expires with no data;
	// millis -1 blocks until data arrives.
	ReadTimeout(h Handle, buf []byte, millis int) int
	SetNonblocking(h Handle, enabled int) int

	SendFeatureReport(h Handle, data []byte) int
	GetFeatureReport(h Handle, buf []byte) int
	GetInputReport(h Handle, buf []byte) int

	// The string getters fill a caller-allocated wide buffer (see
	// newWideBuffer) and return 0 or -1.
	GetManufacturerString(h Handle, wide []byte) int
	GetProductString(h Handle, wide []byte) int
	GetSerialNumberString(h Handle, wide []byte) int
	GetIndexedString(h Handle, index int, wide []byte) int

	GetReportDescriptor(h Handle, buf []byte) int

	// DeviceInfo returns nil on failure.
	DeviceInfo(h Handle) *DeviceInfo

	// Error returns the last error message attached to h, already
	// decoded. An invalid handle yields the library's global error
	// string, which may be empty. Error itself never fails.
	Error(h Handle) string
}
