package hid

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/pkg/errors"
)

// hidapi is the Native implementation backed by the hidapi shared
// library, loaded at runtime so the package builds without cgo.
type hidapi struct {
	open            func(uint16, uint16, unsafe.Pointer) uintptr
	openPath        func(string) uintptr
	close           func(uintptr)
	write           func(uintptr, unsafe.Pointer, uint) int32
	read            func(uintptr, unsafe.Pointer, uint) int32
	readTimeout     func(uintptr, unsafe.Pointer, uint, int32) int32
	setNonblocking  func(uintptr, int32) int32
	sendFeature     func(uintptr, unsafe.Pointer, uint) int32
	getFeature      func(uintptr, unsafe.Pointer, uint) int32
	getInput        func(uintptr, unsafe.Pointer, uint) int32
	getManufacturer func(uintptr, unsafe.Pointer, uint) int32
	getProduct      func(uintptr, unsafe.Pointer, uint) int32
	getSerial       func(uintptr, unsafe.Pointer, uint) int32
	getIndexed      func(uintptr, int32, unsafe.Pointer, uint) int32
	getDescriptor   func(uintptr, unsafe.Pointer, uint) int32
	getDeviceInfo   func(uintptr) uintptr
	lastError       func(uintptr) uintptr
}

var (
	surfaceOnce sync.Once
	surface     Native
	surfaceErr  error
)

// Surface returns the process-wide native call surface, loading the
// hidapi shared library on first use.
func Surface() (Native, error) {
	surfaceOnce.Do(func() {
		surface, surfaceErr = newHidapi()
	})
	return surface, surfaceErr
}

// Available reports whether the native library could be loaded.
func Available() error {
	_, err := Surface()
	return err
}

func newHidapi() (*hidapi, error) {
	lib, err := loadNativeLibrary()
	if err != nil {
		return nil, errors.Wrap(err, "hid: loading native library")
	}

	n := &hidapi{}
	symbols := []struct {
		name     string
		fptr     any
		optional bool
	}{
		{"hid_open", &n.open, false},
		{"hid_open_path", &n.openPath, false},
		{"hid_close", &n.close, false},
		{"hid_write", &n.write, false},
		{"hid_read", &n.read, false},
		{"hid_read_timeout", &n.readTimeout, false},
		{"hid_set_nonblocking", &n.setNonblocking, false},
		{"hid_send_feature_report", &n.sendFeature, false},
		{"hid_get_feature_report", &n.getFeature, false},
		{"hid_get_manufacturer_string", &n.getManufacturer, false},
		{"hid_get_product_string", &n.getProduct, false},
		{"hid_get_serial_number_string", &n.getSerial, false},
		{"hid_get_indexed_string", &n.getIndexed, false},
		{"hid_error", &n.lastError, false},
		// Later hidapi additions; calls through a missing symbol
		// fail with the usual sentinel instead of failing the load.
		{"hid_get_input_report", &n.getInput, true},
		{"hid_get_report_descriptor", &n.getDescriptor, true},
		{"hid_get_device_info", &n.getDeviceInfo, true},
	}
	for _, s := range symbols {
		if _, err := symbolAddress(lib, s.name); err != nil {
			if s.optional {
				continue
			}
			return nil, errors.Wrapf(err, "hid: missing symbol %s", s.name)
		}
		purego.RegisterLibFunc(s.fptr, lib, s.name)
	}

	var initFn func() int32
	purego.RegisterLibFunc(&initFn, lib, "hid_init")
	if initFn() != 0 {
		return nil, errors.New("hid: hid_init failed")
	}

	return n, nil
}

func bytePtr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}

func (n *hidapi) Open(vendorID, productID uint16, serial []byte) Handle {
	return Handle(n.open(vendorID, productID, bytePtr(serial)))
}

func (n *hidapi) OpenPath(path string) Handle {
	return Handle(n.openPath(path))
}

func (n *hidapi) Close(h Handle) {
	n.close(uintptr(h))
}

func (n *hidapi) Write(h Handle, data []byte) int {
	return int(n.write(uintptr(h), bytePtr(data), uint(len(data))))
}

func (n *hidapi) Read(h Handle, buf []byte) int {
	return int(n.read(uintptr(h), bytePtr(buf), uint(len(buf))))
}

func (n *hidapi) ReadTimeout(h Handle, buf []byte, millis int) int {
	return int(n.readTimeout(uintptr(h), bytePtr(buf), uint(len(buf)), int32(millis)))
}

func (n *hidapi) SetNonblocking(h Handle, enabled int) int {
	return int(n.setNonblocking(uintptr(h), int32(enabled)))
}

func (n *hidapi) SendFeatureReport(h Handle, data []byte) int {
	return int(n.sendFeature(uintptr(h), bytePtr(data), uint(len(data))))
}

func (n *hidapi) GetFeatureReport(h Handle, buf []byte) int {
	return int(n.getFeature(uintptr(h), bytePtr(buf), uint(len(buf))))
}

func (n *hidapi) GetInputReport(h Handle, buf []byte) int {
	if n.getInput == nil {
		return -1
	}
	return int(n.getInput(uintptr(h), bytePtr(buf), uint(len(buf))))
}

// String getter lengths are counted in wide characters, not bytes.

func (n *hidapi) GetManufacturerString(h Handle, wide []byte) int {
	return int(n.getManufacturer(uintptr(h), bytePtr(wide), uint(len(wide)/wcharSize)))
}

func (n *hidapi) GetProductString(h Handle, wide []byte) int {
	return int(n.getProduct(uintptr(h), bytePtr(wide), uint(len(wide)/wcharSize)))
}

func (n *hidapi) GetSerialNumberString(h Handle, wide []byte) int {
	return int(n.getSerial(uintptr(h), bytePtr(wide), uint(len(wide)/wcharSize)))
}

func (n *hidapi) GetIndexedString(h Handle, index int, wide []byte) int {
	return int(n.getIndexed(uintptr(h), int32(index), bytePtr(wide), uint(len(wide)/wcharSize)))
}

func (n *hidapi) GetReportDescriptor(h Handle, buf []byte) int {
	if n.getDescriptor == nil {
		return -1
	}
	return int(n.getDescriptor(uintptr(h), bytePtr(buf), uint(len(buf))))
}

func (n *hidapi) DeviceInfo(h Handle) *DeviceInfo {
	if n.getDeviceInfo == nil {
		return nil
	}
	p := n.getDeviceInfo(uintptr(h))
	if p == 0 {
		return nil
	}
	return decodeDeviceInfo(p)
}

// maxErrorLength bounds the decode of hid_error strings, which carry no
// length of their own.
const maxErrorLength = 512

func (n *hidapi) Error(h Handle) string {
	p := n.lastError(uintptr(h))
	if p == 0 {
		return ""
	}
	s, err := decodeWidePtr(unsafe.Pointer(p), maxErrorLength)
	if err != nil {
		return ""
	}
	return s
}

// nativeDeviceInfo mirrors struct hid_device_info. Only the node
// returned by hid_get_device_info is read; the list next pointer is
// ignored and the memory stays owned by the handle.
type nativeDeviceInfo struct {
	path            uintptr // *char
	vendorID        uint16
	productID       uint16
	serialNumber    uintptr // *wchar_t
	releaseNumber   uint16
	manufacturer    uintptr // *wchar_t
	product         uintptr // *wchar_t
	usagePage       uint16
	usage           uint16
	interfaceNumber int32
	next            uintptr
	busType         int32
}

func decodeDeviceInfo(p uintptr) *DeviceInfo {
	raw := (*nativeDeviceInfo)(unsafe.Pointer(p))

	bus := BusUnknown
	if raw.busType >= int32(BusUnknown) && raw.busType <= int32(BusSPI) {
		bus = BusType(raw.busType)
	}

	return &DeviceInfo{
		Path:          cString(raw.path),
		VendorID:      raw.vendorID,
		ProductID:     raw.productID,
		SerialNumber:  wideString(raw.serialNumber),
		ReleaseNumber: raw.releaseNumber,
		Manufacturer:  wideString(raw.manufacturer),
		Product:       wideString(raw.product),
		UsagePage:     raw.usagePage,
		Usage:         raw.usage,
		Interface:     int(raw.interfaceNumber),
		Bus:           bus,
	}
}

func wideString(p uintptr) string {
	s, err := decodeWidePtr(unsafe.Pointer(p), DefaultStringLength)
	if err != nil {
		return ""
	}
	return s
}

func cString(p uintptr) string {
	if p == 0 {
		return ""
	}
	var out []byte
	for i := 0; ; i++ {
		c := *(*byte)(unsafe.Add(unsafe.Pointer(p), i))
		if c == 0 {
			break
		}
		out = append(out, c)
	}
	return string(out)
}
