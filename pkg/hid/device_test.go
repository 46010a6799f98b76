package hid

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

// fakeNative records calls and asserts that the binding never issues
// two native calls against the same surface concurrently.
type fakeNative struct {
	mu        sync.Mutex
	calls     []string
	busy      bool
	reentered bool
	delay     time.Duration

	openHandle Handle
	errMsg     string

	writeRet int

	readData []byte
	readRet  int
	millis   int

	reportID   byte
	reportFill []byte
	reportRet  int

	stringValue string
	stringRet   int
	index       int

	nonblockFlag int
	nonblockRet  int

	descriptor []byte

	info *DeviceInfo
}

func (f *fakeNative) enter(name string) func() {
	f.mu.Lock()
	if f.busy {
		f.reentered = true
	}
	f.busy = true
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return func() {
		f.mu.Lock()
		f.busy = false
		f.mu.Unlock()
	}
}

func (f *fakeNative) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeNative) Open(vendorID, productID uint16, serial []byte) Handle {
	defer f.enter("open")()
	return f.openHandle
}

func (f *fakeNative) OpenPath(path string) Handle {
	defer f.enter("open_path")()
	return f.openHandle
}

func (f *fakeNative) Close(h Handle) {
	defer f.enter("close")()
}

func (f *fakeNative) Write(h Handle, data []byte) int {
	defer f.enter("write")()
	if f.writeRet != 0 {
		return f.writeRet
	}
	return len(data)
}

func (f *fakeNative) Read(h Handle, buf []byte) int {
	defer f.enter("read")()
	copy(buf, f.readData)
	return f.readRet
}

func (f *fakeNative) ReadTimeout(h Handle, buf []byte, millis int) int {
	defer f.enter("read_timeout")()
	f.millis = millis
	copy(buf, f.readData)
	return f.readRet
}

func (f *fakeNative) SetNonblocking(h Handle, enabled int) int {
	defer f.enter("set_nonblocking")()
	f.nonblockFlag = enabled
	return f.nonblockRet
}

func (f *fakeNative) SendFeatureReport(h Handle, data []byte) int {
	defer f.enter("send_feature")()
	if f.writeRet != 0 {
		return f.writeRet
	}
	return len(data)
}

func (f *fakeNative) getReport(h Handle, buf []byte) int {
	f.reportID = buf[0]
	copy(buf, f.reportFill)
	return f.reportRet
}

func (f *fakeNative) GetFeatureReport(h Handle, buf []byte) int {
	defer f.enter("get_feature")()
	return f.getReport(h, buf)
}

func (f *fakeNative) GetInputReport(h Handle, buf []byte) int {
	defer f.enter("get_input")()
	return f.getReport(h, buf)
}

func (f *fakeNative) fillString(wide []byte) int {
	enc, err := encodeWide(f.stringValue)
	if err != nil {
		return -1
	}
	copy(wide, enc)
	return f.stringRet
}

func (f *fakeNative) GetManufacturerString(h Handle, wide []byte) int {
	defer f.enter("get_manufacturer")()
	return f.fillString(wide)
}

func (f *fakeNative) GetProductString(h Handle, wide []byte) int {
	defer f.enter("get_product")()
	return f.fillString(wide)
}

func (f *fakeNative) GetSerialNumberString(h Handle, wide []byte) int {
	defer f.enter("get_serial")()
	return f.fillString(wide)
}

func (f *fakeNative) GetIndexedString(h Handle, index int, wide []byte) int {
	defer f.enter("get_indexed")()
	f.index = index
	return f.fillString(wide)
}

func (f *fakeNative) GetReportDescriptor(h Handle, buf []byte) int {
	defer f.enter("get_descriptor")()
	return copy(buf, f.descriptor)
}

func (f *fakeNative) DeviceInfo(h Handle) *DeviceInfo {
	defer f.enter("get_device_info")()
	return f.info
}

func (f *fakeNative) Error(h Handle) string {
	return f.errMsg
}

func newFake() *fakeNative {
	return &fakeNative{openHandle: 1}
}

func openFake(t *testing.T, f *fakeNative) *Device {
	t.Helper()
	d, err := openDevice(f, func(n Native) Handle {
		return n.Open(0x1234, 0x5678, nil)
	})
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	return d
}

func TestOpenFailureSynthesizesMessage(t *testing.T) {
	f := newFake()
	f.openHandle = 0

	_, err := openDevice(f, func(n Native) Handle { return n.OpenPath("/no/such") })
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if devErr.Message != "no matching device" {
		t.Fatalf("unexpected message: %q", devErr.Message)
	}

	f.errMsg = "device busy"
	_, err = openDevice(f, func(n Native) Handle { return n.OpenPath("/no/such") })
	if !errors.As(err, &devErr) || devErr.Message != "device busy" {
		t.Fatalf("expected native message, got %v", err)
	}
}

func TestNegativeLengthValidation(t *testing.T) {
	f := newFake()
	d := openFake(t, f)
	before := f.callCount()

	ops := map[string]func() error{
		"read":         func() error { _, err := d.Read(-1); return err },
		"read timeout": func() error { _, err := d.ReadTimeout(-1, 100); return err },
		"manufacturer": func() error { _, err := d.ManufacturerString(-1); return err },
		"product":      func() error { _, err := d.ProductString(-1); return err },
		"serial":       func() error { _, err := d.SerialNumberString(-1); return err },
		"indexed":      func() error { _, err := d.IndexedString(1, -1); return err },
		"descriptor":   func() error { _, err := d.ReportDescriptor(-1); return err },
	}
	for name, op := range ops {
		var valErr *ValidationError
		if err := op(); !errors.As(err, &valErr) {
			t.Fatalf("%s: expected ValidationError, got %v", name, err)
		}
	}
	if f.callCount() != before {
		t.Fatalf("validation failures reached the native layer: %v", f.calls)
	}
}

func TestReportReadsNeedRoomForReportID(t *testing.T) {
	f := newFake()
	d := openFake(t, f)
	before := f.callCount()

	var valErr *ValidationError
	if _, err := d.GetFeatureReport(0x01, 0); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := d.GetInputReport(0x01, 0); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if f.callCount() != before {
		t.Fatal("validation failures reached the native layer")
	}
}

func TestGetFeatureReportPlacesReportID(t *testing.T) {
	f := newFake()
	f.reportFill = []byte{0x05, 0xaa, 0xbb}
	f.reportRet = 3
	d := openFake(t, f)

	data, err := d.GetFeatureReport(0x05, 64)
	if err != nil {
		t.Fatalf("get feature report: %v", err)
	}
	if f.reportID != 0x05 {
		t.Fatalf("report id not placed in byte 0, saw %#x", f.reportID)
	}
	if !bytes.Equal(data, []byte{0x05, 0xaa, 0xbb}) {
		t.Fatalf("unexpected report data: %x", data)
	}
}

func TestReadTruncatesToResultLength(t *testing.T) {
	f := newFake()
	f.readData = []byte{1, 2, 3, 4, 5}
	f.readRet = 5
	d := openFake(t, f)

	data, err := d.Read(64)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 5 {
		t.Fatalf("expected 5 bytes, got %d", len(data))
	}
	if !bytes.Equal(data, f.readData) {
		t.Fatalf("unexpected data: %x", data)
	}
}

func TestReadTimeoutNoDataIsEmpty(t *testing.T) {
	f := newFake()
	f.readRet = 0
	d := openFake(t, f)

	data, err := d.ReadTimeout(64, 0)
	if err != nil {
		t.Fatalf("timeout must not be an error: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected empty result, got %d bytes", len(data))
	}
}

func TestReadTimeoutBlockingSentinel(t *testing.T) {
	f := newFake()
	d := openFake(t, f)

	if _, err := d.ReadTimeout(8, -1); err != nil {
		t.Fatalf("read timeout: %v", err)
	}
	if f.millis != -1 {
		t.Fatalf("blocking sentinel not passed through, got %d", f.millis)
	}
}

func TestNativeFailureRaisesDeviceError(t *testing.T) {
	f := newFake()
	f.writeRet = -1
	f.errMsg = "pipe stalled"
	d := openFake(t, f)

	_, err := d.Write([]byte{0x00, 0x01})
	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
	if devErr.Op != "write" || devErr.Message != "pipe stalled" {
		t.Fatalf("unexpected error: %v", devErr)
	}
}

func TestOperationsAfterClose(t *testing.T) {
	f := newFake()
	d := openFake(t, f)

	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second close must be a no-op: %v", err)
	}
	closes := 0
	for _, c := range f.calls {
		if c == "close" {
			closes++
		}
	}
	if closes != 1 {
		t.Fatalf("native close called %d times", closes)
	}

	before := f.callCount()
	ops := []func() error{
		func() error { _, err := d.Write([]byte{0}); return err },
		func() error { _, err := d.Read(8); return err },
		func() error { _, err := d.ReadTimeout(8, 10); return err },
		func() error { return d.SetNonblocking(true) },
		func() error { _, err := d.SendFeatureReport([]byte{0}); return err },
		func() error { _, err := d.GetFeatureReport(0, 8); return err },
		func() error { _, err := d.GetInputReport(0, 8); return err },
		func() error { _, err := d.ManufacturerString(8); return err },
		func() error { _, err := d.IndexedString(1, 8); return err },
		func() error { _, err := d.ReportDescriptor(8); return err },
		func() error { _, err := d.Info(); return err },
	}
	for i, op := range ops {
		if err := op(); !errors.Is(err, ErrDeviceClosed) {
			t.Fatalf("op %d: expected ErrDeviceClosed, got %v", i, err)
		}
	}
	if f.callCount() != before {
		t.Fatalf("closed device reached the native layer: %v", f.calls)
	}
}

func TestWritesAreSerialized(t *testing.T) {
	f := newFake()
	f.delay = time.Millisecond
	d := openFake(t, f)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				if _, err := d.Write([]byte{0x00, byte(j)}); err != nil {
					t.Errorf("write: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if f.reentered {
		t.Fatal("native calls interleaved on one handle")
	}
}

func TestSetNonblockingFlag(t *testing.T) {
	f := newFake()
	d := openFake(t, f)

	if err := d.SetNonblocking(true); err != nil {
		t.Fatalf("set nonblocking: %v", err)
	}
	if f.nonblockFlag != 1 {
		t.Fatalf("expected flag 1, got %d", f.nonblockFlag)
	}
	if err := d.SetNonblocking(false); err != nil {
		t.Fatalf("set nonblocking: %v", err)
	}
	if f.nonblockFlag != 0 {
		t.Fatalf("expected flag 0, got %d", f.nonblockFlag)
	}

	f.nonblockRet = -1
	var devErr *DeviceError
	if err := d.SetNonblocking(true); !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
}

func TestDescriptiveStrings(t *testing.T) {
	f := newFake()
	f.stringValue = "ExampleCorp"
	d := openFake(t, f)

	for name, get := range map[string]func() (string, error){
		"manufacturer": func() (string, error) { return d.ManufacturerString(DefaultStringLength) },
		"product":      func() (string, error) { return d.ProductString(DefaultStringLength) },
		"serial":       func() (string, error) { return d.SerialNumberString(DefaultStringLength) },
	} {
		s, err := get()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if s != "ExampleCorp" {
			t.Fatalf("%s: got %q", name, s)
		}
	}

	s, err := d.IndexedString(3, DefaultStringLength)
	if err != nil {
		t.Fatalf("indexed: %v", err)
	}
	if s != "ExampleCorp" || f.index != 3 {
		t.Fatalf("indexed: got %q at index %d", s, f.index)
	}

	var valErr *ValidationError
	if _, err := d.IndexedString(-1, DefaultStringLength); !errors.As(err, &valErr) {
		t.Fatalf("expected ValidationError for negative index, got %v", err)
	}
}

func TestReportDescriptor(t *testing.T) {
	f := newFake()
	f.descriptor = []byte{0x05, 0x01, 0x09, 0x06, 0xa1, 0x01}
	d := openFake(t, f)

	desc, err := d.ReportDescriptor(DefaultReportDescriptorSize)
	if err != nil {
		t.Fatalf("report descriptor: %v", err)
	}
	if !bytes.Equal(desc, f.descriptor) {
		t.Fatalf("unexpected descriptor: %x", desc)
	}
}

func TestDeviceInfo(t *testing.T) {
	f := newFake()
	f.info = &DeviceInfo{
		Path:      "/dev/hidraw3",
		VendorID:  0x1234,
		ProductID: 0x5678,
		Bus:       BusUSB,
	}
	d := openFake(t, f)

	info, err := d.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if info.Path != "/dev/hidraw3" || info.Bus != BusUSB {
		t.Fatalf("unexpected info: %+v", info)
	}

	f.info = nil
	f.errMsg = "not supported"
	var devErr *DeviceError
	if _, err := d.Info(); !errors.As(err, &devErr) {
		t.Fatalf("expected DeviceError, got %v", err)
	}
}
