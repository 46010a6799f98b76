package hid

// BusType identifies the transport a device is attached over. Older
// native libraries do not report it; the zero value means unknown.
type BusType int

const (
	BusUnknown BusType = iota
	BusUSB
	BusBluetooth
	BusI2C
	BusSPI
)

func (b BusType) String() string {
	switch b {
	case BusUSB:
		return "USB"
	case BusBluetooth:
		return "Bluetooth"
	case BusI2C:
		return "I2C"
	case BusSPI:
		return "SPI"
	}
	return "unknown"
}

// DeviceInfo describes a device as reported by the native library. It
// is a plain value with no tie to the handle that produced it.
type DeviceInfo struct {
	Path          string
	VendorID      uint16
	ProductID     uint16
	SerialNumber  string
	ReleaseNumber uint16
	Manufacturer  string
	Product       string
	UsagePage     uint16
	Usage         uint16
	Interface     int
	Bus           BusType
}
