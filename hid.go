package main

import (
	"fmt"

	"github.com/karalabe/hid"
)

// listHidDevices prints every HID device the platform reports. Vendor
// and product filters of zero match everything.
func listHidDevices(vendorID, productID uint16) error {
	if !hid.Supported() {
		return fmt.Errorf("HID enumeration not supported on this platform")
	}

	devs := hid.Enumerate(vendorID, productID)
	if len(devs) == 0 {
		fmt.Println("no HID devices found")
		return nil
	}

	for i, d := range devs {
		fmt.Printf("%d: %04x:%04x %s\n", i, d.VendorID, d.ProductID, d.Path)
		fmt.Printf("   manufacturer: %s\n", d.Manufacturer)
		fmt.Printf("   product:      %s\n", d.Product)
		fmt.Printf("   serial:       %s\n", d.Serial)
		fmt.Printf("   usage:        %04x/%04x, interface %d\n",
			d.UsagePage, d.Usage, d.Interface)
	}

	return nil
}
