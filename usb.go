package main

import (
	"fmt"

	"github.com/google/gousb"
	"github.com/pkg/errors"
)

// listUsbDevices walks the USB bus and marks the interfaces HID class
// devices hang off, which helps match an enumerated HID path to a
// physical port.
func listUsbDevices() error {
	ctx := gousb.NewContext()
	defer ctx.Close()

	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		fmt.Printf("bus %03d addr %03d: %s:%s\n",
			desc.Bus, desc.Address, desc.Vendor, desc.Product)
		for _, cfg := range desc.Configs {
			for _, intf := range cfg.Interfaces {
				for _, alt := range intf.AltSettings {
					if alt.Class == gousb.ClassHID {
						fmt.Printf("   config %d interface %d: HID\n",
							cfg.Number, intf.Number)
						break
					}
				}
			}
		}
		// Listing only; nothing gets opened.
		return false
	})
	for _, d := range devs {
		d.Close()
	}
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
