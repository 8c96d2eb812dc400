package ledger

import (
	"io"

	"github.com/karalabe/hid"
	"github.com/pkg/errors"
)

const (
	// VendorID is the USB vendor id of every Ledger device
	VendorID uint16 = 0x2c97

	// AutoPath selects the first Ledger found instead of a fixed HID path
	AutoPath = "auto"

	// Windows and macOS expose the APDU interface by usage page, Linux by interface number
	usagePage = 0xffa0
	endpoint  = 0
)

var ErrDeviceNotFound = errors.New("ledger: device not found")

// productIDs lists the Ledger models and their HID, U2F and WebUSB variants
var productIDs = []uint16{
	0x0000, // Blue
	0x0001, // Nano S
	0x0004, // Nano X
	0x0005, // Nano S Plus
	0x0006, // Stax
	0x0007, // Flex

	0x0015, 0x1015, 0x4015, 0x5015, 0x6015, 0x7015, // HID + U2F + WebUSB
	0x0011, 0x1011, 0x4011, 0x5011, 0x6011, 0x7011, // HID + WebUSB
}

// Enumerate lists the APDU interfaces of all connected Ledger devices
func Enumerate() ([]hid.DeviceInfo, error) {
	if !hid.Supported() {
		return nil, errors.New("ledger: USB HID is not supported on this platform")
	}

	infos, err := hid.Enumerate(VendorID, 0)
	if err != nil {
		return nil, errors.Wrap(err, "ledger: failed to enumerate devices")
	}

	return Filter(infos), nil
}

// Filter keeps the infos that belong to a known Ledger APDU interface
func Filter(infos []hid.DeviceInfo) []hid.DeviceInfo {
	res := make([]hid.DeviceInfo, 0, len(infos))
	for _, info := range infos {
		if info.VendorID != 0 && info.VendorID != VendorID {
			continue
		}
		if info.UsagePage != usagePage && info.Interface != endpoint {
			continue
		}
		for _, id := range productIDs {
			if info.ProductID == id {
				res = append(res, info)
				break
			}
		}
	}

	return res
}

// SelectDevice picks the info whose HID path equals path. An empty path or
// AutoPath picks the first one.
func SelectDevice(infos []hid.DeviceInfo, path string) (hid.DeviceInfo, error) {
	for _, info := range infos {
		if path == "" || path == AutoPath || info.Path == path {
			return info, nil
		}
	}

	if path == "" || path == AutoPath {
		return hid.DeviceInfo{}, ErrDeviceNotFound
	}

	return hid.DeviceInfo{}, errors.Wrapf(ErrDeviceNotFound, "no Ledger at %s", path)
}

// OpenUSB opens the Ledger at the given HID path through hidapi
func OpenUSB(path string) (io.ReadWriteCloser, error) {
	infos, err := Enumerate()
	if err != nil {
		return nil, err
	}

	info, err := SelectDevice(infos, path)
	if err != nil {
		return nil, err
	}

	device, err := info.Open()
	if err != nil {
		return nil, errors.Wrapf(err, "ledger: failed to open %s", info.Path)
	}

	return device, nil
}
