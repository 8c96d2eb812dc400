package ledger_test

import (
	"testing"

	"github.com/karalabe/hid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-signer/internal/device/ledger"
)

func TestFilterKeepsLedgerAPDUInterfaces(t *testing.T) {
	infos := []hid.DeviceInfo{
		{Path: "nano-s-linux", VendorID: ledger.VendorID, ProductID: 0x1015, Interface: 0},
		{Path: "nano-x-macos", VendorID: ledger.VendorID, ProductID: 0x4011, UsagePage: 0xffa0, Interface: -1},
		{Path: "nano-s-u2f", VendorID: ledger.VendorID, ProductID: 0x1015, UsagePage: 0xf1d0, Interface: 1},
		{Path: "unknown-model", VendorID: ledger.VendorID, ProductID: 0x9999, Interface: 0},
		{Path: "other-vendor", VendorID: 0x1209, ProductID: 0x0001, Interface: 0},
	}

	filtered := ledger.Filter(infos)
	paths := make([]string, 0, len(filtered))
	for _, info := range filtered {
		paths = append(paths, info.Path)
	}

	assert.Equal(t, []string{"nano-s-linux", "nano-x-macos"}, paths)
}

func TestSelectDevice(t *testing.T) {
	infos := []hid.DeviceInfo{
		{Path: "/dev/hidraw3", ProductID: 0x1015},
		{Path: "/dev/hidraw5", ProductID: 0x4015},
	}

	info, err := ledger.SelectDevice(infos, ledger.AutoPath)
	require.NoError(t, err)
	assert.Equal(t, "/dev/hidraw3", info.Path)

	info, err = ledger.SelectDevice(infos, "/dev/hidraw5")
	require.NoError(t, err)
	assert.Equal(t, uint16(0x4015), info.ProductID)

	_, err = ledger.SelectDevice(infos, "/dev/hidraw9")
	assert.ErrorIs(t, err, ledger.ErrDeviceNotFound)

	_, err = ledger.SelectDevice(nil, "")
	assert.ErrorIs(t, err, ledger.ErrDeviceNotFound)
}
