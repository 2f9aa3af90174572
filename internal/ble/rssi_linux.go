//go:build linux

package ble

import (
	"fmt"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	bluezService   = "org.bluez"
	bluezRSSIProp  = "org.bluez.Device1.RSSI"
	bluezPathRoot  = "/org/bluez/"
	bluezDevPrefix = "dev_"
)

// bluezRSSI reads the RSSI property BlueZ keeps for a remote device.
// BlueZ only populates it while it has a recent reading, so a missing
// property maps to ErrRSSIUnavailable.
type bluezRSSI struct {
	adapterID string
}

func (r bluezRSSI) Read(addr string) (int, error) {
	conn, err := dbus.SystemBus()
	if err != nil {
		return 0, fmt.Errorf("ble: system bus: %w", err)
	}
	obj := conn.Object(bluezService, devicePath(r.adapterID, addr))
	v, err := obj.GetProperty(bluezRSSIProp)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrRSSIUnavailable, err)
	}
	return rssiFromVariant(v)
}

func rssiFromVariant(v dbus.Variant) (int, error) {
	switch rssi := v.Value().(type) {
	case int16:
		return int(rssi), nil
	case int32:
		return int(rssi), nil
	default:
		return 0, fmt.Errorf("%w: unexpected type %s", ErrRSSIUnavailable, v.Signature())
	}
}

// devicePath builds the BlueZ object path for addr on adapterID, e.g.
// /org/bluez/hci0/dev_AA_BB_CC_DD_EE_FF.
func devicePath(adapterID, addr string) dbus.ObjectPath {
	dev := strings.ReplaceAll(strings.ToUpper(addr), ":", "_")
	return dbus.ObjectPath(bluezPathRoot + adapterID + "/" + bluezDevPrefix + dev)
}
