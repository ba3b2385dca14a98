package main

import (
	"errors"

	"github.com/srg/blescout/internal/device"
)

// FormatUserError maps internal errors to actionable one-line messages.
// Unrecognized errors pass through verbatim.
func FormatUserError(err error) string {
	switch {
	case errors.Is(err, device.ErrPermissionDenied):
		return "Bluetooth permission denied. Grant Bluetooth access in your system settings and retry."
	case errors.Is(err, device.ErrAdapterUnavailable):
		return "Bluetooth adapter is unavailable. Enable Bluetooth and retry."
	case errors.Is(err, device.ErrBluetoothOff):
		return "Bluetooth is turned off. Turn it on and retry."
	case errors.Is(err, device.ErrScanActive):
		return "A scan is already in progress."
	case errors.Is(err, device.ErrNotConnected):
		return "Device is not connected."
	case errors.Is(err, device.ErrUnknownPeripheral):
		return "Unknown device. Run a scan first to discover it."
	default:
		return err.Error()
	}
}
