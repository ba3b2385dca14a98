package main

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srg/blescout/internal/device"
)

func TestFormatUserError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "permission denied",
			err:  fmt.Errorf("%w: platform said no", device.ErrPermissionDenied),
			want: "Bluetooth permission denied. Grant Bluetooth access in your system settings and retry.",
		},
		{
			name: "adapter unavailable",
			err:  device.ErrAdapterUnavailable,
			want: "Bluetooth adapter is unavailable. Enable Bluetooth and retry.",
		},
		{
			name: "bluetooth off",
			err:  device.ErrBluetoothOff,
			want: "Bluetooth is turned off. Turn it on and retry.",
		},
		{
			name: "scan active",
			err:  device.ErrScanActive,
			want: "A scan is already in progress.",
		},
		{
			name: "wrapped in scan error",
			err:  &device.ScanError{Op: "start", Err: device.ErrBluetoothOff},
			want: "Bluetooth is turned off. Turn it on and retry.",
		},
		{
			name: "unknown error passes through",
			err:  errors.New("something odd"),
			want: "something odd",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUserError(tt.err))
		})
	}
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "v1.2.3", formatVersion("1.2.3"))
	assert.Equal(t, "dev", formatVersion("dev"))
	assert.Equal(t, "", formatVersion(""))
}
