//go:build !linux && !darwin

package goble

import (
	"errors"

	"github.com/go-ble/ble"
)

func newHostDevice() (ble.Device, error) {
	return nil, errors.New("no BLE transport available on this platform")
}
