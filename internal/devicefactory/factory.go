package devicefactory

import (
	"github.com/sirupsen/logrus"

	"github.com/srg/blescout/internal/device"
	goble "github.com/srg/blescout/internal/device/go-ble"
)

// BindingFactory creates the native BLE binding the scan controller drives.
// This is a variable so that it can be overridden in tests.
var BindingFactory = func(logger *logrus.Logger) device.Binding {
	return goble.New(logger)
}
