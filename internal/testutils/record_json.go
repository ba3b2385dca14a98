package testutils

import (
	"github.com/srg/blescout/internal/device"
)

// RecordJSON is the canonical JSON shape used when asserting on
// DeviceRecord values in tests and when rendering scan output.
type RecordJSON struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	DisplayName      string      `json:"display_name"`
	RSSI             int         `json:"rssi"`
	TxPower          *int        `json:"tx_power,omitempty"`
	Connectable      bool        `json:"connectable"`
	Services         []string    `json:"services"`
	ManufacturerData interface{} `json:"manufacturer_data,omitempty"`
	ServiceData      interface{} `json:"service_data,omitempty"`
	LastSeen         int64       `json:"last_seen"`
}

// RecordToJSON converts a DeviceRecord to its canonical JSON string.
func RecordToJSON(rec device.DeviceRecord) string {
	out := RecordJSON{
		ID:          rec.ID,
		Name:        rec.Name,
		DisplayName: rec.DisplayName(),
		RSSI:        rec.RSSI,
		TxPower:     rec.TxPower,
		Connectable: rec.Connectable,
		Services:    rec.Services,
		LastSeen:    rec.LastSeen.Unix(),
	}
	if out.Services == nil {
		out.Services = []string{}
	}
	if len(rec.ManufacturerData) > 0 {
		out.ManufacturerData = rec.ManufacturerData
	}
	if len(rec.ServiceData) > 0 {
		out.ServiceData = rec.ServiceData
	}
	return MustJSON(out)
}
