package goble

import (
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/go-ble/ble"

	"github.com/srg/blescout/internal/device"
)

// txPowerUnavailable is the value go-ble reports when the advertisement
// carries no TX power field.
const txPowerUnavailable = 127

// RecordFromAdvertisement converts a raw ble.Advertisement into the
// wholesale-replace DeviceRecord form consumed by the registry.
func RecordFromAdvertisement(adv ble.Advertisement) device.DeviceRecord {
	rec := device.DeviceRecord{
		ID:               adv.Addr().String(),
		LocalName:        adv.LocalName(),
		RSSI:             adv.RSSI(),
		Connectable:      adv.Connectable(),
		ManufacturerData: adv.ManufacturerData(),
		LastSeen:         time.Now(),
	}
	rec.Name = rec.LocalName

	for _, svc := range adv.Services() {
		rec.Services = append(rec.Services, device.NormalizeUUID(svc.String()))
	}
	sort.Strings(rec.Services)

	if sd := adv.ServiceData(); len(sd) > 0 {
		rec.ServiceData = make(map[string][]byte, len(sd))
		for _, entry := range sd {
			rec.ServiceData[device.NormalizeUUID(entry.UUID.String())] = entry.Data
		}
	}

	if tx := adv.TxPowerLevel(); tx != txPowerUnavailable {
		power := tx
		rec.TxPower = &power
	}

	// Some peripherals omit the local name but embed a readable name in
	// manufacturer data.
	if rec.Name == "" {
		rec.Name = nameFromManufacturerData(rec.ManufacturerData)
	}

	return rec
}

// nameFromManufacturerData scans manufacturer-specific bytes for an embedded
// readable ASCII device name. Many vendors ship the name this way instead of
// (or in addition to) the local-name field.
func nameFromManufacturerData(data []byte) string {
	if len(data) < 4 {
		return ""
	}

	for i := 0; i < len(data)-3; i++ {
		if !isReadableASCII(data[i]) {
			continue
		}
		var nameBytes []byte
		for j := i; j < len(data) && j < i+32; j++ {
			if !isReadableASCII(data[j]) {
				break
			}
			nameBytes = append(nameBytes, data[j])
		}
		if len(nameBytes) >= 3 {
			name := strings.TrimSpace(string(nameBytes))
			if isValidDeviceName(name) {
				return name
			}
		}
	}

	return ""
}

func isReadableASCII(b byte) bool {
	return b >= 0x20 && b <= 0x7e
}

func isValidDeviceName(name string) bool {
	if len(name) < 3 || len(name) > 32 {
		return false
	}

	for _, r := range name {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
