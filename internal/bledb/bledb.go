// Package bledb provides name lookups for well-known Bluetooth SIG UUIDs
// (services, characteristics, descriptors) and vendor company identifiers,
// plus UUID normalization helpers shared across the project.
//
// The tables below are a curated subset of the Bluetooth SIG assigned
// numbers; unknown UUIDs simply resolve to an empty name.
package bledb

import "strings"

// sigBaseSuffix is the tail of the Bluetooth SIG base UUID
// 0000xxxx-0000-1000-8000-00805f9b34fb in normalized (no-dash) form.
const sigBaseSuffix = "00001000800000805f9b34fb"

// NormalizeUUID converts a UUID string to the internal format used for
// lookups: lowercase, no dashes, no braces, no 0x prefix. Full 128-bit UUIDs
// on the Bluetooth SIG base are reduced to their 16-bit short form.
func NormalizeUUID(uuid string) string {
	u := strings.ToLower(strings.TrimSpace(uuid))
	u = strings.TrimPrefix(u, "0x")
	u = strings.ReplaceAll(u, "-", "")
	u = strings.ReplaceAll(u, "{", "")
	u = strings.ReplaceAll(u, "}", "")

	// 0000xxxx + SIG base suffix -> xxxx
	if len(u) == 32 && strings.HasPrefix(u, "0000") && strings.HasSuffix(u, sigBaseSuffix) {
		return u[4:8]
	}
	return u
}

// NormalizeUUIDs normalizes a slice of UUID strings to internal format.
func NormalizeUUIDs(uuids []string) []string {
	if uuids == nil {
		return nil
	}
	result := make([]string, len(uuids))
	for i, u := range uuids {
		result[i] = NormalizeUUID(u)
	}
	return result
}

// LookupService returns the assigned name for a service UUID, or "".
func LookupService(uuid string) string {
	return serviceNames[NormalizeUUID(uuid)]
}

// LookupCharacteristic returns the assigned name for a characteristic UUID, or "".
func LookupCharacteristic(uuid string) string {
	return characteristicNames[NormalizeUUID(uuid)]
}

// LookupDescriptor returns the assigned name for a descriptor UUID, or "".
func LookupDescriptor(uuid string) string {
	return descriptorNames[NormalizeUUID(uuid)]
}

// LookupVendor returns the company name for a manufacturer-data company ID, or "".
func LookupVendor(companyID uint16) string {
	return vendorNames[companyID]
}

var serviceNames = map[string]string{
	"1800": "Generic Access",
	"1801": "Generic Attribute",
	"1802": "Immediate Alert",
	"1803": "Link Loss",
	"1804": "Tx Power",
	"1805": "Current Time Service",
	"180a": "Device Information",
	"180d": "Heart Rate",
	"180f": "Battery Service",
	"1810": "Blood Pressure",
	"1812": "Human Interface Device",
	"1813": "Scan Parameters",
	"1815": "Automation IO",
	"1816": "Cycling Speed and Cadence",
	"1818": "Cycling Power",
	"1819": "Location and Navigation",
	"181a": "Environmental Sensing",
	"181b": "Body Composition",
	"181c": "User Data",
	"181d": "Weight Scale",
	"1826": "Fitness Machine",
	"1827": "Mesh Provisioning Service",
	"1828": "Mesh Proxy Service",
	"183e": "Physical Activity Monitor",
	"fd6f": "Exposure Notification Service",
	"fe2c": "Google Fast Pair Service",
	"6e400001b5a3f393e0a9e50e24dcca9e": "Nordic UART Service",
}

var characteristicNames = map[string]string{
	"2a00": "Device Name",
	"2a01": "Appearance",
	"2a05": "Service Changed",
	"2a19": "Battery Level",
	"2a24": "Model Number String",
	"2a25": "Serial Number String",
	"2a26": "Firmware Revision String",
	"2a27": "Hardware Revision String",
	"2a28": "Software Revision String",
	"2a29": "Manufacturer Name String",
	"2a37": "Heart Rate Measurement",
	"2a38": "Body Sensor Location",
	"2a39": "Heart Rate Control Point",
	"2a6d": "Pressure",
	"2a6e": "Temperature",
	"2a6f": "Humidity",
	"2acc": "Fitness Machine Feature",
	"6e400002b5a3f393e0a9e50e24dcca9e": "UART RX",
	"6e400003b5a3f393e0a9e50e24dcca9e": "UART TX",
}

var descriptorNames = map[string]string{
	"2900": "Characteristic Extended Properties",
	"2901": "Characteristic User Description",
	"2902": "Client Characteristic Configuration",
	"2903": "Server Characteristic Configuration",
	"2904": "Characteristic Presentation Format",
	"2905": "Characteristic Aggregate Format",
}

var vendorNames = map[uint16]string{
	0x0006: "Microsoft",
	0x000f: "Broadcom Corporation",
	0x004c: "Apple, Inc.",
	0x0059: "Nordic Semiconductor ASA",
	0x0075: "Samsung Electronics Co. Ltd.",
	0x00e0: "Google",
	0x0157: "Anhui Huami Information Technology Co., Ltd.",
	0x02e1: "Victron Energy BV",
	0x038f: "Xiaomi Inc.",
	0x0499: "Ruuvi Innovations Ltd.",
}
