package testutils

import (
	"time"

	"github.com/srg/blescout/internal/device"
)

// RecordBuilder builds DeviceRecord values for testing with a fluent API,
// mirroring the advertisement fields a peripheral would broadcast.
type RecordBuilder struct {
	rec device.DeviceRecord
}

// NewRecordBuilder creates a RecordBuilder with connectable defaulting to
// true and LastSeen set to now.
func NewRecordBuilder() *RecordBuilder {
	return &RecordBuilder{
		rec: device.DeviceRecord{
			Connectable: true,
			LastSeen:    time.Now(),
		},
	}
}

// WithID sets the stable hardware identifier.
func (b *RecordBuilder) WithID(id string) *RecordBuilder {
	b.rec.ID = id
	return b
}

// WithName sets the resolved device name.
func (b *RecordBuilder) WithName(name string) *RecordBuilder {
	b.rec.Name = name
	return b
}

// WithLocalName sets the advertised local name.
func (b *RecordBuilder) WithLocalName(name string) *RecordBuilder {
	b.rec.LocalName = name
	return b
}

// WithRSSI sets the signal strength in dBm.
func (b *RecordBuilder) WithRSSI(rssi int) *RecordBuilder {
	b.rec.RSSI = rssi
	return b
}

// WithServices adds advertised service UUIDs, normalized.
func (b *RecordBuilder) WithServices(uuids ...string) *RecordBuilder {
	b.rec.Services = append(b.rec.Services, device.NormalizeUUIDs(uuids)...)
	return b
}

// WithTxPower sets the transmit power level.
func (b *RecordBuilder) WithTxPower(power int) *RecordBuilder {
	b.rec.TxPower = &power
	return b
}

// WithConnectable sets the connectability flag.
func (b *RecordBuilder) WithConnectable(connectable bool) *RecordBuilder {
	b.rec.Connectable = connectable
	return b
}

// WithManufacturerData sets the manufacturer-specific bytes.
func (b *RecordBuilder) WithManufacturerData(data []byte) *RecordBuilder {
	b.rec.ManufacturerData = data
	return b
}

// WithServiceData adds service-specific data for the given service UUID.
func (b *RecordBuilder) WithServiceData(uuid string, data []byte) *RecordBuilder {
	if b.rec.ServiceData == nil {
		b.rec.ServiceData = make(map[string][]byte)
	}
	b.rec.ServiceData[device.NormalizeUUID(uuid)] = data
	return b
}

// WithLastSeen pins the observation timestamp.
func (b *RecordBuilder) WithLastSeen(t time.Time) *RecordBuilder {
	b.rec.LastSeen = t
	return b
}

// Build returns the assembled record.
func (b *RecordBuilder) Build() device.DeviceRecord {
	return b.rec
}

// NewRecord is shorthand for the common id/name/rssi case.
func NewRecord(id, name string, rssi int) device.DeviceRecord {
	return NewRecordBuilder().WithID(id).WithName(name).WithRSSI(rssi).Build()
}
