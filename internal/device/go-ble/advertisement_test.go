package goble

import (
	"testing"

	"github.com/go-ble/ble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdvertisement implements ble.Advertisement with fixed values.
type fakeAdvertisement struct {
	addr        string
	localName   string
	rssi        int
	txPower     int
	connectable bool
	services    []ble.UUID
	serviceData []ble.ServiceData
	manufData   []byte
}

func (f *fakeAdvertisement) LocalName() string              { return f.localName }
func (f *fakeAdvertisement) ManufacturerData() []byte       { return f.manufData }
func (f *fakeAdvertisement) ServiceData() []ble.ServiceData { return f.serviceData }
func (f *fakeAdvertisement) Services() []ble.UUID           { return f.services }
func (f *fakeAdvertisement) OverflowService() []ble.UUID    { return nil }
func (f *fakeAdvertisement) TxPowerLevel() int              { return f.txPower }
func (f *fakeAdvertisement) Connectable() bool              { return f.connectable }
func (f *fakeAdvertisement) SolicitedService() []ble.UUID   { return nil }
func (f *fakeAdvertisement) RSSI() int                      { return f.rssi }
func (f *fakeAdvertisement) Addr() ble.Addr                 { return ble.NewAddr(f.addr) }

func TestRecordFromAdvertisement_BasicFields(t *testing.T) {
	adv := &fakeAdvertisement{
		addr:        "aa:bb:cc:dd:ee:ff",
		localName:   "HeartMonitor",
		rssi:        -58,
		txPower:     4,
		connectable: true,
		services:    []ble.UUID{ble.UUID16(0x180F), ble.UUID16(0x180D)},
		serviceData: []ble.ServiceData{
			{UUID: ble.UUID16(0x180D), Data: []byte{0x01, 0x02}},
		},
	}

	rec := RecordFromAdvertisement(adv)

	assert.Equal(t, "aa:bb:cc:dd:ee:ff", rec.ID)
	assert.Equal(t, "HeartMonitor", rec.Name)
	assert.Equal(t, "HeartMonitor", rec.LocalName)
	assert.Equal(t, -58, rec.RSSI)
	assert.True(t, rec.Connectable)
	require.NotNil(t, rec.TxPower)
	assert.Equal(t, 4, *rec.TxPower)
	assert.False(t, rec.LastSeen.IsZero())

	// Services are normalized and sorted.
	assert.Equal(t, []string{"180d", "180f"}, rec.Services)
	require.Contains(t, rec.ServiceData, "180d")
	assert.Equal(t, []byte{0x01, 0x02}, rec.ServiceData["180d"])
}

func TestRecordFromAdvertisement_TxPowerUnavailable(t *testing.T) {
	adv := &fakeAdvertisement{
		addr:    "aa:bb:cc:dd:ee:ff",
		rssi:    -70,
		txPower: txPowerUnavailable,
	}

	rec := RecordFromAdvertisement(adv)
	assert.Nil(t, rec.TxPower, "sentinel TX power MUST map to an absent field")
}

func TestRecordFromAdvertisement_NameFromManufacturerData(t *testing.T) {
	tests := []struct {
		name      string
		localName string
		manufData []byte
		wantName  string
	}{
		{
			name:      "local name wins when present",
			localName: "Advertised",
			manufData: []byte{0x4c, 0x00, 'E', 'm', 'b', 'e', 'd', 'd', 'e', 'd'},
			wantName:  "Advertised",
		},
		{
			name:      "embedded ASCII name recovered",
			manufData: append([]byte{0x4c, 0x00, 0x01}, []byte("Thermo Sensor")...),
			wantName:  "Thermo Sensor",
		},
		{
			name:      "binary data yields no name",
			manufData: []byte{0x01, 0x02, 0x03, 0x04, 0x05},
			wantName:  "",
		},
		{
			name:      "too-short data yields no name",
			manufData: []byte{'a', 'b'},
			wantName:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := &fakeAdvertisement{
				addr:      "aa:bb:cc:dd:ee:ff",
				localName: tt.localName,
				manufData: tt.manufData,
				txPower:   txPowerUnavailable,
			}
			rec := RecordFromAdvertisement(adv)
			assert.Equal(t, tt.wantName, rec.Name)
		})
	}
}
