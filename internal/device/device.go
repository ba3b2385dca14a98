package device

import (
	"context"
	"time"
)

// AdapterState mirrors the powered state of the local Bluetooth adapter.
// AdapterUnknown is the startup value until the first probe or state-change
// notification arrives from the binding.
type AdapterState int

const (
	AdapterUnknown AdapterState = iota
	AdapterEnabled
	AdapterDisabled
)

func (s AdapterState) String() string {
	switch s {
	case AdapterEnabled:
		return "enabled"
	case AdapterDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// DeviceRecord is the last-known view of a discovered peripheral.
// Records are keyed by ID; an update replaces the record wholesale,
// there is no field-level merging.
//
//nolint:revive // DeviceRecord name is intentional for clarity when used as a device.DeviceRecord
type DeviceRecord struct {
	ID               string
	Name             string
	LocalName        string
	RSSI             int
	TxPower          *int
	Connectable      bool
	Services         []string
	ManufacturerData []byte
	ServiceData      map[string][]byte
	LastSeen         time.Time
}

// DisplayName returns the best human-readable name for the record,
// falling back to the hardware identifier.
func (r DeviceRecord) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	if r.LocalName != "" {
		return r.LocalName
	}
	return r.ID
}

// EventType classifies notifications delivered on a Binding's event stream.
type EventType int

const (
	// EventDiscovered carries a DeviceRecord for a peripheral advertisement.
	EventDiscovered EventType = iota
	// EventScanStopped signals that the underlying scan primitive has ended,
	// whether by request, timeout, or backend failure.
	EventScanStopped
	// EventAdapterChanged carries the new AdapterState.
	EventAdapterChanged
)

func (t EventType) String() string {
	switch t {
	case EventDiscovered:
		return "discovered"
	case EventScanStopped:
		return "scan-stopped"
	case EventAdapterChanged:
		return "adapter-changed"
	default:
		return "unknown"
	}
}

// Event is a single notification from the native binding.
type Event struct {
	Type    EventType
	Record  *DeviceRecord // set for EventDiscovered
	Adapter AdapterState  // set for EventAdapterChanged
}

// InitOptions configures one-time Binding setup.
type InitOptions struct {
	// EventBuffer is the capacity of the event ring. Zero selects the
	// binding's default. Slow consumers lose the oldest events rather
	// than stalling radio callbacks.
	EventBuffer int
}

// Binding is the native BLE surface the scan controller drives. All methods
// are safe to call from a single controller goroutine; Events() delivery is
// concurrent with the method calls.
//
// Scan duration is carried by the context passed to BeginScan. The
// controller owns the duration budget and schedules the unconditional stop
// itself, so the binding never needs a separate duration argument.
type Binding interface {
	// Initialize performs one-time setup. Must be called before any other
	// method.
	Initialize(ctx context.Context, opts InitOptions) error

	// AdapterState probes the adapter's current powered state.
	AdapterState(ctx context.Context) (AdapterState, error)

	// RequestEnable makes a best-effort attempt to power the adapter on.
	RequestEnable(ctx context.Context) error

	// BeginScan starts advertisement collection. serviceUUIDs, when
	// non-empty, restricts discovery to peripherals advertising one of the
	// given services. The call returns once the scan is running; discovery
	// is reported via Events() and DiscoveredPeripherals().
	BeginScan(ctx context.Context, serviceUUIDs []string, allowDuplicates bool) error

	// EndScan stops an active scan. Safe to call when no scan is running.
	EndScan() error

	// DiscoveredPeripherals returns a point-in-time snapshot of every
	// peripheral seen since the current scan began, in the binding's
	// natural order.
	DiscoveredPeripherals() ([]DeviceRecord, error)

	// ConnectedPeripherals returns peripherals with an active connection,
	// optionally filtered by advertised service.
	ConnectedPeripherals(serviceUUIDs []string) ([]DeviceRecord, error)

	// Connect establishes a connection to the peripheral with the given ID.
	Connect(ctx context.Context, id string) error

	// FetchServices discovers the GATT services of a connected peripheral
	// and returns their normalized UUIDs.
	FetchServices(ctx context.Context, id string) ([]string, error)

	// Events returns the binding's notification stream. The channel is
	// closed by Close().
	Events() <-chan Event

	// Close releases the binding, ending any active scan.
	Close() error
}
