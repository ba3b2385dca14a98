package testutils

import (
	"context"
	"sync"

	"github.com/srg/blescout/internal/device"
	"github.com/srg/blescout/internal/ringchan"
)

// MockBinding is a scriptable device.Binding for controller and command
// tests. Failures are injected per primitive; discovery is driven either by
// emitting events or by queueing poll snapshots.
type MockBinding struct {
	mu sync.Mutex

	initialized bool
	scanning    bool
	adapter     device.AdapterState

	adapterErr error
	enableErr  error
	beginErr   error
	endErr     error
	pollErr    error
	connectErr error

	// snapshots are returned by successive DiscoveredPeripherals calls;
	// the last one repeats once the queue is exhausted.
	snapshots [][]device.DeviceRecord
	pollCalls int

	connected []device.DeviceRecord
	services  map[string][]string

	beginCalls  int
	endCalls    int
	enableCalls int

	events *ringchan.RingChannel[device.Event]
}

// NewMockBinding creates a mock with an enabled adapter and no scripted
// failures.
func NewMockBinding() *MockBinding {
	return &MockBinding{
		adapter:  device.AdapterEnabled,
		services: make(map[string][]string),
		events:   ringchan.New[device.Event](64),
	}
}

// Scripting API

// SetAdapter changes the probed adapter state without emitting an event.
func (m *MockBinding) SetAdapter(state device.AdapterState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.adapter = state
}

// FailAdapterProbe makes AdapterState return err.
func (m *MockBinding) FailAdapterProbe(err error) { m.mu.Lock(); m.adapterErr = err; m.mu.Unlock() }

// FailEnable makes RequestEnable return err.
func (m *MockBinding) FailEnable(err error) { m.mu.Lock(); m.enableErr = err; m.mu.Unlock() }

// FailBeginScan makes BeginScan return err.
func (m *MockBinding) FailBeginScan(err error) { m.mu.Lock(); m.beginErr = err; m.mu.Unlock() }

// FailEndScan makes EndScan return err.
func (m *MockBinding) FailEndScan(err error) { m.mu.Lock(); m.endErr = err; m.mu.Unlock() }

// FailPoll makes DiscoveredPeripherals return err.
func (m *MockBinding) FailPoll(err error) { m.mu.Lock(); m.pollErr = err; m.mu.Unlock() }

// FailConnect makes Connect return err.
func (m *MockBinding) FailConnect(err error) { m.mu.Lock(); m.connectErr = err; m.mu.Unlock() }

// QueueSnapshots scripts the poll responses, one snapshot per call; the
// last snapshot repeats.
func (m *MockBinding) QueueSnapshots(snapshots ...[]device.DeviceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = snapshots
	m.pollCalls = 0
}

// SetConnected scripts the connected-peripherals snapshot.
func (m *MockBinding) SetConnected(recs ...device.DeviceRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = recs
}

// SetServices scripts FetchServices for a peripheral ID.
func (m *MockBinding) SetServices(id string, services ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.services[id] = services
}

// EmitDiscovered pushes a peripheral-discovered event.
func (m *MockBinding) EmitDiscovered(rec device.DeviceRecord) {
	m.events.ForceSend(device.Event{Type: device.EventDiscovered, Record: &rec})
}

// EmitScanStopped pushes a scan-stopped notification.
func (m *MockBinding) EmitScanStopped() {
	m.events.ForceSend(device.Event{Type: device.EventScanStopped})
}

// EmitAdapterChanged pushes an adapter-state-changed notification and
// mirrors it into the probed state.
func (m *MockBinding) EmitAdapterChanged(state device.AdapterState) {
	m.SetAdapter(state)
	m.events.ForceSend(device.Event{Type: device.EventAdapterChanged, Adapter: state})
}

// Call counters

func (m *MockBinding) BeginScanCalls() int  { m.mu.Lock(); defer m.mu.Unlock(); return m.beginCalls }
func (m *MockBinding) EndScanCalls() int    { m.mu.Lock(); defer m.mu.Unlock(); return m.endCalls }
func (m *MockBinding) EnableCalls() int     { m.mu.Lock(); defer m.mu.Unlock(); return m.enableCalls }
func (m *MockBinding) PollCalls() int       { m.mu.Lock(); defer m.mu.Unlock(); return m.pollCalls }
func (m *MockBinding) IsScanning() bool     { m.mu.Lock(); defer m.mu.Unlock(); return m.scanning }
func (m *MockBinding) IsInitialized() bool  { m.mu.Lock(); defer m.mu.Unlock(); return m.initialized }

// device.Binding implementation

func (m *MockBinding) Initialize(_ context.Context, _ device.InitOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	return nil
}

func (m *MockBinding) AdapterState(_ context.Context) (device.AdapterState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.adapterErr != nil {
		return device.AdapterUnknown, m.adapterErr
	}
	return m.adapter, nil
}

func (m *MockBinding) RequestEnable(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enableCalls++
	if m.enableErr != nil {
		return m.enableErr
	}
	m.adapter = device.AdapterEnabled
	return nil
}

func (m *MockBinding) BeginScan(_ context.Context, _ []string, _ bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beginCalls++
	if m.beginErr != nil {
		return m.beginErr
	}
	m.scanning = true
	return nil
}

func (m *MockBinding) EndScan() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.endCalls++
	m.scanning = false
	return m.endErr
}

func (m *MockBinding) DiscoveredPeripherals() ([]device.DeviceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pollErr != nil {
		return nil, m.pollErr
	}
	if len(m.snapshots) == 0 {
		return nil, nil
	}
	idx := m.pollCalls
	if idx >= len(m.snapshots) {
		idx = len(m.snapshots) - 1
	}
	m.pollCalls++
	return m.snapshots[idx], nil
}

func (m *MockBinding) ConnectedPeripherals(_ []string) ([]device.DeviceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected, nil
}

func (m *MockBinding) Connect(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.connectErr != nil {
		return m.connectErr
	}
	if _, ok := m.services[id]; !ok {
		m.services[id] = nil
	}
	return nil
}

func (m *MockBinding) FetchServices(_ context.Context, id string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	services, ok := m.services[id]
	if !ok {
		return nil, device.ErrNotConnected
	}
	return services, nil
}

func (m *MockBinding) Events() <-chan device.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.events == nil {
		return nil
	}
	return m.events.C()
}

func (m *MockBinding) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanning = false
	if m.events != nil {
		m.events.Close()
		m.events = nil
	}
	return nil
}
