// Package goble implements the native BLE binding on top of go-ble.
// It owns the raw scan goroutine, converts advertisements into device
// records, and surfaces discovery, scan-stopped, and adapter-state
// notifications on a bounded event stream.
package goble

import (
	"context"
	"errors"
	"sync"

	"github.com/cornelk/hashmap"
	"github.com/go-ble/ble"
	"github.com/sirupsen/logrus"

	"github.com/srg/blescout/internal/device"
	"github.com/srg/blescout/internal/groutine"
	"github.com/srg/blescout/internal/ringchan"
)

// DefaultEventBuffer is the default capacity of the binding's event ring.
const DefaultEventBuffer = 256

// DeviceFactory creates ble.Device instances (can be overridden in tests)
//
//nolint:revive // DeviceFactory name is intentional for test mocking
var DeviceFactory = func() (ble.Device, error) {
	return newHostDevice()
}

// Binding implements device.Binding on a go-ble transport.
type Binding struct {
	logger *logrus.Logger

	mu         sync.Mutex
	dev        ble.Device
	adapter    device.AdapterState
	scanCancel context.CancelFunc
	scanDone   chan struct{}
	filter     map[string]struct{}
	order      []string

	// discovered and conns are touched from the scan goroutine and radio
	// callbacks concurrently with API calls.
	discovered *hashmap.Map[string, device.DeviceRecord]
	conns      *hashmap.Map[string, ble.Client]

	events *ringchan.RingChannel[device.Event]
}

// New creates an uninitialized Binding. Call Initialize before use.
func New(logger *logrus.Logger) *Binding {
	if logger == nil {
		logger = logrus.New()
	}
	return &Binding{
		logger:     logger,
		adapter:    device.AdapterUnknown,
		discovered: hashmap.New[string, device.DeviceRecord](),
		conns:      hashmap.New[string, ble.Client](),
	}
}

// Initialize sets up the event stream. The HCI device itself is created
// lazily on the first operation that needs the radio, so a powered-off
// adapter surfaces as AdapterDisabled rather than an initialization failure.
func (b *Binding) Initialize(_ context.Context, opts device.InitOptions) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.events != nil {
		return errors.New("binding already initialized")
	}

	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}
	b.events = ringchan.New[device.Event](buffer)
	return nil
}

// ensureDevice creates the underlying ble.Device on first use and keeps the
// mirrored adapter state in sync with the outcome. Callers must hold b.mu.
func (b *Binding) ensureDevice() (ble.Device, error) {
	if b.dev != nil {
		return b.dev, nil
	}

	dev, err := DeviceFactory()
	if err != nil {
		b.setAdapterLocked(device.AdapterDisabled)
		return nil, device.NormalizeError(err)
	}

	b.dev = dev
	b.setAdapterLocked(device.AdapterEnabled)
	return dev, nil
}

// setAdapterLocked updates the mirrored adapter state and emits an
// adapter-changed event when it flips. Callers must hold b.mu.
func (b *Binding) setAdapterLocked(state device.AdapterState) {
	if b.adapter == state {
		return
	}
	b.adapter = state
	b.logger.WithField("adapter", state).Debug("Adapter state changed")
	if b.events != nil {
		b.events.ForceSend(device.Event{Type: device.EventAdapterChanged, Adapter: state})
	}
}

// AdapterState probes the adapter's powered state.
func (b *Binding) AdapterState(_ context.Context) (device.AdapterState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, err := b.ensureDevice(); err != nil {
		return device.AdapterDisabled, nil
	}
	return device.AdapterEnabled, nil
}

// RequestEnable attempts to bring the adapter up by (re)creating the HCI
// device.
func (b *Binding) RequestEnable(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.ensureDevice()
	return err
}

// BeginScan starts advertisement collection on a dedicated goroutine.
// The scan runs until ctx is cancelled or EndScan is called; termination is
// reported via an EventScanStopped notification.
func (b *Binding) BeginScan(ctx context.Context, serviceUUIDs []string, allowDuplicates bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.events == nil {
		return errors.New("binding not initialized")
	}
	if b.scanCancel != nil {
		return device.ErrScanActive
	}

	dev, err := b.ensureDevice()
	if err != nil {
		return &device.ScanError{Op: "start", Err: err}
	}

	// A new scan starts from an empty snapshot.
	b.discovered = hashmap.New[string, device.DeviceRecord]()
	b.order = b.order[:0]
	b.filter = nil
	if len(serviceUUIDs) > 0 {
		b.filter = make(map[string]struct{}, len(serviceUUIDs))
		for _, uuid := range device.NormalizeUUIDs(serviceUUIDs) {
			b.filter[uuid] = struct{}{}
		}
	}

	scanCtx, cancel := context.WithCancel(ctx)
	b.scanCancel = cancel
	done := make(chan struct{})
	b.scanDone = done

	groutine.Go(scanCtx, "goble-scan", func(ctx context.Context) {
		defer close(done)

		err := dev.Scan(ctx, allowDuplicates, b.handleAdvertisement)
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			err = device.NormalizeError(err)
			b.logger.WithError(err).Warn("BLE scan terminated with error")

			b.mu.Lock()
			if errors.Is(err, device.ErrBluetoothOff) {
				b.setAdapterLocked(device.AdapterDisabled)
			}
			b.mu.Unlock()
		}

		b.mu.Lock()
		if b.scanDone == done {
			b.scanCancel = nil
			b.scanDone = nil
		}
		b.mu.Unlock()

		b.events.ForceSend(device.Event{Type: device.EventScanStopped})
	})

	return nil
}

// handleAdvertisement runs on the radio callback goroutine.
func (b *Binding) handleAdvertisement(adv ble.Advertisement) {
	rec := RecordFromAdvertisement(adv)

	if !b.matchesFilter(rec) {
		return
	}

	// Snapshot the map and check first-seen under one critical section:
	// EndScan does not wait for the scan goroutine, so a late callback
	// from the previous scan can overlap a new BeginScan's map swap, and
	// the order slice must stay consistent with the map it indexes.
	b.mu.Lock()
	discovered := b.discovered
	_, seen := discovered.Get(rec.ID)
	if !seen {
		b.order = append(b.order, rec.ID)
	}
	b.mu.Unlock()

	if !seen {
		b.logger.WithFields(logrus.Fields{
			"device": rec.DisplayName(),
			"id":     rec.ID,
			"rssi":   rec.RSSI,
		}).Debug("Discovered new device")
	}
	discovered.Set(rec.ID, rec)

	b.events.ForceSend(device.Event{Type: device.EventDiscovered, Record: &rec})
}

func (b *Binding) matchesFilter(rec device.DeviceRecord) bool {
	b.mu.Lock()
	filter := b.filter
	b.mu.Unlock()

	if len(filter) == 0 {
		return true
	}
	for _, svc := range rec.Services {
		if _, ok := filter[svc]; ok {
			return true
		}
	}
	return false
}

// EndScan cancels an active scan. It is a no-op when no scan is running and
// never blocks waiting for the scan goroutine.
func (b *Binding) EndScan() error {
	b.mu.Lock()
	cancel := b.scanCancel
	b.scanCancel = nil
	b.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return nil
}

// DiscoveredPeripherals returns the current scan's snapshot in first-seen
// order.
func (b *Binding) DiscoveredPeripherals() ([]device.DeviceRecord, error) {
	b.mu.Lock()
	order := make([]string, len(b.order))
	copy(order, b.order)
	discovered := b.discovered
	b.mu.Unlock()

	records := make([]device.DeviceRecord, 0, len(order))
	for _, id := range order {
		if rec, ok := discovered.Get(id); ok {
			records = append(records, rec)
		}
	}
	return records, nil
}

// ConnectedPeripherals returns records for peripherals with an active
// connection, optionally filtered by advertised service.
func (b *Binding) ConnectedPeripherals(serviceUUIDs []string) ([]device.DeviceRecord, error) {
	wanted := make(map[string]struct{}, len(serviceUUIDs))
	for _, uuid := range device.NormalizeUUIDs(serviceUUIDs) {
		wanted[uuid] = struct{}{}
	}

	b.mu.Lock()
	discovered := b.discovered
	b.mu.Unlock()

	var records []device.DeviceRecord
	b.conns.Range(func(id string, _ ble.Client) bool {
		rec, ok := discovered.Get(id)
		if !ok {
			rec = device.DeviceRecord{ID: id}
		}
		if len(wanted) > 0 {
			matched := false
			for _, svc := range rec.Services {
				if _, ok := wanted[svc]; ok {
					matched = true
					break
				}
			}
			if !matched {
				return true
			}
		}
		records = append(records, rec)
		return true
	})
	return records, nil
}

// Connect dials the peripheral with the given ID. Informational only: no
// retry, no session tracking.
func (b *Binding) Connect(ctx context.Context, id string) error {
	b.mu.Lock()
	dev, err := b.ensureDevice()
	b.mu.Unlock()
	if err != nil {
		return err
	}

	client, err := dev.Dial(ctx, ble.NewAddr(id))
	if err != nil {
		return device.NormalizeError(err)
	}

	b.conns.Set(client.Addr().String(), client)
	b.logger.WithField("id", id).Info("Connected to peripheral")
	return nil
}

// FetchServices discovers the GATT services of a connected peripheral.
func (b *Binding) FetchServices(_ context.Context, id string) ([]string, error) {
	client, ok := b.conns.Get(ble.NewAddr(id).String())
	if !ok {
		return nil, device.ErrNotConnected
	}

	profile, err := client.DiscoverProfile(true)
	if err != nil {
		return nil, device.NormalizeError(err)
	}

	services := make([]string, 0, len(profile.Services))
	for _, svc := range profile.Services {
		services = append(services, device.NormalizeUUID(svc.UUID.String()))
	}
	return services, nil
}

// Events returns the binding's notification stream.
func (b *Binding) Events() <-chan device.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events == nil {
		return nil
	}
	return b.events.C()
}

// Close ends any active scan, drops connections, and closes the event
// stream. The stream is closed only after the scan goroutine has exited, so
// late radio callbacks never write to a closed ring.
func (b *Binding) Close() error {
	b.mu.Lock()
	done := b.scanDone
	b.mu.Unlock()

	_ = b.EndScan()
	if done != nil {
		<-done
	}

	b.conns.Range(func(id string, client ble.Client) bool {
		if err := client.CancelConnection(); err != nil {
			b.logger.WithError(err).WithField("id", id).Warn("Failed to cancel connection")
		}
		b.conns.Del(id)
		return true
	})

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.events != nil {
		b.events.Close()
		b.events = nil
	}
	if b.dev != nil {
		_ = b.dev.Stop()
		b.dev = nil
	}
	return nil
}
