// Package scanner implements the device discovery reconciliation and
// scan-lifecycle controller. It owns the session state machine, reconciles
// permission and adapter-state preconditions, and merges both push-sourced
// discovery events and poll-sourced snapshots into a single device registry
// with last-write-wins semantics.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/srg/blescout/internal/device"
	"github.com/srg/blescout/internal/groutine"
	"github.com/srg/blescout/internal/permission"
	"github.com/srg/blescout/internal/ringchan"
)

// DefaultEventBuffer is the default capacity of the controller's
// device-event ring.
const DefaultEventBuffer = 100

// SessionState is the scan session's lifecycle phase. Transitions are
// monotonic along Idle -> AwaitingPermission -> Scanning -> Stopping ->
// Idle; Scanning never jumps to Idle without passing through Stopping's
// cleanup.
type SessionState int

const (
	StateIdle SessionState = iota
	StateAwaitingPermission
	StateScanning
	StateStopping
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingPermission:
		return "awaiting-permission"
	case StateScanning:
		return "scanning"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// DeviceEventType marks if the device was newly discovered or updated
type DeviceEventType int

const (
	EventNew DeviceEventType = iota
	EventUpdated
)

// DeviceEvent is published on the controller's event stream whenever the
// registry absorbs a record, from either source.
type DeviceEvent struct {
	Type   DeviceEventType
	Record device.DeviceRecord
}

// Controller drives the scan lifecycle against a native BLE binding and a
// platform permission service. Exactly one session is active at a time.
type Controller struct {
	binding device.Binding
	perms   permission.Service
	logger  *logrus.Logger
	opts    *Options

	mu         sync.Mutex
	state      SessionState
	startedAt  time.Time
	adapter    device.AdapterState
	message    string
	scanCancel context.CancelFunc
	pollDone   chan struct{}

	registry *Registry
	events   *ringchan.RingChannel[DeviceEvent]

	pumpCancel context.CancelFunc
	pumpDone   chan struct{}
}

// NewController creates a controller, initializes the binding, and performs
// the startup adapter probe. The binding's event subscription is owned by
// the returned instance and released by Close.
func NewController(binding device.Binding, perms permission.Service, logger *logrus.Logger, opts *Options) (*Controller, error) {
	if logger == nil {
		logger = logrus.New()
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	if perms == nil {
		perms = permission.HostService()
	}

	buffer := opts.EventBuffer
	if buffer <= 0 {
		buffer = DefaultEventBuffer
	}

	c := &Controller{
		binding:  binding,
		perms:    perms,
		logger:   logger,
		opts:     opts,
		state:    StateIdle,
		adapter:  device.AdapterUnknown,
		registry: NewRegistry(),
		events:   ringchan.New[DeviceEvent](buffer),
	}

	ctx := context.Background()
	if err := binding.Initialize(ctx, device.InitOptions{}); err != nil {
		return nil, fmt.Errorf("failed to initialize BLE binding: %w", err)
	}

	// Startup probe. A failure here is not fatal: the adapter simply stays
	// unknown until the first state-change notification.
	if state, err := binding.AdapterState(ctx); err == nil {
		c.adapter = state
	}

	pumpCtx, cancel := context.WithCancel(ctx)
	c.pumpCancel = cancel
	c.pumpDone = make(chan struct{})
	groutine.Go(pumpCtx, "scanner-events", func(ctx context.Context) {
		defer close(c.pumpDone)
		c.pumpEvents(ctx)
	})

	return c, nil
}

// StartScan checks the session, permission, and adapter preconditions in
// order, then clears the registry, starts the scan primitive, and arms the
// poll loop plus the unconditional duration-budget stop.
//
// A session already in progress is rejected with ErrScanActive and no side
// effects. Permission denial and adapter failure transition back to Idle
// and surface ErrPermissionDenied / ErrAdapterUnavailable.
func (c *Controller) StartScan(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		return device.ErrScanActive
	}
	c.state = StateAwaitingPermission
	c.message = ""
	c.mu.Unlock()

	grants, err := c.perms.Request(ctx, permission.Required())
	if err != nil || !permission.AllGranted(grants) {
		c.failStart("Bluetooth permission denied; grant it in system settings")
		if err != nil {
			return fmt.Errorf("%w: %v", device.ErrPermissionDenied, err)
		}
		return device.ErrPermissionDenied
	}

	state, stateErr := c.binding.AdapterState(ctx)
	if stateErr != nil {
		state = device.AdapterUnknown
	}
	c.setAdapter(state)

	if state != device.AdapterEnabled {
		if err := c.binding.RequestEnable(ctx); err != nil {
			c.failStart("Bluetooth adapter is unavailable; enable Bluetooth and retry")
			return fmt.Errorf("%w: %v", device.ErrAdapterUnavailable, err)
		}
		c.setAdapter(device.AdapterEnabled)
	}

	c.mu.Lock()
	c.registry.Clear()
	c.state = StateScanning
	c.startedAt = time.Now()
	scanCtx, cancel := context.WithCancel(context.Background())
	c.scanCancel = cancel
	pollDone := make(chan struct{})
	c.pollDone = pollDone
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"duration":      c.opts.Duration,
		"poll_interval": c.opts.PollInterval,
	}).Info("Starting BLE scan")

	if err := c.binding.BeginScan(scanCtx, c.opts.ServiceUUIDs, c.opts.AllowDuplicates); err != nil {
		cancel()
		// The poll goroutine never launched; unpublish its handles so a
		// later Close does not wait on a channel nobody will ever close.
		c.mu.Lock()
		c.scanCancel = nil
		c.pollDone = nil
		c.mu.Unlock()
		close(pollDone)
		c.failStart("failed to start BLE scan")
		return &device.ScanError{Op: "start", Err: err}
	}

	groutine.Go(scanCtx, "scanner-poll", func(ctx context.Context) {
		defer close(pollDone)
		c.pollLoop(ctx)
	})
	return nil
}

// failStart records an advisory message and returns the session to Idle.
func (c *Controller) failStart(message string) {
	c.mu.Lock()
	c.state = StateIdle
	c.message = message
	c.mu.Unlock()
	c.logger.Warn(message)
}

// StopScan is the single chokepoint for ending a session: the duration
// timeout, the binding's scan-stopped notification, and manual cancellation
// all funnel through it. It is idempotent, cancels the poll loop, invokes
// the stop primitive, and transitions to Idle regardless of the primitive's
// outcome (a stop failure is recorded as a non-fatal advisory).
func (c *Controller) StopScan() error {
	c.mu.Lock()
	if c.state != StateScanning {
		c.mu.Unlock()
		return nil
	}
	c.state = StateStopping
	cancel := c.scanCancel
	c.scanCancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	if err := c.binding.EndScan(); err != nil {
		c.logger.WithError(err).Warn("Failed to stop BLE scan cleanly")
		c.mu.Lock()
		c.message = "scan did not stop cleanly"
		c.mu.Unlock()
	}

	c.mu.Lock()
	c.state = StateIdle
	elapsed := time.Since(c.startedAt)
	count := c.registry.Len()
	c.mu.Unlock()

	c.logger.WithFields(logrus.Fields{
		"device_count": count,
		"elapsed":      elapsed.Round(time.Millisecond),
	}).Info("BLE scan completed")
	return nil
}

// pollLoop fetches the discovered-peripheral snapshot every PollInterval
// and schedules the unconditional stop at the duration budget's expiry.
func (c *Controller) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(c.opts.PollInterval)
	defer ticker.Stop()
	budget := time.NewTimer(c.opts.Duration)
	defer budget.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-budget.C:
			_ = c.StopScan()
			return
		case <-ticker.C:
			c.pollOnce()
		}
	}
}

// pollOnce fetches and merges one snapshot. Fetch failures are transient by
// assumption: they are logged at debug level and retried on the next tick,
// never surfaced to the user.
func (c *Controller) pollOnce() {
	recs, err := c.binding.DiscoveredPeripherals()
	if err != nil {
		c.logger.WithError(err).Debug("Poll fetch failed; will retry next tick")
		return
	}
	for _, rec := range recs {
		c.absorb(rec)
	}
}

// pumpEvents consumes the binding's notification stream for the life of the
// controller. Discovery pushes and poll snapshots feed the same merge, so
// either source alone is sufficient and duplication is harmless.
func (c *Controller) pumpEvents(ctx context.Context) {
	events := c.binding.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Type {
			case device.EventDiscovered:
				if ev.Record != nil && c.IsScanning() {
					c.absorb(*ev.Record)
				}
			case device.EventScanStopped:
				_ = c.StopScan()
			case device.EventAdapterChanged:
				c.setAdapter(ev.Adapter)
			}
		}
	}
}

// absorb runs one record through the allow/block filters and the
// last-write-wins merge, publishing a device event on change.
func (c *Controller) absorb(rec device.DeviceRecord) {
	if !c.shouldInclude(rec.ID) {
		return
	}

	isNew := c.registry.Merge(rec)
	event := DeviceEvent{Type: EventUpdated, Record: rec}
	if isNew {
		event.Type = EventNew
		c.logger.WithFields(logrus.Fields{
			"device": rec.DisplayName(),
			"id":     rec.ID,
			"rssi":   rec.RSSI,
		}).Info("Discovered new device")
	}
	c.events.ForceSend(event)
}

// shouldInclude applies the allow/block lists.
func (c *Controller) shouldInclude(id string) bool {
	for _, blocked := range c.opts.BlockList {
		if id == blocked {
			return false
		}
	}

	if len(c.opts.AllowList) > 0 {
		for _, allowed := range c.opts.AllowList {
			if id == allowed {
				return true
			}
		}
		return false
	}

	return true
}

// setAdapter mirrors an adapter state-change notification into local state.
// It never transitions the session: an adapter turning off mid-scan only
// logs a warning, and the duration budget still owns the lifecycle.
func (c *Controller) setAdapter(state device.AdapterState) {
	c.mu.Lock()
	changed := c.adapter != state
	c.adapter = state
	scanning := c.state == StateScanning
	c.mu.Unlock()

	if changed && state == device.AdapterDisabled && scanning {
		c.logger.Warn("Adapter disabled mid-scan; session continues until its duration budget expires")
	}
}

// MergeConnected reconciles already-connected peripherals into the
// registry, restricted to the session's service filter.
func (c *Controller) MergeConnected(_ context.Context) error {
	recs, err := c.binding.ConnectedPeripherals(c.opts.ServiceUUIDs)
	if err != nil {
		return err
	}
	for _, rec := range recs {
		c.absorb(rec)
	}
	return nil
}

// Connect is informational only: it invokes the binding's connect primitive
// with no retry and no session tracking.
func (c *Controller) Connect(ctx context.Context, id string) error {
	return c.binding.Connect(ctx, id)
}

// FetchServices discovers the GATT services of a connected peripheral.
func (c *Controller) FetchServices(ctx context.Context, id string) ([]string, error) {
	return c.binding.FetchServices(ctx, id)
}

// Devices returns the registry snapshot in insertion order.
func (c *Controller) Devices() []device.DeviceRecord {
	return c.registry.Devices()
}

// IsScanning reports whether a session is actively collecting.
func (c *Controller) IsScanning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateScanning
}

// State returns the session's lifecycle phase.
func (c *Controller) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// AdapterEnabled reports the mirrored adapter state.
func (c *Controller) AdapterEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adapter == device.AdapterEnabled
}

// AdapterState returns the mirrored tri-state adapter value.
func (c *Controller) AdapterState() device.AdapterState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.adapter
}

// Message returns the current advisory message, if any.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// ClearRegistry drops all discovered records.
func (c *Controller) ClearRegistry() {
	c.registry.Clear()
}

// Events returns a read-only stream of device events. The ring drops the
// oldest events for slow consumers.
func (c *Controller) Events() <-chan DeviceEvent {
	return c.events.C()
}

// Close stops any active session, releases the binding event subscription,
// and closes the binding. The device-event stream is closed only after both
// producer goroutines have exited.
func (c *Controller) Close() error {
	_ = c.StopScan()

	c.mu.Lock()
	pollDone := c.pollDone
	c.mu.Unlock()
	if pollDone != nil {
		<-pollDone
	}

	if c.pumpCancel != nil {
		c.pumpCancel()
	}
	err := c.binding.Close()
	if c.pumpDone != nil {
		<-c.pumpDone
	}

	metrics := c.events.GetMetrics()
	if dropped := metrics.Overwritten; dropped > 0 {
		c.logger.WithField("dropped_events", dropped).Debug("Slow consumer dropped device events")
	}
	c.events.Close()
	return err
}
