package scanner

import "time"

// Options configures a scan session's behavior.
type Options struct {
	// Duration is the session's fixed duration budget. Expiry is the sole
	// automatic termination path and always funnels through StopScan.
	Duration time.Duration

	// PollInterval is the cadence of the snapshot poll that backstops the
	// push-based discovery events.
	PollInterval time.Duration

	// ServiceUUIDs restricts discovery to peripherals advertising one of
	// the given services. Empty means no restriction.
	ServiceUUIDs []string

	// AllowDuplicates requests repeat advertisements for already-seen
	// peripherals, keeping RSSI readings fresh.
	AllowDuplicates bool

	// AllowList, when non-empty, restricts the registry to these device
	// IDs. BlockList always wins over AllowList.
	AllowList []string
	BlockList []string

	// EventBuffer is the capacity of the controller's device-event ring.
	// Zero selects the default.
	EventBuffer int
}

// DefaultOptions returns the default scan session options.
func DefaultOptions() *Options {
	return &Options{
		Duration:        10 * time.Second,
		PollInterval:    time.Second,
		AllowDuplicates: true,
	}
}
