package scanner

import (
	"sync"
	"time"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/srg/blescout/internal/device"
)

// Registry is the in-memory mapping from device ID to last-known record.
// Updates are last-write-wins: an incoming record replaces the stored one
// wholesale, there is no field-level merging. Iteration order is insertion
// order. Entries are only removed by Clear, never mid-scan.
type Registry struct {
	mu      sync.RWMutex
	records *orderedmap.OrderedMap[string, device.DeviceRecord]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		records: orderedmap.New[string, device.DeviceRecord](),
	}
}

// Merge inserts or wholesale-replaces the record for rec.ID, refreshing
// LastSeen when the incoming record carries none. Returns true when the ID
// was not present before.
func (r *Registry) Merge(rec device.DeviceRecord) bool {
	if rec.LastSeen.IsZero() {
		rec.LastSeen = time.Now()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, existed := r.records.Get(rec.ID)
	r.records.Set(rec.ID, rec)
	return !existed
}

// MergeSnapshot applies Merge to every record in the snapshot, in the
// snapshot's natural order. Returns the number of newly inserted IDs.
// Re-applying the same snapshot is idempotent.
func (r *Registry) MergeSnapshot(recs []device.DeviceRecord) int {
	added := 0
	for _, rec := range recs {
		if r.Merge(rec) {
			added++
		}
	}
	return added
}

// Get returns the last-known record for the given ID.
func (r *Registry) Get(id string) (device.DeviceRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records.Get(id)
}

// Devices returns a snapshot of all records in insertion order.
func (r *Registry) Devices() []device.DeviceRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]device.DeviceRecord, 0, r.records.Len())
	for pair := r.records.Oldest(); pair != nil; pair = pair.Next() {
		devices = append(devices, pair.Value)
	}
	return devices
}

// Len returns the number of distinct device IDs held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.records.Len()
}

// Clear drops every record. Called when a new scan starts, never mid-scan.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = orderedmap.New[string, device.DeviceRecord]()
}
