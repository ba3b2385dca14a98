package goble

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/cornelk/hashmap"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/srg/blescout/internal/device"
)

func newTestBinding(t *testing.T) *Binding {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	b := New(logger)
	require.NoError(t, b.Initialize(context.Background(), device.InitOptions{}))
	return b
}

func TestBinding_HandleAdvertisement(t *testing.T) {
	// GOAL: Verify a radio callback lands in the discovered snapshot and
	// emits a discovery event

	b := newTestBinding(t)
	adv := &fakeAdvertisement{
		addr:        "aa:bb:cc:dd:ee:01",
		localName:   "Beacon",
		rssi:        -60,
		txPower:     127,
		connectable: true,
	}

	b.handleAdvertisement(adv)

	records, err := b.DiscoveredPeripherals()
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "aa:bb:cc:dd:ee:01", records[0].ID)
	require.Equal(t, -60, records[0].RSSI)

	ev := <-b.Events()
	require.Equal(t, device.EventDiscovered, ev.Type)
}

func TestBinding_LateCallbackRacesSnapshotSwap(t *testing.T) {
	// GOAL: Verify a leftover callback from a previous scan cannot race
	// the empty-snapshot swap a restarted scan performs
	//
	// TEST SCENARIO: EndScan does not wait for the scan goroutine, so a
	// late advertisement can overlap the map replacement; hammer both
	// paths concurrently and let the race detector judge

	b := newTestBinding(t)
	adv := &fakeAdvertisement{
		addr:        "aa:bb:cc:dd:ee:02",
		localName:   "Straggler",
		rssi:        -70,
		txPower:     127,
		connectable: true,
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			b.handleAdvertisement(adv)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			b.mu.Lock()
			b.discovered = hashmap.New[string, device.DeviceRecord]()
			b.order = b.order[:0]
			b.mu.Unlock()
		}
	}()
	wg.Wait()

	b.handleAdvertisement(adv)
	records, err := b.DiscoveredPeripherals()
	require.NoError(t, err)
	require.Len(t, records, 1, "record arriving after the last swap MUST survive")
}
