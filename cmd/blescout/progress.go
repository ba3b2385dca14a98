package main

import (
	"fmt"
	"sync/atomic"
	"time"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// countdownPrinter shows a single-line countdown while a scan runs.
//
// Usage:
//
//	p := newCountdownPrinter("Scanning for BLE devices", 10*time.Second)
//	p.Start()
//	defer p.Stop()
//
// A countdownPrinter is single-use: Start at most once, Stop exactly once.
// Stop terminates the internal goroutine; skipping it leaks the goroutine.
type countdownPrinter struct {
	prefix    string
	duration  time.Duration
	startTime time.Time
	stopChan  chan struct{}
	done      chan struct{}
	started   atomic.Bool
	stopped   atomic.Bool
}

func newCountdownPrinter(prefix string, duration time.Duration) *countdownPrinter {
	return &countdownPrinter{
		prefix:   prefix,
		duration: duration,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *countdownPrinter) Start() {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	p.startTime = time.Now()

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(progressUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-p.stopChan:
				fmt.Print(clearLineSequence)
				return
			case <-ticker.C:
				remaining := p.duration - time.Since(p.startTime)
				if remaining < 0 {
					remaining = 0
				}
				fmt.Printf("%s%s... %s remaining", clearLineSequence, p.prefix, remaining.Truncate(time.Second))
			}
		}
	}()
}

func (p *countdownPrinter) Stop() {
	if !p.started.Load() || !p.stopped.CompareAndSwap(false, true) {
		return
	}
	close(p.stopChan)
	<-p.done
}
