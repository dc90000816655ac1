// Package stats tracks scan-time counters using lock-free atomics, so
// every scanner worker can update them without contending on a mutex.
package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector accumulates counts for one scan's lifetime.
type Collector struct {
	filesScanned   atomic.Int64
	dirsScanned    atomic.Int64
	symlinksFound  atomic.Int64
	otherFound     atomic.Int64
	bytesHashed    atomic.Int64
	warningsRaised atomic.Int64
	startTime      time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddFilesScanned(n int64)   { c.filesScanned.Add(n) }
func (c *Collector) AddDirsScanned(n int64)    { c.dirsScanned.Add(n) }
func (c *Collector) AddSymlinksFound(n int64)  { c.symlinksFound.Add(n) }
func (c *Collector) AddOtherFound(n int64)     { c.otherFound.Add(n) }
func (c *Collector) AddBytesHashed(n int64)    { c.bytesHashed.Add(n) }
func (c *Collector) AddWarningsRaised(n int64) { c.warningsRaised.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	FilesScanned   int64
	DirsScanned    int64
	SymlinksFound  int64
	OtherFound     int64
	BytesHashed    int64
	WarningsRaised int64
	Elapsed        time.Duration
}

// Snapshot returns a read of all counters. Each counter is loaded
// atomically on its own; the set is not read as one atomic unit.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		FilesScanned:   c.filesScanned.Load(),
		DirsScanned:    c.dirsScanned.Load(),
		SymlinksFound:  c.symlinksFound.Load(),
		OtherFound:     c.otherFound.Load(),
		BytesHashed:    c.bytesHashed.Load(),
		WarningsRaised: c.warningsRaised.Load(),
		Elapsed:        c.Elapsed(),
	}
}

// Elapsed returns the time since the collector was created.
func (c *Collector) Elapsed() time.Duration {
	return time.Since(c.startTime)
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"files=%d dirs=%d symlinks=%d other=%d bytes_hashed=%d warnings=%d elapsed=%s",
		s.FilesScanned, s.DirsScanned, s.SymlinksFound, s.OtherFound,
		s.BytesHashed, s.WarningsRaised, s.Elapsed,
	)
}
