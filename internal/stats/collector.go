package stats

import (
	"sync/atomic"
	"time"
)

// Collector counts the work done by one tree operation. Counters are atomic
// so a caller may Snapshot while a suspending operation is running. A nil
// *Collector ignores every Add.
type Collector struct {
	entriesVisited  atomic.Int64
	dirsCreated     atomic.Int64
	filesCopied     atomic.Int64
	symlinksCreated atomic.Int64
	bytesCopied     atomic.Int64
	entriesRemoved  atomic.Int64
	entriesSkipped  atomic.Int64
	entriesFailed   atomic.Int64
	modesChanged    atomic.Int64
	ownersChanged   atomic.Int64
	startTime       time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	EntriesVisited  int64
	DirsCreated     int64
	FilesCopied     int64
	SymlinksCreated int64
	BytesCopied     int64
	EntriesRemoved  int64
	EntriesSkipped  int64
	EntriesFailed   int64
	ModesChanged    int64
	OwnersChanged   int64
	Elapsed         time.Duration
}

func (c *Collector) AddEntriesVisited(n int64) {
	if c != nil {
		c.entriesVisited.Add(n)
	}
}

func (c *Collector) AddDirsCreated(n int64) {
	if c != nil {
		c.dirsCreated.Add(n)
	}
}

func (c *Collector) AddFilesCopied(n int64) {
	if c != nil {
		c.filesCopied.Add(n)
	}
}

func (c *Collector) AddSymlinksCreated(n int64) {
	if c != nil {
		c.symlinksCreated.Add(n)
	}
}

func (c *Collector) AddBytesCopied(n int64) {
	if c != nil {
		c.bytesCopied.Add(n)
	}
}

func (c *Collector) AddEntriesRemoved(n int64) {
	if c != nil {
		c.entriesRemoved.Add(n)
	}
}

func (c *Collector) AddEntriesSkipped(n int64) {
	if c != nil {
		c.entriesSkipped.Add(n)
	}
}

func (c *Collector) AddEntriesFailed(n int64) {
	if c != nil {
		c.entriesFailed.Add(n)
	}
}

func (c *Collector) AddModesChanged(n int64) {
	if c != nil {
		c.modesChanged.Add(n)
	}
}

func (c *Collector) AddOwnersChanged(n int64) {
	if c != nil {
		c.ownersChanged.Add(n)
	}
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	var elapsed time.Duration
	if !c.startTime.IsZero() {
		elapsed = time.Since(c.startTime)
	}
	return Snapshot{
		EntriesVisited:  c.entriesVisited.Load(),
		DirsCreated:     c.dirsCreated.Load(),
		FilesCopied:     c.filesCopied.Load(),
		SymlinksCreated: c.symlinksCreated.Load(),
		BytesCopied:     c.bytesCopied.Load(),
		EntriesRemoved:  c.entriesRemoved.Load(),
		EntriesSkipped:  c.entriesSkipped.Load(),
		EntriesFailed:   c.entriesFailed.Load(),
		ModesChanged:    c.modesChanged.Load(),
		OwnersChanged:   c.ownersChanged.Load(),
		Elapsed:         elapsed,
	}
}
