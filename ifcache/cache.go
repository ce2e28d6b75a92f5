// Package ifcache keeps a cache of the most recently observed link
// records, diffing successive dump cycles so callers only see
// interfaces that were added, changed, or removed since the previous
// cycle. Cache is NOT threadsafe.
package ifcache

import (
	"github.com/grgbr/nlink/iface"
	"github.com/grgbr/nlink/metrics"
)

// Change classifies how an entry differs from the previous cycle.
type Change int

const (
	// Added means the index was not present in the previous cycle.
	Added Change = iota
	// Changed means the index was present but OperState, CarrierState,
	// or MTU differ from the previous cycle.
	Changed
	// Removed means the index was present in the previous cycle but is
	// absent from the current one.
	Removed
)

func (c Change) String() string {
	switch c {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Delta pairs a link record with the kind of change that produced it.
// Current is the zero Iface when Change == Removed.
type Delta struct {
	Change  Change
	Index   int32
	Current iface.Iface
}

// Cache holds the current and previous cycle's link records, keyed by
// interface index.
type Cache struct {
	current  map[int32]iface.Iface
	previous map[int32]iface.Iface
	cycles   int64
}

// New creates an empty Cache with a modest starting capacity; the
// backing maps grow and shrink with the number of observed interfaces.
func New() *Cache {
	return &Cache{
		current:  make(map[int32]iface.Iface, 64),
		previous: make(map[int32]iface.Iface, 0),
	}
}

// Update records one link observed during the current cycle. Call it
// once per interface returned by a dump, then call EndCycle once the
// dump's results have all been applied.
func (c *Cache) Update(link iface.Iface) {
	c.current[link.Index] = link
}

// EndCycle closes out the current cycle, diffing it against the
// previous one, and returns every Added, Changed, or Removed entry.
// It resets the current cycle's working set for the next round.
func (c *Cache) EndCycle() []Delta {
	var deltas []Delta

	for index, link := range c.current {
		prev, ok := c.previous[index]
		switch {
		case !ok:
			deltas = append(deltas, Delta{Change: Added, Index: index, Current: link})
		case prev.OperState != link.OperState || prev.CarrierState != link.CarrierState || prev.MTU != link.MTU:
			deltas = append(deltas, Delta{Change: Changed, Index: index, Current: link})
		}
	}
	for index := range c.previous {
		if _, ok := c.current[index]; !ok {
			deltas = append(deltas, Delta{Change: Removed, Index: index})
		}
	}

	for _, d := range deltas {
		metrics.CacheUpdateCount.WithLabelValues(d.Change.String()).Inc()
	}
	metrics.InterfaceCountHistogram.Observe(float64(len(c.current)))

	c.previous = c.current
	c.current = make(map[int32]iface.Iface, len(c.previous)+len(c.previous)/10+1)
	c.cycles++

	return deltas
}

// CycleCount returns the number of times EndCycle has been called.
func (c *Cache) CycleCount() int64 {
	return c.cycles
}

// Len returns the number of interfaces held from the most recently
// completed cycle.
func (c *Cache) Len() int {
	return len(c.previous)
}

// Get returns the most recently observed record for index, from the
// last completed cycle.
func (c *Cache) Get(index int32) (iface.Iface, bool) {
	link, ok := c.previous[index]
	return link, ok
}
