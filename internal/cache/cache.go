// Package cache is the write-behind, bounded LRU cache fronting the
// records store (C2) — the centerpiece of the system. Every cached entry
// splits into a snapshot (what was last read from the store) and a pending
// delta (unpersisted increments); eviction packages the delta into an
// IncrementTask and hands it to the store's own async worker.
//
// The cache is confined to a single goroutine by design (spec.md §5): it
// takes no internal lock. The only cross-goroutine handoff is the evicted
// task batch moved into the store's IncrementAsync worker.
package cache

import (
	"container/list"
	"context"

	"github.com/charmbracelet/log"

	"github.com/lox/alphaself/internal/record"
)

// evictionFraction (K in spec.md §4.2) sets the minimum fraction of
// capacity reclaimed by one flush sweep: 1/5th, i.e. at least ~20%.
const evictionFraction = 5

// RecordStore is the durable backing the cache reads through on a miss and
// flushes deltas to. store.Store satisfies this.
type RecordStore interface {
	Get(ctx context.Context, key []byte) (*record.StateRecord, error)
	IncrementAsync(tasks []record.IncrementTask) <-chan error
}

type entry struct {
	key      string
	snapshot record.StateRecord
	delta    record.StateRecord
}

// Cache is the bounded, write-behind LRU. An insertion that lands while at
// or above capacity first pops a batch of least-recently-used entries
// synchronously, then inserts; only the store write of the popped deltas
// runs in the background, so the insertion is not blocked on it.
type Cache struct {
	capacity int
	backing  RecordStore
	logger   *log.Logger

	order *list.List // front = most recently used, back = least recently used
	items map[string]*list.Element
}

// New returns a cache with the given soft capacity M, reading through to
// and flushing to backing.
func New(capacity int, backing RecordStore, logger *log.Logger) *Cache {
	return &Cache{
		capacity: capacity,
		backing:  backing,
		logger:   logger,
		order:    list.New(),
		items:    make(map[string]*list.Element),
	}
}

// Len reports the current number of cached entries.
func (c *Cache) Len() int {
	return c.order.Len()
}

// Get returns the logical value (snapshot + delta) for key, loading it from
// the store on first touch (defaulting to zeros on a store miss). This is
// the one cache operation that may block the caller's goroutine on a
// synchronous store read (spec.md §5).
func (c *Cache) Get(ctx context.Context, key []byte) (record.StateRecord, error) {
	e, err := c.getOrInstall(ctx, key)
	if err != nil {
		return record.StateRecord{}, err
	}
	return e.snapshot.Add(e.delta), nil
}

// Absorb increments, for each distinct update in report, the delta of the
// corresponding cache entry by one in exactly the counter the outcome
// attribution rules select. An S repeated within one report is only
// counted once (the dedup law); across separate Absorb calls duplicates do
// count again.
func (c *Cache) Absorb(ctx context.Context, report record.Report) error {
	for _, u := range record.DedupUpdates(report.Updates) {
		e, err := c.getOrInstall(ctx, u.Serialized)
		if err != nil {
			return err
		}
		outcome := record.Attribute(report.Winner, u)
		e.delta = e.delta.Add(outcome.Apply())
	}
	return nil
}

// Process implements the fan-out Sink interface by absorbing report with a
// background context; the cache never needs the caller's cancellation
// signal since every operation is either in-memory or fire-and-forget.
func (c *Cache) Process(report record.Report) error {
	return c.Absorb(context.Background(), report)
}

// FlushAll pops and submits every cached entry to the store and returns the
// join handle callers must wait on before shutdown.
func (c *Cache) FlushAll() <-chan error {
	tasks := make([]record.IncrementTask, 0, c.order.Len())
	for elem := c.order.Front(); elem != nil; {
		next := elem.Next()
		e := elem.Value.(*entry)
		tasks = append(tasks, taskFor(e))
		delete(c.items, e.key)
		elem = next
	}
	c.order.Init()
	return c.backing.IncrementAsync(tasks)
}

func (c *Cache) getOrInstall(ctx context.Context, key []byte) (*entry, error) {
	k := string(key)
	if elem, ok := c.items[k]; ok {
		c.order.MoveToFront(elem)
		return elem.Value.(*entry), nil
	}

	if c.order.Len() >= c.capacity {
		c.evict(c.order.Len())
	}

	snapshot, err := c.backing.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var snap record.StateRecord
	if snapshot != nil {
		snap = *snapshot
	}

	e := &entry{key: k, snapshot: snap}
	elem := c.order.PushFront(e)
	c.items[k] = elem
	return e, nil
}

// evict reclaims entries from the back of the LRU list and hands their
// deltas to the store's async worker, fire-and-forget. currentSize is the
// cache's size L immediately before the insertion that triggered this call.
func (c *Cache) evict(currentSize int) {
	target := flushTarget(c.capacity, currentSize)
	if target > currentSize {
		target = currentSize
	}
	if target <= 0 {
		return
	}

	tasks := make([]record.IncrementTask, 0, target)
	for i := 0; i < target; i++ {
		elem := c.order.Back()
		if elem == nil {
			break
		}
		e := elem.Value.(*entry)
		tasks = append(tasks, taskFor(e))
		c.order.Remove(elem)
		delete(c.items, e.key)
	}

	if len(tasks) == 0 {
		return
	}
	done := c.backing.IncrementAsync(tasks)
	go func() {
		if err := <-done; err != nil {
			c.logger.Warn("cache: background flush batch failed", "error", err)
		}
	}()
}

// flushTarget implements spec.md §4.2's flush-size formula: reclaim at
// least 1/evictionFraction of capacity (rounded up, so "at least ~20%"
// always holds even for small M), but never less than what's needed to
// bring size back under the M-1 bound.
func flushTarget(capacity, currentSize int) int {
	minSweep := (capacity + evictionFraction - 1) / evictionFraction
	needed := currentSize - (capacity - 1)
	if needed > minSweep {
		return needed
	}
	return minSweep
}

func taskFor(e *entry) record.IncrementTask {
	return record.IncrementTask{
		Serialized: []byte(e.key),
		Draws:      e.delta.Draws,
		Losses:     e.delta.Losses,
		Wins:       e.delta.Wins,
	}
}
