package resilience

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// BulkheadConfig configures the bulkhead.
type BulkheadConfig struct {
	// Name identifies the protected resource.
	Name string

	// MaxConcurrent is the maximum number of in-flight operations.
	// Default: 10
	MaxConcurrent int

	// MaxQueueSize is how many callers may wait for a slot. Callers beyond
	// the queue are rejected immediately with BulkheadFullError.
	// Default: 0 (no queue)
	MaxQueueSize int
}

// Bulkhead bounds concurrent operations for one named resource. Waiting
// callers are admitted strictly in FIFO order as slots free up.
type Bulkhead struct {
	config BulkheadConfig
	sem    *semaphore.Weighted

	mu        sync.Mutex
	active    int
	queued    int
	maxActive int
	rejected  int64
}

// NewBulkhead creates a new bulkhead.
func NewBulkhead(config BulkheadConfig) *Bulkhead {
	// Apply defaults
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 10
	}
	if config.MaxQueueSize < 0 {
		config.MaxQueueSize = 0
	}

	return &Bulkhead{
		config: config,
		sem:    semaphore.NewWeighted(int64(config.MaxConcurrent)),
	}
}

// Name returns the protected resource name.
func (b *Bulkhead) Name() string {
	return b.config.Name
}

// Acquire takes a slot in the bulkhead, queueing if the queue has room.
// Returns BulkheadFullError when both the slots and the queue are full.
func (b *Bulkhead) Acquire(ctx context.Context) error {
	// Fast path. TryAcquire fails while waiters exist, so it cannot jump
	// ahead of the queue.
	if b.sem.TryAcquire(1) {
		b.admitted()
		return nil
	}

	b.mu.Lock()
	if b.queued >= b.config.MaxQueueSize {
		b.rejected++
		b.mu.Unlock()
		return &BulkheadFullError{
			Name:          b.config.Name,
			MaxConcurrent: b.config.MaxConcurrent,
			MaxQueueSize:  b.config.MaxQueueSize,
		}
	}
	b.queued++
	b.mu.Unlock()

	// Weighted admits blocked acquirers in FIFO order.
	err := b.sem.Acquire(ctx, 1)

	b.mu.Lock()
	b.queued--
	b.mu.Unlock()

	if err != nil {
		return err
	}
	b.admitted()
	return nil
}

func (b *Bulkhead) admitted() {
	b.mu.Lock()
	b.active++
	if b.active > b.maxActive {
		b.maxActive = b.active
	}
	b.mu.Unlock()
}

// Release frees a slot acquired with Acquire.
func (b *Bulkhead) Release() {
	b.mu.Lock()
	b.active--
	b.mu.Unlock()
	b.sem.Release(1)
}

// Execute runs the operation within the bulkhead. The slot is released when
// the operation completes, whether it succeeded or failed.
func (b *Bulkhead) Execute(ctx context.Context, op func(context.Context) error) error {
	if err := b.Acquire(ctx); err != nil {
		return err
	}
	defer b.Release()

	return op(ctx)
}

// Stats returns a snapshot of the bulkhead's occupancy.
func (b *Bulkhead) Stats() BulkheadStats {
	b.mu.Lock()
	defer b.mu.Unlock()

	return BulkheadStats{
		Name:          b.config.Name,
		Active:        b.active,
		Queued:        b.queued,
		Available:     b.config.MaxConcurrent - b.active,
		MaxActive:     b.maxActive,
		MaxConcurrent: b.config.MaxConcurrent,
		MaxQueueSize:  b.config.MaxQueueSize,
		Rejected:      b.rejected,
	}
}

// BulkheadStats contains bulkhead statistics.
type BulkheadStats struct {
	Name          string
	Active        int
	Queued        int
	Available     int
	MaxActive     int
	MaxConcurrent int
	MaxQueueSize  int
	Rejected      int64
}
