package coordinator

import (
	"context"
	"errors"
	"sync"

	log "github.com/sirupsen/logrus"
)

// collection is one optimistically edited list of the projection.
// items is what readers see: the last authoritative load plus the patches
// of mutations still in flight.
//
// Every mutation bumps generation and cancels the running refresh. A refresh
// result is applied only if generation did not move and nothing is in flight.
//
// writes is held around structural remote writes (creates and deletes), so
// positions sent to the remote are computed against what it already holds.
// Take it before mu, never while holding mu.
type collection[T any] struct {
	name  string
	clone func(T) T
	load  func(ctx context.Context) ([]T, error)

	baseCtx context.Context
	wg      *sync.WaitGroup
	writes  sync.Mutex

	mu            sync.Mutex
	items         []T
	state         State
	generation    uint64
	inflight      int
	cancelRefresh context.CancelFunc
}

func newCollection[T any](
	baseCtx context.Context,
	wg *sync.WaitGroup,
	name string,
	clone func(T) T,
	load func(ctx context.Context) ([]T, error),
) *collection[T] {
	return &collection[T]{
		name:    name,
		clone:   clone,
		load:    load,
		baseCtx: baseCtx,
		wg:      wg,
		state:   StateIdle,
	}
}

func (c *collection[T]) cloneItemsLocked() []T {
	out := make([]T, len(c.items))
	for i, item := range c.items {
		out[i] = c.clone(item)
	}
	return out
}

func (c *collection[T]) snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cloneItemsLocked()
}

func (c *collection[T]) currentState() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *collection[T]) stopRefreshLocked() {
	if c.cancelRefresh != nil {
		c.cancelRefresh()
		c.cancelRefresh = nil
	}
}

// beginLocked installs next as the projection and marks a mutation in flight.
func (c *collection[T]) beginLocked(next []T) {
	c.stopRefreshLocked()
	c.generation++
	c.inflight++
	c.items = next
	c.state = StateOptimistic
}

// touchLocked records a local only change, stale refreshes must not overwrite it.
func (c *collection[T]) touchLocked(next []T) {
	c.stopRefreshLocked()
	c.generation++
	c.items = next
}

// commit ends a successful mutation. patch, if set, folds the remote answer
// into the projection (confirming pending refs).
func (c *collection[T]) commit(patch func(items []T) []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if patch != nil {
		c.items = patch(c.items)
	}
	c.state = StateCommitted
	c.refreshLocked()
}

// rollback ends a failed mutation, restoring the snapshot taken before it.
func (c *collection[T]) rollback(snapshot []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	c.generation++
	c.items = snapshot
	c.state = StateRolledBack
	c.refreshLocked()
}

func (c *collection[T]) refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
}

func (c *collection[T]) refreshLocked() {
	if c.inflight > 0 || c.baseCtx.Err() != nil {
		return
	}
	c.stopRefreshLocked()

	ctx, cancel := context.WithCancel(c.baseCtx)
	c.cancelRefresh = cancel
	gen := c.generation

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		items, err := c.load(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if ctx.Err() != nil || gen != c.generation || c.inflight > 0 {
			log.Tracef("%s refresh dropped as stale", c.name)
			return
		}
		c.cancelRefresh = nil
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Warnf("%s refresh: %s", c.name, err)
			}
			return
		}
		c.items = items
	}()
}
