package channel

import "sync"

// ---------------------------------------------------------------------------
// Pass Coordinator
// ---------------------------------------------------------------------------

// Coordinator serializes reconciliation work. At most one full pass runs in
// the process at a time; webhook-derived actions bypass the global run lock
// and serialize per SKU instead, so a webhook and a pass item can never write
// the same mapping concurrently.
type Coordinator struct {
	mu      sync.Mutex
	running bool
	skus    map[string]*skuLock
}

type skuLock struct {
	mu   sync.Mutex
	refs int
}

// NewCoordinator creates a Coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{
		skus: make(map[string]*skuLock),
	}
}

// TryAcquireRun attempts to take the global run slot. It never blocks; a
// false return means another pass currently holds the slot.
func (c *Coordinator) TryAcquireRun() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	return true
}

// ReleaseRun frees the global run slot.
func (c *Coordinator) ReleaseRun() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = false
}

// IsRunning reports whether a pass currently holds the run slot.
func (c *Coordinator) IsRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// LockSKU blocks until the per-SKU lock is held and returns its release
// function. Lock entries are reference counted so the map does not grow with
// the catalog.
func (c *Coordinator) LockSKU(sku string) func() {
	c.mu.Lock()
	l, ok := c.skus[sku]
	if !ok {
		l = &skuLock{}
		c.skus[sku] = l
	}
	l.refs++
	c.mu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()
		c.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(c.skus, sku)
		}
		c.mu.Unlock()
	}
}
