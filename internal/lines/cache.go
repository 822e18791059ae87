package lines

import "sync"

// lineCache holds the parsed lines of one file together with the backend
// version they were read at. A cached snapshot is only served while the
// backend still reports that version.
type lineCache struct {
	mu      sync.Mutex
	valid   bool
	version Version
	snap    snapshot
}

func (c *lineCache) get(v Version) (snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.valid || c.version != v {
		return snapshot{}, false
	}
	return c.snap, true
}

func (c *lineCache) put(v Version, snap snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = true
	c.version = v
	c.snap = snap
}

func (c *lineCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.valid = false
	c.snap = snapshot{}
}
