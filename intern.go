package swarjson

import (
	"bytes"
	"time"
	"unsafe"

	"github.com/dchest/siphash"
)

// internCacheCap bounds the number of cached keys per parse; past it
// new keys are materialized but not inserted, which bounds worst-case
// CPU under adversarial collisions despite the seeded hasher.
const internCacheCap = 4096

// internCache maps raw key bytes (borrowed from the input buffer) to
// their materialized key values. Open addressing, power-of-two table,
// per-parse lifetime.
type internCache struct {
	k0, k1  uint64
	entries []internEntry
	n       int
}

type internEntry struct {
	key []byte
	val Value
}

// newInternCache seeds the hasher from wall-clock nanoseconds mixed
// with the address of the cache itself, which is a heap allocation, not
// a stack address. This blocks precomputed collision sets; the entry
// cap covers the adaptive case.
func newInternCache() *internCache {
	c := &internCache{}
	addr := uint64(uintptr(unsafe.Pointer(c))) * 0x9E3779B97F4A7C15
	c.k0 = uint64(time.Now().UnixNano()) ^ addr
	c.k1 = addr ^ (c.k0 >> 17)
	c.entries = make([]internEntry, 1024)
	return c
}

func (c *internCache) lookup(raw []byte) (Value, bool) {
	mask := uint64(len(c.entries) - 1)
	h := siphash.Hash(c.k0, c.k1, raw)
	for i := h & mask; ; i = (i + 1) & mask {
		e := &c.entries[i]
		if e.key == nil {
			return Value{}, false
		}
		if bytes.Equal(e.key, raw) {
			return e.val, true
		}
	}
}

func (c *internCache) insert(raw []byte, v Value) {
	if c.n >= internCacheCap {
		return
	}
	if c.n*2 >= len(c.entries) {
		c.grow()
	}
	c.place(raw, v)
	c.n++
}

func (c *internCache) place(raw []byte, v Value) {
	mask := uint64(len(c.entries) - 1)
	h := siphash.Hash(c.k0, c.k1, raw)
	for i := h & mask; ; i = (i + 1) & mask {
		if c.entries[i].key == nil {
			c.entries[i] = internEntry{key: raw, val: v}
			return
		}
	}
}

func (c *internCache) grow() {
	old := c.entries
	c.entries = make([]internEntry, len(old)*2)
	for i := range old {
		if old[i].key != nil {
			c.place(old[i].key, old[i].val)
		}
	}
}
