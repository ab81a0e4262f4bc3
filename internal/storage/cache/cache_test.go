package cache

import (
	"sync"
	"testing"
)

func TestCache(t *testing.T) {
	c := New[int64, string]()

	t.Run("miss on empty cache", func(t *testing.T) {
		if _, ok := c.Get(1); ok {
			t.Error("expected miss on empty cache")
		}
	})

	t.Run("put then get", func(t *testing.T) {
		c.Put(1, "one")
		v, ok := c.Get(1)
		if !ok || v != "one" {
			t.Errorf("Get(1) = %q, %v; want %q, true", v, ok, "one")
		}
	})

	t.Run("put replaces", func(t *testing.T) {
		c.Put(1, "uno")
		if v, _ := c.Get(1); v != "uno" {
			t.Errorf("Get(1) = %q, want %q", v, "uno")
		}
	})

	t.Run("invalidate removes entry", func(t *testing.T) {
		c.Put(2, "two")
		c.Invalidate(2)
		if _, ok := c.Get(2); ok {
			t.Error("expected miss after Invalidate")
		}
		// Invalidating an absent key is a no-op.
		c.Invalidate(99)
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		c.Put(3, "three")
		c.Clear()
		if c.Len() != 0 {
			t.Errorf("Len() = %d after Clear, want 0", c.Len())
		}
	})
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int, int]()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Put(j, n)
				c.Get(j)
				if j%10 == 0 {
					c.Invalidate(j)
				}
			}
		}(i)
	}
	wg.Wait()
}
