package cache

import (
	"testing"
	"time"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Fatalf("size = %d", c.Size())
	}
}

func TestLRUExpiresEntries(t *testing.T) {
	clk := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute).WithClock(clk.now)
	c.Set("a", "x")
	c.Set("b", "y")

	clk.t = clk.t.Add(30 * time.Second)
	c.Set("b", "z") // refreshes b

	clk.t = clk.t.Add(45 * time.Second)
	if _, ok := c.Get("a"); ok {
		t.Fatal("a should have expired")
	}
	if n := c.CleanExpired(); n != 0 {
		t.Fatalf("cleaned %d, want 0", n)
	}
	if v, ok := c.Get("b"); !ok || v != "z" {
		t.Fatalf("b = %q, %v", v, ok)
	}

	clk.t = clk.t.Add(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Fatalf("cleaned %d, want 1", n)
	}
}

func TestLRUDeleteAndPurge(t *testing.T) {
	c := NewLRUCache[int](0, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	if c.Size() != 1 {
		t.Fatalf("size = %d, want 1", c.Size())
	}
	c.Delete("b")
	if c.Size() != 0 {
		t.Fatal("expected empty cache")
	}
	c.Set("a", 1)
	c.Purge()
	if _, ok := c.Get("a"); ok {
		t.Fatal("expected purge to drop a")
	}
}

func TestManagerSweep(t *testing.T) {
	clk := &clock{t: time.Now()}
	c := NewLRUCache[int](10, time.Second).WithClock(clk.now)
	c.Set("a", 1)

	m := NewManager(nil)
	m.Register(c)
	m.StartCleanup(time.Hour)
	defer m.Stop()

	clk.t = clk.t.Add(2 * time.Second)
	if n := m.Sweep(); n != 1 {
		t.Fatalf("swept %d, want 1", n)
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
	m.Stop()
}
