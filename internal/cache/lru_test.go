package cache

import (
	"testing"
	"time"
)

func TestLRUCacheEviction(t *testing.T) {
	cache := NewLRUCache[string](3, time.Hour)

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	cache.Set("key3", "value3")
	cache.Get("key1")
	cache.Set("key4", "value4") // evicts key2, the least recently used

	if _, found := cache.Get("key2"); found {
		t.Error("key2 should have been evicted")
	}
	for _, k := range []string{"key1", "key3", "key4"} {
		if _, found := cache.Get(k); !found {
			t.Errorf("%s should still exist", k)
		}
	}
	if cache.Size() != 3 {
		t.Errorf("Size() = %d, want 3", cache.Size())
	}
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	cache := NewLRUCache[string](100, time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("key1", "value1")
	if _, found := cache.Get("key1"); !found {
		t.Error("key1 should exist immediately")
	}

	now = now.Add(2 * time.Minute)
	if _, found := cache.Get("key1"); found {
		t.Error("key1 should have expired")
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	cache := NewLRUCache[string](100, time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.Set("key1", "value1")
	cache.Set("key2", "value2")
	now = now.Add(30 * time.Second)
	cache.Set("key3", "value3")
	now = now.Add(45 * time.Second)

	if removed := cache.CleanExpired(); removed != 2 {
		t.Errorf("Expected 2 items cleaned, got %d", removed)
	}
	if cache.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cache.Size())
	}
}

func TestLRUCacheDeletePrefix(t *testing.T) {
	cache := NewLRUCache[int](10, time.Hour)
	cache.Set("stats:car-1:12", 1)
	cache.Set("stats:car-1:6", 2)
	cache.Set("stats:car-10:12", 3)
	cache.Set("stats:car-2:12", 4)

	if n := cache.DeletePrefix("stats:car-1:"); n != 2 {
		t.Errorf("DeletePrefix removed %d, want 2", n)
	}
	if _, found := cache.Get("stats:car-10:12"); !found {
		t.Error("car-10 entry must survive a car-1 invalidation")
	}
	if cache.Size() != 2 {
		t.Errorf("Size() = %d, want 2", cache.Size())
	}
}

func TestManager(t *testing.T) {
	a := NewLRUCache[int](10, time.Minute)
	b := NewLRUCache[int](10, time.Minute)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return now }
	b.now = func() time.Time { return now }

	m := NewManager()
	m.Register(a)
	m.Register(b)

	a.Set("x", 1)
	b.Set("y", 2)
	b.Set("z", 3)
	now = now.Add(time.Hour)

	if n := m.CleanNow(); n != 3 {
		t.Errorf("CleanNow() = %d, want 3", n)
	}

	m.StartCleanup(time.Hour)
	m.Stop()
	m.Stop()
}

func BenchmarkLRUCache(b *testing.B) {
	cache := NewLRUCache[string](1000, time.Hour)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if i%10 == 0 {
			cache.Set("bench-key", "value")
		} else {
			cache.Get("bench-key")
		}
	}
}
