package cache_test

import (
	"testing"
	"time"

	"github.com/vedang-raul/taskhub/internal/cache"
)

func TestCacheSetGetDelete(t *testing.T) {
	c := cache.New[[]string](time.Minute)

	if _, ok := c.Get("k"); ok {
		t.Fatal("empty cache returned a value")
	}

	c.Set("k", []string{"a", "b"})

	v, ok := c.Get("k")
	if !ok || len(v) != 2 {
		t.Fatalf("got %v, %v", v, ok)
	}

	c.Delete("k")

	if _, ok := c.Get("k"); ok {
		t.Fatal("deleted key still present")
	}
}

func TestCacheExpiry(t *testing.T) {
	c := cache.New[int](10 * time.Millisecond)

	c.Set("k", 42)

	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Fatal("expired entry still served")
	}
}
