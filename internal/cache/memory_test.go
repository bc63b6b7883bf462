package cache

import (
	"testing"
	"time"
)

func TestMemoryCache(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)

	if _, ok := c.Get("missing"); ok {
		t.Fatal("expected miss on empty cache")
	}

	if err := c.Set("k", []byte("v"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok := c.Get("k")
	if !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v; want v, true", got, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}

	_ = c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Error("expected miss after Delete")
	}

	_ = c.Set("a", []byte("1"), 0)
	_ = c.Set("b", []byte("2"), 0)
	_ = c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Hour, time.Minute)
	_ = c.Set("short", []byte("x"), 10*time.Millisecond)

	time.Sleep(30 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("expected entry to expire")
	}
}

func TestCacheKey(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		same bool
	}{
		{"identical", []string{"Briar", "suspect"}, []string{"Briar", "suspect"}, true},
		{"different speaker", []string{"Briar", "suspect"}, []string{"Corin", "suspect"}, false},
		{"no boundary collision", []string{"ab", "c"}, []string{"a", "bc"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CacheKey(tt.a...) == CacheKey(tt.b...); got != tt.same {
				t.Errorf("CacheKey(%v) == CacheKey(%v) is %v, want %v", tt.a, tt.b, got, tt.same)
			}
		})
	}
}
