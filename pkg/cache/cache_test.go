package cache

import (
	"testing"
	"time"
)

func TestSetAndGet(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	val, ok := c.Get("key1")
	if !ok || val != "value1" {
		t.Fatalf("expected value1, got %v, exists=%v", val, ok)
	}
}

func TestExpiration(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 100*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected expired key to return false")
	}
}

func TestDelete(t *testing.T) {
	c := New()
	c.Set("key1", "value1", 1*time.Second)
	c.Delete("key1")
	_, ok := c.Get("key1")
	if ok {
		t.Fatalf("expected deleted key to return false")
	}
}

func TestInvalidate(t *testing.T) {
	c := New()
	c.Set("token:abc", "user-1", 1*time.Second)
	c.Set("token:def", "user-2", 1*time.Second)
	c.Set("user:1", "cached", 1*time.Second)
	c.Invalidate("token:")
	_, ok1 := c.Get("token:abc")
	_, ok2 := c.Get("token:def")
	_, ok3 := c.Get("user:1")
	if ok1 || ok2 {
		t.Fatalf("expected token keys to be invalidated")
	}
	if !ok3 {
		t.Fatalf("expected user:1 to still exist")
	}
}
