package redis

import (
	"context"
	"testing"
	"time"
)

func TestCacheSetAndGet(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "tenant-1", "balance:1100", []byte("380.00"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "tenant-1", "balance:1100")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "380.00" {
		t.Fatalf("expected 380.00, got %s", val)
	}
}

func TestCacheGetMiss(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)

	val, err := cache.Get(context.Background(), "tenant-1", "missing")
	if err != nil {
		t.Fatalf("expected nil error on miss, got %v", err)
	}
	if val != nil {
		t.Fatalf("expected nil value on miss, got %s", val)
	}
}

func TestCacheTenantIsolation(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "tenant-1", "balance:1100", []byte("100"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	val, err := cache.Get(ctx, "tenant-2", "balance:1100")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if val != nil {
		t.Fatalf("expected miss across tenants, got %s", val)
	}
}

func TestCacheInvalidateTenant(t *testing.T) {
	client, mr := newTestRedisClient(t)
	defer mr.Close()
	defer client.Close()

	cache := NewCache(client)
	ctx := context.Background()

	if err := cache.Set(ctx, "tenant-1", "balance:1100", []byte("100"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cache.Set(ctx, "tenant-1", "balance:2100", []byte("200"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := cache.Set(ctx, "tenant-2", "balance:1100", []byte("300"), time.Minute); err != nil {
		t.Fatalf("set failed: %v", err)
	}

	if err := cache.InvalidateTenant(ctx, "tenant-1"); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	for _, key := range []string{"balance:1100", "balance:2100"} {
		val, err := cache.Get(ctx, "tenant-1", key)
		if err != nil {
			t.Fatalf("get failed: %v", err)
		}
		if val != nil {
			t.Fatalf("expected %s to be invalidated, got %s", key, val)
		}
	}

	val, err := cache.Get(ctx, "tenant-2", "balance:1100")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(val) != "300" {
		t.Fatalf("expected tenant-2 value to survive, got %s", val)
	}
}
