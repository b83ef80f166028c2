package caching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/cache/v9"
)

type entry struct {
	Name  string
	Score int
}

func TestNopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}

	if err := c.Set(ctx, "k", 1, time.Minute); err != nil {
		t.Fatal(err)
	}
	var v int
	if err := c.Get(ctx, "k", &v); !errors.Is(err, cache.ErrCacheMiss) {
		t.Fatalf("err = %v", err)
	}
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
}

func TestUseCacheFillsOnce(t *testing.T) {
	ctx := context.Background()
	c, err := NewCacheRedis(nil, true)
	if err != nil {
		t.Fatal(err)
	}

	calls := 0
	load := func() (entry, error) {
		calls++
		return entry{Name: "Scout", Score: 7}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := UseCache(ctx, c, "quest:scout", time.Minute, load)
		if err != nil {
			t.Fatal(err)
		}
		if got != (entry{Name: "Scout", Score: 7}) {
			t.Fatalf("got %+v", got)
		}
	}
	if calls != 1 {
		t.Fatalf("loader ran %d times", calls)
	}

	if err := c.Delete(ctx, "quest:scout"); err != nil {
		t.Fatal(err)
	}
	if err := c.Delete(ctx, "quest:scout"); err != nil {
		t.Fatalf("deleting a missing key: %v", err)
	}
	if _, err := UseCache(ctx, c, "quest:scout", time.Minute, load); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Fatalf("loader ran %d times after delete", calls)
	}
}

func TestUseCacheDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	c, err := NewCacheRedis(nil, true)
	if err != nil {
		t.Fatal(err)
	}

	boom := errors.New("boom")
	if _, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	got, err := UseCache(ctx, c, "k", time.Minute, func() (int, error) { return 5, nil })
	if err != nil || got != 5 {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestUseCacheWithROReadsReplica(t *testing.T) {
	ctx := context.Background()
	primary, err := NewCacheRedis(nil, true)
	if err != nil {
		t.Fatal(err)
	}

	// a replica that misses keeps writes on the primary
	got, err := UseCacheWithRO(ctx, Nop{}, primary, "k", time.Minute, func() (int, error) { return 3, nil })
	if err != nil || got != 3 {
		t.Fatalf("got %d, %v", got, err)
	}
	var v int
	if err := primary.Get(ctx, "k", &v); err != nil || v != 3 {
		t.Fatalf("primary holds %d, %v", v, err)
	}
}

func TestNewCacheRedisNeedsBackend(t *testing.T) {
	if _, err := NewCacheRedis(nil, false); err == nil {
		t.Fatal("expected an error without redis or local cache")
	}
}
