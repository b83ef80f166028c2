package limiter

import (
	"context"
	"testing"

	"github.com/go-redis/redis_rate/v10"
)

func TestNoopAllows(t *testing.T) {
	var l Noop
	for i := 0; i < 100; i++ {
		if err := l.Allow(context.Background(), "user:1", redis_rate.PerMinute(1)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestNewLimiterNeedsClient(t *testing.T) {
	if _, err := NewLimiter(nil); err == nil {
		t.Fatal("expected an error for a nil client")
	}
}
