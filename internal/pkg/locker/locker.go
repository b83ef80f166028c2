package locker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redsync/redsync/v4"
)

var ErrLocked = errors.New("resource locked")

const defaultExpiry = 10 * time.Second

// Redsync hands out distributed mutexes backed by redis.
type Redsync struct {
	rs *redsync.Redsync
}

func NewRedsync(rs *redsync.Redsync) *Redsync {
	return &Redsync{rs}
}

// Lock blocks until key is held or ctx is done. The returned func releases it.
func (l *Redsync) Lock(ctx context.Context, key string) (func(), error) {
	mutex := l.rs.NewMutex(key, redsync.WithExpiry(defaultExpiry), redsync.WithTries(20))
	if err := mutex.LockContext(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrLocked, err)
	}

	return func() {
		//nolint:errcheck
		mutex.Unlock()
	}, nil
}

// Local serializes callers within one process.
type Local struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLocal() *Local {
	return &Local{locks: map[string]*sync.Mutex{}}
}

func (l *Local) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	if err := ctx.Err(); err != nil {
		m.Unlock()
		return nil, err
	}
	return m.Unlock, nil
}
