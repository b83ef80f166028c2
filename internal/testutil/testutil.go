package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"questboard/internal/datastore"
	"questboard/internal/datastore/redis_store"
	"questboard/internal/interfaces"
	"questboard/internal/pkg/caching"
	"questboard/internal/pkg/limiter"
	"questboard/internal/pkg/locker"
	"questboard/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

// DB opens a private in-memory database with the schema migrated. One
// connection only, so code under test must run every statement of a
// transaction through the transaction.
func DB(tb testing.TB) *bun.DB {
	tb.Helper()

	sqldb, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	tb.Cleanup(func() {
		db.Close()
	})

	if err := datastore.Migrate(context.Background(), db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("test")
	if err != nil {
		tb.Fatalf("failed to init logger: %v", err)
	}
	return log
}

// Container provides the infrastructure services resolve: databases, caches,
// locker, limiter and the telegram fakes. Services are registered by the caller.
func Container(tb testing.TB, db *bun.DB) (*do.Injector, *Notifier) {
	tb.Helper()

	notifier := &Notifier{}
	injector := do.New()
	do.ProvideValue(injector, db)
	do.ProvideNamedValue(injector, "db-readonly", db)
	do.ProvideValue(injector, Logger(tb))
	do.ProvideValue[caching.Cache](injector, caching.Nop{})
	do.ProvideValue[caching.ReadOnlyCache](injector, caching.Nop{})
	do.ProvideValue[interfaces.Locker](injector, locker.NewLocal())
	do.ProvideValue[interfaces.Limiter](injector, limiter.Noop{})
	do.ProvideValue[interfaces.Notifier](injector, notifier)
	do.ProvideValue[interfaces.ProfilePhotos](injector, Photos{})
	do.ProvideValue[interfaces.IdempotencyStore](injector, NewIdempotencyStore())
	return injector, notifier
}

type Message struct {
	ChatID int64
	Text   string
}

// Notifier records messages instead of sending them.
type Notifier struct {
	mu       sync.Mutex
	messages []Message
}

func (n *Notifier) Notify(chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, Message{chatID, text})
	return nil
}

func (n *Notifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.messages...)
}

// Photos serves a deterministic photo URL, or an error for URL "".
type Photos struct {
	URL string
}

func (p Photos) ProfilePhotoURL(telegramID int64) (string, error) {
	if p.URL == "" {
		return "", fmt.Errorf("user %d has no profile photos", telegramID)
	}
	return p.URL, nil
}

// IdempotencyStore keeps responses in memory.
type IdempotencyStore struct {
	mu    sync.Mutex
	items map[string]*redis_store.IdempotentResponse
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{items: map[string]*redis_store.IdempotentResponse{}}
}

func (s *IdempotencyStore) Get(_ context.Context, scope string, key string) (*redis_store.IdempotentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[scope+":"+key], nil
}

func (s *IdempotencyStore) Save(_ context.Context, scope string, key string, v *redis_store.IdempotentResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[scope+":"+key]; !ok {
		s.items[scope+":"+key] = v
	}
	return nil
}

// WaitMessages polls until at least n messages arrived; notifications are sent asynchronously.
func (n *Notifier) WaitMessages(tb testing.TB, count int) []Message {
	tb.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		messages := n.Messages()
		if len(messages) >= count {
			return messages
		}
		if time.Now().After(deadline) {
			tb.Fatalf("expected %d notifications, got %d", count, len(messages))
		}
		time.Sleep(5 * time.Millisecond)
	}
}
