package redis_store

import "testing"

func TestIdempotencyKey(t *testing.T) {
	got := dbKeyIdempotency("42:POST /api/v1/quests/:id/accept", "abc")
	if want := "idempotency:42:POST /api/v1/quests/:id/accept:abc"; got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}
