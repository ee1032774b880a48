package credentials

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
)

// Runs against a real server when REDIS_URL is set.
func TestRedisStoreRoundTrip(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := DialRedis(ctx, redisURL)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisStore(client)
	owner := uuid.NewString()
	if _, err := store.Get(ctx, owner); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.Set(ctx, owner, "v"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got, err := store.Get(ctx, owner); err != nil || got != "v" {
		t.Fatalf("expected stored value, got %q err=%v", got, err)
	}
	if err := store.Remove(ctx, owner); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}

func TestDialRedisRejectsBadURL(t *testing.T) {
	if _, err := DialRedis(context.Background(), "not a url"); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestRedisKeyUsesHashedOwner(t *testing.T) {
	s := NewRedisStore(nil)
	if got := s.key("session"); got != redisKeyPrefix+ownerKey("session") {
		t.Fatalf("unexpected key %q", got)
	}
}
