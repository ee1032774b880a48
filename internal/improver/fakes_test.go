package improver

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cv-improver/internal/credentials"
	"cv-improver/internal/export"
	"cv-improver/internal/i18n"
)

type fakeProvider struct {
	validateErr error
	generateOut string
	generateErr error
	block       chan struct{}

	validateCalls atomic.Int32
	generateCalls atomic.Int32

	mu         sync.Mutex
	lastPrompt string
	lastKey    string
}

func (f *fakeProvider) ValidateCredential(ctx context.Context, key string) error {
	f.validateCalls.Add(1)
	f.mu.Lock()
	f.lastKey = key
	f.mu.Unlock()
	return f.validateErr
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string, key string) (string, error) {
	f.generateCalls.Add(1)
	f.mu.Lock()
	f.lastPrompt = prompt
	f.lastKey = key
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.generateOut, f.generateErr
}

type fakeRenderer struct {
	err error
	got export.Document
}

func (r *fakeRenderer) Render(ctx context.Context, doc export.Document) ([]byte, error) {
	r.got = doc
	if r.err != nil {
		return nil, r.err
	}
	return []byte("%PDF-fake"), nil
}

type failingStore struct {
	credentials.Store
	setErr error
}

func (s failingStore) Set(ctx context.Context, owner, value string) error {
	return s.setErr
}

var errBoom = errors.New("boom")

func newTestSession(t *testing.T, provider *fakeProvider, store credentials.Store) *Session {
	t.Helper()
	if store == nil {
		store = credentials.NewMemoryStore()
	}
	s := NewSession("session-1", Deps{
		Catalog:    i18n.MustNew(),
		Store:      store,
		Provider:   provider,
		SettleHold: -1,
	})
	if err := s.CheckAPIKey(context.Background()); err != nil {
		t.Fatalf("CheckAPIKey: %v", err)
	}
	return s
}

func withStoredKey(t *testing.T, key string) credentials.Store {
	t.Helper()
	store := credentials.NewMemoryStore()
	if err := store.Set(context.Background(), "session-1", key); err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}
