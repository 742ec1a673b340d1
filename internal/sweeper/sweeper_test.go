package sweeper

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/Kosench/go-link-shortener/internal/errors"
	"github.com/Kosench/go-link-shortener/internal/model"
)

type mockStore struct {
	mu        sync.Mutex
	links     map[string]model.Link
	listErr   error
	deleteErr map[string]error
	deletes   []string
}

func newMockStore() *mockStore {
	return &mockStore{
		links:     make(map[string]model.Link),
		deleteErr: make(map[string]error),
	}
}

func (m *mockStore) add(shortURL string, expiresAt *time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[shortURL] = model.Link{ShortURL: shortURL, ExpiresAt: expiresAt}
}

func (m *mockStore) List(ctx context.Context, filter model.LinkFilter) ([]model.Link, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	links := make([]model.Link, 0, len(m.links))
	for _, link := range m.links {
		links = append(links, link)
	}
	return links, nil
}

func (m *mockStore) Delete(ctx context.Context, shortURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, shortURL)
	if err := m.deleteErr[shortURL]; err != nil {
		return err
	}
	if _, exists := m.links[shortURL]; !exists {
		return apperrors.ErrLinkNotFound
	}
	delete(m.links, shortURL)
	return nil
}

func (m *mockStore) has(shortURL string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, exists := m.links[shortURL]
	return exists
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestRunCycleDeletesExpiredOnly(t *testing.T) {
	store := newMockStore()
	store.add("expired", timePtr(time.Now().UTC().Add(-time.Second)))
	store.add("future", timePtr(time.Now().UTC().Add(time.Hour)))
	store.add("eternal", nil)

	s := New(store, time.Minute, 10*time.Second)

	deleted, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	if deleted != 1 {
		t.Errorf("RunCycle() deleted = %d, want 1", deleted)
	}
	if store.has("expired") {
		t.Error("RunCycle() did not delete expired link")
	}
	if !store.has("future") {
		t.Error("RunCycle() deleted link expiring in the future")
	}
	if !store.has("eternal") {
		t.Error("RunCycle() deleted link without expiry")
	}
}

func TestRunCycleNormalizesToUTC(t *testing.T) {
	store := newMockStore()

	// Время в другом поясе, но уже в прошлом по UTC
	loc := time.FixedZone("UTC+5", 5*3600)
	store.add("expired-offset", timePtr(time.Now().In(loc).Add(-time.Minute)))

	s := New(store, time.Minute, 10*time.Second)

	deleted, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("RunCycle() deleted = %d, want 1", deleted)
	}
}

func TestRunCycleContinuesAfterDeleteFailure(t *testing.T) {
	store := newMockStore()
	store.add("bad", timePtr(time.Now().UTC().Add(-time.Hour)))
	store.add("good-1", timePtr(time.Now().UTC().Add(-time.Hour)))
	store.add("good-2", timePtr(time.Now().UTC().Add(-time.Hour)))
	store.deleteErr["bad"] = errors.New("deadlock")

	s := New(store, time.Minute, 10*time.Second)

	deleted, err := s.RunCycle(context.Background())
	if err != nil {
		t.Fatalf("RunCycle() error = %v", err)
	}

	// Одна неудача не прерывает проход
	if deleted != 2 {
		t.Errorf("RunCycle() deleted = %d, want 2", deleted)
	}
	if len(store.deletes) != 3 {
		t.Errorf("RunCycle() delete attempts = %d, want 3", len(store.deletes))
	}
}

func TestRunCycleReturnsListError(t *testing.T) {
	store := newMockStore()
	store.listErr = errors.New("store unavailable")

	s := New(store, time.Minute, 10*time.Second)

	if _, err := s.RunCycle(context.Background()); err == nil {
		t.Error("RunCycle() expected error when store list fails")
	}
}

func TestSweeperStartStop(t *testing.T) {
	store := newMockStore()
	store.add("expired", timePtr(time.Now().UTC().Add(-time.Second)))

	s := New(store, 5*time.Millisecond, time.Millisecond)
	s.Start()

	// Даем фоновому циклу хотя бы один проход
	deadline := time.Now().Add(time.Second)
	for store.has("expired") && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}

	s.Stop()

	if store.has("expired") {
		t.Error("background sweep did not delete expired link")
	}
}

func TestSweeperStopIdempotent(t *testing.T) {
	s := New(newMockStore(), time.Minute, time.Second)
	s.Start()

	s.Stop()
	s.Stop() // второй Stop не должен паниковать
}
