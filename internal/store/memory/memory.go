package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Ashmit111/secure-scan/internal/domain"
	"github.com/Ashmit111/secure-scan/internal/store"
)

var _ store.StatusStore = (*Store)(nil)

// Store keeps websites in a map guarded by one RWMutex. The mutex is the
// per-URL critical section: an Upsert's read-modify-write cannot interleave
// with another cycle for the same URL.
type Store struct {
	mu    sync.RWMutex
	sites map[string]*domain.Website
}

func New() *Store {
	return &Store{
		sites: make(map[string]*domain.Website),
	}
}

func (m *Store) Get(ctx context.Context, url string) (*domain.Website, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.sites[url]
	if !ok {
		return nil, store.ErrNotFound
	}
	return snapshot(w), nil
}

func (m *Store) Upsert(ctx context.Context, url, ownerContact string, status domain.Status, responseTime string, entry domain.LogEntry) (*domain.Website, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	w, ok := m.sites[url]
	if !ok {
		w = &domain.Website{
			URL:          url,
			OwnerContact: ownerContact,
			Status:       status,
			ResponseTime: responseTime,
			LastChecked:  now,
			Logs:         []domain.LogEntry{entry},
		}
		m.sites[url] = w
		return snapshot(w), nil
	}

	w.Status = status
	w.ResponseTime = responseTime
	w.LastChecked = now
	if ownerContact != "" {
		w.OwnerContact = ownerContact
	}
	w.Logs = append(w.Logs, entry)
	return snapshot(w), nil
}

func (m *Store) List(ctx context.Context) ([]*domain.Website, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.Website, 0, len(m.sites))
	for _, w := range m.sites {
		out = append(out, snapshot(w))
	}
	return out, nil
}

func (m *Store) History(ctx context.Context, url string, limit int) ([]domain.LogEntry, error) {
	if limit <= 0 {
		limit = store.DefaultHistoryLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.sites[url]
	if !ok {
		return nil, store.ErrNotFound
	}
	logs := w.Logs
	if len(logs) > limit {
		logs = logs[len(logs)-limit:]
	}
	out := make([]domain.LogEntry, len(logs))
	copy(out, logs)
	return out, nil
}

// snapshot copies a record without its log so callers can't mutate the map's
// backing state.
func snapshot(w *domain.Website) *domain.Website {
	c := *w
	c.Logs = nil
	return &c
}
