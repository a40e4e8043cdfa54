package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"league-backend/internal/models"
)

// MemoryStore keeps one league entirely in memory. Useful for tests and
// local development.
type MemoryStore struct {
	mu          sync.RWMutex
	config      *models.Config
	matches     map[string]*models.Match
	rounds      map[string][]models.Round
	users       map[string]models.LocalUser
	memberships map[string]models.Membership
	watchers    []func(map[string]models.Match)
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches:     make(map[string]*models.Match),
		rounds:      make(map[string][]models.Round),
		users:       make(map[string]models.LocalUser),
		memberships: make(map[string]models.Membership),
	}
}

func (m *MemoryStore) GetConfig(_ context.Context) (*models.Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.config == nil {
		return nil, fmt.Errorf("league config: %w", ErrNotFound)
	}
	copied := *m.config
	return &copied, nil
}

func (m *MemoryStore) SaveConfig(_ context.Context, cfg *models.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := *cfg
	m.config = &copied
	return nil
}

func (m *MemoryStore) GetMatch(_ context.Context, key string) (*models.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	match, ok := m.matches[key]
	if !ok {
		return nil, fmt.Errorf("match %s: %w", key, ErrNotFound)
	}
	return copyMatch(match), nil
}

func (m *MemoryStore) SaveMatch(_ context.Context, key string, match *models.Match) error {
	m.mu.Lock()
	m.matches[key] = copyMatch(match)
	m.mu.Unlock()

	m.notify()
	return nil
}

func (m *MemoryStore) ListMatches(_ context.Context) (map[string]models.Match, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.snapshot(), nil
}

func (m *MemoryStore) UpdateMatch(_ context.Context, key string, fn func(*models.Match) error) (*models.Match, error) {
	m.mu.Lock()
	match, ok := m.matches[key]
	if !ok {
		m.mu.Unlock()
		return nil, fmt.Errorf("match %s: %w", key, ErrNotFound)
	}
	updated := copyMatch(match)
	if err := fn(updated); err != nil {
		m.mu.Unlock()
		return nil, err
	}
	m.matches[key] = copyMatch(updated)
	m.mu.Unlock()

	m.notify()
	return updated, nil
}

func (m *MemoryStore) GetRounds(_ context.Context, playerID string) ([]models.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]models.Round(nil), m.rounds[playerID]...), nil
}

func (m *MemoryStore) SaveRounds(_ context.Context, playerID string, rounds []models.Round) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rounds[playerID] = append([]models.Round(nil), rounds...)
	return nil
}

func (m *MemoryStore) ListAllRounds(_ context.Context) (map[string][]models.Round, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string][]models.Round, len(m.rounds))
	for pid, rounds := range m.rounds {
		out[pid] = append([]models.Round(nil), rounds...)
	}
	return out, nil
}

func (m *MemoryStore) GetLocalUser(_ context.Context, email string) (*models.LocalUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return &u, nil
}

func (m *MemoryStore) CreateLocalUser(_ context.Context, u *models.LocalUser) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(u.Email)
	if _, exists := m.users[key]; exists {
		return fmt.Errorf("user %s already exists", u.Email)
	}
	m.users[key] = *u
	return nil
}

func (m *MemoryStore) ListLocalUsers(_ context.Context) ([]models.LocalUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.LocalUser, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *MemoryStore) GetMembership(_ context.Context, uid string) (*models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	mem, ok := m.memberships[uid]
	if !ok {
		return nil, fmt.Errorf("membership %s: %w", uid, ErrNotFound)
	}
	return &mem, nil
}

func (m *MemoryStore) SaveMembership(_ context.Context, mem *models.Membership) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.memberships[mem.UID] = *mem
	return nil
}

func (m *MemoryStore) ListMemberships(_ context.Context) ([]models.Membership, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.Membership, 0, len(m.memberships))
	for _, mem := range m.memberships {
		out = append(out, mem)
	}
	return out, nil
}

func (m *MemoryStore) WatchMatches(ctx context.Context, fn func(map[string]models.Match)) (func(), error) {
	m.mu.Lock()
	m.watchers = append(m.watchers, fn)
	idx := len(m.watchers) - 1
	snap := m.snapshot()
	m.mu.Unlock()

	// Initial snapshot, matching Firestore listener behavior.
	fn(snap)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if idx < len(m.watchers) {
			m.watchers[idx] = nil
		}
	}, nil
}

func (m *MemoryStore) snapshot() map[string]models.Match {
	out := make(map[string]models.Match, len(m.matches))
	for key, match := range m.matches {
		out[key] = *copyMatch(match)
	}
	return out
}

func (m *MemoryStore) notify() {
	m.mu.RLock()
	snap := m.snapshot()
	watchers := append(([]func(map[string]models.Match))(nil), m.watchers...)
	m.mu.RUnlock()

	for _, fn := range watchers {
		if fn != nil {
			fn(snap)
		}
	}
}
