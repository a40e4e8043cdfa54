package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"league-backend/internal/models"
)

// FileStore persists the league as JSON files on disk:
// {dir}/config.json, {dir}/matches/{key}.json, {dir}/rounds/{playerId}.json.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	for _, d := range []string{dir, filepath.Join(dir, "matches"), filepath.Join(dir, "rounds")} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory %s: %w", d, err)
		}
	}
	return &FileStore{dir: dir}, nil
}

func (f *FileStore) configPath() string {
	return filepath.Join(f.dir, "config.json")
}

func (f *FileStore) matchPath(key string) string {
	return filepath.Join(f.dir, "matches", key+".json")
}

func (f *FileStore) roundsPath(playerID string) string {
	return filepath.Join(f.dir, "rounds", playerID+".json")
}

func readDoc[T any](path, what string) (*T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", what, err)
	}
	return &v, nil
}

// writeDoc writes to a temp file then renames for atomic replacement.
func writeDoc(path, what string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", what, err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", what, err)
	}
	return nil
}

func (f *FileStore) GetConfig(_ context.Context) (*models.Config, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return readDoc[models.Config](f.configPath(), "league config")
}

func (f *FileStore) SaveConfig(_ context.Context, cfg *models.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return writeDoc(f.configPath(), "league config", cfg)
}

func (f *FileStore) GetMatch(_ context.Context, key string) (*models.Match, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return readDoc[models.Match](f.matchPath(key), "match "+key)
}

func (f *FileStore) SaveMatch(_ context.Context, key string, m *models.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return writeDoc(f.matchPath(key), "match "+key, m)
}

func (f *FileStore) ListMatches(_ context.Context) (map[string]models.Match, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(f.dir, "matches"))
	if err != nil {
		return nil, fmt.Errorf("listing matches: %w", err)
	}

	out := make(map[string]models.Match, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key := strings.TrimSuffix(name, ".json")
		m, err := readDoc[models.Match](f.matchPath(key), "match "+key)
		if err != nil {
			return nil, err
		}
		out[key] = *m
	}
	return out, nil
}

// UpdateMatch holds the store lock across read, mutate, and write so the
// status check and the resulting write behave as one transaction.
func (f *FileStore) UpdateMatch(_ context.Context, key string, fn func(*models.Match) error) (*models.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, err := readDoc[models.Match](f.matchPath(key), "match "+key)
	if err != nil {
		return nil, err
	}
	if err := fn(m); err != nil {
		return nil, err
	}
	if err := writeDoc(f.matchPath(key), "match "+key, m); err != nil {
		return nil, err
	}
	return m, nil
}

func (f *FileStore) usersPath() string {
	return filepath.Join(f.dir, "users.json")
}

func (f *FileStore) membershipsPath() string {
	return filepath.Join(f.dir, "memberships.json")
}

// readMap loads a whole-map document, treating a missing file as empty.
func readMap[V any](path, what string) (map[string]V, error) {
	doc, err := readDoc[map[string]V](path, what)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return map[string]V{}, nil
		}
		return nil, err
	}
	return *doc, nil
}

func (f *FileStore) GetLocalUser(_ context.Context, email string) (*models.LocalUser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	users, err := readMap[models.LocalUser](f.usersPath(), "local users")
	if err != nil {
		return nil, err
	}
	u, ok := users[strings.ToLower(email)]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	return &u, nil
}

func (f *FileStore) CreateLocalUser(_ context.Context, u *models.LocalUser) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	users, err := readMap[models.LocalUser](f.usersPath(), "local users")
	if err != nil {
		return err
	}
	key := strings.ToLower(u.Email)
	if _, exists := users[key]; exists {
		return fmt.Errorf("user %s already exists", u.Email)
	}
	users[key] = *u
	return writeDoc(f.usersPath(), "local users", users)
}

func (f *FileStore) ListLocalUsers(_ context.Context) ([]models.LocalUser, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	users, err := readMap[models.LocalUser](f.usersPath(), "local users")
	if err != nil {
		return nil, err
	}
	out := make([]models.LocalUser, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	return out, nil
}

func (f *FileStore) GetMembership(_ context.Context, uid string) (*models.Membership, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	members, err := readMap[models.Membership](f.membershipsPath(), "memberships")
	if err != nil {
		return nil, err
	}
	m, ok := members[uid]
	if !ok {
		return nil, fmt.Errorf("membership %s: %w", uid, ErrNotFound)
	}
	return &m, nil
}

func (f *FileStore) SaveMembership(_ context.Context, m *models.Membership) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	members, err := readMap[models.Membership](f.membershipsPath(), "memberships")
	if err != nil {
		return err
	}
	members[m.UID] = *m
	return writeDoc(f.membershipsPath(), "memberships", members)
}

func (f *FileStore) ListMemberships(_ context.Context) ([]models.Membership, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	members, err := readMap[models.Membership](f.membershipsPath(), "memberships")
	if err != nil {
		return nil, err
	}
	out := make([]models.Membership, 0, len(members))
	for _, m := range members {
		out = append(out, m)
	}
	return out, nil
}

// roundsDoc mirrors the document shape the original app stored rounds in.
type roundsDoc struct {
	Rounds []models.Round `json:"rounds"`
}

func (f *FileStore) GetRounds(_ context.Context, playerID string) ([]models.Round, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	doc, err := readDoc[roundsDoc](f.roundsPath(playerID), "rounds for "+playerID)
	if err != nil {
		// Absent history is an empty history, not an error.
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return doc.Rounds, nil
}

func (f *FileStore) SaveRounds(_ context.Context, playerID string, rounds []models.Round) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return writeDoc(f.roundsPath(playerID), "rounds for "+playerID, roundsDoc{Rounds: rounds})
}

func (f *FileStore) ListAllRounds(_ context.Context) (map[string][]models.Round, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	entries, err := os.ReadDir(filepath.Join(f.dir, "rounds"))
	if err != nil {
		return nil, fmt.Errorf("listing rounds: %w", err)
	}

	out := make(map[string][]models.Round, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		playerID := strings.TrimSuffix(name, ".json")
		doc, err := readDoc[roundsDoc](f.roundsPath(playerID), "rounds for "+playerID)
		if err != nil {
			return nil, err
		}
		out[playerID] = doc.Rounds
	}
	return out, nil
}
