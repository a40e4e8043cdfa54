package store

import (
	"context"
	"errors"

	"league-backend/internal/models"
)

// ErrNotFound marks a missing document. Errors returned by Store
// implementations wrap it together with the document key so callers can
// both test with errors.Is and report which read failed.
var ErrNotFound = errors.New("not found")

// Store is the document-store boundary for one league: config, match
// documents (keyed w{week}_m{index}), and per-player round histories.
// Implementations can back this with in-memory storage, JSON files, or
// Firestore.
//
// All computation stays outside the store; the one stateful operation is
// UpdateMatch, a transactional read-modify-write used by the approval
// state machine as its compare-and-swap on status.
type Store interface {
	GetConfig(ctx context.Context) (*models.Config, error)
	SaveConfig(ctx context.Context, cfg *models.Config) error

	GetMatch(ctx context.Context, key string) (*models.Match, error)
	SaveMatch(ctx context.Context, key string, m *models.Match) error
	ListMatches(ctx context.Context) (map[string]models.Match, error)

	// UpdateMatch applies fn to the current match document and persists
	// the mutation atomically. An error from fn aborts the write and is
	// returned unchanged.
	UpdateMatch(ctx context.Context, key string, fn func(*models.Match) error) (*models.Match, error)

	GetRounds(ctx context.Context, playerID string) ([]models.Round, error)
	SaveRounds(ctx context.Context, playerID string, rounds []models.Round) error
	ListAllRounds(ctx context.Context) (map[string][]models.Round, error)
}

// UserStore persists local password accounts and league memberships.
// Local users are keyed by lowercased email; a membership's UID is the
// account email for local accounts. All three Store backends implement
// it.
type UserStore interface {
	GetLocalUser(ctx context.Context, email string) (*models.LocalUser, error)
	CreateLocalUser(ctx context.Context, u *models.LocalUser) error
	ListLocalUsers(ctx context.Context) ([]models.LocalUser, error)

	GetMembership(ctx context.Context, uid string) (*models.Membership, error)
	SaveMembership(ctx context.Context, m *models.Membership) error
	ListMemberships(ctx context.Context) ([]models.Membership, error)
}

// Watcher is implemented by backends that can push full match snapshots
// when anything changes. Callbacks receive a complete snapshot, never a
// diff; the returned stop func tears the listener down.
type Watcher interface {
	WatchMatches(ctx context.Context, fn func(map[string]models.Match)) (stop func(), err error)
}

// copyMatch deep-copies a match so callers can't mutate stored state
// through the score map or dispute history.
func copyMatch(m *models.Match) *models.Match {
	out := *m
	if m.Scores != nil {
		out.Scores = make(map[string][]int, len(m.Scores))
		for pid, s := range m.Scores {
			out.Scores[pid] = append([]int(nil), s...)
		}
	}
	if m.Result != nil {
		r := *m.Result
		out.Result = &r
	}
	out.DisputeHistory = append([]models.DisputeEntry(nil), m.DisputeHistory...)
	return &out
}
