package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"league-backend/internal/models"
)

// FirestoreStore persists one league under leagues/{leagueId}/ using the
// same document layout the web client reads:
//
//	leagues/{id}/config/settings      league configuration
//	leagues/{id}/matches/{key}        match documents, key = w{week}_m{index}
//	leagues/{id}/playerRounds/{pid}   { rounds: [...] }
type FirestoreStore struct {
	client   *firestore.Client
	leagueID string
}

func NewFirestoreStore(ctx context.Context, projectID, databaseID, leagueID string) (*FirestoreStore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}
	return &FirestoreStore{client: client, leagueID: leagueID}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) league() *firestore.DocumentRef {
	return s.client.Collection("leagues").Doc(s.leagueID)
}

func (s *FirestoreStore) configRef() *firestore.DocumentRef {
	return s.league().Collection("config").Doc("settings")
}

func (s *FirestoreStore) matchRef(key string) *firestore.DocumentRef {
	return s.league().Collection("matches").Doc(key)
}

func (s *FirestoreStore) roundsRef(playerID string) *firestore.DocumentRef {
	return s.league().Collection("playerRounds").Doc(playerID)
}

// toDoc round-trips a model through JSON so Firestore documents keep the
// camelCase field names the web client expects, rather than Go names.
func toDoc(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func fromDoc[T any](data map[string]any, what string) (*T, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", what, err)
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", what, err)
	}
	return &v, nil
}

func (s *FirestoreStore) getDoc(ctx context.Context, ref *firestore.DocumentRef, what string) (map[string]any, error) {
	snap, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("%s: %w", what, ErrNotFound)
		}
		return nil, fmt.Errorf("reading %s: %w", what, err)
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) setDoc(ctx context.Context, ref *firestore.DocumentRef, what string, v any) error {
	data, err := toDoc(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", what, err)
	}
	if _, err := ref.Set(ctx, data); err != nil {
		return fmt.Errorf("writing %s: %w", what, err)
	}
	return nil
}

func (s *FirestoreStore) GetConfig(ctx context.Context) (*models.Config, error) {
	data, err := s.getDoc(ctx, s.configRef(), "league config")
	if err != nil {
		return nil, err
	}
	return fromDoc[models.Config](data, "league config")
}

func (s *FirestoreStore) SaveConfig(ctx context.Context, cfg *models.Config) error {
	return s.setDoc(ctx, s.configRef(), "league config", cfg)
}

func (s *FirestoreStore) GetMatch(ctx context.Context, key string) (*models.Match, error) {
	data, err := s.getDoc(ctx, s.matchRef(key), "match "+key)
	if err != nil {
		return nil, err
	}
	return fromDoc[models.Match](data, "match "+key)
}

func (s *FirestoreStore) SaveMatch(ctx context.Context, key string, m *models.Match) error {
	return s.setDoc(ctx, s.matchRef(key), "match "+key, m)
}

func (s *FirestoreStore) ListMatches(ctx context.Context) (map[string]models.Match, error) {
	iter := s.league().Collection("matches").Documents(ctx)
	defer iter.Stop()

	out := make(map[string]models.Match)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing matches: %w", err)
		}
		m, err := fromDoc[models.Match](snap.Data(), "match "+snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out[snap.Ref.ID] = *m
	}
	return out, nil
}

// UpdateMatch runs the read-modify-write inside a Firestore transaction,
// which retries fn on contention. The status check inside fn is therefore
// a true compare-and-swap against the stored document.
func (s *FirestoreStore) UpdateMatch(ctx context.Context, key string, fn func(*models.Match) error) (*models.Match, error) {
	ref := s.matchRef(key)
	var updated *models.Match

	err := s.client.RunTransaction(ctx, func(_ context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("match %s: %w", key, ErrNotFound)
			}
			return fmt.Errorf("reading match %s: %w", key, err)
		}
		m, err := fromDoc[models.Match](snap.Data(), "match "+key)
		if err != nil {
			return err
		}
		if err := fn(m); err != nil {
			return err
		}
		data, err := toDoc(m)
		if err != nil {
			return fmt.Errorf("encoding match %s: %w", key, err)
		}
		updated = m
		return tx.Set(ref, data)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *FirestoreStore) GetRounds(ctx context.Context, playerID string) ([]models.Round, error) {
	data, err := s.getDoc(ctx, s.roundsRef(playerID), "rounds for "+playerID)
	if err != nil {
		// Absent history is an empty history, not an error.
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	doc, err := fromDoc[roundsDoc](data, "rounds for "+playerID)
	if err != nil {
		return nil, err
	}
	return doc.Rounds, nil
}

func (s *FirestoreStore) SaveRounds(ctx context.Context, playerID string, rounds []models.Round) error {
	return s.setDoc(ctx, s.roundsRef(playerID), "rounds for "+playerID, roundsDoc{Rounds: rounds})
}

func (s *FirestoreStore) ListAllRounds(ctx context.Context) (map[string][]models.Round, error) {
	iter := s.league().Collection("playerRounds").Documents(ctx)
	defer iter.Stop()

	out := make(map[string][]models.Round)
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing rounds: %w", err)
		}
		doc, err := fromDoc[roundsDoc](snap.Data(), "rounds for "+snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out[snap.Ref.ID] = doc.Rounds
	}
	return out, nil
}

func (s *FirestoreStore) userRef(email string) *firestore.DocumentRef {
	return s.league().Collection("localUsers").Doc(strings.ToLower(email))
}

func (s *FirestoreStore) membershipRef(uid string) *firestore.DocumentRef {
	return s.league().Collection("memberships").Doc(uid)
}

func (s *FirestoreStore) GetLocalUser(ctx context.Context, email string) (*models.LocalUser, error) {
	data, err := s.getDoc(ctx, s.userRef(email), "user "+email)
	if err != nil {
		return nil, err
	}
	return fromDoc[models.LocalUser](data, "user "+email)
}

func (s *FirestoreStore) CreateLocalUser(ctx context.Context, u *models.LocalUser) error {
	data, err := toDoc(u)
	if err != nil {
		return fmt.Errorf("encoding user %s: %w", u.Email, err)
	}
	// Create fails on an existing document, giving uniqueness on email.
	if _, err := s.userRef(u.Email).Create(ctx, data); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user %s already exists", u.Email)
		}
		return fmt.Errorf("creating user %s: %w", u.Email, err)
	}
	return nil
}

func (s *FirestoreStore) ListLocalUsers(ctx context.Context) ([]models.LocalUser, error) {
	iter := s.league().Collection("localUsers").Documents(ctx)
	defer iter.Stop()

	var out []models.LocalUser
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing users: %w", err)
		}
		u, err := fromDoc[models.LocalUser](snap.Data(), "user "+snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, nil
}

func (s *FirestoreStore) GetMembership(ctx context.Context, uid string) (*models.Membership, error) {
	data, err := s.getDoc(ctx, s.membershipRef(uid), "membership "+uid)
	if err != nil {
		return nil, err
	}
	return fromDoc[models.Membership](data, "membership "+uid)
}

func (s *FirestoreStore) SaveMembership(ctx context.Context, m *models.Membership) error {
	return s.setDoc(ctx, s.membershipRef(m.UID), "membership "+m.UID, m)
}

func (s *FirestoreStore) ListMemberships(ctx context.Context) ([]models.Membership, error) {
	iter := s.league().Collection("memberships").Documents(ctx)
	defer iter.Stop()

	var out []models.Membership
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("listing memberships: %w", err)
		}
		m, err := fromDoc[models.Membership](snap.Data(), "membership "+snap.Ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, nil
}

// WatchMatches streams full snapshots of the matches collection to fn
// until the context is cancelled or stop is called.
func (s *FirestoreStore) WatchMatches(ctx context.Context, fn func(map[string]models.Match)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	snaps := s.league().Collection("matches").Snapshots(ctx)

	go func() {
		defer snaps.Stop()
		for {
			qs, err := snaps.Next()
			if err != nil {
				return
			}
			out := make(map[string]models.Match)
			for {
				doc, err := qs.Documents.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					return
				}
				m, err := fromDoc[models.Match](doc.Data(), "match "+doc.Ref.ID)
				if err != nil {
					continue
				}
				out[doc.Ref.ID] = *m
			}
			fn(out)
		}
	}()

	return cancel, nil
}
