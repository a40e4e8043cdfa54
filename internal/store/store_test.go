package store

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-backend/internal/models"
)

func sampleMatch() *models.Match {
	return &models.Match{
		Week: 1, Date: "2026-06-03", Nine: models.SideFront,
		Team1ID: "t1", Team2ID: "t2",
		Status: models.StatusDraft,
		Scores: map[string][]int{"p1": {4, 5, 3, 6, 4, 4, 3, 5, 4}},
	}
}

// storeUnderTest runs the shared conformance checks against any backend.
func storeUnderTest(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("config", func(t *testing.T) {
		_, err := s.GetConfig(ctx)
		assert.ErrorIs(t, err, ErrNotFound)

		cfg := &models.Config{LeagueName: "Test League"}
		require.NoError(t, s.SaveConfig(ctx, cfg))

		got, err := s.GetConfig(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Test League", got.LeagueName)
	})

	t.Run("matches", func(t *testing.T) {
		_, err := s.GetMatch(ctx, "w1_m0")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SaveMatch(ctx, "w1_m0", sampleMatch()))

		got, err := s.GetMatch(ctx, "w1_m0")
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, got.Status)
		assert.Equal(t, []int{4, 5, 3, 6, 4, 4, 3, 5, 4}, got.Scores["p1"])

		all, err := s.ListMatches(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("update match", func(t *testing.T) {
		updated, err := s.UpdateMatch(ctx, "w1_m0", func(m *models.Match) error {
			if m.Status != models.StatusDraft {
				return fmt.Errorf("unexpected status %s", m.Status)
			}
			m.Status = models.StatusPending
			m.SubmittedByTeam = "t1"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, updated.Status)

		got, err := s.GetMatch(ctx, "w1_m0")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
		assert.Equal(t, "t1", got.SubmittedByTeam)
	})

	t.Run("update match aborts on error", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := s.UpdateMatch(ctx, "w1_m0", func(m *models.Match) error {
			m.Status = models.StatusCommitted
			return boom
		})
		assert.ErrorIs(t, err, boom)

		got, err := s.GetMatch(ctx, "w1_m0")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPending, got.Status)
	})

	t.Run("rounds", func(t *testing.T) {
		// Missing history reads as empty, not as an error.
		rounds, err := s.GetRounds(ctx, "p1")
		require.NoError(t, err)
		assert.Empty(t, rounds)

		require.NoError(t, s.SaveRounds(ctx, "p1", []models.Round{
			{Date: "2026-06-03", GrossScore: 38, Nine: models.SideFront, MatchKey: "w1_m0", Source: "match"},
		}))

		rounds, err = s.GetRounds(ctx, "p1")
		require.NoError(t, err)
		require.Len(t, rounds, 1)
		assert.Equal(t, 38, rounds[0].GrossScore)

		all, err := s.ListAllRounds(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("users and memberships", func(t *testing.T) {
		us, ok := s.(UserStore)
		require.True(t, ok)

		_, err := us.GetLocalUser(ctx, "amy@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		u := &models.LocalUser{Email: "amy@example.com", Name: "Amy", PasswordHash: "x", CreatedAt: time.Now()}
		require.NoError(t, us.CreateLocalUser(ctx, u))
		assert.Error(t, us.CreateLocalUser(ctx, u))

		got, err := us.GetLocalUser(ctx, "Amy@Example.com")
		require.NoError(t, err)
		assert.Equal(t, "Amy", got.Name)

		users, err := us.ListLocalUsers(ctx)
		require.NoError(t, err)
		assert.Len(t, users, 1)

		mem := &models.Membership{UID: "amy@example.com", Role: "commissioner", PlayerID: "p1", JoinedAt: time.Now()}
		require.NoError(t, us.SaveMembership(ctx, mem))

		gotMem, err := us.GetMembership(ctx, "amy@example.com")
		require.NoError(t, err)
		assert.Equal(t, "p1", gotMem.PlayerID)

		members, err := us.ListMemberships(ctx)
		require.NoError(t, err)
		assert.Len(t, members, 1)
	})
}

func TestMemoryStore(t *testing.T) {
	storeUnderTest(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	fs, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	storeUnderTest(t, fs)
}

func TestMemoryStoreCopiesOnRead(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, ms.SaveMatch(ctx, "w1_m0", sampleMatch()))

	got, err := ms.GetMatch(ctx, "w1_m0")
	require.NoError(t, err)
	got.Scores["p1"][0] = 99
	got.Status = models.StatusCommitted

	fresh, err := ms.GetMatch(ctx, "w1_m0")
	require.NoError(t, err)
	assert.Equal(t, 4, fresh.Scores["p1"][0])
	assert.Equal(t, models.StatusDraft, fresh.Status)
}

func TestMemoryStoreWatchMatches(t *testing.T) {
	ms := NewMemoryStore()
	ctx := context.Background()

	var snaps []map[string]models.Match
	stop, err := ms.WatchMatches(ctx, func(m map[string]models.Match) {
		snaps = append(snaps, m)
	})
	require.NoError(t, err)
	defer stop()

	// Initial snapshot arrives immediately.
	require.Len(t, snaps, 1)
	assert.Empty(t, snaps[0])

	require.NoError(t, ms.SaveMatch(ctx, "w1_m0", sampleMatch()))
	require.Len(t, snaps, 2)
	assert.Len(t, snaps[1], 1)
}

func TestFileStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	fs, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, fs.SaveConfig(ctx, &models.Config{LeagueName: "Persisted"}))
	require.NoError(t, fs.SaveMatch(ctx, "w1_m0", sampleMatch()))

	reopened, err := NewFileStore(dir)
	require.NoError(t, err)

	cfg, err := reopened.GetConfig(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Persisted", cfg.LeagueName)

	m, err := reopened.GetMatch(ctx, "w1_m0")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Week)
}
