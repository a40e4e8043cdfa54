package league

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"league-backend/internal/models"
	"league-backend/internal/store"
)

var (
	alice = Actor{UID: "alice@example.com", PlayerID: "a-hi"}
	bob   = Actor{UID: "bob@example.com", PlayerID: "b-hi"}
	comm  = Actor{UID: "comm@example.com", Commissioner: true}
	rando = Actor{UID: "rando@example.com", PlayerID: "nobody"}
)

func nineOf(v int) []int {
	out := make([]int, 9)
	for i := range out {
		out[i] = v
	}
	return out
}

func fullScores() map[string][]int {
	return map[string][]int{
		"a-hi": nineOf(4),
		"a-lo": nineOf(5),
		"b-hi": nineOf(5),
		"b-lo": nineOf(5),
	}
}

func newTestService(t *testing.T) (*Service, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	ctx := context.Background()

	cfg := &models.Config{
		LeagueName:  "Test League",
		PointValues: &models.PointValues{Hole: 1, LowNet: 1},
		Handicap:    models.HandicapPolicy{System: "scratch", Rounds: 5, Factor: 0.9, Max: 18},
		Teams: []models.Team{
			{
				ID: "t1", Name: "Slicers",
				Players: []models.Player{
					{ID: "a-hi", Name: "Al", HiLo: "HI"},
					{ID: "a-lo", Name: "Amy", HiLo: "LO"},
				},
			},
			{
				ID: "t2", Name: "Hookers",
				Players: []models.Player{
					{ID: "b-hi", Name: "Bo", HiLo: "HI"},
					{ID: "b-lo", Name: "Bea", HiLo: "LO"},
				},
			},
		},
	}
	require.NoError(t, ms.SaveConfig(ctx, cfg))
	require.NoError(t, ms.SaveMatch(ctx, "w1_m0", &models.Match{
		Week: 1, Date: "2026-06-03", Nine: models.SideFront,
		Team1ID: "t1", Team2ID: "t2",
		Team1Name: "Slicers", Team2Name: "Hookers",
		Status: models.StatusDraft,
	}))

	return NewService(ms), ms
}

func TestEnterScoresAuthorization(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnterScores(ctx, "w1_m0", rando, fullScores())
	assert.ErrorIs(t, err, ErrNotAuthorized)

	m, err := svc.EnterScores(ctx, "w1_m0", alice, fullScores())
	require.NoError(t, err)
	assert.Equal(t, nineOf(4), m.Scores["a-hi"])
}

func TestEnterScoresValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnterScores(ctx, "w1_m0", alice, map[string][]int{"a-hi": make([]int, 10)})
	assert.Error(t, err)

	_, err = svc.EnterScores(ctx, "w1_m0", alice, map[string][]int{"a-hi": {4, -1}})
	assert.Error(t, err)
}

func TestSubmitRequiresScores(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "w1_m0", alice)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotActionable)
}

func TestSubmitAndApprove(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnterScores(ctx, "w1_m0", alice, fullScores())
	require.NoError(t, err)

	m, err := svc.Submit(ctx, "w1_m0", alice)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, m.Status)
	assert.Equal(t, "t1", m.SubmittedByTeam)
	assert.False(t, m.SubmittedAt.IsZero())

	// Editing locked scores is rejected.
	_, err = svc.EnterScores(ctx, "w1_m0", alice, fullScores())
	assert.ErrorIs(t, err, ErrNotActionable)

	// Submitting twice is rejected.
	_, err = svc.Submit(ctx, "w1_m0", alice)
	assert.ErrorIs(t, err, ErrNotActionable)

	// The submitting team cannot approve its own card.
	_, err = svc.Approve(ctx, "w1_m0", alice)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	m, err = svc.Approve(ctx, "w1_m0", bob)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCommitted, m.Status)
	require.NotNil(t, m.Result)
	assert.Equal(t, 15.0, m.Result.Pts1)
	assert.Equal(t, 5.0, m.Result.Pts2)
	assert.False(t, m.ForceCommitted)

	// Approving a committed match is rejected.
	_, err = svc.Approve(ctx, "w1_m0", bob)
	assert.ErrorIs(t, err, ErrNotActionable)

	// Commit appended each player's gross to their round history.
	rounds, err := ms.GetRounds(ctx, "a-hi")
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, 36, rounds[0].GrossScore)
	assert.Equal(t, "w1_m0", rounds[0].MatchKey)
	assert.Equal(t, "2026-06-03", rounds[0].Date)
}

func TestUnlockAndRecommitReplacesRounds(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnterScores(ctx, "w1_m0", alice, fullScores())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "w1_m0", alice)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "w1_m0", bob)
	require.NoError(t, err)

	// Only a commissioner can unlock.
	_, err = svc.Unlock(ctx, "w1_m0", alice)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	m, err := svc.Unlock(ctx, "w1_m0", comm)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDraft, m.Status)

	// Correct a score and run the full cycle again.
	scores := fullScores()
	scores["a-hi"] = nineOf(5)
	_, err = svc.EnterScores(ctx, "w1_m0", alice, scores)
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "w1_m0", alice)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, "w1_m0", bob)
	require.NoError(t, err)

	// The re-commit replaced the earlier entry instead of stacking a
	// second round from the same match.
	rounds, err := ms.GetRounds(ctx, "a-hi")
	require.NoError(t, err)
	require.Len(t, rounds, 1)
	assert.Equal(t, 45, rounds[0].GrossScore)
}

func TestDisputeEscalation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// Disputing a draft is not actionable.
	_, err := svc.Dispute(ctx, "w1_m0", bob, "nothing to dispute")
	assert.ErrorIs(t, err, ErrNotActionable)

	_, err = svc.EnterScores(ctx, "w1_m0", alice, fullScores())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "w1_m0", alice)
	require.NoError(t, err)

	// The submitting team cannot dispute its own submission.
	_, err = svc.Dispute(ctx, "w1_m0", alice, "wait, no")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	m, err := svc.Dispute(ctx, "w1_m0", bob, "hole 5 was a six")
	require.NoError(t, err)
	assert.Equal(t, models.StatusDisputed, m.Status)
	require.Len(t, m.DisputeHistory, 1)
	assert.Equal(t, "hole 5 was a six", m.DisputeHistory[0].Note)

	// A second dispute escalates; it never loops back to pending.
	m, err = svc.Dispute(ctx, "w1_m0", bob, "still wrong")
	require.NoError(t, err)
	assert.Equal(t, models.StatusEscalated, m.Status)
	assert.Len(t, m.DisputeHistory, 2)

	// Escalated matches collect further notes without changing status.
	m, err = svc.Dispute(ctx, "w1_m0", comm, "reviewing")
	require.NoError(t, err)
	assert.Equal(t, models.StatusEscalated, m.Status)
	assert.Len(t, m.DisputeHistory, 3)
}

func TestForceCommit(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.EnterScores(ctx, "w1_m0", alice, fullScores())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "w1_m0", alice)
	require.NoError(t, err)

	// Force commit only resolves escalated matches.
	_, err = svc.ForceCommit(ctx, "w1_m0", comm)
	assert.ErrorIs(t, err, ErrNotActionable)

	_, err = svc.Dispute(ctx, "w1_m0", bob, "disagree")
	require.NoError(t, err)
	_, err = svc.Dispute(ctx, "w1_m0", bob, "still disagree")
	require.NoError(t, err)

	_, err = svc.ForceCommit(ctx, "w1_m0", bob)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	m, err := svc.ForceCommit(ctx, "w1_m0", comm)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCommitted, m.Status)
	assert.True(t, m.ForceCommitted)
	require.NotNil(t, m.Result)
}

func TestForceApprove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ForceApprove(ctx, "w1_m0", comm)
	assert.ErrorIs(t, err, ErrNotActionable)

	_, err = svc.EnterScores(ctx, "w1_m0", alice, fullScores())
	require.NoError(t, err)
	_, err = svc.Submit(ctx, "w1_m0", alice)
	require.NoError(t, err)

	_, err = svc.ForceApprove(ctx, "w1_m0", bob)
	assert.ErrorIs(t, err, ErrNotAuthorized)

	m, err := svc.ForceApprove(ctx, "w1_m0", comm)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCommitted, m.Status)
	assert.False(t, m.ForceCommitted)
}

func TestApprovalDeterminism(t *testing.T) {
	run := func() *models.MatchResult {
		svc, _ := newTestService(t)
		ctx := context.Background()
		_, err := svc.EnterScores(ctx, "w1_m0", alice, fullScores())
		require.NoError(t, err)
		_, err = svc.Submit(ctx, "w1_m0", alice)
		require.NoError(t, err)
		m, err := svc.Approve(ctx, "w1_m0", bob)
		require.NoError(t, err)
		return m.Result
	}
	assert.Equal(t, run(), run())
}

func TestReassignHiLo(t *testing.T) {
	svc, ms := newTestService(t)
	ctx := context.Background()

	// Switch to formula handicaps and give Amy the higher history.
	cfg, err := ms.GetConfig(ctx)
	require.NoError(t, err)
	cfg.Handicap.System = "custom"
	require.NoError(t, ms.SaveConfig(ctx, cfg))

	require.NoError(t, ms.SaveRounds(ctx, "a-hi", []models.Round{{Date: "2026-06-01", GrossScore: 40}}))
	require.NoError(t, ms.SaveRounds(ctx, "a-lo", []models.Round{{Date: "2026-06-01", GrossScore: 52}}))

	require.NoError(t, svc.ReassignHiLo(ctx))

	cfg, err = ms.GetConfig(ctx)
	require.NoError(t, err)
	team := cfg.Team("t1")
	require.NotNil(t, team)
	for _, p := range team.Players {
		switch p.ID {
		case "a-hi":
			assert.Equal(t, "LO", p.HiLo)
		case "a-lo":
			assert.Equal(t, "HI", p.HiLo)
		}
	}
}
