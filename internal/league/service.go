// Package league orchestrates the approval state machine over the store:
// score entry, submit, approve, dispute, force-commit, and unlock, plus
// the round-history appends and HI/LO reassignment that follow a commit.
// All point math lives in internal/scoring; this package only sequences
// it against stored state.
package league

import (
	"context"
	"errors"
	"fmt"
	"time"

	"league-backend/internal/models"
	"league-backend/internal/scoring"
	"league-backend/internal/store"
)

var (
	// ErrNotActionable rejects a transition attempted from a status it
	// is not legal in, e.g. approving an already-committed match.
	ErrNotActionable = errors.New("match not actionable in current state")

	// ErrNotAuthorized rejects an actor the current status does not
	// allow, e.g. the submitting team approving its own scores.
	ErrNotAuthorized = errors.New("not authorized for this action")
)

// Actor identifies who is performing a transition.
type Actor struct {
	UID          string
	PlayerID     string
	Commissioner bool
}

// Notifier receives best-effort notifications about approval-flow events.
// Failures are logged by the caller and never block a transition.
type Notifier interface {
	ScoresSubmitted(m *models.Match, submittedByTeam string) error
	ScoresDisputed(m *models.Match, note string) error
}

type Service struct {
	store    store.Store
	notifier Notifier
	now      func() time.Time
}

func NewService(s store.Store) *Service {
	return &Service{store: s, now: time.Now}
}

// WithNotifier attaches an optional notifier for submit/dispute events.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// teamOf returns the ID of the roster team the actor's player belongs to,
// restricted to the two teams of the match. Empty when the actor is not
// on either roster.
func teamOf(cfg *models.Config, m *models.Match, playerID string) string {
	if playerID == "" {
		return ""
	}
	for _, teamID := range []string{m.Team1ID, m.Team2ID} {
		t := cfg.Team(teamID)
		if t == nil {
			continue
		}
		for _, p := range t.Players {
			if p.ID == playerID {
				return teamID
			}
		}
	}
	return ""
}

func validScores(scores map[string][]int) error {
	for pid, s := range scores {
		if len(s) > models.HolesPerNine {
			return fmt.Errorf("player %s: %d hole scores, expected at most %d", pid, len(s), models.HolesPerNine)
		}
		for _, v := range s {
			if v < 0 {
				return fmt.Errorf("player %s: negative hole score %d", pid, v)
			}
		}
	}
	return nil
}

// EnterScores merges hole scores into a match that is still editable
// (draft, disputed, or escalated). Any roster player of either team may
// enter scores; a commissioner may always edit.
func (s *Service) EnterScores(ctx context.Context, key string, actor Actor, scores map[string][]int) (*models.Match, error) {
	if err := validScores(scores); err != nil {
		return nil, err
	}
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	return s.store.UpdateMatch(ctx, key, func(m *models.Match) error {
		switch m.Status {
		case models.StatusDraft, models.StatusDisputed, models.StatusEscalated:
		default:
			return fmt.Errorf("edit scores in status %q: %w", m.Status, ErrNotActionable)
		}
		if !actor.Commissioner && teamOf(cfg, m, actor.PlayerID) == "" {
			return fmt.Errorf("player %s is not on either roster: %w", actor.PlayerID, ErrNotAuthorized)
		}
		if m.Scores == nil {
			m.Scores = make(map[string][]int)
		}
		for pid, sc := range scores {
			m.Scores[pid] = append([]int(nil), sc...)
		}
		return nil
	})
}

// Submit moves an editable match to pending, recording the submitting
// team. At least nine hole scores must be entered across the card.
func (s *Service) Submit(ctx context.Context, key string, actor Actor) (*models.Match, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	var submittedBy string
	m, err := s.store.UpdateMatch(ctx, key, func(m *models.Match) error {
		switch m.Status {
		case models.StatusDraft, models.StatusDisputed, models.StatusEscalated:
		default:
			return fmt.Errorf("submit from status %q: %w", m.Status, ErrNotActionable)
		}
		team := teamOf(cfg, m, actor.PlayerID)
		if team == "" {
			if !actor.Commissioner {
				return fmt.Errorf("player %s is not on either roster: %w", actor.PlayerID, ErrNotAuthorized)
			}
			team = m.Team1ID
		}
		filled := 0
		for _, sc := range m.Scores {
			for _, v := range sc {
				if v > 0 {
					filled++
				}
			}
		}
		if filled < models.HolesPerNine {
			return fmt.Errorf("at least %d hole scores required before submitting, have %d", models.HolesPerNine, filled)
		}
		m.Status = models.StatusPending
		m.SubmittedByTeam = team
		m.SubmittedBy = actor.UID
		m.SubmittedAt = s.now()
		submittedBy = team
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if nerr := s.notifier.ScoresSubmitted(m, submittedBy); nerr != nil {
			// Notification is best-effort; the transition already
			// happened.
			_ = nerr
		}
	}
	return m, nil
}

// Approve computes and stores the match result and locks the match. Only
// a member of the team opposing the submitter, or a commissioner, may
// approve.
func (s *Service) Approve(ctx context.Context, key string, actor Actor) (*models.Match, error) {
	return s.commit(ctx, key, actor, false, func(cfg *models.Config, m *models.Match) error {
		if m.Status != models.StatusPending {
			return fmt.Errorf("approve from status %q: %w", m.Status, ErrNotActionable)
		}
		if actor.Commissioner {
			return nil
		}
		team := teamOf(cfg, m, actor.PlayerID)
		if team == "" || team == m.SubmittedByTeam {
			return fmt.Errorf("approval requires the opposing team: %w", ErrNotAuthorized)
		}
		return nil
	})
}

// ForceApprove is the commissioner shortcut from pending, bypassing the
// opposing-team restriction.
func (s *Service) ForceApprove(ctx context.Context, key string, actor Actor) (*models.Match, error) {
	return s.commit(ctx, key, actor, false, func(_ *models.Config, m *models.Match) error {
		if !actor.Commissioner {
			return fmt.Errorf("force approve: %w", ErrNotAuthorized)
		}
		if m.Status != models.StatusPending {
			return fmt.Errorf("force approve from status %q: %w", m.Status, ErrNotActionable)
		}
		return nil
	})
}

// ForceCommit resolves an escalated match by commissioner override.
func (s *Service) ForceCommit(ctx context.Context, key string, actor Actor) (*models.Match, error) {
	return s.commit(ctx, key, actor, true, func(_ *models.Config, m *models.Match) error {
		if !actor.Commissioner {
			return fmt.Errorf("force commit: %w", ErrNotAuthorized)
		}
		if m.Status != models.StatusEscalated {
			return fmt.Errorf("force commit from status %q: %w", m.Status, ErrNotActionable)
		}
		return nil
	})
}

// commit is the shared committed-transition path: gate, compute result,
// store, then append rounds and refresh HI/LO flags.
func (s *Service) commit(ctx context.Context, key string, actor Actor, forced bool, gate func(*models.Config, *models.Match) error) (*models.Match, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	allRounds, err := s.store.ListAllRounds(ctx)
	if err != nil {
		return nil, err
	}

	m, err := s.store.UpdateMatch(ctx, key, func(m *models.Match) error {
		if err := gate(cfg, m); err != nil {
			return err
		}
		result, err := scoring.ComputeResult(m, cfg, allRounds)
		if err != nil {
			return err
		}
		m.Status = models.StatusCommitted
		m.Result = result
		m.ApprovedBy = actor.UID
		m.ApprovedAt = s.now()
		m.ForceCommitted = forced
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.appendRounds(ctx, key, m); err != nil {
		return nil, fmt.Errorf("recording rounds for match %s: %w", key, err)
	}
	if err := s.ReassignHiLo(ctx); err != nil {
		return nil, fmt.Errorf("reassigning HI/LO after match %s: %w", key, err)
	}
	return m, nil
}

// Dispute attaches a note and sends the match back: a first dispute moves
// pending to disputed, a second escalates. Escalated matches accumulate
// notes without changing status.
func (s *Service) Dispute(ctx context.Context, key string, actor Actor, note string) (*models.Match, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	m, err := s.store.UpdateMatch(ctx, key, func(m *models.Match) error {
		switch m.Status {
		case models.StatusPending, models.StatusDisputed, models.StatusEscalated:
		default:
			return fmt.Errorf("dispute from status %q: %w", m.Status, ErrNotActionable)
		}
		if !actor.Commissioner {
			team := teamOf(cfg, m, actor.PlayerID)
			if team == "" || team == m.SubmittedByTeam {
				return fmt.Errorf("dispute requires the opposing team: %w", ErrNotAuthorized)
			}
		}
		m.DisputeHistory = append(m.DisputeHistory, models.DisputeEntry{
			Note: note,
			By:   actor.UID,
			At:   s.now(),
		})
		if m.Status == models.StatusPending {
			m.Status = models.StatusDisputed
		} else {
			m.Status = models.StatusEscalated
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if nerr := s.notifier.ScoresDisputed(m, note); nerr != nil {
			_ = nerr
		}
	}
	return m, nil
}

// Unlock returns a committed match to draft for re-entry. The stored
// result is left in place until a new commit supersedes it.
func (s *Service) Unlock(ctx context.Context, key string, actor Actor) (*models.Match, error) {
	if !actor.Commissioner {
		return nil, fmt.Errorf("unlock: %w", ErrNotAuthorized)
	}
	return s.store.UpdateMatch(ctx, key, func(m *models.Match) error {
		if m.Status != models.StatusCommitted {
			return fmt.Errorf("unlock from status %q: %w", m.Status, ErrNotActionable)
		}
		m.Status = models.StatusDraft
		m.UnlockedBy = actor.UID
		m.UnlockedAt = s.now()
		return nil
	})
}

// appendRounds writes each scoring player's gross total into their round
// history. Entries are keyed by match so a re-commit after an unlock
// replaces the earlier entry instead of duplicating it.
func (s *Service) appendRounds(ctx context.Context, key string, m *models.Match) error {
	date := m.Date
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	nine := m.Nine
	if nine == "" {
		nine = models.SideFront
	}

	for pid, holeScores := range m.Scores {
		gross := 0
		for _, v := range holeScores {
			gross += v
		}
		if gross <= 0 {
			continue
		}
		existing, err := s.store.GetRounds(ctx, pid)
		if err != nil {
			return err
		}
		kept := make([]models.Round, 0, len(existing)+1)
		for _, r := range existing {
			if r.MatchKey != key {
				kept = append(kept, r)
			}
		}
		kept = append(kept, models.Round{
			Date:       date,
			GrossScore: gross,
			Nine:       nine,
			MatchKey:   key,
			Source:     "match",
		})
		if err := s.store.SaveRounds(ctx, pid, kept); err != nil {
			return err
		}
	}
	return nil
}

// ReassignHiLo recomputes every 2-player team's HI/LO flags from current
// handicaps, so the higher-handicap partner is always HI. Saves the
// config only when a flag actually changed.
func (s *Service) ReassignHiLo(ctx context.Context) error {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return err
	}
	allRounds, err := s.store.ListAllRounds(ctx)
	if err != nil {
		return err
	}

	changed := false
	for ti := range cfg.Teams {
		team := &cfg.Teams[ti]
		if len(team.Players) != 2 {
			continue
		}
		p0, p1 := &team.Players[0], &team.Players[1]
		h0 := scoring.PlayerHandicap(p0, allRounds[p0.ID], cfg)
		h1 := scoring.PlayerHandicap(p1, allRounds[p1.ID], cfg)
		hi, lo := p0, p1
		if h1 > h0 {
			hi, lo = p1, p0
		}
		if hi.HiLo != "HI" || lo.HiLo != "LO" {
			hi.HiLo, lo.HiLo = "HI", "LO"
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.store.SaveConfig(ctx, cfg)
}

// loadConfig reads and normalizes the league config (legacy format.*
// fields are folded in here, once, per load).
func (s *Service) loadConfig(ctx context.Context) (*models.Config, error) {
	cfg, err := s.store.GetConfig(ctx)
	if err != nil {
		return nil, err
	}
	cfg.Normalize()
	return cfg, nil
}

// Snapshot bundles everything the derived views need. Standings, stats,
// skins, and the bracket are all pure functions of it.
type Snapshot struct {
	Config  *models.Config
	Matches map[string]models.Match
	Rounds  map[string][]models.Round
}

// LoadSnapshot reads config, matches, and round histories in one shot.
func (s *Service) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	cfg, err := s.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.store.ListMatches(ctx)
	if err != nil {
		return nil, err
	}
	rounds, err := s.store.ListAllRounds(ctx)
	if err != nil {
		return nil, err
	}
	return &Snapshot{Config: cfg, Matches: matches, Rounds: rounds}, nil
}
