package league

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"league-backend/internal/models"
	"league-backend/internal/scoring"
	"league-backend/internal/store"
)

// Seed is the YAML league definition used to bootstrap a season: course,
// scoring settings, rosters with optional gross-score history, and the
// schedule parameters. Player and team IDs are assigned on apply.
type Seed struct {
	LeagueName string               `yaml:"leagueName"`
	Course     models.Course        `yaml:"course"`
	Points     *models.PointValues  `yaml:"pointValues"`
	Handicap   models.HandicapPolicy `yaml:"handicap"`
	AbsentRule models.AbsentRule    `yaml:"absentRule"`
	SkinsNet   bool                 `yaml:"skinsNet"`
	SkinsBuyIn float64              `yaml:"skinsBuyIn"`

	Teams []SeedTeam `yaml:"teams"`

	Weeks        int    `yaml:"weeks"`
	StartDate    string `yaml:"startDate"` // YYYY-MM-DD, first league night
	PlayoffWeeks int    `yaml:"playoffWeeks"`
}

type SeedTeam struct {
	Name    string       `yaml:"name"`
	Players []SeedPlayer `yaml:"players"`
}

type SeedPlayer struct {
	Name    string  `yaml:"name"`
	SeedHcp float64 `yaml:"seedHcp"`
	// History is raw nine-hole gross scores, oldest first. When present
	// and seedHcp is zero, a starting handicap is derived from the best
	// five of them.
	History []int `yaml:"history"`
}

// LoadSeed parses a league seed file.
func LoadSeed(path string) (*Seed, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed Seed
	if err := yaml.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("seed file %s: %w", path, err)
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	if s.LeagueName == "" {
		return fmt.Errorf("leagueName is required")
	}
	if len(s.Teams) < 2 {
		return fmt.Errorf("at least 2 teams required, have %d", len(s.Teams))
	}
	for i, t := range s.Teams {
		if t.Name == "" {
			return fmt.Errorf("team %d: name is required", i+1)
		}
		if len(t.Players) == 0 {
			return fmt.Errorf("team %q: at least one player required", t.Name)
		}
	}
	if s.Weeks <= 0 {
		return fmt.Errorf("weeks must be positive, got %d", s.Weeks)
	}
	if s.StartDate != "" {
		if _, err := time.Parse("2006-01-02", s.StartDate); err != nil {
			return fmt.Errorf("startDate: %w", err)
		}
	}
	return nil
}

// ApplySeed bootstraps a league from a seed definition: builds the
// config with assigned IDs and generated schedule, creates the season's
// draft matches, and records any player history as seed rounds. It
// refuses to run against a store that already has a config.
func (s *Service) ApplySeed(ctx context.Context, seed *Seed) (*models.Config, error) {
	existing, err := s.store.GetConfig(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
	case err != nil:
		return nil, err
	case existing.LeagueName != "":
		return nil, fmt.Errorf("league %q already configured, refusing to overwrite", existing.LeagueName)
	}

	cfg := &models.Config{
		LeagueName:   seed.LeagueName,
		Course:       seed.Course,
		PointValues:  seed.Points,
		AbsentRule:   seed.AbsentRule,
		SkinsNet:     seed.SkinsNet,
		SkinsBuyIn:   seed.SkinsBuyIn,
		Handicap:     seed.Handicap,
		PlayoffWeeks: seed.PlayoffWeeks,
	}
	cfg.Normalize()

	type seededHistory struct {
		playerID string
		scores   []int
	}
	var histories []seededHistory

	for _, st := range seed.Teams {
		team := models.Team{ID: uuid.NewString(), Name: st.Name}
		for pi, sp := range st.Players {
			p := models.Player{
				ID:      uuid.NewString(),
				Name:    sp.Name,
				SeedHcp: sp.SeedHcp,
			}
			if p.SeedHcp == 0 && len(sp.History) > 0 {
				p.SeedHcp = scoring.SeedHandicap(sp.History, cfg.Handicap.Factor)
			}
			if len(st.Players) == 2 {
				// Placeholder until real rounds exist; ReassignHiLo
				// corrects this after the first commits.
				if pi == 0 {
					p.HiLo = "HI"
				} else {
					p.HiLo = "LO"
				}
			}
			if len(sp.History) > 0 {
				histories = append(histories, seededHistory{playerID: p.ID, scores: sp.History})
			}
			team.Players = append(team.Players, p)
		}
		cfg.Teams = append(cfg.Teams, team)
	}

	start := s.now()
	if seed.StartDate != "" {
		start, _ = time.Parse("2006-01-02", seed.StartDate)
	}
	teamIDs := make([]string, len(cfg.Teams))
	for i, t := range cfg.Teams {
		teamIDs[i] = t.ID
	}
	cfg.Schedule = GenerateSchedule(teamIDs, seed.Weeks, start)

	// Playoff weeks follow the regular season with no pre-set matchups;
	// pairings come from the bracket once seeding settles.
	if seed.PlayoffWeeks > 0 {
		cfg.PlayoffWeekMap = make(map[int]bool)
		for i := 0; i < seed.PlayoffWeeks; i++ {
			week := seed.Weeks + 1 + i
			nine := models.SideFront
			if (week-1)%2 == 1 {
				nine = models.SideBack
			}
			cfg.Schedule = append(cfg.Schedule, models.ScheduleWeek{
				Week: week,
				Date: start.AddDate(0, 0, 7*(week-1)).Format("2006-01-02"),
				Nine: nine,
			})
			cfg.PlayoffWeekMap[week] = true
		}
	}

	if err := s.store.SaveConfig(ctx, cfg); err != nil {
		return nil, fmt.Errorf("saving seeded config: %w", err)
	}

	for key, m := range BuildSeasonMatches(cfg) {
		if err := s.store.SaveMatch(ctx, key, &m); err != nil {
			return nil, fmt.Errorf("creating match %s: %w", key, err)
		}
	}

	for _, h := range histories {
		rounds := make([]models.Round, 0, len(h.scores))
		// Backdate seed rounds weekly before the season start so the
		// most-recent window picks them up in order.
		for i, gross := range h.scores {
			d := start.AddDate(0, 0, -7*(len(h.scores)-i))
			rounds = append(rounds, models.Round{
				Date:       d.Format("2006-01-02"),
				GrossScore: gross,
				Nine:       models.SideFront,
				Source:     "seed",
			})
		}
		if err := s.store.SaveRounds(ctx, h.playerID, rounds); err != nil {
			return nil, fmt.Errorf("seeding rounds for player %s: %w", h.playerID, err)
		}
	}

	return cfg, nil
}
