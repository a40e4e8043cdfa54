package models

import (
	"fmt"
	"time"
)

type Side string

const (
	SideFront Side = "front"
	SideBack  Side = "back"
)

type MatchStatus string

const (
	StatusDraft     MatchStatus = "draft"
	StatusPending   MatchStatus = "pending"
	StatusCommitted MatchStatus = "committed"
	StatusDisputed  MatchStatus = "disputed"
	StatusEscalated MatchStatus = "escalated"
)

type AbsentRule string

const (
	AbsentBlindAvg      AbsentRule = "blind_avg"
	AbsentDuplicatePrev AbsentRule = "duplicate_prev"
	AbsentWorstScore    AbsentRule = "worst_score"
	AbsentFixedScore    AbsentRule = "fixed_score"
	AbsentLastScore     AbsentRule = "last_score"
	AbsentVsPar         AbsentRule = "vs_par"
	AbsentForfeit       AbsentRule = "forfeit"
	AbsentHalfPts       AbsentRule = "half_pts"
	AbsentPlaysBoth     AbsentRule = "plays_both"
)

const HolesPerNine = 9

// MatchKey is the store key for the i-th matchup of a week, zero-based
// within the week: w3_m0, w3_m1, ...
func MatchKey(week, index int) string {
	return fmt.Sprintf("w%d_m%d", week, index)
}

// HoleDef describes one hole of a nine. StrokeIndex ranks difficulty,
// 1 = hardest; the nine's stroke indexes are assumed to be a permutation
// of 1..9.
type HoleDef struct {
	Hole        int `json:"hole" yaml:"hole"`
	Par         int `json:"par" yaml:"par"`
	StrokeIndex int `json:"hdcp" yaml:"hdcp"`
	Yards       int `json:"yards" yaml:"yards"`
}

// Scorecard holds the two nine-hole sides of the league's course.
type Scorecard struct {
	Front []HoleDef `json:"front" yaml:"front"`
	Back  []HoleDef `json:"back" yaml:"back"`
}

type Course struct {
	Name      string    `json:"name,omitempty" yaml:"name"`
	Scorecard Scorecard `json:"scorecard" yaml:"scorecard"`
	Slope     float64   `json:"slope,omitempty" yaml:"slope"`
	Rating    float64   `json:"rating,omitempty" yaml:"rating"`
}

// DefaultHoles returns a flat par-4 nine used when a league has no
// scorecard configured.
func DefaultHoles(nine Side) []HoleDef {
	start := 1
	if nine == SideBack {
		start = 10
	}
	holes := make([]HoleDef, HolesPerNine)
	for i := range holes {
		holes[i] = HoleDef{Hole: start + i, Par: 4, StrokeIndex: i + 1, Yards: 350}
	}
	return holes
}

// Holes returns the configured nine for a side, falling back to the
// default layout when the scorecard is missing or incomplete.
func (c *Course) Holes(nine Side) []HoleDef {
	var holes []HoleDef
	if c != nil {
		if nine == SideBack {
			holes = c.Scorecard.Back
		} else {
			holes = c.Scorecard.Front
		}
	}
	if len(holes) != HolesPerNine {
		return DefaultHoles(nine)
	}
	return holes
}

// PointValues is the league's point schedule. Zero values are legal;
// use Config.Points for the defaulted view.
type PointValues struct {
	Hole    float64 `json:"hole" yaml:"hole"`
	LowNet  float64 `json:"lowNet" yaml:"lowNet"`
	Birdie  float64 `json:"birdie" yaml:"birdie"`
	Eagle   float64 `json:"eagle" yaml:"eagle"`
	TeamNet float64 `json:"teamNet" yaml:"teamNet"`
}

// HandicapPolicy selects and parameterizes the handicap formula.
// System is one of custom, whs, manual, scratch.
type HandicapPolicy struct {
	System string  `json:"system" yaml:"system"`
	Rounds int     `json:"rounds" yaml:"rounds"`
	Drop   string  `json:"drop" yaml:"drop"` // none, low, high, both
	Factor float64 `json:"factor" yaml:"factor"`
	Max    float64 `json:"max" yaml:"max"`
}

type Player struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	HiLo    string  `json:"hilo,omitempty" yaml:"hilo"` // "HI", "LO", or empty
	SeedHcp float64 `json:"seedHcp,omitempty" yaml:"seedHcp"`
}

type Team struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Players []Player `json:"players" yaml:"players"`
}

type ScheduleWeek struct {
	Week     int         `json:"week" yaml:"week"`
	Date     string      `json:"date" yaml:"date"` // YYYY-MM-DD
	Nine     Side        `json:"nine" yaml:"nine"`
	Matchups [][2]string `json:"matchups" yaml:"matchups"` // pairs of team IDs
}

// FormatConfig is the legacy nested shape older league documents used.
// Normalize folds it into the top-level fields.
type FormatConfig struct {
	PointValues *PointValues `json:"pointValues,omitempty" yaml:"pointValues"`
	AbsentRule  AbsentRule   `json:"absentRule,omitempty" yaml:"absentRule"`
	SkinsNet    bool         `json:"skinsNet,omitempty" yaml:"skinsNet"`
	SkinsBuyIn  float64      `json:"skinsBuyIn,omitempty" yaml:"skinsBuyIn"`
}

// Config is the league configuration document.
type Config struct {
	LeagueName string `json:"leagueName" yaml:"leagueName"`
	Course     Course `json:"course" yaml:"course"`

	PointValues         *PointValues `json:"pointValues,omitempty" yaml:"pointValues"`
	AbsentRule          AbsentRule   `json:"absentRule,omitempty" yaml:"absentRule"`
	AbsentFixedScore    int          `json:"absentFixedScore,omitempty" yaml:"absentFixedScore"`
	AbsentWorstLookback int          `json:"absentWorstLookback,omitempty" yaml:"absentWorstLookback"`
	SkinsNet            bool         `json:"skinsNet,omitempty" yaml:"skinsNet"`
	SkinsBuyIn          float64      `json:"skinsBuyIn,omitempty" yaml:"skinsBuyIn"`

	Handicap  HandicapPolicy     `json:"handicap" yaml:"handicap"`
	ManualAdj map[string]float64 `json:"manualAdj,omitempty" yaml:"manualAdj"`

	Teams    []Team         `json:"teams" yaml:"teams"`
	Schedule []ScheduleWeek `json:"schedule" yaml:"schedule"`

	PlayoffWeeks   int          `json:"playoffWeeks,omitempty" yaml:"playoffWeeks"`
	PlayoffWeekMap map[int]bool `json:"playoffWeekMap,omitempty" yaml:"playoffWeekMap"`
	CancelledWeeks map[int]bool `json:"cancelledWeeks,omitempty" yaml:"cancelledWeeks"`

	// Format is the legacy nested config path. It is read once by
	// Normalize and should not be consulted afterwards.
	Format *FormatConfig `json:"format,omitempty" yaml:"format"`
}

// Normalize merges the legacy format.* shape into the canonical top-level
// fields, top-level values taking precedence. Call once after loading a
// league document; all read sites then use the top-level accessors.
func (c *Config) Normalize() {
	if c.Format != nil {
		if c.PointValues == nil && c.Format.PointValues != nil {
			pv := *c.Format.PointValues
			c.PointValues = &pv
		}
		if c.AbsentRule == "" {
			c.AbsentRule = c.Format.AbsentRule
		}
		if !c.SkinsNet {
			c.SkinsNet = c.Format.SkinsNet
		}
		if c.SkinsBuyIn == 0 {
			c.SkinsBuyIn = c.Format.SkinsBuyIn
		}
		c.Format = nil
	}
	if c.AbsentRule == "" {
		c.AbsentRule = AbsentBlindAvg
	}
	if c.Handicap.Rounds <= 0 {
		c.Handicap.Rounds = 5
	}
	if c.Handicap.Factor <= 0 || c.Handicap.Factor > 1 {
		c.Handicap.Factor = 0.9
	}
	if c.Handicap.Max <= 0 {
		c.Handicap.Max = 18
	}
	if c.Handicap.Drop == "" {
		c.Handicap.Drop = "none"
	}
	if c.Handicap.System == "" {
		c.Handicap.System = "custom"
	}
	if c.AbsentWorstLookback <= 0 {
		c.AbsentWorstLookback = 4
	}
}

// Points returns the point schedule with documented defaults filled in
// for unset values (hole and lowNet default to 1, bonuses to 0).
func (c *Config) Points() PointValues {
	if c == nil || c.PointValues == nil {
		return PointValues{Hole: 1, LowNet: 1}
	}
	return *c.PointValues
}

// AbsenceRule returns the configured absence policy, defaulting to
// blind_avg for unset or unknown values.
func (c *Config) AbsenceRule() AbsentRule {
	if c == nil || c.AbsentRule == "" {
		return AbsentBlindAvg
	}
	switch c.AbsentRule {
	case AbsentBlindAvg, AbsentDuplicatePrev, AbsentWorstScore, AbsentFixedScore,
		AbsentLastScore, AbsentVsPar, AbsentForfeit, AbsentHalfPts, AbsentPlaysBoth:
		return c.AbsentRule
	}
	return AbsentBlindAvg
}

// Par returns the total par for a nine.
func (c *Config) Par(nine Side) int {
	total := 0
	for _, h := range c.Course.Holes(nine) {
		total += h.Par
	}
	return total
}

// Team returns the team with the given ID, or nil.
func (c *Config) Team(id string) *Team {
	for i := range c.Teams {
		if c.Teams[i].ID == id {
			return &c.Teams[i]
		}
	}
	return nil
}

// PlayerName resolves a player ID to a display name, falling back to the
// ID itself.
func (c *Config) PlayerName(playerID string) string {
	for ti := range c.Teams {
		for pi := range c.Teams[ti].Players {
			if c.Teams[ti].Players[pi].ID == playerID {
				return c.Teams[ti].Players[pi].Name
			}
		}
	}
	return playerID
}

// IsPlayoffWeek reports whether a week is a playoff week: explicit map
// entries win, otherwise the last playoffWeeks weeks of a 10+ week
// schedule are playoffs.
func (c *Config) IsPlayoffWeek(week int) bool {
	if v, ok := c.PlayoffWeekMap[week]; ok {
		return v
	}
	if len(c.Schedule) < 10 {
		return false
	}
	pw := c.PlayoffWeeks
	if pw <= 0 {
		pw = 3
	}
	return week >= len(c.Schedule)-pw+1
}

// HiLoPair returns a team's LO and HI players, falling back to roster
// order when the flags are unset.
func (t *Team) HiLoPair() (lo, hi *Player) {
	for i := range t.Players {
		switch t.Players[i].HiLo {
		case "LO":
			lo = &t.Players[i]
		case "HI":
			hi = &t.Players[i]
		}
	}
	if lo == nil && len(t.Players) > 0 {
		lo = &t.Players[0]
	}
	if hi == nil && len(t.Players) > 1 {
		hi = &t.Players[1]
	}
	return lo, hi
}

// Round is one gross score in a player's history. Rounds are appended
// when a match commits or history is imported, never mutated.
type Round struct {
	Date       string `json:"date"` // YYYY-MM-DD
	GrossScore int    `json:"grossScore"`
	Nine       Side   `json:"nine,omitempty"`
	MatchKey   string `json:"matchKey,omitempty"`
	Source     string `json:"source,omitempty"` // match, history, seed
}

type DisputeEntry struct {
	Note string    `json:"note"`
	By   string    `json:"by"`
	At   time.Time `json:"at"`
}

// MatchResult is the committed outcome of a team matchup: HI and LO
// sub-match points plus the optional team-net bonus.
type MatchResult struct {
	Team1ID    string  `json:"team1Id"`
	Team2ID    string  `json:"team2Id"`
	Pts1       float64 `json:"pts1"`
	Pts2       float64 `json:"pts2"`
	HiPts1     float64 `json:"hiPts1"`
	HiPts2     float64 `json:"hiPts2"`
	LoPts1     float64 `json:"loPts1"`
	LoPts2     float64 `json:"loPts2"`
	TeamBonus1 float64 `json:"teamBonus1"`
	TeamBonus2 float64 `json:"teamBonus2"`
}

// Match is the central mutable record. Keys in the store take the form
// w{week}_m{index}. Scores maps player ID to 9 gross hole scores
// (0 = not entered).
type Match struct {
	Week      int    `json:"week"`
	Date      string `json:"date,omitempty"`
	Time      string `json:"time,omitempty"`
	Nine      Side   `json:"nine"`
	Team1ID   string `json:"team1Id"`
	Team2ID   string `json:"team2Id"`
	Team1Name string `json:"team1Name,omitempty"`
	Team2Name string `json:"team2Name,omitempty"`

	Status MatchStatus      `json:"status"`
	Scores map[string][]int `json:"scores,omitempty"`
	Result *MatchResult     `json:"result,omitempty"`

	SubmittedByTeam string         `json:"submittedByTeam,omitempty"`
	SubmittedBy     string         `json:"submittedBy,omitempty"`
	SubmittedAt     time.Time      `json:"submittedAt,omitzero"`
	ApprovedBy      string         `json:"approvedBy,omitempty"`
	ApprovedAt      time.Time      `json:"approvedAt,omitzero"`
	DisputeHistory  []DisputeEntry `json:"disputeHistory,omitempty"`
	ForceCommitted  bool           `json:"forceCommitted,omitempty"`
	UnlockedBy      string         `json:"unlockedBy,omitempty"`
	UnlockedAt      time.Time      `json:"unlockedAt,omitzero"`
}

// HasScores reports whether a player entered at least one positive hole
// score on this match.
func (m *Match) HasScores(playerID string) bool {
	for _, s := range m.Scores[playerID] {
		if s > 0 {
			return true
		}
	}
	return false
}

// Standing is a derived team record, recomputed on demand from committed
// matches and never persisted.
type Standing struct {
	TeamID   string  `json:"teamId"`
	TeamName string  `json:"teamName"`
	Pts      float64 `json:"pts"`
	Wins     int     `json:"wins"`
	Losses   int     `json:"losses"`
	Ties     int     `json:"ties"`
	Played   int     `json:"played"`
}

type Membership struct {
	UID      string    `json:"uid"`
	Role     string    `json:"role"` // member, commissioner
	PlayerID string    `json:"playerId,omitempty"`
	JoinedAt time.Time `json:"joinedAt"`
}

type LocalUser struct {
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
}
