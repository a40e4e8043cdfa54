package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strconv"

	"league-backend/internal/auth"
	"league-backend/internal/league"
	"league-backend/internal/models"
	"league-backend/internal/scoring"
	"league-backend/internal/store"
)

type Handler struct {
	store    store.Store
	svc      *league.Service
	accounts *auth.Accounts
}

func New(s store.Store, svc *league.Service, accounts *auth.Accounts) *Handler {
	return &Handler{store: s, svc: svc, accounts: accounts}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
	mux.HandleFunc("GET /api/me", h.GetMe)

	mux.HandleFunc("GET /api/config", h.GetConfig)
	mux.HandleFunc("PUT /api/config", auth.RequireCommissioner(h.UpdateConfig))
	mux.HandleFunc("POST /api/config/link-player", auth.RequireCommissioner(h.LinkPlayer))

	mux.HandleFunc("GET /api/matches", h.ListMatches)
	mux.HandleFunc("GET /api/matches/{key}", h.GetMatch)
	mux.HandleFunc("GET /api/matches/{key}/preview", h.PreviewMatch)
	mux.HandleFunc("PUT /api/matches/{key}/scores", h.EnterScores)
	mux.HandleFunc("POST /api/matches/{key}/submit", h.SubmitMatch)
	mux.HandleFunc("POST /api/matches/{key}/approve", h.ApproveMatch)
	mux.HandleFunc("POST /api/matches/{key}/dispute", h.DisputeMatch)
	mux.HandleFunc("POST /api/matches/{key}/force-approve", auth.RequireCommissioner(h.ForceApproveMatch))
	mux.HandleFunc("POST /api/matches/{key}/force-commit", auth.RequireCommissioner(h.ForceCommitMatch))
	mux.HandleFunc("POST /api/matches/{key}/unlock", auth.RequireCommissioner(h.UnlockMatch))

	mux.HandleFunc("GET /api/standings", h.GetStandings)
	mux.HandleFunc("GET /api/stats", h.GetStats)
	mux.HandleFunc("GET /api/handicaps", h.GetHandicaps)
	mux.HandleFunc("GET /api/skins", h.GetSeasonSkins)
	mux.HandleFunc("GET /api/skins/{week}", h.GetWeekSkins)
	mux.HandleFunc("GET /api/bracket", h.GetBracket)
	mux.HandleFunc("GET /api/players/{id}/rounds", h.GetPlayerRounds)
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.accounts.Register(r.Context(), req.Email, req.Name, req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string           `json:"token"`
	User  *auth.UserClaims `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	token, claims, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: claims})
}

func (h *Handler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := auth.GetUser(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.store.GetConfig(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	cfg.Normalize()
	writeJSON(w, http.StatusOK, cfg)
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg.Normalize()
	if err := h.store.SaveConfig(r.Context(), &cfg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, &cfg)
}

type LinkPlayerRequest struct {
	Email    string `json:"email"`
	PlayerID string `json:"playerId"`
	Role     string `json:"role,omitempty"`
}

func (h *Handler) LinkPlayer(w http.ResponseWriter, r *http.Request) {
	var req LinkPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.accounts.LinkPlayer(r.Context(), req.Email, req.PlayerID, req.Role); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := h.store.ListMatches(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.store.GetMatch(r.Context(), r.PathValue("key"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// PreviewMatch computes what the result would be from the scores entered
// so far, without changing any state.
func (h *Handler) PreviewMatch(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	m, err := h.store.GetMatch(r.Context(), key)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	snap, err := h.svc.LoadSnapshot(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	result, err := scoring.ComputeResult(m, snap.Config, snap.Rounds)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type EnterScoresRequest struct {
	Scores map[string][]int `json:"scores"`
}

func (h *Handler) EnterScores(w http.ResponseWriter, r *http.Request) {
	var req EnterScoresRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	m, err := h.svc.EnterScores(r.Context(), r.PathValue("key"), actor(r), req.Scores)
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) SubmitMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Submit(r.Context(), r.PathValue("key"), actor(r))
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) ApproveMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Approve(r.Context(), r.PathValue("key"), actor(r))
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

type DisputeRequest struct {
	Note string `json:"note"`
}

func (h *Handler) DisputeMatch(w http.ResponseWriter, r *http.Request) {
	var req DisputeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Note == "" {
		writeError(w, http.StatusBadRequest, "a dispute note is required")
		return
	}
	m, err := h.svc.Dispute(r.Context(), r.PathValue("key"), actor(r), req.Note)
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) ForceApproveMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.ForceApprove(r.Context(), r.PathValue("key"), actor(r))
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) ForceCommitMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.ForceCommit(r.Context(), r.PathValue("key"), actor(r))
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) UnlockMatch(w http.ResponseWriter, r *http.Request) {
	m, err := h.svc.Unlock(r.Context(), r.PathValue("key"), actor(r))
	if err != nil {
		writeLeagueError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (h *Handler) GetStandings(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.LoadSnapshot(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.CalcStandings(snap.Matches, snap.Config.Teams))
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.LoadSnapshot(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.CalcPlayerStats(snap.Config, snap.Matches, snap.Rounds))
}

// PlayerHandicap is one row of the handicap report.
type PlayerHandicap struct {
	PlayerID string  `json:"playerId"`
	Name     string  `json:"name"`
	TeamID   string  `json:"teamId"`
	HiLo     string  `json:"hiLo,omitempty"`
	Handicap float64 `json:"handicap"`
	Strokes  []int   `json:"strokes"`
}

func (h *Handler) GetHandicaps(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.LoadSnapshot(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}

	nine := models.Side(r.URL.Query().Get("nine"))
	if nine != models.SideBack {
		nine = models.SideFront
	}
	holes := snap.Config.Course.Holes(nine)

	var out []PlayerHandicap
	for _, team := range snap.Config.Teams {
		for i := range team.Players {
			p := &team.Players[i]
			hcp := scoring.PlayerHandicap(p, snap.Rounds[p.ID], snap.Config)
			out = append(out, PlayerHandicap{
				PlayerID: p.ID,
				Name:     p.Name,
				TeamID:   team.ID,
				HiLo:     p.HiLo,
				Handicap: hcp,
				Strokes:  scoring.AllocateStrokes(hcp, holes),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetWeekSkins(w http.ResponseWriter, r *http.Request) {
	week, err := strconv.Atoi(r.PathValue("week"))
	if err != nil || week < 1 {
		writeError(w, http.StatusBadRequest, "invalid week number")
		return
	}
	snap, err := h.svc.LoadSnapshot(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.CalcWeeklySkins(week, snap.Matches, snap.Config, snap.Rounds))
}

func (h *Handler) GetSeasonSkins(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.LoadSnapshot(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scoring.CalcSeasonSkins(snap.Config, snap.Matches, snap.Rounds))
}

func (h *Handler) GetBracket(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.LoadSnapshot(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	bracket := scoring.BuildBracket(snap.Config, snap.Matches)
	if bracket == nil {
		writeError(w, http.StatusNotFound, "no playoff bracket configured")
		return
	}
	writeJSON(w, http.StatusOK, bracket)
}

func (h *Handler) GetPlayerRounds(w http.ResponseWriter, r *http.Request) {
	rounds, err := h.store.GetRounds(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rounds == nil {
		rounds = []models.Round{}
	}
	writeJSON(w, http.StatusOK, rounds)
}

func actor(r *http.Request) league.Actor {
	user := auth.GetUser(r.Context())
	if user == nil {
		return league.Actor{}
	}
	return league.Actor{
		UID:          user.Email,
		PlayerID:     user.PlayerID,
		Commissioner: user.IsCommissioner(),
	}
}

// writeLeagueError maps state-machine failures onto HTTP statuses:
// illegal transitions are conflicts, authorization failures forbidden.
func writeLeagueError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, league.ErrNotActionable):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, league.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
