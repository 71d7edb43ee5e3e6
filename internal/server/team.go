package server

import (
	"math"
	"net/http"
	"strings"

	"vanta-site/internal/api"
	"vanta-site/internal/domain"
	"vanta-site/internal/middleware"
	"vanta-site/internal/render"
	"vanta-site/internal/service"
)

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	raw, err := s.team.Raw(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Write(raw)
}

type snapshotRequest struct {
	PlayerIndex *float64                     `json:"playerIndex"`
	Ranks       map[string]*domain.RankInput `json:"ranks"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	invalid := &service.Error{Kind: service.KindValidation, Message: "Invalid payload"}

	var req snapshotRequest
	if err := middleware.ParseJSONBody(w, r, &req); err != nil {
		invalid.Err = err
		s.fail(w, r, invalid)
		return
	}
	if req.PlayerIndex == nil || req.Ranks == nil {
		s.fail(w, r, invalid)
		return
	}

	// fractional indexes address no player
	index := -1
	if idx := *req.PlayerIndex; idx == math.Trunc(idx) && idx >= 0 && idx <= math.MaxInt32 {
		index = int(idx)
	}

	if _, err := s.team.SaveSnapshot(r.Context(), index, req.Ranks); err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true})
}

// liveResponse writes a live status, failing closed with 503.
func liveResponse(w http.ResponseWriter, r *http.Request, status api.LiveStatus) {
	code := http.StatusOK
	if !status.OK {
		code = http.StatusServiceUnavailable
	}
	middleware.JSONResponse(w, r, code, status)
}

func (s *Server) handleTwitchLive(w http.ResponseWriter, r *http.Request) {
	handles := api.NormalizeHandles(strings.Split(r.URL.Query().Get("logins"), ","))
	if len(handles) == 0 {
		liveResponse(w, r, api.LiveStatus{OK: true, Live: map[string]bool{}, Channels: map[string]api.Channel{}})
		return
	}
	liveResponse(w, r, s.team.Live(r.Context(), handles))
}

// handleTeamLive serves the poller's latest roster status, checking directly before the first poll lands.
func (s *Server) handleTeamLive(w http.ResponseWriter, r *http.Request) {
	if status := s.latestLive(); status != nil {
		liveResponse(w, r, *status)
		return
	}
	status, err := s.team.RosterLive(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	liveResponse(w, r, status)
}

func (s *Server) latestLive() *api.LiveStatus {
	if s.teamLive == nil {
		return nil
	}
	if status, _, ok := s.teamLive.Latest(); ok {
		return &status
	}
	return nil
}

func (s *Server) handleRoster(w http.ResponseWriter, r *http.Request) {
	var live map[string]bool
	if status := s.latestLive(); status != nil && status.OK {
		live = status.Live
	}
	cards, err := s.team.Roster(r.Context(), r.URL.Query().Get("q"), live)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "players": cards})
}

func (s *Server) handleReplays(w http.ResponseWriter, r *http.Request) {
	replays := s.team.Replays(r.Context(), r.URL.Query().Get("group"))
	code := http.StatusOK
	if !replays.OK {
		code = http.StatusServiceUnavailable
	}
	middleware.JSONResponse(w, r, code, replays)
}

func (s *Server) handleTeamPage(w http.ResponseWriter, r *http.Request) {
	team, err := s.team.Team(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page := render.BuildTeamPage(team, r.URL.Query().Get("q"), s.latestLive(), s.now())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Team(w, page); err != nil {
		s.fail(w, r, err)
	}
}
