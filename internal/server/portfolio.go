package server

import (
	"net/http"

	"vanta-site/internal/api"
	"vanta-site/internal/domain"
	"vanta-site/internal/middleware"
)

func (s *Server) handleGithub(w http.ResponseWriter, r *http.Request) {
	repos := s.portfolio.Repositories(r.Context())
	code := http.StatusOK
	if !repos.OK {
		code = http.StatusServiceUnavailable
	}
	middleware.JSONResponse(w, r, code, repos)
}

func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	var presence api.Presence
	switch {
	case s.cfg.DiscordID == "":
		presence = api.Presence{Reason: "Missing DISCORD_ID", Status: "unknown"}
	case s.presence != nil:
		if latest, _, ok := s.presence.Latest(); ok {
			presence = latest
			break
		}
		fallthrough
	default:
		presence = s.lanyard.Presence(r.Context(), s.cfg.DiscordID)
	}

	code := http.StatusOK
	if !presence.OK {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Cache-Control", "no-store")
	middleware.JSONResponse(w, r, code, presence)
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		category = domain.CategoryAll
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{
		"ok":         true,
		"category":   category,
		"categories": domain.Categories,
		"projects":   s.portfolio.Projects(category),
	})
}
