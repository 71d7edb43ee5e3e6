package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"vanta-site/internal/api"
	"vanta-site/internal/blob"
	"vanta-site/internal/config"
	"vanta-site/internal/middleware"
	"vanta-site/internal/poller"
	"vanta-site/internal/pubsub"
	"vanta-site/internal/render"
	"vanta-site/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type PresencePoller = poller.Poller[api.Presence]

type LivePoller = poller.Poller[api.LiveStatus]

type Params struct {
	fx.In

	Config    *config.Config
	Market    *service.MarketService
	Team      *service.TeamService
	Portfolio *service.PortfolioService
	Renderer  *render.Renderer
	Events    *pubsub.PubSub
	Store     blob.Store
	Lanyard   *api.Lanyard
	Presence  *PresencePoller
	TeamLive  *LivePoller
	Logger    zerolog.Logger
}

// Server owns the HTTP surface: team tracker, marketplace, portfolio widgets and static assets.
type Server struct {
	cfg       *config.Config
	market    *service.MarketService
	team      *service.TeamService
	portfolio *service.PortfolioService
	renderer  *render.Renderer
	events    *pubsub.PubSub
	store     blob.Store
	lanyard   *api.Lanyard
	presence  *PresencePoller
	teamLive  *LivePoller
	now       func() time.Time
	logger    zerolog.Logger
}

func New(p Params) *Server {
	return &Server{
		cfg:       p.Config,
		market:    p.Market,
		team:      p.Team,
		portfolio: p.Portfolio,
		renderer:  p.Renderer,
		events:    p.Events,
		store:     p.Store,
		lanyard:   p.Lanyard,
		presence:  p.Presence,
		teamLive:  p.TeamLive,
		now:       func() time.Time { return time.Now().UTC() },
		logger:    p.Logger,
	}
}

func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// team tracker
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /api/team", middleware.NoStore(http.HandlerFunc(s.handleTeam)))
	mux.HandleFunc("POST /api/team/snapshot", s.handleSnapshot)
	mux.Handle("GET /api/team/live", middleware.NoStore(http.HandlerFunc(s.handleTeamLive)))
	mux.HandleFunc("GET /api/team/roster", s.handleRoster)
	mux.Handle("GET /api/twitch/live", middleware.NoStore(http.HandlerFunc(s.handleTwitchLive)))
	mux.Handle("GET /api/ballchasing/recent", middleware.NoStore(http.HandlerFunc(s.handleReplays)))
	mux.HandleFunc("GET /team", s.handleTeamPage)

	// marketplace
	mux.HandleFunc("GET /market", s.handleMarketPage)
	mux.HandleFunc("GET /api/market/items", s.handleListItems)
	mux.HandleFunc("POST /api/market/items", s.handleCreateListing)
	mux.HandleFunc("GET /api/market/items/{id}", s.handleGetItem)
	mux.HandleFunc("DELETE /api/market/items/{id}", s.handleRemoveListing)
	mux.HandleFunc("POST /api/market/items/{id}/order", s.handlePlaceOrder)
	mux.HandleFunc("GET /api/market/listings/mine", s.handleMyListings)
	mux.HandleFunc("GET /api/market/orders/mine", s.handleMyOrders)
	mux.HandleFunc("GET /api/market/orders/recent", s.handleRecentOrders)
	mux.HandleFunc("GET /api/market/stats", s.handleStats)
	mux.HandleFunc("POST /api/market/register", s.handleRegister)
	mux.HandleFunc("POST /api/market/login", s.handleLogin)
	mux.HandleFunc("POST /api/market/logout", s.handleLogout)
	mux.HandleFunc("GET /api/market/me", s.handleMe)
	mux.HandleFunc("GET /api/market/export", s.handleExport)
	mux.HandleFunc("POST /api/market/import", s.handleImport)

	// portfolio
	mux.HandleFunc("GET /api/github", s.handleGithub)
	mux.HandleFunc("GET /api/presence", s.handlePresence)
	mux.HandleFunc("GET /api/projects", s.handleProjects)

	mux.HandleFunc("GET /api/events", s.handleEvents)

	mux.HandleFunc("GET /healthz", s.handleLiveness)
	mux.HandleFunc("GET /readyz", s.handleReadiness)

	mux.Handle("GET /", s.static())
	return mux
}

func statusFor(kind service.Kind) int {
	switch kind {
	case service.KindValidation:
		return http.StatusBadRequest
	case service.KindUnauthorized:
		return http.StatusUnauthorized
	case service.KindForbidden:
		return http.StatusForbidden
	case service.KindNotFound:
		return http.StatusNotFound
	case service.KindConflict:
		return http.StatusConflict
	case service.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)

	logger := zerolog.Ctx(r.Context())
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("kind", string(kind)).Msg("request failed")
	} else {
		logger.Debug().Err(err).Str("kind", string(kind)).Msg("request rejected")
	}
	middleware.ErrorResponse(w, r, status, string(kind), service.MessageOf(err))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "time": s.now().Format(time.RFC3339Nano)})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true})
}

// handleReadiness probes the marketplace blob store; a missing key still proves it answers.
func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if _, err := s.store.Get(ctx, "readyz"); err != nil && !errors.Is(err, blob.ErrNotFound) {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("store not ready")
		middleware.ErrorResponse(w, r, http.StatusServiceUnavailable, string(service.KindUnavailable), "store unavailable")
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true})
}
