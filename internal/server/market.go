package server

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"vanta-site/internal/constants"
	"vanta-site/internal/domain"
	"vanta-site/internal/middleware"
	"vanta-site/internal/render"
	"vanta-site/internal/service"
	"vanta-site/internal/view"
)

// publicUser is a user without the password digest.
type publicUser struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Avatar    string    `json:"avatar"`
	CreatedAt time.Time `json:"createdAt"`
}

func toPublic(u *domain.User) *publicUser {
	if u == nil {
		return nil
	}
	return &publicUser{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar, CreatedAt: u.CreatedAt}
}

func sessionToken(r *http.Request) string {
	c, err := r.Cookie(constants.SessionCookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func setSession(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func itemID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, &service.Error{Kind: service.KindValidation, Message: "Invalid item id."}
	}
	return id, nil
}

func (s *Server) handleMarketPage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	doc, err := s.market.Document(ctx)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	actor, err := s.market.CurrentUser(ctx, sessionToken(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}

	page := render.BuildMarketPage(doc, view.StateFromQuery(r.URL.Query()), actor, s.now())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.renderer.Market(w, page); err != nil {
		s.fail(w, r, err)
	}
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	doc, err := s.market.Document(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	st := view.StateFromQuery(r.URL.Query())
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{
		"ok":    true,
		"sort":  st.Sort,
		"items": view.Items(doc, st),
	})
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	doc, err := s.market.Document(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	for _, l := range view.Items(doc, view.State{}) {
		if l.ID == id {
			middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "item": l})
			return
		}
	}
	s.fail(w, r, &service.Error{Kind: service.KindNotFound, Message: "Item not found."})
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	var in service.ListingInput
	if err := middleware.ParseJSONBody(w, r, &in); err != nil {
		s.fail(w, r, &service.Error{Kind: service.KindValidation, Message: "Please fill all fields correctly.", Err: err})
		return
	}
	item, err := s.market.CreateListing(r.Context(), sessionToken(r), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusCreated, map[string]any{"ok": true, "item": item})
}

func (s *Server) handleRemoveListing(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.market.RemoveListing(r.Context(), sessionToken(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	id, err := itemID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	order, err := s.market.PlaceOrder(r.Context(), sessionToken(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusCreated, map[string]any{"ok": true, "order": order})
}

// requireUser resolves the actor or writes a 401.
func (s *Server) requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, *domain.Marketplace, bool) {
	ctx := r.Context()
	actor, err := s.market.CurrentUser(ctx, sessionToken(r))
	if err != nil {
		s.fail(w, r, err)
		return nil, nil, false
	}
	if actor == nil {
		s.fail(w, r, &service.Error{Kind: service.KindUnauthorized, Message: "Please log in to do that."})
		return nil, nil, false
	}
	doc, err := s.market.Document(ctx)
	if err != nil {
		s.fail(w, r, err)
		return nil, nil, false
	}
	return actor, doc, true
}

func (s *Server) handleMyListings(w http.ResponseWriter, r *http.Request) {
	actor, doc, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	st := view.StateFromQuery(r.URL.Query())
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "items": view.SellerItems(doc, st, actor.ID)})
}

func (s *Server) handleMyOrders(w http.ResponseWriter, r *http.Request) {
	actor, doc, ok := s.requireUser(w, r)
	if !ok {
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "orders": view.BuyerOrders(doc, actor.ID)})
}

func (s *Server) handleRecentOrders(w http.ResponseWriter, r *http.Request) {
	doc, err := s.market.Document(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "orders": view.RecentOrders(doc, constants.RecentOrdersLimit)})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	doc, err := s.market.Document(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "stats": view.MarketStats(doc)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	if err := middleware.ParseJSONBody(w, r, &in); err != nil {
		s.fail(w, r, &service.Error{Kind: service.KindValidation, Message: "Missing email or password.", Err: err})
		return
	}
	user, token, err := s.market.Register(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setSession(w, token)
	middleware.JSONResponse(w, r, http.StatusCreated, map[string]any{"ok": true, "user": toPublic(user)})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	if err := middleware.ParseJSONBody(w, r, &in); err != nil {
		s.fail(w, r, &service.Error{Kind: service.KindValidation, Message: "Missing email or password.", Err: err})
		return
	}
	user, token, err := s.market.Login(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	setSession(w, token)
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "user": toPublic(user)})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.market.Logout(r.Context(), sessionToken(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	clearSession(w)
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	actor, err := s.market.CurrentUser(r.Context(), sessionToken(r))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "user": toPublic(actor)})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw, err := s.market.Export(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, constants.ExportFileName))
	w.Write(raw)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxImportBytes))
	if err != nil {
		s.fail(w, r, &service.Error{Kind: service.KindValidation, Message: "Could not parse JSON.", Err: err})
		return
	}
	doc, err := s.market.Import(r.Context(), raw)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	middleware.JSONResponse(w, r, http.StatusOK, map[string]any{"ok": true, "stats": view.MarketStats(doc)})
}
