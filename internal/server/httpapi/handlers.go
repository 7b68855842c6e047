package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mkuznecov/auctionsite/internal/common"
	"github.com/mkuznecov/auctionsite/internal/server/auth"
	"github.com/mkuznecov/auctionsite/internal/server/models"
)

type siteResponse struct {
	ID                       int64   `json:"id"`
	Name                     string  `json:"name"`
	Timezone                 int     `json:"timezone"`
	SessionExpirationSeconds int     `json:"session_expiration_seconds"`
	MinimumBidIncrement      float64 `json:"minimum_bid_increment"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type sessionResponse struct {
	UserID     int64     `json:"user_id"`
	ValidUntil time.Time `json:"valid_until"`
}

type auctionResponse struct {
	ID          int64     `json:"id"`
	SellerID    int64     `json:"seller_id"`
	Description string    `json:"description"`
	EndsOn      time.Time `json:"ends_on"`
	Price       float64   `json:"price"`
	WinnerID    *int64    `json:"winner_id,omitempty"`
}

func toSiteResponse(s *models.Site) siteResponse {
	return siteResponse{
		ID:                       s.ID,
		Name:                     s.Name,
		Timezone:                 s.Timezone,
		SessionExpirationSeconds: s.SessionExpirationSeconds,
		MinimumBidIncrement:      s.MinimumBidIncrement,
	}
}

func toAuctionResponse(a *models.Auction) auctionResponse {
	return auctionResponse{
		ID:          a.ID,
		SellerID:    a.SellerID,
		Description: a.Description,
		EndsOn:      a.EndsOn,
		Price:       a.Price,
		WinnerID:    a.WinnerID,
	}
}

// resolveSite maps the URL's site name to its record.
func (s *Server) resolveSite(w http.ResponseWriter, r *http.Request) (*models.Site, bool) {
	site, err := s.host.LoadSite(r.Context(), chi.URLParam(r, "site"))
	if err != nil {
		s.writeError(w, r, err)
		return nil, false
	}
	return site, true
}

// sessionID extracts and verifies the bearer token, returning the raw
// session id the services understand. The token must belong to the site it
// is used against.
func (s *Server) sessionID(w http.ResponseWriter, r *http.Request, site *models.Site) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		s.writeError(w, r, common.ErrUnauthorized)
		return "", false
	}
	claims, err := auth.ParseToken(token, s.secretKey)
	if err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	if claims.SiteID != site.ID {
		s.writeError(w, r, common.ErrInvalidToken)
		return "", false
	}
	return claims.SessionID, true
}

func (s *Server) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "malformed id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateSite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                     string  `json:"name"`
		Timezone                 int     `json:"timezone"`
		SessionExpirationSeconds int     `json:"session_expiration_seconds"`
		MinimumBidIncrement      float64 `json:"minimum_bid_increment"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	site, err := s.host.CreateSite(r.Context(), req.Name, req.Timezone, req.SessionExpirationSeconds, req.MinimumBidIncrement)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toSiteResponse(site))
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := s.host.ListSites(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]siteResponse, 0, len(sites))
	for _, site := range sites {
		out = append(out, toSiteResponse(site))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetSite(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, toSiteResponse(site))
}

func (s *Server) handleDeleteSite(w http.ResponseWriter, r *http.Request) {
	if err := s.host.DeleteSite(r.Context(), chi.URLParam(r, "site")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSiteTime(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	now, err := s.site.Now(r.Context(), site.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]time.Time{"now": now})
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	user, err := s.site.CreateUser(r.Context(), site.ID, req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, userResponse{ID: user.ID, Username: user.Username})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	users, err := s.site.ListUsers(r.Context(), site.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userResponse{ID: u.ID, Username: u.Username})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	if err := s.site.DeleteUser(r.Context(), site.ID, chi.URLParam(r, "username")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWonAuctions(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	userID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	won, err := s.site.WonAuctions(r.Context(), site.ID, userID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]auctionResponse, 0, len(won))
	for _, a := range won {
		out = append(out, toAuctionResponse(a))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	session, err := s.site.Login(r.Context(), site.ID, req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	token, err := auth.GenerateToken(site.ID, session.ID, s.secretKey, s.tokenValidity)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"token":       token,
		"valid_until": session.ValidUntil,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	sessionID, ok := s.sessionID(w, r, site)
	if !ok {
		return
	}
	if err := s.site.Logout(r.Context(), site.ID, sessionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	sessions, err := s.site.ListSessions(r.Context(), site.ID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionResponse{UserID: sess.UserID, ValidUntil: sess.ValidUntil})
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAuction(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	sessionID, ok := s.sessionID(w, r, site)
	if !ok {
		return
	}
	var req struct {
		Description   string    `json:"description"`
		EndsOn        time.Time `json:"ends_on"`
		StartingPrice float64   `json:"starting_price"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	auction, err := s.site.CreateAuction(r.Context(), site.ID, sessionID, req.Description, req.EndsOn, req.StartingPrice)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toAuctionResponse(auction))
}

func (s *Server) handleListAuctions(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	onlyActive := r.URL.Query().Get("active") == "true"
	auctions, err := s.site.ListAuctions(r.Context(), site.ID, onlyActive)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]auctionResponse, 0, len(auctions))
	for _, a := range auctions {
		out = append(out, toAuctionResponse(a))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDeleteAuction(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	auctionID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	if err := s.site.DeleteAuction(r.Context(), site.ID, auctionID); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePlaceBid(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	sessionID, ok := s.sessionID(w, r, site)
	if !ok {
		return
	}
	auctionID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Offer float64 `json:"offer"`
	}
	if !s.decode(w, r, &req) {
		return
	}
	outcome, err := s.site.PlaceBid(r.Context(), site.ID, auctionID, sessionID, req.Offer)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"outcome": outcome.String()})
}

func (s *Server) handleCurrentPrice(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	auctionID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	price, err := s.site.CurrentPrice(r.Context(), site.ID, auctionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]float64{"price": price})
}

func (s *Server) handleCurrentWinner(w http.ResponseWriter, r *http.Request) {
	site, ok := s.resolveSite(w, r)
	if !ok {
		return
	}
	auctionID, ok := s.pathID(w, r)
	if !ok {
		return
	}
	winner, err := s.site.CurrentWinner(r.Context(), site.ID, auctionID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if winner == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"winner": nil})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"winner": userResponse{ID: winner.ID, Username: winner.Username},
	})
}
