package httpapi

import (
	"net/http"
	"strconv"

	statsapp "github.com/dwikikusuma/marketplace/internal/stats/app"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

func (s *Server) handleSalesTrend(w http.ResponseWriter, r *http.Request) {
	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, apperr.Validation("INVALID_INPUT", "days must be an integer"))
			return
		}
		days = n
	}

	actor := actorFrom(r.Context())
	trend, err := s.stats.SalesTrend(r.Context(), actor, days)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if trend == nil {
		trend = []statsapp.DailySales{}
	}
	s.writeJSON(w, http.StatusOK, struct {
		Days []statsapp.DailySales `json:"days"`
	}{Days: trend})
}

func (s *Server) handleStatusDistribution(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	counts, err := s.stats.StatusDistribution(r.Context(), actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if counts == nil {
		counts = []statsapp.StatusCount{}
	}
	s.writeJSON(w, http.StatusOK, struct {
		Statuses []statsapp.StatusCount `json:"statuses"`
	}{Statuses: counts})
}

func (s *Server) handleRevenue(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	summary, err := s.stats.Revenue(r.Context(), actor)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSupplierSummary(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	summary, err := s.stats.SupplierRequestSummary(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}
