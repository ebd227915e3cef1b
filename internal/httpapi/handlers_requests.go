package httpapi

import (
	"net/http"
	"time"

	restockapp "github.com/dwikikusuma/marketplace/internal/restock/app"
	restockdomain "github.com/dwikikusuma/marketplace/internal/restock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type requestDTO struct {
	ID                 string    `json:"id"`
	StockLineID        string    `json:"stock_line_id"`
	SupplierID         string    `json:"supplier_id"`
	Quantity           int32     `json:"quantity"`
	Urgency            string    `json:"urgency"`
	Status             string    `json:"status"`
	NotesFromRequester string    `json:"notes_from_requester,omitempty"`
	NotesFromSupplier  string    `json:"notes_from_supplier,omitempty"`
	SupplierQuote      *int64    `json:"supplier_quote,omitempty"`
	RejectionReason    string    `json:"rejection_reason,omitempty"`
	CreatedBy          string    `json:"created_by"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func toRequestDTO(r restockdomain.Request) requestDTO {
	return requestDTO{
		ID:                 r.ID,
		StockLineID:        r.StockLineID,
		SupplierID:         r.SupplierID,
		Quantity:           r.Quantity,
		Urgency:            string(r.Urgency),
		Status:             string(r.Status),
		NotesFromRequester: r.NotesFromRequester,
		NotesFromSupplier:  r.NotesFromSupplier,
		SupplierQuote:      r.SupplierQuote,
		RejectionReason:    r.RejectionReason,
		CreatedBy:          r.CreatedBy,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

func (s *Server) handleCreateRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StockLineID        string `json:"stock_line_id"`
		Quantity           int32  `json:"quantity"`
		Urgency            string `json:"urgency"`
		NotesFromRequester string `json:"notes_from_requester"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	req, err := s.restock.Create(r.Context(), actor, restockapp.CreateInput{
		StockLineID:        body.StockLineID,
		Quantity:           body.Quantity,
		Urgency:            body.Urgency,
		NotesFromRequester: body.NotesFromRequester,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toRequestDTO(req))
}

func (s *Server) handleListRequests(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	reqs, err := s.restock.List(r.Context(), actor)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := struct {
		Requests []requestDTO `json:"requests"`
	}{Requests: []requestDTO{}}
	for _, req := range reqs {
		out.Requests = append(out.Requests, toRequestDTO(req))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	req, err := s.restock.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (s *Server) handleUpdateRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity           int32  `json:"quantity"`
		Urgency            string `json:"urgency"`
		NotesFromRequester string `json:"notes_from_requester"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	req, err := s.restock.Update(r.Context(), actor, r.PathValue("id"), restockapp.UpdateInput{
		Quantity:           body.Quantity,
		Urgency:            body.Urgency,
		NotesFromRequester: body.NotesFromRequester,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (s *Server) handleDecideRequest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status            string `json:"status"`
		SupplierQuote     *int64 `json:"supplier_quote"`
		RejectionReason   string `json:"rejection_reason"`
		NotesFromSupplier string `json:"notes_from_supplier"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	req, err := s.restock.Decide(r.Context(), actor, r.PathValue("id"), restockapp.DecideInput{
		Status:            body.Status,
		SupplierQuote:     body.SupplierQuote,
		RejectionReason:   body.RejectionReason,
		NotesFromSupplier: body.NotesFromSupplier,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (s *Server) handleCancelRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	req, err := s.restock.Cancel(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (s *Server) handleDeleteRequest(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	if err := s.restock.Delete(r.Context(), actor, r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
