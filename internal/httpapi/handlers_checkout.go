package httpapi

import (
	"net/http"

	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	quote, err := s.checkout.Quote(r.Context(), actor.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	type lineDTO struct {
		ProductID  string `json:"product_id"`
		SupplierID string `json:"supplier_id"`
		Name       string `json:"name"`
		Quantity   int32  `json:"quantity"`
		UnitPrice  int64  `json:"unit_price"`
		LineTotal  int64  `json:"line_total"`
	}
	out := struct {
		Lines []lineDTO `json:"lines"`
		Total int64     `json:"total"`
	}{Lines: []lineDTO{}, Total: quote.Total}
	for _, ln := range quote.Lines {
		out.Lines = append(out.Lines, lineDTO(ln))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		AddressID     string `json:"address_id"`
		PaymentMethod string `json:"payment_method"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	order, err := s.checkout.Checkout(r.Context(), actor.UserID, body.AddressID, body.PaymentMethod)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toOrderDTO(order))
}
