package httpapi

import (
	"net/http"
	"time"

	cartdomain "github.com/dwikikusuma/marketplace/internal/cart/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type cartLineDTO struct {
	ID            string `json:"id"`
	ProductID     string `json:"product_id"`
	SupplierID    string `json:"supplier_id"`
	Quantity      int32  `json:"quantity"`
	Price         int64  `json:"price"`
	PurchasePrice int64  `json:"purchase_price"`
}

type cartDTO struct {
	ID        string        `json:"id"`
	UserID    string        `json:"user_id"`
	Lines     []cartLineDTO `json:"lines"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func toCartDTO(c cartdomain.Cart) cartDTO {
	dto := cartDTO{ID: c.ID, UserID: c.UserID, Lines: []cartLineDTO{}, UpdatedAt: c.UpdatedAt}
	for _, ln := range c.Lines {
		dto.Lines = append(dto.Lines, cartLineDTO{
			ID:            ln.ID,
			ProductID:     ln.ProductID,
			SupplierID:    ln.SupplierID,
			Quantity:      ln.Quantity,
			Price:         ln.Price,
			PurchasePrice: ln.PurchasePrice,
		})
	}
	return dto
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	cart, err := s.cart.GetOrCreate(r.Context(), actor.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (s *Server) handleAddCartLine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ProductID  string `json:"product_id"`
		SupplierID string `json:"supplier_id"`
		Quantity   int32  `json:"quantity"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	cart, err := s.cart.AddLine(r.Context(), actor.UserID, body.ProductID, body.SupplierID, body.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, toCartDTO(cart))
}

func (s *Server) handleUpdateCartLine(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int32 `json:"quantity"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	cart, err := s.cart.UpdateLine(r.Context(), actor.UserID, r.PathValue("id"), body.Quantity)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (s *Server) handleRemoveCartLine(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	cart, err := s.cart.RemoveLine(r.Context(), actor.UserID, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toCartDTO(cart))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	if err := s.cart.Clear(r.Context(), actor.UserID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
