package httpapi

import (
	"net/http"
	"strconv"
	"time"

	stockdomain "github.com/dwikikusuma/marketplace/internal/stock/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type stockLineDTO struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	SupplierID    string    `json:"supplier_id"`
	ProductName   string    `json:"product_name"`
	ProductSKU    string    `json:"product_sku"`
	ProductImage  string    `json:"product_image,omitempty"`
	SupplierName  string    `json:"supplier_name"`
	StockLevel    int32     `json:"stock_level"`
	Price         int64     `json:"price"`
	DiscountPrice *int64    `json:"discount_price,omitempty"`
	LeadTimeDays  int32     `json:"lead_time_days"`
	IsActive      bool      `json:"is_active"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// purchase_price is supplier cost and stays out of the API payload.
func toStockLineDTO(l stockdomain.StockLine) stockLineDTO {
	return stockLineDTO{
		ID:            l.ID,
		ProductID:     l.ProductID,
		SupplierID:    l.SupplierID,
		ProductName:   l.ProductName,
		ProductSKU:    l.ProductSKU,
		ProductImage:  l.ProductImage,
		SupplierName:  l.SupplierName,
		StockLevel:    l.StockLevel,
		Price:         l.Price,
		DiscountPrice: l.DiscountPrice,
		LeadTimeDays:  l.LeadTimeDays,
		IsActive:      l.IsActive,
		UpdatedAt:     l.UpdatedAt,
	}
}

func (s *Server) handleListStock(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	supplierID := q.Get("supplier_id")
	if supplierID == "" {
		s.writeError(w, apperr.Validation("INVALID_INPUT", "supplier_id query parameter is required"))
		return
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, apperr.Validation("INVALID_INPUT", "limit must be an integer"))
			return
		}
		limit = n
	}

	lines, next, err := s.stock.ListBySupplier(r.Context(), supplierID, limit, q.Get("cursor"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := struct {
		Lines      []stockLineDTO `json:"lines"`
		NextCursor string         `json:"next_cursor,omitempty"`
	}{Lines: []stockLineDTO{}, NextCursor: next}
	for _, l := range lines {
		out.Lines = append(out.Lines, toStockLineDTO(l))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetStock(w http.ResponseWriter, r *http.Request) {
	line, err := s.stock.Get(r.Context(), r.PathValue("productID"), r.PathValue("supplierID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toStockLineDTO(line))
}

func (s *Server) handleAdjustStock(w http.ResponseWriter, r *http.Request) {
	var body struct {
		StockLevel int32 `json:"stock_level"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	if err := s.stock.Adjust(r.Context(), actor, r.PathValue("id"), body.StockLevel); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusNoContent, nil)
}
