package httpapi

import (
	"net/http"
	"time"

	orderdomain "github.com/dwikikusuma/marketplace/internal/order/domain"
	"github.com/dwikikusuma/marketplace/pkg/apperr"
)

type orderLineDTO struct {
	ID           string `json:"id"`
	ProductID    string `json:"product_id"`
	SupplierID   string `json:"supplier_id"`
	Quantity     int32  `json:"quantity"`
	Price        int64  `json:"price"`
	ProductName  string `json:"product_name"`
	ProductSKU   string `json:"product_sku"`
	ProductImage string `json:"product_image,omitempty"`
	SupplierName string `json:"supplier_name"`
}

type paymentDTO struct {
	Method      string     `json:"method"`
	Status      string     `json:"status"`
	Amount      int64      `json:"amount"`
	PaymentDate *time.Time `json:"payment_date,omitempty"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	OrderNumber     string         `json:"order_number"`
	UserID          string         `json:"user_id"`
	AddressID       string         `json:"address_id"`
	TotalAmount     int64          `json:"total_amount"`
	Status          string         `json:"status"`
	ShippingCost    *int64         `json:"shipping_cost,omitempty"`
	ShippingETADays *int32         `json:"shipping_eta_days,omitempty"`
	Lines           []orderLineDTO `json:"lines"`
	Payment         *paymentDTO    `json:"payment,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func toOrderDTO(o orderdomain.Order) orderDTO {
	dto := orderDTO{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		UserID:          o.UserID,
		AddressID:       o.AddressID,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		ShippingCost:    o.ShippingCost,
		ShippingETADays: o.ShippingETADays,
		Lines:           []orderLineDTO{},
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
	for _, ln := range o.Lines {
		dto.Lines = append(dto.Lines, orderLineDTO{
			ID:           ln.ID,
			ProductID:    ln.ProductID,
			SupplierID:   ln.SupplierID,
			Quantity:     ln.Quantity,
			Price:        ln.Price,
			ProductName:  ln.ProductName,
			ProductSKU:   ln.ProductSKU,
			ProductImage: ln.ProductImage,
			SupplierName: ln.SupplierName,
		})
	}
	if o.Payment != nil {
		dto.Payment = &paymentDTO{
			Method:      o.Payment.Method,
			Status:      string(o.Payment.Status),
			Amount:      o.Payment.Amount,
			PaymentDate: o.Payment.PaymentDate,
		}
	}
	return dto
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = actor.UserID
	}

	orders, err := s.orders.ListByUser(r.Context(), actor, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	out := struct {
		Orders []orderDTO `json:"orders"`
	}{Orders: []orderDTO{}}
	for _, o := range orders {
		out.Orders = append(out.Orders, toOrderDTO(o))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r.Context())
	order, err := s.orders.Get(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toOrderDTO(order))
}

func (s *Server) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		s.writeError(w, apperr.Validation("INVALID_BODY", "malformed request body"))
		return
	}

	actor := actorFrom(r.Context())
	order, err := s.orders.UpdateStatus(r.Context(), actor, r.PathValue("id"), body.Status)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toOrderDTO(order))
}
