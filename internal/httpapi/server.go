// Package httpapi is the REST JSON surface over the core services. It owns
// identity resolution (X-User-ID header → Actor), error mapping and request
// metrics; all business rules live behind it in the app services.
package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	cartapp "github.com/dwikikusuma/marketplace/internal/cart/app"
	checkoutapp "github.com/dwikikusuma/marketplace/internal/checkout/app"
	"github.com/dwikikusuma/marketplace/internal/identity"
	orderapp "github.com/dwikikusuma/marketplace/internal/order/app"
	restockapp "github.com/dwikikusuma/marketplace/internal/restock/app"
	statsapp "github.com/dwikikusuma/marketplace/internal/stats/app"
	stockapp "github.com/dwikikusuma/marketplace/internal/stock/app"
	"github.com/dwikikusuma/marketplace/pkg/metrics"
)

type Server struct {
	cart     *cartapp.Service
	checkout *checkoutapp.Service
	orders   *orderapp.Service
	restock  *restockapp.Service
	stats    *statsapp.Service
	stock    *stockapp.Service

	identity identity.Lookup
	metrics  *metrics.ServerMetrics
	log      *slog.Logger
}

type Deps struct {
	Cart     *cartapp.Service
	Checkout *checkoutapp.Service
	Orders   *orderapp.Service
	Restock  *restockapp.Service
	Stats    *statsapp.Service
	Stock    *stockapp.Service
	Identity identity.Lookup
	Metrics  *metrics.ServerMetrics
	Log      *slog.Logger
}

func NewServer(d Deps) *Server {
	return &Server{
		cart:     d.Cart,
		checkout: d.Checkout,
		orders:   d.Orders,
		restock:  d.Restock,
		stats:    d.Stats,
		stock:    d.Stock,
		identity: d.Identity,
		metrics:  d.Metrics,
		log:      d.Log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.HandleFunc("GET /readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("GET /metrics", metrics.Handler())

	mux.Handle("GET /api/cart", s.withActor("cart_get", s.handleGetCart))
	mux.Handle("POST /api/cart/lines", s.withActor("cart_add_line", s.handleAddCartLine))
	mux.Handle("PUT /api/cart/lines/{id}", s.withActor("cart_update_line", s.handleUpdateCartLine))
	mux.Handle("DELETE /api/cart/lines/{id}", s.withActor("cart_remove_line", s.handleRemoveCartLine))
	mux.Handle("DELETE /api/cart", s.withActor("cart_clear", s.handleClearCart))

	mux.Handle("GET /api/checkout/quote", s.withActor("checkout_quote", s.handleQuote))
	mux.Handle("POST /api/checkout", s.withActor("checkout", s.handleCheckout))

	mux.Handle("GET /api/orders", s.withActor("orders_list", s.handleListOrders))
	mux.Handle("GET /api/orders/{id}", s.withActor("orders_get", s.handleGetOrder))
	mux.Handle("PUT /api/orders/{id}/status", s.withActor("orders_status", s.handleUpdateOrderStatus))

	mux.Handle("GET /api/stock", s.withActor("stock_list", s.handleListStock))
	mux.Handle("GET /api/stock/{productID}/{supplierID}", s.withActor("stock_get", s.handleGetStock))
	mux.Handle("PUT /api/stock/{id}/level", s.withActor("stock_adjust", s.handleAdjustStock))

	mux.Handle("POST /api/supplier-item-requests", s.withActor("requests_create", s.handleCreateRequest))
	mux.Handle("GET /api/supplier-item-requests", s.withActor("requests_list", s.handleListRequests))
	mux.Handle("GET /api/supplier-item-requests/{id}", s.withActor("requests_get", s.handleGetRequest))
	mux.Handle("PUT /api/supplier-item-requests/{id}", s.withActor("requests_update", s.handleUpdateRequest))
	mux.Handle("PUT /api/supplier-item-requests/{id}/status", s.withActor("requests_status", s.handleDecideRequest))
	mux.Handle("PUT /api/supplier-item-requests/{id}/cancel", s.withActor("requests_cancel", s.handleCancelRequest))
	mux.Handle("DELETE /api/supplier-item-requests/{id}", s.withActor("requests_delete", s.handleDeleteRequest))

	mux.Handle("GET /api/stats/sales", s.withActor("stats_sales", s.handleSalesTrend))
	mux.Handle("GET /api/stats/status", s.withActor("stats_status", s.handleStatusDistribution))
	mux.Handle("GET /api/stats/revenue", s.withActor("stats_revenue", s.handleRevenue))
	mux.Handle("GET /api/stats/suppliers/{id}/requests", s.withActor("stats_supplier", s.handleSupplierSummary))

	return mux
}

type actorKey struct{}

func actorFrom(ctx context.Context) identity.Actor {
	a, _ := ctx.Value(actorKey{}).(identity.Actor)
	return a
}

// withActor resolves the caller, records metrics and hands off to the
// handler with the Actor in context. Authentication itself is an external
// concern; the header carries an already-authenticated user id.
func (s *Server) withActor(name string, next func(w http.ResponseWriter, r *http.Request)) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		userID := r.Header.Get("X-User-ID")
		if userID == "" {
			s.writeJSON(sw, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
				Code: "UNAUTHENTICATED", Message: "X-User-ID header is required",
			}})
			s.observe(name, sw.status, start)
			return
		}

		actor, err := s.identity.Resolve(r.Context(), userID)
		if err != nil {
			s.writeJSON(sw, http.StatusUnauthorized, errorEnvelope{Error: errorBody{
				Code: "UNAUTHENTICATED", Message: "unknown user",
			}})
			s.observe(name, sw.status, start)
			return
		}

		ctx := context.WithValue(r.Context(), actorKey{}, actor)
		next(sw, r.WithContext(ctx))
		s.observe(name, sw.status, start)
	})
}

func (s *Server) observe(handler string, status int, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.Requests.WithLabelValues(handler, strconv.Itoa(status)).Inc()
	s.metrics.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
