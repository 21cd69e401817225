package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wmslink/internal/service/order/application"
	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// OrderHandler is the thin HTTP edge over the two order services. Routes
// are parameterized on order type the same way the consumers are.
type OrderHandler struct {
	services map[domain.OrderType]*application.OrderService
	auth     port.Authorizer
}

func NewOrderHandler(sales, purchase *application.OrderService, auth port.Authorizer) *OrderHandler {
	return &OrderHandler{
		services: map[domain.OrderType]*application.OrderService{
			domain.SalesOrder:    sales,
			domain.PurchaseOrder: purchase,
		},
		auth: auth,
	}
}

func (h *OrderHandler) Register(r chi.Router) {
	r.Route("/api/{orderType}/orders", func(r chi.Router) {
		if h.auth != nil {
			r.Use(requireAuth(h.auth))
		}
		r.Post("/", h.create)
		r.Post("/bulk", h.bulkCreate)
		r.Get("/", h.list)
		r.Get("/{orderNo}", h.get)
		r.Post("/{orderNo}/cancel", h.cancel)
	})
}

func requireAuth(auth port.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if err := auth.Authorize(r.Context(), token); err != nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (h *OrderHandler) service(w http.ResponseWriter, r *http.Request) *application.OrderService {
	typ, err := domain.ParseOrderType(chi.URLParam(r, "orderType"))
	if err != nil {
		writeError(w, http.StatusNotFound, "unknown order type")
		return nil
	}
	return h.services[typ]
}

func (h *OrderHandler) create(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if svc == nil {
		return
	}
	var req application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	orderNo, err := svc.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderExists):
			writeError(w, http.StatusConflict, "order already exists")
		case errors.Is(err, domain.ErrInvalidOrder), errors.Is(err, domain.ErrEmptyOrder):
			writeError(w, http.StatusUnprocessableEntity, "customer or product reference not found")
		default:
			log.Error().Err(err).Msg("create order failed")
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"orderNo": orderNo})
}

func (h *OrderHandler) bulkCreate(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if svc == nil {
		return
	}
	var reqs []application.CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := svc.BulkCreate(r.Context(), reqs); err != nil {
		log.Error().Err(err).Msg("bulk create finished with publish failures")
		writeError(w, http.StatusBadGateway, "one or more orders could not be published")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *OrderHandler) get(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if svc == nil {
		return
	}
	order, err := svc.GetByOrderNo(r.Context(), chi.URLParam(r, "orderNo"))
	if err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Error().Err(err).Msg("get order failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, orderView(order))
}

func (h *OrderHandler) list(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if svc == nil {
		return
	}
	orders, err := svc.List(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list orders failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	views := make([]map[string]interface{}, 0, len(orders))
	for _, order := range orders {
		views = append(views, orderView(order))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *OrderHandler) cancel(w http.ResponseWriter, r *http.Request) {
	svc := h.service(w, r)
	if svc == nil {
		return
	}
	if err := svc.Cancel(r.Context(), chi.URLParam(r, "orderNo")); err != nil {
		if errors.Is(err, domain.ErrOrderNotFound) {
			writeError(w, http.StatusNotFound, "order not found")
			return
		}
		log.Error().Err(err).Msg("cancel order failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func orderView(order *domain.Order) map[string]interface{} {
	return map[string]interface{}{
		"id":              order.ID,
		"type":            order.Type,
		"orderNo":         order.OrderNo,
		"processingDate":  order.ProcessingDate,
		"customerNo":      order.Customer.CustomerNo,
		"shipmentAddress": order.ShipmentAddress,
		"status":          order.Status,
		"lines":           order.ActiveLines(),
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
