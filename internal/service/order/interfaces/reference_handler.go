package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"wmslink/internal/service/order/application"
	"wmslink/internal/service/order/domain"
	"wmslink/internal/service/order/port"
)

// ReferenceHandler is the master-data edge. The upstream WMS pushes
// customer and product records through it; each write invalidates the
// cached read side.
type ReferenceHandler struct {
	refs *application.ReferenceService
	auth port.Authorizer
}

func NewReferenceHandler(refs *application.ReferenceService, auth port.Authorizer) *ReferenceHandler {
	return &ReferenceHandler{refs: refs, auth: auth}
}

func (h *ReferenceHandler) Register(r chi.Router) {
	r.Route("/api/customers", func(r chi.Router) {
		if h.auth != nil {
			r.Use(requireAuth(h.auth))
		}
		r.Put("/{customerNo}", h.upsertCustomer)
	})
	r.Route("/api/products", func(r chi.Router) {
		if h.auth != nil {
			r.Use(requireAuth(h.auth))
		}
		r.Put("/{productCode}", h.upsertProduct)
	})
}

func (h *ReferenceHandler) upsertCustomer(w http.ResponseWriter, r *http.Request) {
	var customer domain.Customer
	if err := json.NewDecoder(r.Body).Decode(&customer); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	// The path parameter is the business key; the body cannot rename it.
	customer.CustomerNo = chi.URLParam(r, "customerNo")

	if err := h.refs.UpsertCustomer(r.Context(), &customer); err != nil {
		if errors.Is(err, domain.ErrInvalidReference) {
			writeError(w, http.StatusUnprocessableEntity, "missing business key")
			return
		}
		log.Error().Err(err).Msg("upsert customer failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReferenceHandler) upsertProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	product.ProductCode = chi.URLParam(r, "productCode")

	if err := h.refs.UpsertProduct(r.Context(), &product); err != nil {
		if errors.Is(err, domain.ErrInvalidReference) {
			writeError(w, http.StatusUnprocessableEntity, "missing business key")
			return
		}
		log.Error().Err(err).Msg("upsert product failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
