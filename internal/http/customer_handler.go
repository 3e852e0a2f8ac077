package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/service"
)

func (h *handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.svcs.Customer.ListCustomers(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("customer service list customers: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, ListResponse[model.Customer]{Data: customers})
}

func (h *handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	customer, err := h.svcs.Customer.GetCustomer(r.Context(), id)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("customer service get customer: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, customer)
}

func (h *handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var req service.CreateCustomerParams
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	customer, err := h.svcs.Customer.CreateCustomer(r.Context(), req)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("customer service create customer: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusCreated, customer)
}

func (h *handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req service.UpdateCustomerParams
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	customer, err := h.svcs.Customer.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("customer service update customer: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, customer)
}

func (h *handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svcs.Customer.DeleteCustomer(r.Context(), id); err != nil {
		h.writeError(w, r, fmt.Errorf("customer service delete customer: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
