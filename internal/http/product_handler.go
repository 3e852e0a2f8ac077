package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/service"
)

func (h *handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.svcs.Product.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service list products: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, ListResponse[model.Product]{Data: products})
}

func (h *handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svcs.Product.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service get product: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, product)
}

func (h *handler) getProductBySku(w http.ResponseWriter, r *http.Request) {
	sku, err := bindPathString(r, "sku")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svcs.Product.GetProductBySku(r.Context(), sku)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service get product by sku: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, product)
}

func (h *handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req service.CreateProductParams
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svcs.Product.CreateProduct(r.Context(), req)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service create product: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusCreated, product)
}

func (h *handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	var req service.UpdateProductParams
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	product, err := h.svcs.Product.UpdateProduct(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service update product: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, product)
}

func (h *handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svcs.Product.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, fmt.Errorf("product service delete product: %w", err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
