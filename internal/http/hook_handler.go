package http

import (
	"fmt"
	"net/http"

	"github.com/tuanvumaihuynh/stockbook/internal/service"
)

type ImportProductsRequest struct {
	Products []service.CreateProductParams `json:"products"`
}

type ImportProductsResponse struct {
	Message string `json:"message"`
	Added   int    `json:"added"`
	Skipped int    `json:"skipped"`
}

type AdjustStockResponse struct {
	Message  string `json:"message"`
	Sku      string `json:"sku"`
	OldStock int    `json:"old_stock"`
	NewStock int    `json:"new_stock"`
}

func (h *handler) importProducts(w http.ResponseWriter, r *http.Request) {
	var req ImportProductsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svcs.Product.ImportProducts(r.Context(), req.Products)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service import products: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, ImportProductsResponse{
		Message: "import completed",
		Added:   res.Added,
		Skipped: res.Skipped,
	})
}

func (h *handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	var req service.AdjustStockParams
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	res, err := h.svcs.Product.AdjustStock(r.Context(), req)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("product service adjust stock: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, AdjustStockResponse{
		Message:  "stock updated",
		Sku:      res.Product.Sku,
		OldStock: res.OldStock,
		NewStock: res.NewStock,
	})
}
