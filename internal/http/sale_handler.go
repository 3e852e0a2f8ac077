package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/model"
	"github.com/tuanvumaihuynh/stockbook/internal/service"
)

type CreateSaleItemRequest struct {
	Sku      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

type CreateSaleRequest struct {
	// SaleDate is a calendar date (2006-01-02) or an RFC 3339 timestamp.
	SaleDate     string                  `json:"sale_date"`
	CustomerID   *uuid.UUID              `json:"customer_id"`
	CustomerName string                  `json:"customer_name"`
	Items        []CreateSaleItemRequest `json:"items"`
	Notes        string                  `json:"notes"`
}

type SaleResponse struct {
	ID           uuid.UUID        `json:"id"`
	SaleDate     string           `json:"sale_date"`
	CustomerID   *uuid.UUID       `json:"customer_id"`
	CustomerName string           `json:"customer_name"`
	Items        []model.SaleItem `json:"items"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	Notes        string           `json:"notes"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func toSaleResponse(s model.Sale) SaleResponse {
	return SaleResponse{
		ID:           s.ID,
		SaleDate:     s.SaleDate.Format(time.DateOnly),
		CustomerID:   s.CustomerID,
		CustomerName: s.CustomerName,
		Items:        s.Items,
		TotalAmount:  s.TotalAmount,
		Notes:        s.Notes,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func parseSaleDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperr.NewValidation("sale_date must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}
	return t, nil
}

func (h *handler) listSales(w http.ResponseWriter, r *http.Request) {
	sales, err := h.svcs.Sale.ListSales(r.Context())
	if err != nil {
		h.writeError(w, r, fmt.Errorf("sale service list sales: %w", err))
		return
	}

	items := make([]SaleResponse, 0, len(sales))
	for _, s := range sales {
		items = append(items, toSaleResponse(s))
	}

	h.writeJSON(w, r, http.StatusOK, ListResponse[SaleResponse]{Data: items})
}

func (h *handler) getSale(w http.ResponseWriter, r *http.Request) {
	id, err := bindPathUUID(r, "id")
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sale, err := h.svcs.Sale.GetSale(r.Context(), id)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("sale service get sale: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, toSaleResponse(sale))
}

func (h *handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req CreateSaleRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	saleDate, err := parseSaleDate(req.SaleDate)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	params := service.CreateSaleParams{
		SaleDate:     saleDate,
		CustomerID:   req.CustomerID,
		CustomerName: req.CustomerName,
		Items:        make([]service.CreateSaleItemParams, 0, len(req.Items)),
		Notes:        req.Notes,
	}
	for _, item := range req.Items {
		params.Items = append(params.Items, service.CreateSaleItemParams{
			Sku:      item.Sku,
			Quantity: item.Quantity,
		})
	}

	sale, err := h.svcs.Sale.CreateSale(r.Context(), params)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("sale service create sale: %w", err))
		return
	}

	h.metrics.SalesCreated.Inc()
	for _, item := range sale.Items {
		h.metrics.SaleItemsSold.Add(float64(item.Quantity))
	}

	h.writeJSON(w, r, http.StatusCreated, toSaleResponse(sale))
}
