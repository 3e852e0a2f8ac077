package http

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tuanvumaihuynh/stockbook/internal/model"
)

func (h *handler) dashboard(w http.ResponseWriter, r *http.Request) {
	var filter model.DateFilter
	if err := bindQuery(r, "filter", &filter); err != nil {
		h.writeError(w, r, err)
		return
	}

	stats, err := h.svcs.Report.Dashboard(r.Context(), filter)
	if err != nil {
		h.writeError(w, r, fmt.Errorf("report service dashboard: %w", err))
		return
	}

	h.writeJSON(w, r, http.StatusOK, stats)
}

func (h *handler) exportProducts(w http.ResponseWriter, r *http.Request) {
	// buffered so that a failed export still yields a JSON error response
	var buf bytes.Buffer
	if err := h.svcs.Export.WriteProductsCSV(r.Context(), &buf); err != nil {
		h.writeError(w, r, fmt.Errorf("export service write products csv: %w", err))
		return
	}

	h.writeCSV(w, r, "products", buf.Bytes())
}

func (h *handler) exportCustomers(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.svcs.Export.WriteCustomersCSV(r.Context(), &buf); err != nil {
		h.writeError(w, r, fmt.Errorf("export service write customers csv: %w", err))
		return
	}

	h.writeCSV(w, r, "customers", buf.Bytes())
}

func (h *handler) writeCSV(w http.ResponseWriter, r *http.Request, name string, body []byte) {
	attachment(w, fmt.Sprintf("%s-%s.csv", name, time.Now().Format(time.DateOnly)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(body); err != nil {
		h.logger.WarnContext(r.Context(), "error writing csv", slog.Any("error", err))
	}
}
