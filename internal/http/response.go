package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/tuanvumaihuynh/stockbook/internal/apperr"
	"github.com/tuanvumaihuynh/stockbook/internal/http/apierr"
	"github.com/tuanvumaihuynh/stockbook/pkg/zerror"
)

const maxBodyBytes = 4 << 20

// ListResponse wraps collection responses.
type ListResponse[T any] struct {
	Data []T `json:"data"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.WarnContext(r.Context(), "error encoding response", slog.Any("error", err))
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	h.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if zErr, ok := zerror.As(err); ok && zErr.Retryable() {
		w.Header().Set("Retry-After", "1")
	}

	h.writeJSON(w, r, res.StatusCode, res)
}

// decodeJSON reads a single JSON document from the request body into dst.
// Unknown fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return apperr.NewValidation("request body is empty")
		case errors.As(err, &maxErr):
			return apperr.NewValidation("request body exceeds %d bytes", maxErr.Limit)
		default:
			return apperr.NewValidation("malformed request body: %v", err).WrapParent(err)
		}
	}

	if dec.More() {
		return apperr.NewValidation("request body must contain a single JSON document")
	}

	return nil
}

func bindPathUUID(r *http.Request, name string) (uuid.UUID, error) {
	var id uuid.UUID
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false},
	); err != nil {
		return uuid.Nil, apperr.NewValidation("invalid path parameter %s", name).WrapParent(err)
	}

	return id, nil
}

func bindPathString(r *http.Request, name string) (string, error) {
	var value string
	if err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false},
	); err != nil {
		return "", apperr.NewValidation("invalid path parameter %s", name).WrapParent(err)
	}
	if value == "" {
		return "", apperr.NewValidation("path parameter %s is required", name)
	}

	return value, nil
}

func bindQuery(r *http.Request, name string, dst any) error {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dst); err != nil {
		return apperr.NewValidation("invalid query parameter %s", name).WrapParent(err)
	}
	return nil
}

func attachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
}
