package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"lumaregistrar/internal/delivery/http/helpers"
	"lumaregistrar/internal/domain"
)

// writeServiceError maps domain errors to HTTP status codes. Unknown errors are logged and returned as 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "registration not found")
	case errors.Is(err, domain.ErrProviderRejected):
		helpers.WriteJSONError(w, http.StatusBadGateway, helpers.ErrCodeProviderRejected, err.Error())
	case errors.Is(err, domain.ErrCodeNotFound):
		helpers.WriteJSONError(w, http.StatusGatewayTimeout, helpers.ErrCodeCodeNotFound, err.Error())
	case errors.Is(err, domain.ErrStoreUnavailable):
		logger.ErrorContext(r.Context(), "record store unavailable", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeServiceUnavailable, "record store unavailable")
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
