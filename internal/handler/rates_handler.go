package handler

import (
	"net/http"

	"file-conversion-server/internal/domain"
	apperrors "file-conversion-server/pkg/errors"
)

// RatesHandler serves GET /currency-rates.
type RatesHandler struct {
	rates  domain.RatesProvider
	logger domain.Logger
}

// NewRatesHandler creates a new rates handler
func NewRatesHandler(rates domain.RatesProvider, logger domain.Logger) *RatesHandler {
	return &RatesHandler{
		rates:  rates,
		logger: logger,
	}
}

// GetRates returns the live table, or the fallback table when the provider
// is unavailable. X-Rates-Tier tells the two apart.
func (h *RatesHandler) GetRates(w http.ResponseWriter, r *http.Request) {
	table, err := h.rates.Rates(r.Context())
	if err != nil {
		writeAppError(w, r, h.logger, apperrors.NewInternalError("Failed to fetch currency rates", err))
		return
	}
	w.Header().Set("X-Rates-Tier", string(table.Tier))
	writeJSON(w, http.StatusOK, table)
}

type healthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health reports that the process is serving requests.
func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Message: "File conversion backend is running"})
}
