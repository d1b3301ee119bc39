// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"file-conversion-server/internal/domain"
)

// Dispatcher runs one parsed operation.
type Dispatcher interface {
	Dispatch(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error)
}

// OperationHandler serves every file transformation endpoint.
type OperationHandler struct {
	gateway    *UploadGateway
	dispatcher Dispatcher
	logger     domain.Logger
}

// NewOperationHandler creates a new operation handler
func NewOperationHandler(gateway *UploadGateway, dispatcher Dispatcher, logger domain.Logger) *OperationHandler {
	return &OperationHandler{
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Handle returns the endpoint for kind.
func (h *OperationHandler) Handle(kind domain.OperationKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, scope, err := h.gateway.Parse(w, r, kind)
		defer scope.Release()
		if err != nil {
			writeAppError(w, r, h.logger, err)
			return
		}

		result, err := h.dispatcher.Dispatch(r.Context(), req)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				h.logger.Debug("Client went away", "operation", kind.String(), "request_id", RequestIDFromContext(r.Context()))
				return
			}
			writeAppError(w, r, h.logger, err)
			return
		}

		if err := writeResult(w, result); err != nil {
			// Headers are already sent; all that is left is to record it.
			h.logger.Warn("Failed to write response", "operation", kind.String(), "error", err.Error())
		}
	}
}
