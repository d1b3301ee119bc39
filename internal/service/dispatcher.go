package service

import (
	"context"
	"errors"
	"fmt"

	"file-conversion-server/internal/domain"
	apperrors "file-conversion-server/pkg/errors"
)

// OperationFunc performs one transformation.
type OperationFunc func(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error)

// Dispatcher routes an OperationRequest to its implementation and maps
// failures onto the application error taxonomy.
type Dispatcher struct {
	pdf    *PDFOperations
	format *FormatConverter
	word   *WordConverter
	logger domain.Logger
}

// NewDispatcher creates a new operation dispatcher
func NewDispatcher(pdf *PDFOperations, format *FormatConverter, word *WordConverter, logger domain.Logger) *Dispatcher {
	return &Dispatcher{
		pdf:    pdf,
		format: format,
		word:   word,
		logger: logger,
	}
}

func (d *Dispatcher) handlerFor(kind domain.OperationKind) (OperationFunc, bool) {
	switch kind {
	case domain.OperationMerge:
		return d.pdf.Merge, true
	case domain.OperationSplit:
		return d.pdf.Split, true
	case domain.OperationLock:
		return d.pdf.Lock, true
	case domain.OperationUnlock:
		return d.pdf.Unlock, true
	case domain.OperationCompress:
		return d.pdf.Compress, true
	case domain.OperationSign:
		return d.pdf.Sign, true
	case domain.OperationConvertFormat:
		return d.format.Convert, true
	case domain.OperationConvertToWord:
		return d.word.Convert, true
	}
	return nil, false
}

// Dispatch runs req. Every returned error is an *apperrors.AppError, except
// context cancellation which is passed through unchanged.
func (d *Dispatcher) Dispatch(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	fn, ok := d.handlerFor(req.Kind)
	if !ok {
		return nil, apperrors.NewInternalError("Unknown operation", fmt.Errorf("operation %s", req.Kind))
	}
	if len(req.Files) < req.Kind.MinFiles() || req.File() == nil {
		return nil, apperrors.NewValidationError(missingFileMessage(req.Kind))
	}

	result, err := fn(ctx, req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		mapped := mapOperationError(req.Kind, err)
		if apperrors.GetStatusCode(mapped) >= 500 {
			d.logger.Error("Operation failed", err, "operation", req.Kind.String())
		} else {
			d.logger.Debug("Operation rejected", "operation", req.Kind.String(), "error", err.Error())
		}
		return nil, mapped
	}
	return result, nil
}

func missingFileMessage(kind domain.OperationKind) string {
	switch kind {
	case domain.OperationMerge:
		return "At least 2 PDF files required for merging"
	case domain.OperationConvertFormat:
		return "No file uploaded"
	}
	return "No PDF file uploaded"
}

const corruptDocumentMessage = "Failed to read PDF: the file is corrupt or unsupported"

func mapOperationError(kind domain.OperationKind, err error) error {
	if appErr, ok := apperrors.As(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, domain.ErrIncorrectPassword):
		return apperrors.NewDecryptionError(err)
	case errors.Is(err, domain.ErrCorruptDocument):
		return apperrors.NewProcessingError(corruptDocumentMessage, err)
	case errors.Is(err, domain.ErrEmptyDocument):
		return apperrors.NewValidationError("PDF has no pages")
	}
	return apperrors.NewProcessingError(failureMessage(kind), err)
}

func failureMessage(kind domain.OperationKind) string {
	switch kind {
	case domain.OperationMerge:
		return "Failed to merge PDFs"
	case domain.OperationSplit:
		return "Failed to split PDF"
	case domain.OperationLock:
		return "Failed to lock PDF"
	case domain.OperationUnlock:
		return "Failed to unlock PDF"
	case domain.OperationCompress:
		return "Failed to compress PDF"
	case domain.OperationSign:
		return "Failed to add signature to PDF"
	case domain.OperationConvertFormat:
		return "Failed to convert file"
	case domain.OperationConvertToWord:
		return "Failed to convert PDF to Word"
	}
	return "Operation failed"
}
