package service

import (
	"context"
	"fmt"
	"strconv"

	"file-conversion-server/internal/domain"
	apperrors "file-conversion-server/pkg/errors"

	"golang.org/x/sync/errgroup"
)

// maxParallelLoads bounds concurrent document decodes within one merge.
const maxParallelLoads = 4

// PDFOperations implements the PDF transformations. Each method only reads
// its request and returns a fresh result.
type PDFOperations struct {
	adapter domain.DocumentAdapter
	logger  domain.Logger
}

// NewPDFOperations creates the PDF operation set
func NewPDFOperations(adapter domain.DocumentAdapter, logger domain.Logger) *PDFOperations {
	return &PDFOperations{
		adapter: adapter,
		logger:  logger,
	}
}

// Merge concatenates every uploaded PDF, in upload order, into merged.pdf.
func (o *PDFOperations) Merge(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	if len(req.Files) < 2 {
		return nil, apperrors.NewValidationError("At least 2 PDF files required for merging")
	}

	// Loads may finish in any order; docs keeps upload order by index.
	docs := make([]*domain.Document, len(req.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, file := range req.Files {
		g.Go(func() error {
			doc, err := o.adapter.Load(gctx, file.Data, "")
			if err != nil {
				return fmt.Errorf("load %q: %w", file.Filename, err)
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged, err := o.adapter.Merge(ctx, docs)
	if err != nil {
		return nil, err
	}
	data, err := o.adapter.Save(ctx, merged, domain.SaveOptions{})
	if err != nil {
		return nil, err
	}

	o.logger.Info("PDFs merged", "files", len(req.Files), "pages", merged.PageCount())
	return singleResult("merged.pdf", contentTypePDF, data), nil
}

// Split cuts the document before page splitPage (1-based) and returns both
// halves as part1.pdf and part2.pdf.
func (o *PDFOperations) Split(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	file := req.File()
	splitPage, ok := req.IntParam(domain.ParamSplitPage)
	if !ok || splitPage < 1 {
		return nil, apperrors.NewValidationError("Invalid split page number")
	}

	doc, err := o.adapter.Load(ctx, file.Data, "")
	if err != nil {
		return nil, err
	}
	total := doc.PageCount()
	if splitPage >= total {
		return nil, apperrors.NewValidationError(
			"Split page number exceeds total pages",
			fmt.Sprintf("splitPage=%d totalPages=%d", splitPage, total),
		)
	}

	parts := [][]int{pageRange(0, splitPage), pageRange(splitPage, total)}
	artifacts := make([]domain.Artifact, 0, len(parts))
	for i, indices := range parts {
		part, err := o.adapter.CopyPages(ctx, doc, indices)
		if err != nil {
			return nil, err
		}
		data, err := o.adapter.Save(ctx, part, domain.SaveOptions{})
		if err != nil {
			return nil, err
		}
		artifacts = append(artifacts, domain.Artifact{
			Name:        "part" + strconv.Itoa(i+1) + ".pdf",
			ContentType: contentTypePDF,
			Data:        data,
		})
	}

	o.logger.Info("PDF split", "pages", total, "split_page", splitPage)
	return &domain.TransformResult{
		Artifacts:   artifacts,
		ContentType: contentTypeZip,
		Filename:    derivedFilename(file, "_split", ".zip"),
	}, nil
}

// Lock encrypts the document with password as both user and owner password.
// Readers may only print.
func (o *PDFOperations) Lock(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	file := req.File()
	password := req.RawParam(domain.ParamPassword)
	if password == "" {
		return nil, apperrors.NewValidationError("Password is required")
	}

	doc, err := o.adapter.Load(ctx, file.Data, "")
	if err != nil {
		return nil, err
	}
	data, err := o.adapter.Save(ctx, doc, domain.SaveOptions{
		Encryption: &domain.EncryptionOptions{
			UserPassword:  password,
			OwnerPassword: password,
			Permissions:   domain.PrintOnlyPermissions(),
		},
	})
	if err != nil {
		return nil, err
	}

	return singleResult(derivedFilename(file, "_locked", ".pdf"), contentTypePDF, data), nil
}

// Unlock decrypts the document with password and saves it without encryption.
func (o *PDFOperations) Unlock(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	file := req.File()
	password := req.RawParam(domain.ParamPassword)
	if password == "" {
		return nil, apperrors.NewValidationError("Password is required")
	}

	doc, err := o.adapter.Load(ctx, file.Data, password)
	if err != nil {
		return nil, err
	}
	if !doc.WasEncrypted {
		o.logger.Debug("Unlock requested for a plain PDF", "filename", file.Filename)
	}
	data, err := o.adapter.Save(ctx, doc, domain.SaveOptions{})
	if err != nil {
		return nil, err
	}

	return singleResult(derivedFilename(file, "_unlocked", ".pdf"), contentTypePDF, data), nil
}

// Compress re-serializes the document. The size reduction is best effort and
// the output may be larger than the input.
func (o *PDFOperations) Compress(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	file := req.File()
	level, ok := domain.ParseCompressionLevel(req.Param(domain.ParamCompressionLevel))
	if !ok {
		return nil, apperrors.NewValidationError("Invalid compression level", "expected low, medium or high")
	}

	doc, err := o.adapter.Load(ctx, file.Data, "")
	if err != nil {
		return nil, err
	}
	data, err := o.adapter.Save(ctx, doc, domain.SaveOptions{Level: level})
	if err != nil {
		return nil, err
	}

	o.logger.Info("PDF compressed", "level", level, "original_size", file.Size(), "compressed_size", len(data))
	result := singleResult(derivedFilename(file, "_compressed", ".pdf"), contentTypePDF, data)
	result.SetHeader("X-Original-Size", strconv.FormatInt(file.Size(), 10))
	result.SetHeader("X-Compressed-Size", strconv.Itoa(len(data)))
	return result, nil
}
