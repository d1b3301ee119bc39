package service

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"file-conversion-server/internal/domain"

	"github.com/fumiama/go-docx"
)

const (
	docxFont = "Arial"
	// Run size in half-points.
	docxHalfPts = "24"
)

// WordConverter turns a PDF into a minimal DOCX holding its text.
type WordConverter struct {
	extractor domain.TextExtractor
	logger    domain.Logger
}

// NewWordConverter creates a new PDF to Word converter
func NewWordConverter(extractor domain.TextExtractor, logger domain.Logger) *WordConverter {
	return &WordConverter{
		extractor: extractor,
		logger:    logger,
	}
}

// Convert extracts the text of every page and writes it as one paragraph per
// line. Layout, images and fonts of the source are not carried over.
func (w *WordConverter) Convert(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	file := req.File()

	pages, err := w.extractor.ExtractText(ctx, file.Data)
	if err != nil {
		return nil, err
	}

	data, err := buildDocx(strings.Join(pages, "\n"))
	if err != nil {
		return nil, fmt.Errorf("build docx: %w", err)
	}

	w.logger.Info("PDF converted to Word", "pages", len(pages), "bytes", len(data))
	return singleResult(derivedFilename(file, "", ".docx"), contentTypeDocx, data), nil
}

// buildDocx writes one Arial paragraph per line of text.
func buildDocx(text string) ([]byte, error) {
	doc := docx.New().WithDefaultTheme()
	for _, line := range strings.Split(text, "\n") {
		run := doc.AddParagraph().AddText(line).
			Font(docxFont, docxFont, docxFont, "").
			Size(docxHalfPts)
		for _, child := range run.Children {
			if t, ok := child.(*docx.Text); ok {
				t.XMLSpace = "preserve"
			}
		}
	}

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
