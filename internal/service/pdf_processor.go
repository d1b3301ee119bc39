package service

import (
	"context"
	"fmt"
	"strings"

	"file-conversion-server/internal/domain"

	"github.com/gen2brain/go-fitz"
)

// PDFTextExtractor pulls plain text out of PDFs with MuPDF.
type PDFTextExtractor struct {
	logger domain.Logger
}

// NewPDFTextExtractor creates a new text extractor
func NewPDFTextExtractor(logger domain.Logger) *PDFTextExtractor {
	return &PDFTextExtractor{
		logger: logger,
	}
}

// ExtractText returns the text of every page in order. Pages whose text
// cannot be read come back empty rather than failing the whole document.
func (p *PDFTextExtractor) ExtractText(ctx context.Context, data []byte) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrCorruptDocument)
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	if total == 0 {
		return nil, domain.ErrEmptyDocument
	}

	pages := make([]string, total)
	for idx := 0; idx < total; idx++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := doc.Text(idx)
		if err != nil {
			p.logger.Warn("Failed to extract page text", "page", idx+1, "error", err.Error())
			continue
		}
		pages[idx] = sanitizeText(text)
	}

	p.logger.Debug("PDF text extracted", "pages", total)
	return pages, nil
}

// sanitizeText drops NUL, stray control characters and invalid runes, keeping
// tabs and newlines. Carriage returns are normalized to newlines.
func sanitizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t' || r == '\n':
			result.WriteRune(r)
		case r == '\r':
			result.WriteRune('\n')
		case r < 0x20 || r == 0x7F:
			// control characters are not valid in WordprocessingML
		case r == 0xFFFD || r == 0xFFFE || r == 0xFFFF:
		case r >= 0xD800 && r <= 0xDFFF:
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}
