package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"file-conversion-server/internal/domain"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

func init() {
	// Keep pdfcpu from creating a configuration directory on disk.
	model.ConfigPath = "disable"
}

// PDFAdapter implements domain.DocumentAdapter on top of pdfcpu. Every
// Document it returns carries its own plain serialized bytes, so nothing is
// shared between calls.
type PDFAdapter struct {
	logger domain.Logger
}

// NewPDFAdapter creates a new document adapter
func NewPDFAdapter(logger domain.Logger) *PDFAdapter {
	return &PDFAdapter{logger: logger}
}

func newConfiguration(password string) *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	return conf
}

// Load decodes raw PDF bytes. An encrypted source is decrypted with password
// and the resulting Document is always plain.
func (a *PDFAdapter) Load(ctx context.Context, data []byte, password string) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrCorruptDocument)
	}

	pdfCtx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), newConfiguration(password))
	if err != nil {
		return nil, classifyReadError(err)
	}
	if err := pdfCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}
	if pdfCtx.PageCount == 0 {
		return nil, domain.ErrEmptyDocument
	}

	encrypted := pdfCtx.Encrypt != nil
	if encrypted {
		pdfCtx.Cmd = model.DECRYPT
	}

	pages, err := pageList(pdfCtx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdfCtx, &buf); err != nil {
		return nil, fmt.Errorf("serialize document: %w", err)
	}

	a.logger.Debug("PDF loaded", "pages", len(pages), "encrypted", encrypted, "bytes", len(data))

	return &domain.Document{
		Pages:        pages,
		WasEncrypted: encrypted,
		Content:      buf.Bytes(),
	}, nil
}

// CopyPages builds a new Document from src's pages at the given zero-based
// indices, in the order given. Indices may repeat or run backwards.
func (a *PDFAdapter) CopyPages(ctx context.Context, src *domain.Document, indices []int) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: no pages selected", domain.ErrPageOutOfRange)
	}

	selected := make([]string, len(indices))
	pages := make([]domain.Page, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= src.PageCount() {
			return nil, fmt.Errorf("%w: %d of %d", domain.ErrPageOutOfRange, idx, src.PageCount())
		}
		selected[i] = strconv.Itoa(idx + 1)
		pages[i] = src.Pages[idx]
		pages[i].Number = i + 1
	}

	var buf bytes.Buffer
	if err := api.Collect(bytes.NewReader(src.Content), &buf, selected, newConfiguration("")); err != nil {
		return nil, fmt.Errorf("collect pages: %w", err)
	}

	return &domain.Document{Pages: pages, Content: buf.Bytes()}, nil
}

// Merge concatenates docs in the order given.
func (a *PDFAdapter) Merge(ctx context.Context, docs []*domain.Document) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, domain.ErrEmptyDocument
	}
	if len(docs) == 1 {
		return docs[0], nil
	}

	readers := make([]io.ReadSeeker, len(docs))
	var pages []domain.Page
	for i, doc := range docs {
		readers[i] = bytes.NewReader(doc.Content)
		for _, p := range doc.Pages {
			p.Number = len(pages) + 1
			pages = append(pages, p)
		}
	}

	var buf bytes.Buffer
	if err := api.MergeRaw(readers, &buf, false, newConfiguration("")); err != nil {
		return nil, fmt.Errorf("merge documents: %w", err)
	}

	return &domain.Document{Pages: pages, Content: buf.Bytes()}, nil
}

// Overlay stamps text or an image onto one page.
func (a *PDFAdapter) Overlay(ctx context.Context, doc *domain.Document, overlay domain.Overlay) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if overlay.Page < 1 || overlay.Page > doc.PageCount() {
		return nil, fmt.Errorf("%w: overlay page %d", domain.ErrPageOutOfRange, overlay.Page)
	}

	wms, err := watermarksFor(overlay)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	stamps := map[int][]*model.Watermark{overlay.Page: wms}
	if err := api.AddWatermarksSliceMap(bytes.NewReader(doc.Content), &buf, stamps, newConfiguration("")); err != nil {
		return nil, fmt.Errorf("apply overlay: %w", err)
	}

	pages := make([]domain.Page, len(doc.Pages))
	copy(pages, doc.Pages)
	return &domain.Document{Pages: pages, Content: buf.Bytes()}, nil
}

func watermarksFor(overlay domain.Overlay) ([]*model.Watermark, error) {
	switch overlay.Kind {
	case domain.OverlayText:
		fontName := overlay.FontName
		if !font.IsCoreFont(fontName) {
			fontName = "Helvetica"
		}
		var wms []*model.Watermark
		x := overlay.X
		for _, run := range literalRuns(overlay.Text) {
			desc := fmt.Sprintf(
				"fontname:%s, points:%d, fillcolor:%.3f %.3f %.3f, position:bl, offset:%.2f %.2f, scalefactor:1 abs, rotation:0, opacity:1",
				fontName, int(overlay.FontSize),
				overlay.Color.R, overlay.Color.G, overlay.Color.B,
				x, overlay.Y,
			)
			wm, err := api.TextWatermark(escapePlaceholders(run), desc, true, false, types.POINTS)
			if err != nil {
				return nil, fmt.Errorf("text overlay: %w", err)
			}
			wms = append(wms, wm)
			x += font.TextWidth(run, fontName, int(overlay.FontSize))
		}
		if len(wms) == 0 {
			return nil, errors.New("text overlay: empty text")
		}
		return wms, nil
	case domain.OverlayImage:
		scale := overlay.Scale
		if scale <= 0 {
			scale = 1
		}
		desc := fmt.Sprintf(
			"position:bl, offset:%.2f %.2f, scalefactor:%.2f abs, rotation:0, opacity:1",
			overlay.X, overlay.Y, scale,
		)
		wm, err := api.ImageWatermarkForReader(bytes.NewReader(overlay.Image), desc, true, false, types.POINTS)
		if err != nil {
			return nil, fmt.Errorf("image overlay: %w", err)
		}
		return []*model.Watermark{wm}, nil
	}
	return nil, fmt.Errorf("unknown overlay kind %d", overlay.Kind)
}

// literalRuns cuts text after every '%'. pdfcpu expands %p, %P, %t and %v
// in stamp text and has no escape for them, so each run is stamped on its own
// and laid out next to the previous one.
func literalRuns(text string) []string {
	var runs []string
	for text != "" {
		i := strings.IndexByte(text, '%')
		if i < 0 {
			runs = append(runs, text)
			break
		}
		runs = append(runs, text[:i+1])
		text = text[i+1:]
	}
	return runs
}

// escapePlaceholders doubles a trailing '%', which pdfcpu renders as a single
// percent sign instead of dropping it.
func escapePlaceholders(run string) string {
	if strings.HasSuffix(run, "%") {
		return run + "%"
	}
	return run
}

// Save serializes doc, encrypting it when opts.Encryption is set.
func (a *PDFAdapter) Save(ctx context.Context, doc *domain.Document, opts domain.SaveOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if enc := opts.Encryption; enc != nil {
		conf := model.NewAESConfiguration(enc.UserPassword, enc.OwnerPassword, 256)
		conf.ValidationMode = model.ValidationRelaxed
		conf.Permissions = permissionFlags(enc.Permissions)
		applyCompressionLevel(conf, opts.Level)
		if err := api.Encrypt(bytes.NewReader(doc.Content), &buf, conf); err != nil {
			return nil, fmt.Errorf("encrypt document: %w", err)
		}
		return buf.Bytes(), nil
	}

	conf := newConfiguration("")
	applyCompressionLevel(conf, opts.Level)
	if err := api.Optimize(bytes.NewReader(doc.Content), &buf, conf); err != nil {
		return nil, fmt.Errorf("write document: %w", err)
	}
	return buf.Bytes(), nil
}

func applyCompressionLevel(conf *model.Configuration, level domain.CompressionLevel) {
	switch level {
	case domain.CompressionLow:
		conf.WriteObjectStream = false
		conf.WriteXRefStream = false
	case domain.CompressionHigh:
		conf.WriteObjectStream = true
		conf.WriteXRefStream = true
		conf.OptimizeDuplicateContentStreams = true
	default:
		conf.WriteObjectStream = true
		conf.WriteXRefStream = true
	}
}

func permissionFlags(p domain.Permissions) model.PermissionFlags {
	flags := model.PermissionsNone
	if p.Printing {
		flags |= model.PermissionPrintRev2
	}
	if p.HighResPrinting {
		flags |= model.PermissionPrintRev3
	}
	if p.Modifying {
		flags |= model.PermissionModify
	}
	if p.Copying {
		flags |= model.PermissionExtract
	}
	if p.Annotating {
		flags |= model.PermissionModAnnFillForm
	}
	if p.FillingForms {
		flags |= model.PermissionFillRev3
	}
	if p.ContentAccessibility {
		flags |= model.PermissionExtractRev3
	}
	if p.DocumentAssembly {
		flags |= model.PermissionAssembleRev3
	}
	return flags
}

func pageList(pdfCtx *model.Context) ([]domain.Page, error) {
	dims, err := pdfCtx.PageDims()
	if err != nil {
		return nil, err
	}
	pages := make([]domain.Page, len(dims))
	for i, d := range dims {
		pages[i] = domain.Page{Number: i + 1, Width: d.Width, Height: d.Height}
	}
	return pages, nil
}

func classifyReadError(err error) error {
	if errors.Is(err, pdfcpu.ErrWrongPassword) || strings.Contains(strings.ToLower(err.Error()), "password") {
		return fmt.Errorf("%w: %v", domain.ErrIncorrectPassword, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrCorruptDocument, err)
}
