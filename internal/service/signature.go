package service

import (
	"context"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strconv"
	"strings"

	"file-conversion-server/internal/domain"
	apperrors "file-conversion-server/pkg/errors"
)

const (
	textSignatureRightInset = 200
	textSignatureBaseline   = 50
	imageSignatureScale     = 0.5
	imageSignatureRight     = 50
	imageSignatureBottom    = 30
)

// Sign draws a text or image signature near the bottom-right of page 1.
func (o *PDFOperations) Sign(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	file := req.File()

	sigType := domain.SignatureType(strings.ToLower(req.Param(domain.ParamSignatureType)))
	if sigType == "" {
		sigType = domain.SignatureText
	}

	var overlay domain.Overlay
	var imageWidth float64
	switch sigType {
	case domain.SignatureText:
		text := req.Param(domain.ParamSignatureText)
		if text == "" {
			return nil, apperrors.NewValidationError("Signature text is required")
		}
		color, ok := parseHexColor(req.Param(domain.ParamSignatureColor))
		if !ok {
			color = domain.Black
		}
		overlay = domain.Overlay{
			Kind:     domain.OverlayText,
			Text:     text,
			FontName: signatureFont(req.Param(domain.ParamSignatureFont)),
			FontSize: domain.SignatureFontSize(req.Param(domain.ParamSignatureSize)),
			Color:    color,
		}
	case domain.SignatureUpload:
		img := req.SignatureImage
		if img == nil || len(img.Data) == 0 {
			return nil, apperrors.NewValidationError("Signature image is required")
		}
		cfg, format, err := checkImageBounds(img.Data)
		if apperrors.IsType(err, apperrors.ErrorTypeValidation) {
			return nil, err
		}
		if err != nil || (format != "png" && format != "jpeg") {
			return nil, apperrors.NewUnsupportedFormatError("Signature image must be a PNG or JPEG file")
		}
		imageWidth = float64(cfg.Width) * imageSignatureScale
		overlay = domain.Overlay{
			Kind:  domain.OverlayImage,
			Image: img.Data,
			Scale: imageSignatureScale,
		}
	default:
		return nil, apperrors.NewValidationError("Invalid signature type", "expected text or upload")
	}

	doc, err := o.adapter.Load(ctx, file.Data, "")
	if err != nil {
		return nil, err
	}
	page, ok := doc.FirstPage()
	if !ok {
		return nil, domain.ErrEmptyDocument
	}

	overlay.Page = 1
	if overlay.Kind == domain.OverlayText {
		overlay.X = math.Max(page.Width-textSignatureRightInset, 0)
		overlay.Y = textSignatureBaseline
	} else {
		overlay.X = math.Max(page.Width-imageWidth-imageSignatureRight, 0)
		overlay.Y = imageSignatureBottom
	}

	signed, err := o.adapter.Overlay(ctx, doc, overlay)
	if err != nil {
		return nil, err
	}
	data, err := o.adapter.Save(ctx, signed, domain.SaveOptions{})
	if err != nil {
		return nil, err
	}

	o.logger.Info("PDF signed", "type", sigType, "page_width", page.Width)
	return singleResult(derivedFilename(file, "_signed", ".pdf"), contentTypePDF, data), nil
}

// parseHexColor parses "#rrggbb" or "rrggbb" into normalized channels.
func parseHexColor(s string) (domain.RGB, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return domain.RGB{}, false
	}
	var ch [3]float64
	for i := range ch {
		v, err := strconv.ParseUint(s[2*i:2*i+2], 16, 8)
		if err != nil {
			return domain.RGB{}, false
		}
		ch[i] = float64(v) / 255
	}
	return domain.RGB{R: ch[0], G: ch[1], B: ch[2]}, true
}

// signatureFont maps a requested font family onto one of the PDF core fonts.
func signatureFont(name string) string {
	n := strings.ToLower(name)
	switch {
	case n == "":
		return "Helvetica"
	case containsAny(n, "cursive", "script", "brush", "dancing", "signature"):
		return "Times-Italic"
	case containsAny(n, "courier", "mono"):
		return "Courier"
	case containsAny(n, "times", "georgia") || (strings.Contains(n, "serif") && !strings.Contains(n, "sans")):
		return "Times-Roman"
	}
	return "Helvetica"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
