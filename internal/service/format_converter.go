package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"
	"unicode/utf8"

	"file-conversion-server/internal/domain"
	apperrors "file-conversion-server/pkg/errors"

	"github.com/HugoSmits86/nativewebp"
	"golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/encoding/charmap"
)

const (
	jpegQuality = 90
	// maxImagePixels bounds the decoded size of any uploaded raster. Highly
	// compressed inputs can otherwise expand far beyond the upload limit.
	maxImagePixels = 40_000_000
)

var rasterSourceExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
	"bmp":  true,
	"tiff": true,
	"tif":  true,
}

var rasterTargetTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"webp": "image/webp",
	"gif":  "image/gif",
	"bmp":  "image/bmp",
}

var textTargetTypes = map[string]string{
	"txt":  "text/plain",
	"html": "text/html",
}

// FormatConverter re-encodes raster images and wraps plain text as HTML.
type FormatConverter struct {
	logger domain.Logger
}

// NewFormatConverter creates a new format converter
func NewFormatConverter(logger domain.Logger) *FormatConverter {
	return &FormatConverter{logger: logger}
}

// Convert dispatches on the uploaded file's extension.
func (c *FormatConverter) Convert(ctx context.Context, req *domain.OperationRequest) (*domain.TransformResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := req.File()
	target := strings.TrimPrefix(strings.ToLower(req.Param(domain.ParamTargetFormat)), ".")
	if target == "" {
		return nil, apperrors.NewValidationError("Target format is required")
	}

	source := file.Extension()
	switch {
	case rasterSourceExtensions[source]:
		return c.convertImage(file, target)
	case source == "txt":
		return c.convertText(file, target)
	}
	return nil, apperrors.NewUnsupportedFormatError(
		"File type not supported for conversion. Office document conversion requires LibreOffice or similar software.",
	)
}

func (c *FormatConverter) convertImage(file *domain.UploadedFile, target string) (*domain.TransformResult, error) {
	contentType, ok := rasterTargetTypes[target]
	if !ok {
		return nil, apperrors.NewUnsupportedFormatError("Unsupported target format for images")
	}

	if _, _, err := checkImageBounds(file.Data); err != nil {
		return nil, err
	}
	img, sourceFormat, err := image.Decode(bytes.NewReader(file.Data))
	if err != nil {
		return nil, apperrors.NewProcessingError("Failed to decode image", err)
	}

	var buf bytes.Buffer
	switch target {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, flattenOnWhite(img), &jpeg.Options{Quality: jpegQuality})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "bmp":
		err = bmp.Encode(&buf, flattenOnWhite(img))
	case "webp":
		err = nativewebp.Encode(&buf, img, nil)
	}
	if err != nil {
		return nil, apperrors.NewProcessingError("Failed to encode image", err)
	}

	c.logger.Debug("Image converted", "from", sourceFormat, "to", target, "bytes", buf.Len())
	return singleResult(derivedFilename(file, "", "."+target), contentType, buf.Bytes()), nil
}

// checkImageBounds reads only the image header and rejects pictures whose
// pixel count exceeds maxImagePixels.
func checkImageBounds(data []byte) (image.Config, string, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return cfg, format, apperrors.NewProcessingError("Failed to decode image", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return cfg, format, apperrors.NewValidationError(
			"Image dimensions too large",
			fmt.Sprintf("%dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, maxImagePixels),
		)
	}
	return cfg, format, nil
}

// flattenOnWhite composites img over an opaque white background for formats
// without an alpha channel.
func flattenOnWhite(img image.Image) image.Image {
	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)
	xdraw.Draw(dst, bounds, image.White, image.Point{}, xdraw.Src)
	xdraw.Draw(dst, bounds, img, bounds.Min, xdraw.Over)
	return dst
}

func (c *FormatConverter) convertText(file *domain.UploadedFile, target string) (*domain.TransformResult, error) {
	contentType, ok := textTargetTypes[target]
	if !ok {
		return nil, apperrors.NewUnsupportedFormatError("Unsupported target format for text files")
	}
	name := derivedFilename(file, "", "."+target)

	if target == "txt" {
		return singleResult(name, contentType, file.Data), nil
	}

	text, err := decodeText(file.Data)
	if err != nil {
		return nil, apperrors.NewProcessingError("Failed to decode text file", err)
	}
	out, err := wrapTextAsHTML(text)
	if err != nil {
		return nil, apperrors.NewProcessingError("Failed to render HTML", err)
	}
	return singleResult(name, contentType, out), nil
}

// decodeText returns data as UTF-8, treating invalid UTF-8 as Windows-1252.
func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

// wrapTextAsHTML renders <html><body><pre>text</pre></body></html> with the
// text escaped.
func wrapTextAsHTML(text string) ([]byte, error) {
	pre := &html.Node{Type: html.ElementNode, DataAtom: atom.Pre, Data: "pre"}
	pre.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	body := &html.Node{Type: html.ElementNode, DataAtom: atom.Body, Data: "body"}
	body.AppendChild(pre)
	root := &html.Node{Type: html.ElementNode, DataAtom: atom.Html, Data: "html"}
	root.AppendChild(body)

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
