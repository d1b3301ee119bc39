package domain

import (
	"path/filepath"
	"strings"
)

// UploadedFile is one multipart part received by the upload gateway. It is
// owned by the request that received it and must not be retained after the
// response is written.
type UploadedFile struct {
	Field    string
	Filename string
	MIMEType string
	Data     []byte
}

// Size returns the byte length of the payload.
func (f *UploadedFile) Size() int64 {
	return int64(len(f.Data))
}

// Extension returns the lower-cased filename extension without the dot.
func (f *UploadedFile) Extension() string {
	return strings.TrimPrefix(strings.ToLower(filepath.Ext(f.Filename)), ".")
}

// BaseName returns the filename with its final extension removed.
func (f *UploadedFile) BaseName() string {
	name := filepath.Base(f.Filename)
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// Page is a single renderable page with its intrinsic size in points.
type Page struct {
	Number int     `json:"number"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Document is a decoded PDF held in memory for the duration of a request.
// Content is the plain (unencrypted) serialized form and is only meaningful
// to the DocumentAdapter that produced it.
type Document struct {
	Pages        []Page
	WasEncrypted bool
	Content      []byte
}

// PageCount returns the number of pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// FirstPage returns the first page, or false for an empty document.
func (d *Document) FirstPage() (Page, bool) {
	if len(d.Pages) == 0 {
		return Page{}, false
	}
	return d.Pages[0], true
}

// Permissions lists what a reader may do with an encrypted document.
type Permissions struct {
	Printing             bool
	HighResPrinting      bool
	Modifying            bool
	Copying              bool
	Annotating           bool
	FillingForms         bool
	ContentAccessibility bool
	DocumentAssembly     bool
}

// PrintOnlyPermissions is the permission set applied when locking.
func PrintOnlyPermissions() Permissions {
	return Permissions{Printing: true, HighResPrinting: true}
}

// EncryptionOptions requests an encrypted save.
type EncryptionOptions struct {
	UserPassword  string
	OwnerPassword string
	Permissions   Permissions
}

// SaveOptions controls Document serialization. A nil Encryption means a
// plain save.
type SaveOptions struct {
	Encryption *EncryptionOptions
	Level      CompressionLevel
}

// OverlayKind selects what a page overlay draws.
type OverlayKind int

const (
	OverlayText OverlayKind = iota
	OverlayImage
)

// Overlay is something drawn onto a single page, anchored by the lower-left
// corner of its bounding box at (X, Y) in points.
type Overlay struct {
	Kind     OverlayKind
	Page     int
	X, Y     float64
	Text     string
	FontName string
	FontSize float64
	Color    RGB
	Image    []byte
	Scale    float64
}

// RGB is a color with channels normalized to 0..1.
type RGB struct {
	R, G, B float64
}

// Black is the default signature color.
var Black = RGB{}
