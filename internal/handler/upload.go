package handler

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"file-conversion-server/internal/domain"
	apperrors "file-conversion-server/pkg/errors"
)

const (
	fieldPDF            = "pdf"
	fieldPDFs           = "pdfs"
	fieldFile           = "file"
	fieldSignatureImage = "signatureImage"

	mimePDF = "application/pdf"

	// multipartMemory is how much of a form is kept in memory before the
	// multipart reader spills file parts to temporary files.
	multipartMemory = 32 << 20
	// formOverhead leaves room for boundaries, headers and text fields on
	// top of the file payload.
	formOverhead = 1 << 20
)

var signatureImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
}

// uploadPolicy describes the file parts an endpoint accepts.
type uploadPolicy struct {
	field        string
	multiple     bool
	minFiles     int
	mimeTypes    map[string]bool
	mimeMessage  string
	missingFiles string
}

func policyFor(kind domain.OperationKind) uploadPolicy {
	pdfOnly := map[string]bool{mimePDF: true}
	switch kind {
	case domain.OperationMerge:
		return uploadPolicy{
			field:        fieldPDFs,
			multiple:     true,
			minFiles:     2,
			mimeTypes:    pdfOnly,
			mimeMessage:  "Only PDF files are allowed",
			missingFiles: "At least 2 PDF files required for merging",
		}
	case domain.OperationConvertFormat:
		return uploadPolicy{
			field:        fieldFile,
			minFiles:     1,
			missingFiles: "No file uploaded",
		}
	}
	return uploadPolicy{
		field:        fieldPDF,
		minFiles:     1,
		mimeTypes:    pdfOnly,
		mimeMessage:  "Only PDF files are allowed",
		missingFiles: "No PDF file uploaded",
	}
}

// UploadGateway parses multipart uploads into OperationRequests and enforces
// size, count and MIME limits before any processing starts.
type UploadGateway struct {
	maxFileSize int64
	maxFiles    int
}

// NewUploadGateway creates a new upload gateway
func NewUploadGateway(maxFileSize int64, maxFiles int) *UploadGateway {
	return &UploadGateway{
		maxFileSize: maxFileSize,
		maxFiles:    maxFiles,
	}
}

// uploadScope owns everything parsed from one request. Release must run on
// every exit path.
type uploadScope struct {
	form    *multipart.Form
	request *domain.OperationRequest
}

// Release removes multipart temp files and drops the request's buffers.
func (s *uploadScope) Release() {
	if s == nil {
		return
	}
	if s.form != nil {
		_ = s.form.RemoveAll()
		s.form = nil
	}
	if s.request != nil {
		for _, f := range s.request.Files {
			f.Data = nil
		}
		if s.request.SignatureImage != nil {
			s.request.SignatureImage.Data = nil
		}
		s.request.Files = nil
		s.request.SignatureImage = nil
		s.request = nil
	}
}

// Parse reads the request body. The returned scope is non-nil even when an
// error is returned, so callers can always defer Release.
func (g *UploadGateway) Parse(w http.ResponseWriter, r *http.Request, kind domain.OperationKind) (*domain.OperationRequest, *uploadScope, error) {
	scope := &uploadScope{}
	policy := policyFor(kind)

	maxFiles := 1
	if policy.multiple {
		maxFiles = g.maxFiles
	}
	// One extra file for an optional signature image.
	bodyLimit := g.maxFileSize*int64(maxFiles+1) + formOverhead
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr), errors.Is(err, multipart.ErrMessageTooLarge):
			return nil, scope, apperrors.NewValidationError("File too large", fmt.Sprintf("limit is %d bytes per file", g.maxFileSize))
		case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
			return nil, scope, apperrors.NewValidationError(policy.missingFiles)
		}
		return nil, scope, apperrors.NewValidationError("Malformed multipart request")
	}
	scope.form = r.MultipartForm

	headers := r.MultipartForm.File[policy.field]
	if len(headers) == 0 {
		return nil, scope, apperrors.NewValidationError(policy.missingFiles)
	}
	if len(headers) < policy.minFiles {
		return nil, scope, apperrors.NewValidationError(policy.missingFiles)
	}
	if len(headers) > maxFiles {
		return nil, scope, apperrors.NewValidationError(
			"Too many files",
			fmt.Sprintf("at most %d files are accepted", maxFiles),
		)
	}

	req := &domain.OperationRequest{
		Kind:   kind,
		Params: formValues(r.MultipartForm),
	}
	scope.request = req

	for _, fh := range headers {
		if err := g.checkPart(fh, policy.mimeTypes, policy.mimeMessage); err != nil {
			return nil, scope, err
		}
		file, err := g.readPart(policy.field, fh)
		if err != nil {
			return nil, scope, err
		}
		req.Files = append(req.Files, file)
	}

	if kind == domain.OperationSign {
		if sig := r.MultipartForm.File[fieldSignatureImage]; len(sig) > 0 {
			if err := g.checkPart(sig[0], signatureImageTypes, "Signature image must be a PNG or JPEG file"); err != nil {
				return nil, scope, err
			}
			file, err := g.readPart(fieldSignatureImage, sig[0])
			if err != nil {
				return nil, scope, err
			}
			req.SignatureImage = file
		}
	}

	return req, scope, nil
}

func (g *UploadGateway) checkPart(fh *multipart.FileHeader, allowed map[string]bool, message string) error {
	if fh.Size > g.maxFileSize {
		return apperrors.NewValidationError("File too large", fmt.Sprintf("%s is %d bytes, limit is %d", fh.Filename, fh.Size, g.maxFileSize))
	}
	if allowed != nil && !allowed[partMIMEType(fh)] {
		return apperrors.NewValidationError(message)
	}
	return nil
}

func (g *UploadGateway) readPart(field string, fh *multipart.FileHeader) (*domain.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, g.maxFileSize+1))
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to read upload", err)
	}
	if int64(len(data)) > g.maxFileSize {
		return nil, apperrors.NewValidationError("File too large")
	}

	return &domain.UploadedFile{
		Field:    field,
		Filename: filepath.Base(strings.TrimSpace(fh.Filename)),
		MIMEType: partMIMEType(fh),
		Data:     data,
	}, nil
}

func partMIMEType(fh *multipart.FileHeader) string {
	mediaType, _, err := mime.ParseMediaType(fh.Header.Get("Content-Type"))
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func formValues(form *multipart.Form) map[string]string {
	params := make(map[string]string, len(form.Value))
	for name, values := range form.Value {
		if len(values) > 0 {
			params[name] = values[0]
		}
	}
	return params
}
