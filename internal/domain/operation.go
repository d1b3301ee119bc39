package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// OperationKind identifies one transformation exposed at the service boundary.
type OperationKind int

const (
	OperationMerge OperationKind = iota + 1
	OperationSplit
	OperationLock
	OperationUnlock
	OperationCompress
	OperationSign
	OperationConvertFormat
	OperationConvertToWord
)

// AllOperations lists every operation kind in declaration order.
func AllOperations() []OperationKind {
	return []OperationKind{
		OperationMerge,
		OperationSplit,
		OperationLock,
		OperationUnlock,
		OperationCompress,
		OperationSign,
		OperationConvertFormat,
		OperationConvertToWord,
	}
}

func (k OperationKind) String() string {
	switch k {
	case OperationMerge:
		return "merge"
	case OperationSplit:
		return "split"
	case OperationLock:
		return "lock"
	case OperationUnlock:
		return "unlock"
	case OperationCompress:
		return "compress"
	case OperationSign:
		return "esign"
	case OperationConvertFormat:
		return "convert-format"
	case OperationConvertToWord:
		return "convert-pdf-to-word"
	}
	return fmt.Sprintf("operation(%d)", int(k))
}

// MinFiles is the number of primary uploads the operation needs.
func (k OperationKind) MinFiles() int {
	if k == OperationMerge {
		return 2
	}
	return 1
}

// CompressionLevel is the requested compress strength.
type CompressionLevel string

const (
	CompressionLow    CompressionLevel = "low"
	CompressionMedium CompressionLevel = "medium"
	CompressionHigh   CompressionLevel = "high"
)

// ParseCompressionLevel accepts low, medium or high; empty means medium.
func ParseCompressionLevel(s string) (CompressionLevel, bool) {
	switch CompressionLevel(strings.ToLower(strings.TrimSpace(s))) {
	case "", CompressionMedium:
		return CompressionMedium, true
	case CompressionLow:
		return CompressionLow, true
	case CompressionHigh:
		return CompressionHigh, true
	}
	return "", false
}

// SignatureType selects how esign draws the signature.
type SignatureType string

const (
	SignatureText   SignatureType = "text"
	SignatureUpload SignatureType = "upload"
)

// SignatureFontSize maps the signatureSize parameter to points.
func SignatureFontSize(size string) float64 {
	switch strings.ToLower(strings.TrimSpace(size)) {
	case "small":
		return 12
	case "medium":
		return 16
	case "large":
		return 20
	}
	return 24
}

// Request parameter names.
const (
	ParamSplitPage        = "splitPage"
	ParamPassword         = "password"
	ParamCompressionLevel = "compressionLevel"
	ParamSignatureType    = "signatureType"
	ParamSignatureText    = "signatureText"
	ParamSignatureFont    = "signatureFont"
	ParamSignatureColor   = "signatureColor"
	ParamSignatureSize    = "signatureSize"
	ParamTargetFormat     = "targetFormat"
)

// OperationRequest is an operation plus its inputs, all scoped to one request.
type OperationRequest struct {
	Kind           OperationKind
	Files          []*UploadedFile
	SignatureImage *UploadedFile
	Params         map[string]string
}

// Param returns the trimmed value of a form parameter.
func (r *OperationRequest) Param(name string) string {
	if r.Params == nil {
		return ""
	}
	return strings.TrimSpace(r.Params[name])
}

// RawParam returns a parameter without trimming. Passwords keep their spaces.
func (r *OperationRequest) RawParam(name string) string {
	if r.Params == nil {
		return ""
	}
	return r.Params[name]
}

// IntParam parses an integer parameter. ok is false when the parameter is
// missing or not an integer.
func (r *OperationRequest) IntParam(name string) (int, bool) {
	v, err := strconv.Atoi(r.Param(name))
	if err != nil {
		return 0, false
	}
	return v, true
}

// File returns the first primary upload or nil.
func (r *OperationRequest) File() *UploadedFile {
	if len(r.Files) == 0 {
		return nil
	}
	return r.Files[0]
}

// Artifact is one named output buffer.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// TransformResult is what an operation produces. A result with more than one
// artifact is packaged as a zip archive named Filename.
type TransformResult struct {
	Artifacts   []Artifact
	ContentType string
	Filename    string
	Headers     map[string]string
}

// IsArchive reports whether the result must be packaged as an archive.
func (r *TransformResult) IsArchive() bool {
	return len(r.Artifacts) > 1
}

// SetHeader records an extra response header.
func (r *TransformResult) SetHeader(key, value string) {
	if r.Headers == nil {
		r.Headers = make(map[string]string)
	}
	r.Headers[key] = value
}
