package service

import (
	"file-conversion-server/internal/domain"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeZip  = "application/zip"
	contentTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// derivedFilename replaces the upload's extension: "report.pdf" with suffix
// "_locked" and ext ".pdf" becomes "report_locked.pdf".
func derivedFilename(file *domain.UploadedFile, suffix, ext string) string {
	base := file.BaseName()
	if base == "" || base == "." {
		base = "document"
	}
	return base + suffix + ext
}

// singleResult wraps one buffer as a downloadable result.
func singleResult(name, contentType string, data []byte) *domain.TransformResult {
	return &domain.TransformResult{
		Artifacts:   []domain.Artifact{{Name: name, ContentType: contentType, Data: data}},
		ContentType: contentType,
		Filename:    name,
	}
}

func pageRange(from, to int) []int {
	if to <= from {
		return nil
	}
	indices := make([]int, 0, to-from)
	for i := from; i < to; i++ {
		indices = append(indices, i)
	}
	return indices
}
