package handler

import (
	"archive/zip"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"file-conversion-server/internal/domain"
)

// writeResult streams a TransformResult. A single artifact is sent as is;
// several artifacts are written as a zip archive one entry at a time.
func writeResult(w http.ResponseWriter, result *domain.TransformResult) error {
	for key, value := range result.Headers {
		w.Header().Set(key, value)
	}
	w.Header().Set("Content-Disposition", contentDisposition(result.Filename))

	if !result.IsArchive() {
		artifact := result.Artifacts[0]
		contentType := result.ContentType
		if contentType == "" {
			contentType = artifact.ContentType
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
		w.WriteHeader(http.StatusOK)
		_, err := w.Write(artifact.Data)
		return err
	}

	w.Header().Set("Content-Type", "application/zip")
	w.WriteHeader(http.StatusOK)

	zw := zip.NewWriter(w)
	for i := range result.Artifacts {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   result.Artifacts[i].Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return err
		}
		if _, err := entry.Write(result.Artifacts[i].Data); err != nil {
			return err
		}
		result.Artifacts[i].Data = nil
	}
	return zw.Close()
}

// contentDisposition builds an attachment header. Non-ASCII names get an
// RFC 5987 filename* parameter next to an ASCII fallback.
func contentDisposition(filename string) string {
	name := sanitizeFilename(filename)
	ascii := asciiFallback(name)
	if ascii == name {
		return `attachment; filename="` + name + `"`
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return `attachment; filename="` + ascii + `"` + strings.TrimPrefix(v, "attachment")
	}
	return `attachment; filename="` + ascii + `"`
}

func sanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20 || r == 0x7F:
			return -1
		case r == '"' || r == '\\' || r == '/':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "download"
	}
	return name
}

func asciiFallback(name string) string {
	return strings.Map(func(r rune) rune {
		if r > 0x7E {
			return '_'
		}
		return r
	}, name)
}
