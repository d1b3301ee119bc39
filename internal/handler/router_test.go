package handler

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"file-conversion-server/internal/domain"
	"file-conversion-server/internal/pdftest"
	"file-conversion-server/internal/service"
)

const testMaxFileSize = 1 << 20

type formFile struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func pdfPart(field, name string, data []byte) formFile {
	return formFile{field: field, name: name, contentType: "application/pdf", data: data}
}

func multipartRequest(t *testing.T, path string, files []formFile, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

type staticRates struct {
	table *domain.RateTable
}

func (s staticRates) Rates(ctx context.Context) (*domain.RateTable, error) {
	return s.table, nil
}

func newTestRouter(t *testing.T, rates domain.RatesProvider) http.Handler {
	t.Helper()
	logger := NewMockHandlerLogger()
	dispatcher := service.NewDispatcher(
		service.NewPDFOperations(service.NewPDFAdapter(logger), logger),
		service.NewFormatConverter(logger),
		service.NewWordConverter(service.NewPDFTextExtractor(logger), logger),
		logger,
	)
	if rates == nil {
		rates = staticRates{table: &domain.RateTable{Rates: map[string]float64{"USD": 1}, Base: "USD", Date: "2024-01-01", Tier: domain.RateTierLive}}
	}
	ops := NewOperationHandler(NewUploadGateway(testMaxFileSize, 10), dispatcher, logger)
	return NewRouter(ops, NewRatesHandler(rates, logger), logger, []string{"http://localhost:3000"})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func errorMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %q: %v", rr.Body.String(), err)
	}
	return body.Error
}

func pageCount(t *testing.T, data []byte, password string) int {
	t.Helper()
	doc, err := service.NewPDFAdapter(NewMockHandlerLogger()).Load(context.Background(), data, password)
	if err != nil {
		t.Fatalf("load output: %v", err)
	}
	return doc.PageCount()
}

func TestNewRouter_Health(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"status":"OK"`) || !strings.Contains(rr.Body.String(), "File conversion backend is running") {
		t.Fatalf("unexpected response body: %s", rr.Body.String())
	}
	if rr.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}
}

func TestNewRouter_MethodNotAllowed(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := serve(router, httptest.NewRequest(http.MethodGet, "/merge-pdfs", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", http.StatusMethodNotAllowed, rr.Code)
	}
}

func TestMergePDFs(t *testing.T) {
	router := newTestRouter(t, nil)
	req := multipartRequest(t, "/merge-pdfs", []formFile{
		pdfPart("pdfs", "a.pdf", pdftest.BuildPages(1)),
		pdfPart("pdfs", "b.pdf", pdftest.BuildPages(1)),
	}, nil)

	rr := serve(router, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("expected application/pdf, got %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="merged.pdf"` {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if rr.Header().Get("Content-Length") != strconv.Itoa(rr.Body.Len()) {
		t.Fatalf("expected Content-Length to match body")
	}
	if n := pageCount(t, rr.Body.Bytes(), ""); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
}

func TestMergePDFs_RequiresTwo(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := serve(router, multipartRequest(t, "/merge-pdfs", []formFile{pdfPart("pdfs", "a.pdf", pdftest.BuildPages(1))}, nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "At least 2 PDF files required for merging" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestSplitPDF_Zip(t *testing.T) {
	router := newTestRouter(t, nil)
	req := multipartRequest(t, "/split-pdf", []formFile{pdfPart("pdf", "book.pdf", pdftest.BuildPages(5))}, map[string]string{
		"splitPage": "2",
	})

	rr := serve(router, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/zip" {
		t.Fatalf("expected application/zip, got %s", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="book_split.zip"` {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}

	zr, err := zip.NewReader(bytes.NewReader(rr.Body.Bytes()), int64(rr.Body.Len()))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	want := map[string]int{"part1.pdf": 2, "part2.pdf": 3}
	if len(zr.File) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(zr.File))
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		if n := pageCount(t, data, ""); n != want[f.Name] {
			t.Fatalf("%s: expected %d pages, got %d", f.Name, want[f.Name], n)
		}
	}
}

func TestSplitPDF_ExceedsTotal(t *testing.T) {
	router := newTestRouter(t, nil)
	req := multipartRequest(t, "/split-pdf", []formFile{pdfPart("pdf", "book.pdf", pdftest.BuildPages(3))}, map[string]string{
		"splitPage": "3",
	})

	rr := serve(router, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Split page number exceeds total pages" {
		t.Fatalf("unexpected error %q", msg)
	}
}

func TestLockUnlock(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := serve(router, multipartRequest(t, "/lock-pdf", []formFile{pdfPart("pdf", "doc.pdf", pdftest.BuildPages(2))}, map[string]string{
		"password": "abc123",
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("lock: expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	locked := rr.Body.Bytes()

	rr = serve(router, multipartRequest(t, "/unlock-pdf", []formFile{pdfPart("pdf", "doc_locked.pdf", locked)}, map[string]string{
		"password": "wrong",
	}))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("wrong password: expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
	if msg := errorMessage(t, rr); msg != "Incorrect password" {
		t.Fatalf("unexpected error %q", msg)
	}

	rr = serve(router, multipartRequest(t, "/unlock-pdf", []formFile{pdfPart("pdf", "doc.pdf", locked)}, map[string]string{
		"password": "abc123",
	}))
	if rr.Code != http.StatusOK {
		t.Fatalf("unlock: expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="doc_unlocked.pdf"` {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
	if n := pageCount(t, rr.Body.Bytes(), ""); n != 2 {
		t.Fatalf("expected 2 pages, got %d", n)
	}
}

func TestCompressPDF_Headers(t *testing.T) {
	router := newTestRouter(t, nil)
	input := pdftest.BuildPages(2)
	rr := serve(router, multipartRequest(t, "/compress-pdf", []formFile{pdfPart("pdf", "big.pdf", input)}, map[string]string{
		"compressionLevel": "high",
	}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-Original-Size"); got != strconv.Itoa(len(input)) {
		t.Fatalf("unexpected X-Original-Size %q", got)
	}
	if got := rr.Header().Get("X-Compressed-Size"); got != strconv.Itoa(rr.Body.Len()) {
		t.Fatalf("unexpected X-Compressed-Size %q", got)
	}
}

func TestUploadRejections(t *testing.T) {
	router := newTestRouter(t, nil)

	tests := []struct {
		name    string
		path    string
		files   []formFile
		message string
	}{
		{"no file", "/compress-pdf", nil, "No PDF file uploaded"},
		{"wrong field", "/compress-pdf", []formFile{pdfPart("file", "a.pdf", pdftest.BuildPages(1))}, "No PDF file uploaded"},
		{
			"wrong mime", "/lock-pdf",
			[]formFile{{field: "pdf", name: "a.png", contentType: "image/png", data: []byte("png")}},
			"Only PDF files are allowed",
		},
		{
			"too large", "/compress-pdf",
			[]formFile{pdfPart("pdf", "a.pdf", bytes.Repeat([]byte("x"), testMaxFileSize+1))},
			"File too large",
		},
		{"convert without file", "/convert-format", nil, "No file uploaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := serve(router, multipartRequest(t, tt.path, tt.files, map[string]string{"password": "x"}))
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, rr.Code, rr.Body.String())
			}
			if msg := errorMessage(t, rr); msg != tt.message {
				t.Fatalf("expected %q, got %q", tt.message, msg)
			}
		})
	}
}

func TestNotMultipart(t *testing.T) {
	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/split-pdf", strings.NewReader(`{"splitPage":1}`))
	req.Header.Set("Content-Type", "application/json")

	rr := serve(router, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, rr.Code)
	}
}

func TestCorruptPDF(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := serve(router, multipartRequest(t, "/compress-pdf", []formFile{pdfPart("pdf", "a.pdf", []byte("not a pdf at all"))}, nil))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status %d, got %d", http.StatusInternalServerError, rr.Code)
	}
	if msg := errorMessage(t, rr); strings.Contains(msg, "xref") || msg == "" {
		t.Fatalf("expected a client-safe message, got %q", msg)
	}
}

func TestConvertFormat(t *testing.T) {
	router := newTestRouter(t, nil)
	rr := serve(router, multipartRequest(t, "/convert-format", []formFile{
		{field: "file", name: "readme.txt", contentType: "text/plain", data: []byte("<b>hi</b>")},
	}, map[string]string{"targetFormat": "html"}))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Body.String(), "&lt;b&gt;hi&lt;/b&gt;") {
		t.Fatalf("expected escaped html, got %s", rr.Body.String())
	}
	if cd := rr.Header().Get("Content-Disposition"); cd != `attachment; filename="readme.html"` {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}
}

func TestCurrencyRates_Fallback(t *testing.T) {
	logger := NewMockHandlerLogger()
	rates := service.NewRatesService(
		service.NewLiveRatesProvider("http://127.0.0.1:1/latest/USD", 200*time.Millisecond),
		service.NewStaticRatesProvider(),
		logger,
	)
	router := newTestRouter(t, rates)

	rr := serve(router, httptest.NewRequest(http.MethodGet, "/currency-rates", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if tier := rr.Header().Get("X-Rates-Tier"); tier != "fallback" {
		t.Fatalf("expected fallback tier, got %q", tier)
	}
	var table domain.RateTable
	if err := json.Unmarshal(rr.Body.Bytes(), &table); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if table.Rates["USD"] != 1 || table.Base != "USD" || table.Date == "" {
		t.Fatalf("unexpected table %+v", table)
	}
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/merge-pdfs", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rr := serve(router, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("expected allowed origin, got %q", got)
	}
}
