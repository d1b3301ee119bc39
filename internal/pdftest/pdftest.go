// Package pdftest builds small, valid PDF files for tests. Each page gets its
// own MediaBox width so page order survives round trips and can be checked
// through page dimensions.
package pdftest

import (
	"bytes"
	"fmt"
)

// PageHeight is the MediaBox height of every generated page.
const PageHeight = 792

// Widths returns n distinct page widths: 300, 310, 320, ...
func Widths(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = float64(300 + 10*i)
	}
	return w
}

// Build returns a PDF with one page per width. Page i shows the text
// "Page i".
func Build(widths ...float64) []byte {
	if len(widths) == 0 {
		widths = Widths(1)
	}

	n := len(widths)
	// Object numbering: 1 catalog, 2 pages, 3 font, then page/content pairs.
	objects := make([]string, 0, 3+2*n)
	kids := &bytes.Buffer{}
	for i := range widths {
		fmt.Fprintf(kids, "%d 0 R ", 4+2*i)
	}

	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", bytes.TrimSpace(kids.Bytes()), n),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	)
	for i, w := range widths {
		page := fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %d] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>",
			w, PageHeight, 5+2*i,
		)
		content := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (Page %d) Tj ET", i+1)
		stream := fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
		objects = append(objects, page, stream)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)

	return buf.Bytes()
}

// BuildPages returns a PDF with n pages of distinct widths.
func BuildPages(n int) []byte {
	return Build(Widths(n)...)
}
