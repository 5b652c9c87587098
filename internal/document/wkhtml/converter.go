// Package wkhtml adapts wkhtmltopdf to the document.Converter port.
package wkhtml

import (
	"bytes"
	"context"
	"fmt"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// marginMM is 0.75in on every side.
const marginMM = 19

// Converter shells out to the wkhtmltopdf binary.
type Converter struct{}

// New returns a Converter. binaryPath overrides the lookup of the
// wkhtmltopdf executable when not empty.
func New(binaryPath string) *Converter {
	if binaryPath != "" {
		wkhtmltopdf.SetPath(binaryPath)
	}
	return &Converter{}
}

// Convert renders html as an A4 PDF.
func (c *Converter) Convert(ctx context.Context, html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("wkhtmltopdf unavailable: %w", err)
	}

	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.MarginTop.Set(marginMM)
	pdfg.MarginRight.Set(marginMM)
	pdfg.MarginBottom.Set(marginMM)
	pdfg.MarginLeft.Set(marginMM)
	pdfg.NoOutline.Set(true)
	pdfg.Quiet.Set(true)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.Encoding.Set("UTF-8")
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("wkhtmltopdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
