package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/SebastiaanKlippert/go-wkhtmltopdf"
)

// PDF converts an HTML report to an A4 landscape PDF with wkhtmltopdf. It
// fails when the wkhtmltopdf binary cannot be found.
func PDF(ctx context.Context, html []byte) ([]byte, error) {
	pdfg, err := wkhtmltopdf.NewPDFGenerator()
	if err != nil {
		return nil, fmt.Errorf("wkhtmltopdf: %w", err)
	}
	pdfg.PageSize.Set(wkhtmltopdf.PageSizeA4)
	pdfg.Orientation.Set(wkhtmltopdf.OrientationLandscape)
	pdfg.MarginTop.Set(10)
	pdfg.MarginRight.Set(10)
	pdfg.MarginBottom.Set(10)
	pdfg.MarginLeft.Set(10)

	page := wkhtmltopdf.NewPageReader(bytes.NewReader(html))
	page.EnableLocalFileAccess.Set(true)
	pdfg.AddPage(page)

	if err := pdfg.CreateContext(ctx); err != nil {
		return nil, fmt.Errorf("create pdf: %w", err)
	}
	return pdfg.Bytes(), nil
}
