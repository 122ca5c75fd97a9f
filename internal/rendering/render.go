package rendering

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/internai/internai/internal/types"
)

// Renderer produces export documents from tailored resume text. It holds
// only the configured font ladder and is safe for concurrent use.
type Renderer struct {
	fontSizes []float64
}

// New creates a Renderer with the given descending font ladder.
func New(fontSizes []float64) *Renderer {
	sizes := make([]float64, len(fontSizes))
	copy(sizes, fontSizes)
	return &Renderer{fontSizes: sizes}
}

// Render deduplicates sections and renders the requested format. The PDF
// variant walks the font ladder until the content lays out on exactly one
// page and fails with RenderError instead of truncating; the DOCX variant
// applies the same deduplication but no page constraint.
func (r *Renderer) Render(resumeText string, format types.DocumentFormat) (*types.RenderedDocument, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported document format: %q", format)
	}

	deduped := DeduplicateSections(resumeText)

	if format == types.FormatDOCX {
		content, err := writeDOCX(deduped)
		if err != nil {
			return nil, err
		}
		return &types.RenderedDocument{
			Format:   types.FormatDOCX,
			Content:  content,
			Pages:    1,
			FontSize: docxBodySize,
		}, nil
	}

	for _, size := range r.fontSizes {
		pages := paginate(layout(deduped, size))
		if len(pages) > 1 {
			continue
		}

		content := writePDF(pages)
		if count, err := verifyPageCount(content); err == nil && count != 1 {
			// Layout said one page but the written file disagrees.
			return nil, &RenderError{DedupedLength: len(deduped), SmallestFontSize: size}
		}

		return &types.RenderedDocument{
			Format:   types.FormatPDF,
			Content:  content,
			Pages:    1,
			FontSize: size,
		}, nil
	}

	return nil, &RenderError{
		DedupedLength:    len(deduped),
		SmallestFontSize: r.fontSizes[len(r.fontSizes)-1],
	}
}

// verifyPageCount cross-checks the produced bytes with pdfcpu.
func verifyPageCount(pdf []byte) (int, error) {
	return api.PageCount(bytes.NewReader(pdf), nil)
}
