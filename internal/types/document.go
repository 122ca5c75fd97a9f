package types

// DocumentFormat identifies an export format for rendered documents.
type DocumentFormat string

// Supported export formats
const (
	// FormatPDF is the single-page constrained PDF export
	FormatPDF DocumentFormat = "pdf"
	// FormatDOCX is the word-processor export (no page constraint)
	FormatDOCX DocumentFormat = "docx"
)

// Valid reports whether f is a supported export format.
func (f DocumentFormat) Valid() bool {
	return f == FormatPDF || f == FormatDOCX
}

// RenderedDocument is an export-ready document produced by the renderer.
// For the PDF format PageCount is always 1; the renderer fails instead of
// returning an overflowing document.
type RenderedDocument struct {
	Format   DocumentFormat `json:"format"`
	Content  []byte         `json:"byte_content"`
	Pages    int            `json:"page_count"`
	FontSize float64        `json:"font_size_used"`
}
