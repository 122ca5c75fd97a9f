package rendering

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
)

// DOCX output uses a fixed body size; word processors repaginate freely so
// the single-page constraint does not apply to this format.
const docxBodySize = 10.5

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

// writeDOCX assembles a minimal OOXML package from the deduplicated text.
// The pack's docx dependency only edits existing template files, so the
// three required parts are written directly.
func writeDOCX(text string) ([]byte, error) {
	lines := strings.Split(text, "\n")
	kinds := classify(lines)

	var doc strings.Builder
	doc.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	doc.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			doc.WriteString(`<w:p/>`)
			continue
		}
		switch kinds[i] {
		case kindName:
			writeParagraph(&doc, stripped, 14, true, true)
		case kindContact:
			writeParagraph(&doc, stripped, 9, false, true)
		case kindHeading:
			writeParagraph(&doc, stripped, 11, true, false)
		case kindRole:
			writeParagraph(&doc, stripped, docxBodySize, true, false)
		default:
			writeParagraph(&doc, stripped, docxBodySize, false, false)
		}
	}

	doc.WriteString(`</w:body></w:document>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, content string }{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", relsXML},
		{"word/document.xml", doc.String()},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("failed to create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.content)); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize docx package: %w", err)
	}

	return buf.Bytes(), nil
}

// writeParagraph emits one paragraph. Sizes are points, doubled to OOXML
// half-points.
func writeParagraph(doc *strings.Builder, text string, sizePt float64, bold, centered bool) {
	doc.WriteString(`<w:p>`)
	if centered {
		doc.WriteString(`<w:pPr><w:jc w:val="center"/></w:pPr>`)
	}
	doc.WriteString(`<w:r><w:rPr>`)
	if bold {
		doc.WriteString(`<w:b/>`)
	}
	fmt.Fprintf(doc, `<w:sz w:val="%d"/>`, int(sizePt*2))
	doc.WriteString(`</w:rPr>`)
	fmt.Fprintf(doc, `<w:t xml:space="preserve">%s</w:t>`, xmlEscaper.Replace(text))
	doc.WriteString(`</w:r></w:p>`)
}
