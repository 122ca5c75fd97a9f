package rendering

import (
	"bytes"
	"fmt"
	"strings"
)

// writePDF emits the laid-out pages as a minimal PDF using the base
// Helvetica fonts with WinAnsi encoding. Object numbering: 1 catalog,
// 2 page tree, 3/4 fonts, then a page and content stream object per page.
func writePDF(pages [][]renderedLine) []byte {
	var body bytes.Buffer
	offsets := []int{0} // object 0 is the xref free entry

	writeObj := func(content string) {
		offsets = append(offsets, body.Len())
		num := len(offsets) - 1
		fmt.Fprintf(&body, "%d 0 obj\n%s\nendobj\n", num, content)
	}

	body.WriteString("%PDF-1.4\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 5+2*i)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>",
		strings.Join(kids, " "), len(pages)))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")

	for i, page := range pages {
		writeObj(fmt.Sprintf(
			"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %g %g] /Resources << /Font << /F1 3 0 R /F2 4 0 R >> >> /Contents %d 0 R >>",
			pageWidth, pageHeight, 6+2*i))

		stream := pageContent(page)
		writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream))
	}

	xrefOffset := body.Len()
	fmt.Fprintf(&body, "xref\n0 %d\n", len(offsets))
	body.WriteString("0000000000 65535 f \n")
	for _, off := range offsets[1:] {
		fmt.Fprintf(&body, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&body, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets), xrefOffset)

	return body.Bytes()
}

// pageContent builds the text-drawing content stream for one page.
func pageContent(lines []renderedLine) string {
	var b strings.Builder
	b.WriteString("BT\n")

	cursor := pageHeight - margin
	for _, line := range lines {
		h := line.height()
		cursor -= h
		if line.kind == kindBlank || line.text == "" {
			continue
		}

		font := "/F1"
		if line.bold {
			font = "/F2"
		}

		x := margin + line.indent
		if line.centered {
			textWidth := float64(len([]rune(line.text))) * avgGlyphWidth * line.fontSize
			if textWidth < usableWidth {
				x = margin + (usableWidth-textWidth)/2
			}
		}
		baseline := cursor + (leadingFactor-1)*line.fontSize

		fmt.Fprintf(&b, "%s %.2f Tf\n", font, line.fontSize)
		fmt.Fprintf(&b, "1 0 0 1 %.2f %.2f Tm\n", x, baseline)
		fmt.Fprintf(&b, "(%s) Tj\n", escapePDF(line.text))
	}

	b.WriteString("ET\n")
	return b.String()
}

// escapePDF makes text safe inside a PDF literal string. The bullet glyph
// maps to its WinAnsi code point; other non-Latin-1 runes degrade to '?'.
func escapePDF(text string) string {
	var b strings.Builder
	for _, r := range text {
		switch {
		case r == '\\' || r == '(' || r == ')':
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '•':
			b.WriteString(`\225`)
		case r < 32 || r > 255:
			b.WriteByte('?')
		default:
			b.WriteByte(byte(r))
		}
	}
	return b.String()
}
