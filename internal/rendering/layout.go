package rendering

import (
	"regexp"
	"strings"
)

// Page geometry (US Letter, points) shared by layout and the PDF writer.
const (
	pageWidth  = 612.0
	pageHeight = 792.0
	margin     = 36.0

	usableWidth  = pageWidth - 2*margin
	usableHeight = pageHeight - 2*margin

	leadingFactor = 1.35
	// Average glyph advance for Helvetica as a fraction of the font size,
	// used for deterministic line wrapping.
	avgGlyphWidth = 0.50

	blankSpacerHeight  = 2.0
	headingSpaceBefore = 6.0
	roleSpaceBefore    = 3.0
)

type lineKind int

const (
	kindBlank lineKind = iota
	kindName
	kindContact
	kindHeading
	kindRole
	kindBullet
	kindBody
)

// renderedLine is one laid-out line with its style resolved.
type renderedLine struct {
	kind     lineKind
	text     string
	fontSize float64
	bold     bool
	centered bool
	indent   float64
}

var (
	contactPattern      = regexp.MustCompile(`(?i)[@|+]|linkedin|github`)
	bulletPrefixPattern = regexp.MustCompile(`^[•\-\*—◦▪]\s+`)
	headingDigits       = regexp.MustCompile(`[0-9]`)
)

// classify assigns each input line a style, mirroring the export layout:
// first non-blank line is the candidate name, the next few lines with
// contact markers are contact lines, ALL-CAPS lines are headings, lines
// with a " | " separator are role lines.
func classify(lines []string) []lineKind {
	kinds := make([]lineKind, len(lines))

	firstNonBlank := -1
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			firstNonBlank = i
			break
		}
	}
	contactZone := firstNonBlank + 5

	for i, line := range lines {
		stripped := strings.TrimSpace(line)
		switch {
		case stripped == "":
			kinds[i] = kindBlank
		case i == firstNonBlank && stripped != strings.ToUpper(stripped):
			kinds[i] = kindName
		case i <= contactZone && contactPattern.MatchString(stripped):
			kinds[i] = kindContact
		case isSectionHeader(stripped) && !headingDigits.MatchString(stripped):
			kinds[i] = kindHeading
		case bulletPrefixPattern.MatchString(stripped):
			kinds[i] = kindBullet
		case strings.Contains(stripped, " | "):
			kinds[i] = kindRole
		default:
			kinds[i] = kindBody
		}
	}
	return kinds
}

// wrap splits text into lines not exceeding the character budget for the
// given width and font size, breaking on spaces. A single overlong word
// occupies its own line rather than being split.
func wrap(text string, width, fontSize float64) []string {
	budget := int(width / (avgGlyphWidth * fontSize))
	if budget < 1 {
		budget = 1
	}
	if len(text) <= budget {
		return []string{text}
	}

	words := strings.Fields(text)
	var lines []string
	current := ""
	for _, word := range words {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if len(candidate) <= budget || current == "" {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}

// layout converts deduplicated text into styled, wrapped lines for one body
// font size. Pure: the same text and size always produce the same lines.
func layout(text string, bodySize float64) []renderedLine {
	lines := strings.Split(text, "\n")
	kinds := classify(lines)

	var out []renderedLine
	for i, line := range lines {
		stripped := strings.TrimSpace(line)

		switch kinds[i] {
		case kindBlank:
			out = append(out, renderedLine{kind: kindBlank})
		case kindName:
			for _, w := range wrap(stripped, usableWidth, bodySize+4) {
				out = append(out, renderedLine{kind: kindName, text: w, fontSize: bodySize + 4, bold: true, centered: true})
			}
		case kindContact:
			for _, w := range wrap(stripped, usableWidth, bodySize-1) {
				out = append(out, renderedLine{kind: kindContact, text: w, fontSize: bodySize - 1, centered: true})
			}
		case kindHeading:
			out = append(out, renderedLine{kind: kindHeading, text: stripped, fontSize: bodySize + 0.5, bold: true})
		case kindRole:
			for _, w := range wrap(stripped, usableWidth, bodySize) {
				out = append(out, renderedLine{kind: kindRole, text: w, fontSize: bodySize, bold: true})
			}
		case kindBullet:
			content := bulletPrefixPattern.ReplaceAllString(stripped, "")
			wrapped := wrap(content, usableWidth-12, bodySize)
			for j, w := range wrapped {
				text := w
				if j == 0 {
					text = "• " + w
				}
				out = append(out, renderedLine{kind: kindBullet, text: text, fontSize: bodySize, indent: 12})
			}
		default:
			for _, w := range wrap(stripped, usableWidth, bodySize) {
				out = append(out, renderedLine{kind: kindBody, text: w, fontSize: bodySize})
			}
		}
	}
	return out
}

func (l renderedLine) height() float64 {
	if l.kind == kindBlank {
		return blankSpacerHeight
	}
	h := l.fontSize * leadingFactor
	switch l.kind {
	case kindHeading:
		h += headingSpaceBefore
	case kindRole:
		h += roleSpaceBefore
	}
	return h
}

// paginate packs lines into pages by accumulated height.
func paginate(lines []renderedLine) [][]renderedLine {
	pages := [][]renderedLine{}
	var page []renderedLine
	used := 0.0

	for _, line := range lines {
		h := line.height()
		if used+h > usableHeight && len(page) > 0 {
			pages = append(pages, page)
			page = nil
			used = 0
		}
		page = append(page, line)
		used += h
	}
	if len(page) > 0 {
		pages = append(pages, page)
	}
	if len(pages) == 0 {
		pages = append(pages, []renderedLine{})
	}
	return pages
}
