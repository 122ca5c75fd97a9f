// Package rendering turns a tailored resume into export-ready documents:
// a single-page auto-scaled PDF and an unconstrained DOCX. Both formats
// share the section deduplication pass.
package rendering

import (
	"regexp"
	"strings"
)

// Recognized section headers, normalized. A header line containing one of
// these keys is folded onto the first occurrence of the same key.
var sectionKeys = []string{
	"PROFESSIONAL SUMMARY", "SUMMARY", "OBJECTIVE",
	"TECHNICAL SKILLS", "CORE SKILLS", "SKILLS",
	"PROFESSIONAL EXPERIENCE", "WORK EXPERIENCE", "EXPERIENCE",
	"PROJECTS", "PROJECT",
	"EDUCATION", "ACADEMIC",
	"CERTIFICATIONS & AWARDS", "CERTIFICATIONS",
	"CONTACT INFORMATION", "CONTACT",
}

// Model meta-commentary lines stripped before layout.
var metaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here('s| is)\b`),
	regexp.MustCompile(`(?i)^below is\b`),
	regexp.MustCompile(`(?i)^the tailored resume\b`),
	regexp.MustCompile(`(?i)^resume:`),
	regexp.MustCompile(`^-{3,}$`),
	regexp.MustCompile(`^\*\*`),
	regexp.MustCompile(`(?i)step \d+`),
	regexp.MustCompile(`(?i)final check`),
	regexp.MustCompile(`(?i)word count`),
}

var headerDisallowed = regexp.MustCompile(`[0-9@|]`)

type section struct {
	header string // original header line, empty for the preamble
	key    string // normalized key
	body   []string
}

// isSectionHeader reports whether a stripped line looks like an ALL-CAPS
// section header.
func isSectionHeader(stripped string) bool {
	return stripped == strings.ToUpper(stripped) &&
		strings.ToUpper(stripped) != strings.ToLower(stripped) &&
		len(stripped) > 3 && len(stripped) < 80 &&
		!headerDisallowed.MatchString(stripped)
}

func headerKey(stripped string) string {
	upper := strings.ToUpper(strings.Join(strings.Fields(stripped), " "))
	for _, key := range sectionKeys {
		if strings.Contains(upper, key) {
			return key
		}
	}
	return upper
}

func isMetaLine(stripped string) bool {
	for _, p := range metaPatterns {
		if p.MatchString(stripped) {
			return true
		}
	}
	return false
}

// DeduplicateSections parses text into (header, body) segments and keeps
// only the first occurrence of each normalized header. Body lines of a
// duplicate section are merged into the first occurrence unless an
// identical line is already present there, in which case they are
// discarded as fully redundant. Content is never dropped without one of
// those two decisions. Model meta-commentary lines are stripped.
func DeduplicateSections(text string) string {
	sections := []*section{{}} // index 0 is the preamble (name, contact)
	byKey := make(map[string]*section)
	current := sections[0]

	for _, line := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(line)

		if isMetaLine(stripped) {
			continue
		}

		if isSectionHeader(stripped) {
			key := headerKey(stripped)
			if existing, ok := byKey[key]; ok {
				current = existing
				continue
			}
			sec := &section{header: line, key: key}
			sections = append(sections, sec)
			byKey[key] = sec
			current = sec
			continue
		}

		current.body = append(current.body, line)
	}

	var out []string
	for _, sec := range sections {
		if sec.header != "" {
			out = append(out, sec.header)
		}
		seen := make(map[string]bool)
		for _, line := range sec.body {
			stripped := strings.TrimSpace(line)
			if stripped != "" && seen[stripped] {
				continue
			}
			seen[stripped] = true
			out = append(out, line)
		}
	}

	result := strings.Join(out, "\n")
	return strings.Trim(result, "\n")
}
