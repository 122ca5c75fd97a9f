// Package scoring computes the deterministic ATS-style score breakdown for a
// tailored resume against a job description. No model calls are made here;
// identical inputs always produce identical breakdowns.
package scoring

import (
	"regexp"
	"strings"
)

// Keyword policy: lowercase tokens matching tokenPattern, stopwords removed,
// then n-grams for n in {1,2,3} built over the filtered token sequence,
// deduplicated in first-seen order and capped at maxKeywords. Matching is
// done against the same filtered-token normalization of the resume, so a
// resume textually identical to the job description matches every keyword.
const (
	maxKeywords    = 120
	minTokenLength = 3

	maxMatchedReported = 30
	maxMissingReported = 20
)

var tokenPattern = regexp.MustCompile(`[a-z][a-z0-9+#.\-]*`)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "have": true, "has": true, "had": true,
	"will": true, "would": true, "could": true, "should": true, "we": true,
	"you": true, "they": true, "this": true, "that": true, "these": true,
	"those": true, "it": true, "its": true, "as": true, "by": true,
	"from": true, "about": true, "into": true, "each": true, "which": true,
	"all": true, "also": true, "more": true, "such": true, "than": true,
	"other": true, "can": true, "our": true, "your": true, "their": true,
	"then": true, "when": true, "use": true, "using": true, "used": true,
	"must": true, "able": true, "well": true, "good": true, "work": true,
	"role": true, "team": true, "job": true, "candidate": true,
	"required": true, "preferred": true, "include": true, "including": true,
	"strong": true, "experience": true, "knowledge": true, "ability": true,
	"skills": true, "excellent": true, "opportunity": true,
}

// tokenize lowercases text and returns the stopword-filtered token sequence.
func tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	tokens := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) >= minTokenLength && !stopwords[t] {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// ExtractKeywords returns the job description's keyword set under the fixed
// policy, in first-seen order.
func ExtractKeywords(jobDescription string) []string {
	tokens := tokenize(jobDescription)

	seen := make(map[string]bool)
	keywords := make([]string, 0, maxKeywords)

	add := func(kw string) {
		if !seen[kw] && len(keywords) < maxKeywords {
			seen[kw] = true
			keywords = append(keywords, kw)
		}
	}

	for n := 1; n <= 3; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			add(strings.Join(tokens[i:i+n], " "))
		}
	}

	return keywords
}

// normalizeForMatch reduces text to its filtered-token stream padded with
// spaces so keyword lookups are whole-token substring checks.
func normalizeForMatch(text string) string {
	return " " + strings.Join(tokenize(text), " ") + " "
}

// matchKeywords splits the keyword set into those present in the resume and
// those missing, preserving keyword order.
func matchKeywords(keywords []string, resumeText string) (matched, missing []string) {
	normalized := normalizeForMatch(resumeText)
	for _, kw := range keywords {
		if strings.Contains(normalized, " "+kw+" ") {
			matched = append(matched, kw)
		} else {
			missing = append(missing, kw)
		}
	}
	return matched, missing
}
