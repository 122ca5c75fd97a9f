package types

// ScoreBreakdown is the deterministic ATS-style evaluation of a tailored
// resume against a job description. Component and composite scores are
// rounded to the nearest integer for display; the composite is computed
// from unrounded values before rounding.
type ScoreBreakdown struct {
	KeywordScore    int      `json:"keyword_score"`
	SemanticScore   int      `json:"semantic_score"`
	SkillScore      int      `json:"skill_score"`
	FormatScore     int      `json:"format_score"`
	CompositeScore  int      `json:"composite_score"`
	Grade           string   `json:"grade"`
	Verdict         string   `json:"verdict"`
	MatchedKeywords []string `json:"matched_keywords"`
	MissingKeywords []string `json:"missing_keywords"`
	FormatIssues    []string `json:"format_issues,omitempty"`
}
