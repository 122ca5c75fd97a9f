package scoring

// gradeFor maps an unrounded composite score to a display grade and verdict.
func gradeFor(score float64) (string, string) {
	switch {
	case score >= 92:
		return "A+", "Exceptional - very high probability of passing ATS filters."
	case score >= 83:
		return "A", "Strong - high probability of passing ATS and reaching a recruiter."
	case score >= 74:
		return "B", "Good - should pass most ATS systems. Minor improvements possible."
	case score >= 63:
		return "C", "Moderate - add more job description keywords and quantify achievements."
	case score >= 50:
		return "D", "Weak - significant tailoring needed before applying."
	default:
		return "F", "Poor - resume needs major revision to match this role."
	}
}
