package scoring

import (
	"regexp"
	"strings"
)

// Format checks are additive: each satisfied rule contributes a fixed point
// value, capped at 100. Violated rules are reported as issues.
const (
	pointsPerSection    = 12.0 // five recognized sections
	pointsNoTables      = 10.0
	pointsNoGraphics    = 10.0
	pointsBulletDensity = 10.0
	pointsLineLength    = 10.0

	bulletDensityFloor = 0.20
	maxLineLength      = 180
)

var requiredSections = []string{"summary", "skills", "experience", "projects", "education"}

var (
	tablePattern   = regexp.MustCompile(`\|.*\|.*\|`)
	graphicPattern = regexp.MustCompile(`(?i)(photo|image|picture|graphic)|<[a-z][a-z0-9]*\b[^>]*>`)
	bulletPattern  = regexp.MustCompile(`^[•\-\*—◦▪]\s+`)
)

// formatScore applies the rule-based format checks to the resume text.
func formatScore(resumeText string) (score float64, issues []string) {
	lower := strings.ToLower(resumeText)

	var missingSections []string
	for _, section := range requiredSections {
		if regexp.MustCompile(`\b` + section + `\b`).MatchString(lower) {
			score += pointsPerSection
		} else {
			missingSections = append(missingSections, section)
		}
	}
	if len(missingSections) > 0 {
		issues = append(issues, "missing sections: "+strings.Join(missingSections, ", "))
	}

	if !tablePattern.MatchString(resumeText) {
		score += pointsNoTables
	} else {
		issues = append(issues, "tables detected - ATS may misparse")
	}

	if !graphicPattern.MatchString(resumeText) {
		score += pointsNoGraphics
	} else {
		issues = append(issues, "graphic or markup references detected")
	}

	lines := strings.Split(resumeText, "\n")
	var content, bullets, overlong int
	for _, line := range lines {
		stripped := strings.TrimSpace(line)
		if stripped == "" {
			continue
		}
		content++
		if bulletPattern.MatchString(stripped) {
			bullets++
		}
		if len(stripped) > maxLineLength {
			overlong++
		}
	}

	if content > 0 && float64(bullets)/float64(content) >= bulletDensityFloor {
		score += pointsBulletDensity
	} else {
		issues = append(issues, "too few bullet points for ATS-friendly structure")
	}

	if overlong == 0 {
		score += pointsLineLength
	} else {
		issues = append(issues, "overlong lines detected - possible multi-column layout")
	}

	if score > 100 {
		score = 100
	}
	return score, issues
}
