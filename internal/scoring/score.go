package scoring

import (
	"math"
	"strings"

	"github.com/internai/internai/internal/config"
	"github.com/internai/internai/internal/types"
)

// Scorer computes ScoreBreakdowns under a fixed weighting. It holds no
// mutable state and is safe for concurrent use.
type Scorer struct {
	weights config.Weights
}

// New creates a Scorer with the given composite weights.
func New(weights config.Weights) *Scorer {
	return &Scorer{weights: weights}
}

// Score evaluates the tailored resume against the job description.
// semanticSimilarity is the precomputed cosine between the full resume and
// job description embeddings in [-1, 1]; the coordinator supplies it so this
// function stays pure. Fails with InputError on a blank job description.
func (s *Scorer) Score(resumeText, jobDescription string, skillInventory []string, semanticSimilarity float64) (*types.ScoreBreakdown, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return nil, &InputError{Reason: "job description is empty"}
	}

	keywords := ExtractKeywords(jobDescription)
	matched, missing := matchKeywords(keywords, resumeText)

	keywordScore := 0.0
	if len(keywords) > 0 {
		keywordScore = float64(len(matched)) / float64(len(keywords)) * 100
	}

	semanticScore := clamp((semanticSimilarity+1)/2*100, 0, 100)

	skillScore := skillCoverage(skillInventory, keywords)

	formatScore, formatIssues := formatScore(resumeText)

	composite := keywordScore*s.weights.Keyword +
		semanticScore*s.weights.Semantic +
		skillScore*s.weights.Skill +
		formatScore*s.weights.Format
	composite = clamp(composite, 0, 100)

	grade, verdict := gradeFor(composite)

	return &types.ScoreBreakdown{
		KeywordScore:    round(keywordScore),
		SemanticScore:   round(semanticScore),
		SkillScore:      round(skillScore),
		FormatScore:     round(formatScore),
		CompositeScore:  round(composite),
		Grade:           grade,
		Verdict:         verdict,
		MatchedKeywords: capped(matched, maxMatchedReported),
		MissingKeywords: capped(missing, maxMissingReported),
		FormatIssues:    formatIssues,
	}, nil
}

// skillCoverage measures how many of the candidate's known skills are
// relevant to this posting: the fraction of inventory entries found in the
// job description's keyword set.
func skillCoverage(inventory []string, keywords []string) float64 {
	if len(inventory) == 0 {
		return 0
	}

	keywordSet := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		keywordSet[kw] = true
	}

	relevant := 0
	for _, skill := range inventory {
		normalized := strings.Join(tokenize(skill), " ")
		if normalized != "" && keywordSet[normalized] {
			relevant++
		}
	}
	return float64(relevant) / float64(len(inventory)) * 100
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round(v float64) int {
	return int(math.Round(v))
}

func capped(values []string, limit int) []string {
	if len(values) > limit {
		return values[:limit]
	}
	return values
}
