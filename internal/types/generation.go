package types

import "time"

// GenerationRequest is the immutable input to one orchestrator run.
// Re-invoking with the same request is the caller's retry mechanism;
// the orchestrator itself never retries.
type GenerationRequest struct {
	JobTitle       string   `json:"job_title"`
	Company        string   `json:"company"`
	JobDescription string   `json:"job_description"`
	Context        string   `json:"retrieved_context"`
	Skills         []string `json:"candidate_skill_inventory"`
}

// StageTimestamps records when each generation stage finished.
type StageTimestamps struct {
	TailoredAt    time.Time `json:"tailored_at,omitempty"`
	CoverLetterAt time.Time `json:"cover_letter_at,omitempty"`
	ReviewedAt    time.Time `json:"reviewed_at,omitempty"`
}

// GenerationArtifact holds the finalized text of all three stages.
// Fields are filled incrementally as stages complete and the struct
// becomes immutable once the orchestrator returns it.
type GenerationArtifact struct {
	TailoredResume string          `json:"tailored_resume_text"`
	CoverLetter    string          `json:"cover_letter_text"`
	ReviewFeedback string          `json:"reviewer_feedback_text"`
	Timestamps     StageTimestamps `json:"generation_timestamps"`
}
