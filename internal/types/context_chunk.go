// Package types provides type definitions for structured data used throughout the optimization pipeline.
//
//nolint:revive // types is a standard Go package name pattern
package types

// SourceKind identifies which candidate document a context chunk came from.
type SourceKind string

// Source kinds for indexed candidate material
const (
	// SourceResume marks chunks extracted from the uploaded resume
	SourceResume SourceKind = "resume"
	// SourceLinkedIn marks chunks extracted from LinkedIn profile text
	SourceLinkedIn SourceKind = "linkedin"
	// SourceGitHub marks chunks extracted from GitHub project summaries
	SourceGitHub SourceKind = "github"
)

// Valid reports whether k is a recognized source kind.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceResume, SourceLinkedIn, SourceGitHub:
		return true
	}
	return false
}

// ContextChunk is the unit of retrieval: a bounded span of a candidate's
// source text with a precomputed embedding. Chunks are immutable once
// indexed; re-uploading a profile replaces the candidate's full chunk set.
type ContextChunk struct {
	Source       SourceKind `json:"source_kind"`
	Text         string     `json:"text"`
	Embedding    []float32  `json:"embedding_vector,omitempty"`
	OriginOffset int        `json:"origin_offset"`
}
