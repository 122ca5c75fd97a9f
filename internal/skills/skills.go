// Package skills provides the candidate skill inventory consumed by the
// scorer and the generation prompts.
package skills

import (
	"context"

	"github.com/google/uuid"
)

// Provider is the skill inventory contract. Implementations may read a
// stored profile or derive the inventory from indexed candidate material.
type Provider interface {
	GetSkills(ctx context.Context, candidateID uuid.UUID) ([]string, error)
}

// Skill is one extracted inventory entry.
type Skill struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}
