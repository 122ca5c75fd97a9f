package skills

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/internai/internai/internal/llm"
	"github.com/internai/internai/internal/logger"
	"github.com/internai/internai/internal/prompts"
	"github.com/internai/internai/internal/store"
)

//go:embed schema.json
var inventorySchema string

// Inputs to the extraction prompt are capped to keep the call cheap.
const maxExtractionChars = 4000

// Common technical terms recognized by the fallback scanner when the model's
// JSON output is unusable.
var fallbackPattern = regexp.MustCompile(`(?i)\b(python|java|scala|go|rust|sql|pandas|numpy|scikit-learn|tensorflow|pytorch|keras|spark|hadoop|aws|azure|gcp|docker|kubernetes|git|linux|machine learning|deep learning|nlp|data science|analytics|statistics|tableau|power bi|excel|matlab|javascript|typescript|react|node\.js|flask|fastapi|django|postgresql|mysql|mongodb|elasticsearch|kafka|redis|airflow|mlops|llm|transformers|langchain|rag|etl|xgboost)\b`)

// Extractor derives a skill inventory from the candidate's indexed chunks
// via an LLM JSON call validated against the embedded schema.
type Extractor struct {
	client llm.Client
	store  store.Store
	model  string
	log    *zap.Logger
}

// NewExtractor creates an Extractor using the given model.
func NewExtractor(client llm.Client, s store.Store, model string, log *zap.Logger) *Extractor {
	return &Extractor{client: client, store: s, model: model, log: log}
}

// GetSkills gathers the candidate's indexed text and extracts skill names.
// When the model output fails schema validation the regex fallback scans the
// raw material instead, so a malformed response never empties the inventory.
func (e *Extractor) GetSkills(ctx context.Context, candidateID uuid.UUID) ([]string, error) {
	text, err := e.candidateText(ctx, candidateID)
	if err != nil {
		return nil, err
	}
	if text == "" {
		return nil, nil
	}

	raw, err := e.client.Complete(ctx, llm.CompletionRequest{
		Model:        e.model,
		SystemPrompt: prompts.MustGet("skills.json", "extract_system"),
		UserPrompt: prompts.Format(prompts.MustGet("skills.json", "extract_user"), map[string]string{
			"Text": text,
		}),
		Temperature: 0,
		JSONOutput:  true,
	})
	if err != nil {
		return nil, err
	}

	parsed, err := parseInventory(raw)
	if err != nil {
		e.log.Warn("skill extraction output rejected, using fallback scan",
			zap.Error(err),
			zap.String("output", logger.Truncate(raw, 200)),
		)
		return fallbackScan(text), nil
	}

	names := make([]string, 0, len(parsed))
	seen := make(map[string]bool)
	for _, skill := range parsed {
		name := strings.TrimSpace(skill.Name)
		key := strings.ToLower(name)
		if name != "" && !seen[key] {
			seen[key] = true
			names = append(names, name)
		}
	}
	return names, nil
}

func (e *Extractor) candidateText(ctx context.Context, candidateID uuid.UUID) (string, error) {
	chunks, err := e.store.ListChunks(ctx, candidateID)
	if err != nil {
		return "", fmt.Errorf("failed to load candidate chunks: %w", err)
	}

	var b strings.Builder
	for _, chunk := range chunks {
		if b.Len()+len(chunk.Text) > maxExtractionChars {
			break
		}
		b.WriteString(chunk.Text)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// parseInventory validates raw JSON against the inventory schema and decodes it.
func parseInventory(raw string) ([]Skill, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(inventorySchema),
		gojsonschema.NewStringLoader(raw),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate skill inventory: %w", err)
	}
	if !result.Valid() {
		var issues []string
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("skill inventory schema violations: %s", strings.Join(issues, "; "))
	}

	var parsed []Skill
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode skill inventory: %w", err)
	}
	return parsed, nil
}

// fallbackScan extracts known technical terms directly from the text.
func fallbackScan(text string) []string {
	matches := fallbackPattern.FindAllString(text, -1)
	seen := make(map[string]bool)
	var names []string
	for _, m := range matches {
		key := strings.ToLower(m)
		if !seen[key] {
			seen[key] = true
			names = append(names, key)
		}
	}
	return names
}

var _ Provider = (*Extractor)(nil)

// Static is a fixed-inventory Provider used by tests and CLI runs that
// supply skills directly.
type Static []string

// GetSkills returns the fixed inventory.
func (s Static) GetSkills(context.Context, uuid.UUID) ([]string, error) {
	return s, nil
}
