// Package config provides configuration loading and validation for the pipeline.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
)

// Defaults mirror the shipped product configuration.
const (
	DefaultPrimaryModel   = "gemini-2.5-flash"
	DefaultReviewerModel  = "gemini-2.5-flash-lite"
	DefaultEmbeddingModel = "text-embedding-004"

	DefaultTemperature     = 0.25
	DefaultMaxOutputTokens = 8192

	DefaultTopK           = 5
	DefaultMaxChars       = 6000
	DefaultChunkSize      = 400
	DefaultChunkOverlap   = 80
	DefaultEmbedCacheSize = 512
	DefaultStageTimeout   = 300 // seconds per model call
)

// Weights holds the composite score weighting. The four values must sum to 1.0.
type Weights struct {
	Keyword  float64 `json:"keyword"`
	Semantic float64 `json:"semantic"`
	Skill    float64 `json:"skill"`
	Format   float64 `json:"format"`
}

// DefaultWeights returns the product's fixed weighting:
// 40% keyword, 30% semantic, 20% skill, 10% format.
func DefaultWeights() Weights {
	return Weights{Keyword: 0.40, Semantic: 0.30, Skill: 0.20, Format: 0.10}
}

// Config is the immutable pipeline configuration. It is constructed once at
// startup and passed explicitly into the coordinator; there is no global
// mutable state inside the core.
type Config struct {
	// Models
	PrimaryModel   string  `json:"primary_model,omitempty"`
	ReviewerModel  string  `json:"reviewer_model,omitempty"`
	EmbeddingModel string  `json:"embedding_model,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	MaxTokens      int     `json:"max_tokens,omitempty"`

	// Per-stage model call timeout in seconds. Zero means no deadline.
	StageTimeoutSec int `json:"stage_timeout_sec,omitempty"`

	// Retrieval
	TopK         int `json:"top_k,omitempty"`
	MaxChars     int `json:"max_chars,omitempty"`
	ChunkSize    int `json:"chunk_size,omitempty"`
	ChunkOverlap int `json:"chunk_overlap,omitempty"`

	// Embedding cache entries (LRU)
	EmbedCacheSize int `json:"embed_cache_size,omitempty"`

	// Scoring
	ScoreWeights Weights `json:"score_weights,omitempty"`

	// Rendering: descending font ladder in points
	FontSizes []float64 `json:"font_sizes,omitempty"`

	// Infrastructure
	Port        int    `json:"port,omitempty"`
	DatabaseURL string `json:"database_url,omitempty"`
	APIKey      string `json:"api_key,omitempty"`
	UseBrowser  bool   `json:"use_browser,omitempty"`
	Verbose     bool   `json:"verbose,omitempty"`
}

// Default returns a Config populated with the shipped defaults.
func Default() *Config {
	return &Config{
		PrimaryModel:    DefaultPrimaryModel,
		ReviewerModel:   DefaultReviewerModel,
		EmbeddingModel:  DefaultEmbeddingModel,
		Temperature:     DefaultTemperature,
		MaxTokens:       DefaultMaxOutputTokens,
		StageTimeoutSec: DefaultStageTimeout,
		TopK:            DefaultTopK,
		MaxChars:        DefaultMaxChars,
		ChunkSize:       DefaultChunkSize,
		ChunkOverlap:    DefaultChunkOverlap,
		EmbedCacheSize:  DefaultEmbedCacheSize,
		ScoreWeights:    DefaultWeights(),
		FontSizes:       []float64{9.5, 9.0, 8.5, 8.0, 7.5},
		Port:            8080,
	}
}

// Load reads a JSON config file and overlays it on the defaults.
// Environment variables GEMINI_API_KEY and DATABASE_URL take precedence
// over file values so secrets stay out of checked-in config.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if url := os.Getenv("DATABASE_URL"); url != "" {
		cfg.DatabaseURL = url
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if c.TopK <= 0 {
		return fmt.Errorf("config error: 'top_k' must be positive")
	}
	if c.MaxChars <= 0 {
		return fmt.Errorf("config error: 'max_chars' must be positive")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("config error: 'chunk_size' must be positive")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("config error: 'chunk_overlap' must be in [0, chunk_size)")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: 'temperature' must be in [0, 2]")
	}

	sum := c.ScoreWeights.Keyword + c.ScoreWeights.Semantic + c.ScoreWeights.Skill + c.ScoreWeights.Format
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("config error: score weights must sum to 1.0, got %v", sum)
	}

	if len(c.FontSizes) == 0 {
		return fmt.Errorf("config error: 'font_sizes' must not be empty")
	}
	for i := 1; i < len(c.FontSizes); i++ {
		if c.FontSizes[i] >= c.FontSizes[i-1] {
			return fmt.Errorf("config error: 'font_sizes' must be strictly descending")
		}
	}

	return nil
}
