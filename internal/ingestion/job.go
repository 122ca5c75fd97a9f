// Package ingestion turns job posting URLs and local files into cleaned
// plain text suitable for retrieval and scoring.
package ingestion

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/internai/internai/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the page cannot be fetched.
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when no text can be extracted.
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
)

// JobPostingFromURL fetches a job posting page and returns its cleaned text.
// Platform detection picks selectors for the known job boards; when the
// plain HTTP fetch yields too little text and useBrowser is set, the page is
// re-rendered in a headless browser.
func JobPostingFromURL(ctx context.Context, urlStr string, useBrowser bool, log *zap.Logger) (string, error) {
	platform := fetch.DetectPlatform(urlStr)
	log.Debug("ingesting job posting",
		zap.String("url", urlStr),
		zap.String("platform", string(platform)),
	)

	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.ContentSelectors(platform)
	noiseSelectors := fetch.NoiseSelectors(platform)

	text, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if useBrowser && fetch.ShouldUseBrowser(text) {
		log.Debug("content too short, falling back to browser rendering",
			zap.Int("chars", len(text)),
		)
		browserHTML, browserErr := fetch.BrowserSimple(ctx, urlStr)
		if browserErr != nil {
			log.Warn("browser rendering failed, using HTTP content", zap.Error(browserErr))
		} else if rendered, extractErr := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...); extractErr == nil {
			text = rendered
		}
	}

	cleaned := CleanText(text)
	if cleaned == "" {
		return "", ErrContentExtractionFailed
	}
	return cleaned, nil
}

// TextFromFile reads and cleans a local plain-text document.
func TextFromFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("file not found: %w", err)
		}
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return CleanText(string(content)), nil
}
