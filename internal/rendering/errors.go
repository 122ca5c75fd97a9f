package rendering

import "fmt"

// RenderError indicates no font size in the configured ladder produced a
// single page. DedupedLength lets the caller diagnose oversized content;
// truncation is never a silent fallback.
type RenderError struct {
	DedupedLength    int
	SmallestFontSize float64
}

func (e *RenderError) Error() string {
	return fmt.Sprintf(
		"resume does not fit one page at %.1fpt (deduplicated length %d chars)",
		e.SmallestFontSize, e.DedupedLength,
	)
}
