package llm

import "strings"

// CleanJSONBlock removes markdown code block wrappers from JSON output.
// Models frequently wrap JSON in ```json fences despite instructions.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
