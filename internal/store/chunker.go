package store

import "strings"

// ChunkText splits text into character-bounded chunks, respecting paragraph
// boundaries where possible. Paragraphs longer than size are split with the
// configured overlap so no span of the source is dropped.
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	paragraphs := make([]string, 0)
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}

	var chunks []string
	current := ""

	for _, para := range paragraphs {
		if len(current)+len(para) <= size {
			current = strings.TrimSpace(current + "\n\n" + para)
			continue
		}

		if current != "" {
			chunks = append(chunks, current)
			current = ""
		}

		if len(para) > size {
			step := size - overlap
			for i := 0; i < len(para); i += step {
				end := i + size
				if end > len(para) {
					end = len(para)
				}
				if sub := strings.TrimSpace(para[i:end]); sub != "" {
					chunks = append(chunks, sub)
				}
				if end == len(para) {
					break
				}
			}
		} else {
			current = para
		}
	}

	if current != "" {
		chunks = append(chunks, current)
	}

	return chunks
}
